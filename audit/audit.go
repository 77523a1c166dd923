// Package audit implements the closed set of deterministic verification
// predicates described in spec §4.7. Strategies perform only filesystem
// inspection and string containment checks — never network or shell — so
// the Auditor LLM's action space stays finite and safe.
package audit

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Severity is the closed set of AuditResult severities (spec §3).
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Result is the outcome of one audit strategy invocation (spec §3).
type Result struct {
	Passed   bool
	Message  string
	Severity Severity
}

// StrategyName is one of the four entries in the hardcoded dispatch
// table — never resolved by dynamic reflection (spec §4.5).
type StrategyName string

const (
	VerifyFileExists          StrategyName = "verify_file_exists"
	VerifyFileContentContains StrategyName = "verify_file_content_contains"
	VerifyFileDoesNotExist    StrategyName = "verify_file_does_not_exist"
	VerifyToolOutputSuccess   StrategyName = "verify_tool_output_success"
)

// ErrUnknownStrategy is returned when the Auditor's chosen strategy name
// is not in the closed set (spec §7: "audit-strategy-unknown").
type ErrUnknownStrategy struct {
	Name StrategyName
}

func (e *ErrUnknownStrategy) Error() string {
	return fmt.Sprintf("audit: unknown strategy %q", e.Name)
}

// Run dispatches name against the hardcoded strategy table and passes each
// strategy the args it needs, looked up by key ("path", "substring",
// "previous_output"). Unknown strategies fall back to
// VerifyToolOutputSuccess (spec §7).
func Run(name StrategyName, args map[string]string) Result {
	switch name {
	case VerifyFileExists:
		return VerifyFileExistsStrategy(args["path"])
	case VerifyFileContentContains:
		return VerifyFileContentContainsStrategy(args["path"], args["substring"])
	case VerifyFileDoesNotExist:
		return VerifyFileDoesNotExistStrategy(args["path"])
	case VerifyToolOutputSuccess:
		return VerifyToolOutputSuccessStrategy(args["previous_output"])
	default:
		slog.Warn("audit: unknown strategy, falling back to verify_tool_output_success", "error", &ErrUnknownStrategy{Name: name})
		return VerifyToolOutputSuccessStrategy(args["previous_output"])
	}
}

// VerifyFileExistsStrategy checks that a file exists at path.
func VerifyFileExistsStrategy(path string) Result {
	if _, err := os.Stat(path); err == nil {
		return Result{Passed: true, Message: fmt.Sprintf("File '%s' exists.", path), Severity: SeverityInfo}
	}
	return Result{Passed: false, Message: fmt.Sprintf("File '%s' NOT found.", path), Severity: SeverityError}
}

// VerifyFileContentContainsStrategy checks that path's content contains substring.
func VerifyFileContentContainsStrategy(path, substring string) Result {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{Passed: false, Message: fmt.Sprintf("File '%s' does not exist.", path), Severity: SeverityError}
	}

	content := string(raw)
	if strings.Contains(content, substring) {
		return Result{Passed: true, Message: fmt.Sprintf("File '%s' contains expected text.", path), Severity: SeverityInfo}
	}

	preview := content
	if len(content) > 50 {
		preview = content[:50] + "..."
	}
	return Result{
		Passed:   false,
		Message:  fmt.Sprintf("File '%s' content mismatch. Found: '%s'", path, preview),
		Severity: SeverityError,
	}
}

// VerifyFileDoesNotExistStrategy checks that no file exists at path.
func VerifyFileDoesNotExistStrategy(path string) Result {
	if _, err := os.Stat(path); err != nil {
		return Result{Passed: true, Message: fmt.Sprintf("File '%s' correctly does not exist.", path), Severity: SeverityInfo}
	}
	return Result{Passed: false, Message: fmt.Sprintf("File '%s' exists but should not.", path), Severity: SeverityError}
}

// VerifyToolOutputSuccessStrategy checks previousOutput for failure markers.
func VerifyToolOutputSuccessStrategy(previousOutput string) Result {
	lower := strings.ToLower(previousOutput)
	if strings.Contains(lower, "error") || strings.Contains(lower, "exception") || strings.Contains(lower, "failed") {
		return Result{Passed: false, Message: fmt.Sprintf("Previous step reported error: %s", previousOutput), Severity: SeverityError}
	}
	return Result{Passed: true, Message: "Previous step executed successfully.", Severity: SeverityInfo}
}
