// Package planner implements the two-stage reasoning-then-structuring
// pipeline described in spec §4.4: a reasoning-class LLM produces a
// free-form plan, a parser-class LLM converts it to validated JSON.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/fygarcia/AgentOS/llm"
	"github.com/fygarcia/AgentOS/logger"
)

// tokenEncoding is cached process-wide: no local-HTTP model name in this
// domain resolves via tiktoken.EncodingForModel, so every counter falls
// back to cl100k_base, same as the teacher's own TokenCounter.
var (
	tokenEncoding     *tiktoken.Tiktoken
	tokenEncodingOnce sync.Once
)

func countTokens(text string) int {
	tokenEncodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			slog.Warn("planner: failed to load token encoding, falling back to char/4 estimate", "error", err)
			return
		}
		tokenEncoding = enc
	})
	if tokenEncoding == nil {
		return len(text) / 4
	}
	return len(tokenEncoding.Encode(text, nil, nil))
}

// Role is the closed set of plan-step roles (spec §3 PlanStep).
type Role string

const (
	RoleActor   Role = "Actor"
	RoleAuditor Role = "Auditor"
)

// PlanStep is one step of a validated Plan.
type PlanStep struct {
	Role            Role   `json:"role"`
	Instruction     string `json:"instruction"`
	Reasoning       string `json:"reasoning,omitempty"`
	ExpectedOutcome string `json:"expected_outcome,omitempty"`
}

// Plan is the validated output of the two-stage pipeline (spec §3).
type Plan struct {
	Objective  string     `json:"objective"`
	Steps      []PlanStep `json:"plan"`
	TotalSteps int        `json:"total_steps"`
}

// ErrPlanInvalid reports a Stage-2 response that failed schema
// validation (spec §7: "plan-invalid"). The caller does not retry
// automatically — the Planner node writes an empty plan instead.
type ErrPlanInvalid struct {
	Reason string
}

func (e *ErrPlanInvalid) Error() string {
	return fmt.Sprintf("planner: plan invalid: %s", e.Reason)
}

// TwoStagePlanner turns free-form intent into a validated Plan (spec
// §4.4).
type TwoStagePlanner struct {
	client    llm.Client
	outputDir string
}

// Option configures a TwoStagePlanner.
type Option func(*TwoStagePlanner)

// WithOutputDir enables developer-mode dumping of both stages' prompts
// and responses under a timestamped directory for post-mortem (spec
// §4.4 "Observability and persistence").
func WithOutputDir(dir string) Option {
	return func(p *TwoStagePlanner) { p.outputDir = dir }
}

// New constructs a TwoStagePlanner backed by client.
func New(client llm.Client, opts ...Option) *TwoStagePlanner {
	p := &TwoStagePlanner{client: client}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate runs both stages and returns a validated Plan.
func (p *TwoStagePlanner) Generate(ctx context.Context, reasoningModel, parserModel, systemPrompt, userPrompt string) (*Plan, error) {
	reasoningPrompt := fmt.Sprintf(
		"%s\n\nUser request: %s\n\n"+
			"Think through this request step-by-step and create a detailed execution plan. "+
			"For each step: specify who should do it (Actor performs actions, Auditor "+
			"verifies results), explain what needs to be done, why it's necessary, and "+
			"what success looks like.\n\nGenerate a comprehensive, well-reasoned plan:",
		systemPrompt, userPrompt,
	)

	log := logger.FromContext(ctx)

	log.Debug("planner: span", "stage", "reasoning", "model", reasoningModel, "prompt_tokens", countTokens(reasoningPrompt))
	stage1, err := p.client.Generate(ctx, reasoningModel, reasoningPrompt, false)
	if err != nil {
		log.Debug("planner: span", "stage", "reasoning", "model", reasoningModel, "error", err)
		return nil, fmt.Errorf("planner: stage 1 reasoning: %w", err)
	}
	log.Debug("planner: span", "stage", "reasoning", "model", reasoningModel, "response_tokens", countTokens(stage1))
	p.saveOutput("stage1_reasoning", reasoningModel, reasoningPrompt, stage1)

	structuringPrompt := fmt.Sprintf(
		"Convert the following reasoning plan into valid JSON.\n\n"+
			"REASONING PLAN:\n%s\n\n"+
			"REQUIRED JSON STRUCTURE:\n"+
			`{"objective": "brief description of the overall goal", `+
			`"plan": [{"role": "Actor or Auditor", "instruction": "what to do", `+
			`"reasoning": "why it's needed (optional)", "expected_outcome": "what success looks like (optional)"}], `+
			`"total_steps": number}`+
			"\n\nCRITICAL RULES:\n"+
			`- Use EXACTLY these field names: "objective", "plan", "role", "instruction", "reasoning", "expected_outcome", "total_steps"`+
			"\n"+`- "role" must be EITHER "Actor" OR "Auditor" - no other values`+
			"\n- Each step must have \"role\" and \"instruction\" at minimum\n\nGenerate the JSON now:",
		stage1,
	)

	log.Debug("planner: span", "stage", "structuring", "model", parserModel, "prompt_tokens", countTokens(structuringPrompt))
	stage2, err := p.client.Generate(ctx, parserModel, structuringPrompt, true)
	if err != nil {
		log.Debug("planner: span", "stage", "structuring", "model", parserModel, "error", err)
		return nil, fmt.Errorf("planner: stage 2 structuring: %w", err)
	}
	log.Debug("planner: span", "stage", "structuring", "model", parserModel, "response_tokens", countTokens(stage2))
	p.saveOutput("stage2_json", parserModel, structuringPrompt, stage2)

	plan, err := parseAndValidate(stage2)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func parseAndValidate(raw string) (*Plan, error) {
	var plan Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, &ErrPlanInvalid{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if strings.TrimSpace(plan.Objective) == "" {
		return nil, &ErrPlanInvalid{Reason: "objective is empty"}
	}

	for i, step := range plan.Steps {
		if step.Role != RoleActor && step.Role != RoleAuditor {
			return nil, &ErrPlanInvalid{Reason: fmt.Sprintf("step %d has invalid role %q", i, step.Role)}
		}
		if strings.TrimSpace(step.Instruction) == "" {
			return nil, &ErrPlanInvalid{Reason: fmt.Sprintf("step %d has empty instruction", i)}
		}
	}

	plan.TotalSteps = len(plan.Steps)
	return &plan, nil
}

func (p *TwoStagePlanner) saveOutput(stage, model, prompt, content string) {
	if p.outputDir == "" {
		return
	}

	dir := filepath.Join(p.outputDir, time.Now().UTC().Format("20060102_150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("planner: failed to create debug output dir", "dir", dir, "error", err)
		return
	}

	safeModel := strings.ReplaceAll(model, ":", "_")
	filename := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", stage, safeModel))

	var b strings.Builder
	fmt.Fprintf(&b, "Stage: %s\nModel: %s\n\nPROMPT:\n%s\n\nOUTPUT:\n%s\n", stage, model, prompt, content)

	if err := os.WriteFile(filename, []byte(b.String()), 0o644); err != nil {
		slog.Warn("planner: failed to write debug output", "path", filename, "error", err)
	}
}
