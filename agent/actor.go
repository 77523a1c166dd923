package agent

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/fygarcia/AgentOS/graph"
	"github.com/fygarcia/AgentOS/llm"
	"github.com/fygarcia/AgentOS/logger"
	"github.com/fygarcia/AgentOS/skill"
)

// skillInvocationPattern recognizes "use|execute|run [skill] <name>" cues
// inside a plan step's instruction text (spec §4.5; grounded verbatim on
// the original Actor node's regex).
var skillInvocationPattern = regexp.MustCompile(`(?i)(?:use|execute|run)\s+(?:skill\s+)?["']?(\w[\w-]+)["']?`)

// ActorNode executes the step at current_step_index, preferring a
// registered skill over the unsafe code-execution fallback (spec §4.5).
type ActorNode struct {
	client          llm.Client
	toolModel       string
	fallback        *skill.Registry
	unsafeCodeExec  bool
	codeExecTimeout time.Duration
}

// NewActorNode constructs an ActorNode. unsafeCodeExec gates the
// free-form code-execution fallback; it must be false in any production
// deployment (spec §1 Non-goals).
func NewActorNode(client llm.Client, toolModel string, fallback *skill.Registry, unsafeCodeExec bool) *ActorNode {
	return &ActorNode{
		client:          client,
		toolModel:       toolModel,
		fallback:        fallback,
		unsafeCodeExec:  unsafeCodeExec,
		codeExecTimeout: 30 * time.Second,
	}
}

func (n *ActorNode) Name() graph.NodeName { return graph.NodeActor }

func (n *ActorNode) Run(ctx context.Context, state *graph.State) (graph.Update, error) {
	idx := state.CurrentStepIndex
	if idx >= len(state.Plan) {
		return graph.Update{}, nil
	}
	step := state.Plan[idx]

	registry := n.fallback
	if provider, ok := state.AgentInstance.(registryProvider); ok && provider.Registry() != nil {
		registry = provider.Registry()
	}

	log := logger.FromContext(ctx).With("node", n.Name())

	var output string
	if skillName, ok := matchSkillInvocation(step.Instruction, registry); ok {
		// Parameter extraction from free-form instruction text is a
		// deliberate limitation here — the registry is invoked with an
		// empty parameter set (spec §9).
		result, err := registry.Execute(ctx, skillName, map[string]any{})
		if err != nil {
			log.Warn("actor: skill execution failed", "skill", skillName, "error", err)
			output = fmt.Sprintf("Error: %v", err)
		} else {
			output = fmt.Sprintf("%v", result)
		}
	} else if n.unsafeCodeExec {
		log.Warn("actor: no skill matched, falling back to unsafe code execution", "instruction", step.Instruction)
		output = n.runGeneratedCode(ctx, step.Instruction)
	} else {
		output = "Error: no matching skill found for instruction, and unsafe code execution is disabled"
	}

	next := idx + 1
	return graph.Update{
		ToolOutput:       &graph.ToolOutput{StepIndex: idx, Output: output},
		CurrentStepIndex: &next,
	}, nil
}

func matchSkillInvocation(instruction string, registry *skill.Registry) (string, bool) {
	if registry == nil {
		return "", false
	}
	m := skillInvocationPattern.FindStringSubmatch(instruction)
	if m == nil {
		return "", false
	}
	name := m[1]
	if !registry.Has(name) {
		return "", false
	}
	return name, true
}

// runGeneratedCode asks the tool-class LLM for a shell snippet and runs
// it in a fresh temporary directory with a trimmed environment — the
// closest analog Go has to the original's "evaluate in a constrained
// namespace" (spec §4.5). This path only runs when the caller has set
// the unsafe code-execution flag (spec §1 Non-goals).
func (n *ActorNode) runGeneratedCode(ctx context.Context, instruction string) string {
	prompt := fmt.Sprintf(
		"Write a single POSIX shell snippet that accomplishes this instruction. "+
			"Output ONLY the code, no explanation, no markdown fences.\n\nInstruction: %s",
		instruction,
	)

	raw, err := n.client.Generate(ctx, n.toolModel, prompt, false)
	if err != nil {
		return fmt.Sprintf("Error: code generation failed: %v", err)
	}

	code := stripMarkdownFences(raw)

	workDir, err := os.MkdirTemp("", "actor-codeexec-*")
	if err != nil {
		return fmt.Sprintf("Error: could not create sandbox dir: %v", err)
	}
	defer os.RemoveAll(workDir)

	runCtx, cancel := context.WithTimeout(ctx, n.codeExecTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", code)
	cmd.Dir = workDir
	cmd.Env = []string{"PATH=/usr/bin:/bin"}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Sprintf("Error: %v: %s", err, stderr.String())
	}
	return stdout.String()
}

func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
