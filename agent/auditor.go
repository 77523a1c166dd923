package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fygarcia/AgentOS/audit"
	"github.com/fygarcia/AgentOS/graph"
	"github.com/fygarcia/AgentOS/llm"
	"github.com/fygarcia/AgentOS/logger"
)

// AuditorNode verifies the previous step's output by asking the
// parser-class LLM to choose a strategy from the closed set, then
// dispatching through the hardcoded table in package audit (spec §4.5).
type AuditorNode struct {
	client llm.Client
	model  string
}

func NewAuditorNode(client llm.Client, model string) *AuditorNode {
	return &AuditorNode{client: client, model: model}
}

func (n *AuditorNode) Name() graph.NodeName { return graph.NodeAuditor }

type strategySelection struct {
	Strategy string            `json:"strategy"`
	Args     map[string]string `json:"args"`
}

func (n *AuditorNode) Run(ctx context.Context, state *graph.State) (graph.Update, error) {
	idx := state.CurrentStepIndex
	if idx >= len(state.Plan) {
		return graph.Update{}, nil
	}
	step := state.Plan[idx]

	prevOutput := state.ToolOutputs["step_"+strconv.Itoa(idx-1)]

	prompt := fmt.Sprintf(
		`You are the Auditor. Verify the success of a task.

Instruction: %q
Expected outcome: %q
Previous step output: %q

Available strategies:
["verify_file_exists(path)", "verify_file_content_contains(path, substring)", "verify_file_does_not_exist(path)", "verify_tool_output_success()"]

Select the best strategy and return a JSON object with "strategy" and "args".
Example: {"strategy": "verify_file_exists", "args": {"path": "hello.txt"}}`,
		step.Instruction, step.ExpectedOutcome, prevOutput,
	)

	log := logger.FromContext(ctx).With("node", n.Name())
	strategyName := audit.VerifyToolOutputSuccess
	args := map[string]string{"previous_output": prevOutput}

	raw, err := n.client.Generate(ctx, n.model, prompt, true)
	if err != nil {
		log.Warn("auditor: strategy-selection llm call failed, falling back to verify_tool_output_success", "error", err)
	} else {
		var sel strategySelection
		if err := json.Unmarshal([]byte(raw), &sel); err != nil {
			log.Warn("auditor: unparseable strategy selection, falling back", "error", err, "raw", raw)
		} else if sel.Strategy != "" {
			strategyName = audit.StrategyName(sel.Strategy)
			if sel.Args != nil {
				args = sel.Args
				if _, ok := args["previous_output"]; !ok {
					args["previous_output"] = prevOutput
				}
			}
		}
	}

	result := audit.Run(strategyName, args)
	log.Info("auditor: verification result", "passed", result.Passed, "severity", result.Severity, "message", result.Message)

	next := idx + 1
	return graph.Update{
		ToolOutput:       &graph.ToolOutput{StepIndex: idx, Output: result.Message},
		CurrentStepIndex: &next,
	}, nil
}
