package agent

import (
	"context"

	"github.com/fygarcia/AgentOS/graph"
	"github.com/fygarcia/AgentOS/planner"
	"github.com/fygarcia/AgentOS/skill"
)

// registryProvider is implemented by *Agent. Nodes reach back to the
// owning Agent through State.AgentInstance rather than the Agent
// depending on the graph/agent packages (spec §9: "nodes receive a
// non-owning handle to it through the state, never the reverse").
type registryProvider interface {
	Registry() *skill.Registry
}

// PlannerNode turns the TASK intent into a validated Plan via the
// two-stage pipeline (spec §4.5).
type PlannerNode struct {
	twoStage       *planner.TwoStagePlanner
	reasoningModel string
	parserModel    string
	fallback       *skill.Registry
}

// NewPlannerNode constructs a PlannerNode. fallback is the transient
// registry used when state.AgentInstance does not resolve one.
func NewPlannerNode(twoStage *planner.TwoStagePlanner, reasoningModel, parserModel string, fallback *skill.Registry) *PlannerNode {
	return &PlannerNode{twoStage: twoStage, reasoningModel: reasoningModel, parserModel: parserModel, fallback: fallback}
}

func (n *PlannerNode) Name() graph.NodeName { return graph.NodePlanner }

func (n *PlannerNode) Run(ctx context.Context, state *graph.State) (graph.Update, error) {
	registry := n.fallback
	if provider, ok := state.AgentInstance.(registryProvider); ok && provider.Registry() != nil {
		registry = provider.Registry()
	}

	systemPrompt := state.MemoryContext
	if registry != nil {
		systemPrompt += "\n\n" + registry.PromptContext(state.AgentName)
	}

	userInput := lastUserMessage(state)

	plan, err := n.twoStage.Generate(ctx, n.reasoningModel, n.parserModel, systemPrompt, userInput)
	if err != nil {
		// plan-invalid (or an LLM failure in either stage): write an
		// empty plan so the driver terminates cleanly (spec §7).
		emptyPlan := []planner.PlanStep{}
		emptyObjective := ""
		zero := 0
		return graph.Update{Plan: emptyPlan, PlanSet: true, Objective: &emptyObjective, CurrentStepIndex: &zero}, nil
	}

	objective := plan.Objective
	zero := 0
	return graph.Update{Plan: plan.Steps, PlanSet: true, Objective: &objective, CurrentStepIndex: &zero}, nil
}
