package graph

import (
	"context"

	"github.com/fygarcia/AgentOS/planner"
)

// NodeName identifies a node in the static topology (spec §4.6).
type NodeName string

const (
	NodeClassifier NodeName = "classifier"
	NodePlanner    NodeName = "planner"
	NodeActor      NodeName = "actor"
	NodeAuditor    NodeName = "auditor"
	NodeResponder  NodeName = "responder"
	NodeTerminal   NodeName = ""
)

// Node is a pure function state → partial-state-update (spec §4.5). The
// driver merges the returned Update into the running State after each
// call; a Node never mutates State directly.
type Node interface {
	Name() NodeName
	Run(ctx context.Context, state *State) (Update, error)
}

// RouteIntent is the conditional edge after Classifier: TASK routes to
// the Planner, anything else routes to the Responder (spec §4.6).
func RouteIntent(intent IntentType) NodeName {
	if intent == IntentTask {
		return NodePlanner
	}
	return NodeResponder
}

// RouteStep is the step router: a pure function of (current_step_index,
// plan) that decides which node executes next among Actor, Auditor, or
// terminal (spec §4.6). A role outside the literal {Actor, Auditor} set
// is treated as terminal — defensive, since a validated Plan can never
// contain one.
func RouteStep(currentStepIndex int, plan []planner.PlanStep) NodeName {
	if currentStepIndex >= len(plan) {
		return NodeTerminal
	}
	switch plan[currentStepIndex].Role {
	case planner.RoleActor:
		return NodeActor
	case planner.RoleAuditor:
		return NodeAuditor
	default:
		return NodeTerminal
	}
}
