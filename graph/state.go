// Package graph implements the directed state machine over Classifier,
// Planner, Actor, Auditor, and Responder nodes described in spec §4.6: a
// single evolving ExecutionState threaded through a small, static
// topology of pure node functions.
package graph

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/fygarcia/AgentOS/planner"
)

// IntentType is the closed set of Classifier outputs (spec §3).
type IntentType string

const (
	IntentTask     IntentType = "TASK"
	IntentQuestion IntentType = "QUESTION"
	IntentChat     IntentType = "CHAT"
)

// Message is one entry of the append-only conversation history.
type Message struct {
	Role    string
	Content string
}

// State is the single evolving record threaded through the graph (spec
// §3 ExecutionState). AgentInstance is an opaque, non-owning handle back
// to the owning Agent so nodes can reach the skill registry and memory
// manager without the Agent depending on the graph package.
type State struct {
	RunID            string
	Messages         []Message
	IntentType       IntentType
	Objective        string
	Plan             []planner.PlanStep
	CurrentStepIndex int
	ToolOutputs      map[string]string
	FinalResponse    string
	MemoryContext    string
	AgentName        string
	AutoLogEnabled   bool
	AgentInstance    any
}

// NewState constructs a fresh ExecutionState for one run(intent), tagged
// with a unique RunID for trace correlation across the node span logs
// described in spec §4.4 "Observability and persistence".
func NewState(agentName, intent, memoryContext string, agentInstance any) *State {
	return &State{
		RunID:          uuid.NewString(),
		Messages:       []Message{{Role: "user", Content: intent}},
		ToolOutputs:    make(map[string]string),
		MemoryContext:  memoryContext,
		AgentName:      agentName,
		AutoLogEnabled: true,
		AgentInstance:  agentInstance,
	}
}

// Update is a partial-state-update returned by a node; the driver merges
// non-zero fields into the running State (spec §4.5: "a pure function
// state → partial-state-update").
type Update struct {
	IntentType       *IntentType
	Objective        *string
	Plan             []planner.PlanStep
	PlanSet          bool
	CurrentStepIndex *int
	ToolOutput       *ToolOutput
	FinalResponse    *string
	AppendMessage    *Message
}

// ToolOutput is one entry written into State.ToolOutputs.
type ToolOutput struct {
	StepIndex int
	Output    string
}

// Apply merges u into s in place.
func (u Update) Apply(s *State) {
	if u.IntentType != nil {
		s.IntentType = *u.IntentType
	}
	if u.Objective != nil {
		s.Objective = *u.Objective
	}
	if u.PlanSet {
		s.Plan = u.Plan
	}
	if u.CurrentStepIndex != nil {
		s.CurrentStepIndex = *u.CurrentStepIndex
	}
	if u.ToolOutput != nil {
		s.ToolOutputs[stepKey(u.ToolOutput.StepIndex)] = u.ToolOutput.Output
	}
	if u.FinalResponse != nil {
		s.FinalResponse = *u.FinalResponse
	}
	if u.AppendMessage != nil {
		s.Messages = append(s.Messages, *u.AppendMessage)
	}
}

func stepKey(i int) string {
	return "step_" + strconv.Itoa(i)
}
