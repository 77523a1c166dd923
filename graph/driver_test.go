package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fygarcia/AgentOS/llm"
	"github.com/fygarcia/AgentOS/logger"
	"github.com/fygarcia/AgentOS/memory"
	"github.com/fygarcia/AgentOS/planner"
	"github.com/fygarcia/AgentOS/vector"
)

// fakeNode is a scripted Node for driver tests.
type fakeNode struct {
	name NodeName
	fn   func(ctx context.Context, state *State) (Update, error)
}

func (f *fakeNode) Name() NodeName { return f.name }
func (f *fakeNode) Run(ctx context.Context, state *State) (Update, error) {
	return f.fn(ctx, state)
}

func newTestMemory(t *testing.T) *memory.Manager {
	t.Helper()
	root := t.TempDir()
	vec, err := vector.NewChromemProvider(vector.ChromemConfig{})
	require.NoError(t, err)
	mock := llm.NewMockClient("[]")

	m, err := memory.New(memory.Config{AgentsRoot: root, AgentName: "graphtest", Vector: vec, Embedder: mock})
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestDriverRunsClassifierThenResponderForQuestion(t *testing.T) {
	mem := newTestMemory(t)

	classifier := &fakeNode{name: NodeClassifier, fn: func(ctx context.Context, state *State) (Update, error) {
		intent := IntentQuestion
		return Update{IntentType: &intent}, nil
	}}
	responder := &fakeNode{name: NodeResponder, fn: func(ctx context.Context, state *State) (Update, error) {
		resp := "Paris"
		return Update{FinalResponse: &resp}, nil
	}}

	d := NewDriver(mem, nil, classifier, responder)
	state := NewState("a", "What is the capital of France?", "", nil)

	require.NoError(t, d.Run(context.Background(), state))
	assert.Equal(t, IntentQuestion, state.IntentType)
	assert.Equal(t, "Paris", state.FinalResponse)
	assert.Empty(t, state.Plan)
}

func TestDriverRunsPlanThenActorAuditorUntilTerminal(t *testing.T) {
	mem := newTestMemory(t)

	classifier := &fakeNode{name: NodeClassifier, fn: func(ctx context.Context, state *State) (Update, error) {
		intent := IntentTask
		return Update{IntentType: &intent}, nil
	}}
	plan := []planner.PlanStep{
		{Role: planner.RoleActor, Instruction: "create file"},
		{Role: planner.RoleAuditor, Instruction: "verify file"},
	}
	plannerNode := &fakeNode{name: NodePlanner, fn: func(ctx context.Context, state *State) (Update, error) {
		zero := 0
		return Update{Plan: plan, PlanSet: true, CurrentStepIndex: &zero}, nil
	}}
	actor := &fakeNode{name: NodeActor, fn: func(ctx context.Context, state *State) (Update, error) {
		idx := state.CurrentStepIndex
		next := idx + 1
		return Update{ToolOutput: &ToolOutput{StepIndex: idx, Output: "ok"}, CurrentStepIndex: &next}, nil
	}}
	auditor := &fakeNode{name: NodeAuditor, fn: func(ctx context.Context, state *State) (Update, error) {
		idx := state.CurrentStepIndex
		next := idx + 1
		return Update{ToolOutput: &ToolOutput{StepIndex: idx, Output: "verified"}, CurrentStepIndex: &next}, nil
	}}

	d := NewDriver(mem, nil, classifier, plannerNode, actor, auditor)
	state := NewState("a", "create a file", "", nil)

	require.NoError(t, d.Run(context.Background(), state))
	assert.Equal(t, 2, state.CurrentStepIndex)
	assert.Equal(t, "ok", state.ToolOutputs["step_0"])
	assert.Equal(t, "verified", state.ToolOutputs["step_1"])
}

func TestDriverEmptyPlanTerminatesWithoutActorOrAuditor(t *testing.T) {
	mem := newTestMemory(t)

	classifier := &fakeNode{name: NodeClassifier, fn: func(ctx context.Context, state *State) (Update, error) {
		intent := IntentTask
		return Update{IntentType: &intent}, nil
	}}
	plannerNode := &fakeNode{name: NodePlanner, fn: func(ctx context.Context, state *State) (Update, error) {
		zero := 0
		return Update{Plan: []planner.PlanStep{}, PlanSet: true, CurrentStepIndex: &zero}, nil
	}}
	calledActor := false
	actor := &fakeNode{name: NodeActor, fn: func(ctx context.Context, state *State) (Update, error) {
		calledActor = true
		return Update{}, nil
	}}

	d := NewDriver(mem, nil, classifier, plannerNode, actor)
	state := NewState("a", "do nothing useful", "", nil)

	require.NoError(t, d.Run(context.Background(), state))
	assert.False(t, calledActor)
	assert.Equal(t, 0, state.CurrentStepIndex)
}

func TestDriverPropagatesRunScopedLoggerToNodes(t *testing.T) {
	mem := newTestMemory(t)

	var buf bytes.Buffer
	baseLogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := logger.WithContext(context.Background(), baseLogger)

	var sawRunID, sawAgent string
	classifier := &fakeNode{name: NodeClassifier, fn: func(ctx context.Context, state *State) (Update, error) {
		logger.FromContext(ctx).Info("inside node")
		intent := IntentChat
		return Update{IntentType: &intent}, nil
	}}
	responder := &fakeNode{name: NodeResponder, fn: func(ctx context.Context, state *State) (Update, error) {
		resp := "hi"
		return Update{FinalResponse: &resp}, nil
	}}

	d := NewDriver(mem, nil, classifier, responder)
	state := NewState("assistant", "hello", "", nil)

	require.NoError(t, d.Run(ctx, state))

	var spanNodes []string
	for _, line := range bytes.Split(buf.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		if rec["msg"] == "inside node" {
			sawRunID, _ = rec["run_id"].(string)
			sawAgent, _ = rec["agent"].(string)
		}
		if rec["msg"] == "graph: span" {
			node, _ := rec["node"].(string)
			spanNodes = append(spanNodes, node)
			assert.Equal(t, state.RunID, rec["run_id"])
		}
	}

	assert.Equal(t, state.RunID, sawRunID)
	assert.Equal(t, "assistant", sawAgent)
	// One span per executed node: Classifier, then Responder.
	assert.Equal(t, []string{string(NodeClassifier), string(NodeResponder)}, spanNodes)
}

type fakeSummarizer struct {
	summary string
	calls   int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, logContent string) (string, error) {
	f.calls++
	return f.summary, nil
}

func TestDriverStoresRunOutcomeAndCompactsWhenEligible(t *testing.T) {
	root := t.TempDir()
	vec, err := vector.NewChromemProvider(vector.ChromemConfig{})
	require.NoError(t, err)
	mock := llm.NewMockClient("[]")

	mem, err := memory.New(memory.Config{
		AgentsRoot: root, AgentName: "graphtest", Vector: vec, Embedder: mock,
		LogMaxEntries: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { mem.Close() })

	require.NoError(t, mem.AppendLog(memory.EntrySystem, "priming entry one", nil))
	require.NoError(t, mem.AppendLog(memory.EntrySystem, "priming entry two", nil))

	classifier := &fakeNode{name: NodeClassifier, fn: func(ctx context.Context, state *State) (Update, error) {
		intent := IntentChat
		return Update{IntentType: &intent}, nil
	}}
	responder := &fakeNode{name: NodeResponder, fn: func(ctx context.Context, state *State) (Update, error) {
		resp := "hi"
		return Update{FinalResponse: &resp}, nil
	}}

	summarizer := &fakeSummarizer{summary: "did some chatting"}
	d := NewDriver(mem, summarizer, classifier, responder)
	state := NewState("assistant", "hello", "", nil)

	require.NoError(t, d.Run(context.Background(), state))

	assert.Equal(t, 1, summarizer.calls)

	logContent, err := mem.ReadLog(0)
	require.NoError(t, err)
	assert.Contains(t, logContent, "did some chatting")
	assert.NotContains(t, logContent, "priming entry one")

	// The mock embedder returns the same vector for every text, so the run
	// outcome and the archived log tie on distance; fetch both.
	recalled := mem.RecallMemory(context.Background(), "responded to user with", 2)
	require.Len(t, recalled, 2)
	contents := []string{recalled[0].Content, recalled[1].Content}
	assert.Contains(t, contents, "responded to user with: hi")
}

func TestDriverNodeErrorLogsAndTerminatesWithoutFinalResponse(t *testing.T) {
	mem := newTestMemory(t)

	classifier := &fakeNode{name: NodeClassifier, fn: func(ctx context.Context, state *State) (Update, error) {
		return Update{}, errors.New("boom")
	}}

	d := NewDriver(mem, nil, classifier)
	state := NewState("a", "trigger an error", "", nil)

	err := d.Run(context.Background(), state)
	require.Error(t, err)
	assert.Empty(t, state.FinalResponse)

	logContent, readErr := mem.ReadLog(0)
	require.NoError(t, readErr)
	assert.Contains(t, logContent, "[ERROR]")
	assert.Contains(t, logContent, "boom")
}
