package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/fygarcia/AgentOS/config"
	"github.com/fygarcia/AgentOS/graph"
	"github.com/fygarcia/AgentOS/llm"
	"github.com/fygarcia/AgentOS/memory"
	"github.com/fygarcia/AgentOS/planner"
	"github.com/fygarcia/AgentOS/skill"
	"github.com/fygarcia/AgentOS/vector"
)

// Agent owns one MemoryManager and one SkillRegistry exclusively (spec
// §3 "Ownership"); it is the entry point for run(intent).
type Agent struct {
	name        string
	description string
	cfg         *config.Config

	registry *skill.Registry
	memory   *memory.Manager
	driver   *graph.Driver

	initialized bool
}

// New constructs an Agent in the uninitialized state; call Initialize
// before the first Run (spec §3: "constructed → initialize() → run(intent)...").
func New(name, description string, cfg *config.Config) *Agent {
	return &Agent{name: strings.ToLower(name), description: description, cfg: cfg}
}

// GetName returns the agent's name.
func (a *Agent) GetName() string { return a.name }

// GetDescription returns the agent's description.
func (a *Agent) GetDescription() string { return a.description }

// Registry returns the agent's skill registry, satisfying the
// registryProvider interface nodes use to reach back through
// State.AgentInstance (spec §9).
func (a *Agent) Registry() *skill.Registry { return a.registry }

// Memory returns the agent's memory manager.
func (a *Agent) Memory() *memory.Manager { return a.memory }

// Initialize loads skills and memory, then wires the graph driver (spec
// §3 Agent lifecycle).
func (a *Agent) Initialize(ctx context.Context, executors *skill.Executors) error {
	if a.initialized {
		return nil
	}

	client, err := llm.New(a.cfg.LLM)
	if err != nil {
		return fmt.Errorf("agent: build llm client: %w", err)
	}

	vec, err := vector.New(vector.FactoryConfig{
		Backend:      vector.Backend(a.cfg.Memory.VectorBackend),
		PersistPath:  fmt.Sprintf("%s/%s/memory/vectors", a.cfg.Memory.AgentsRoot, a.name),
		QdrantHost:   a.cfg.Memory.QdrantHost,
		QdrantPort:   a.cfg.Memory.QdrantPort,
	})
	if err != nil {
		return fmt.Errorf("agent: build vector provider: %w", err)
	}

	mem, err := memory.New(memory.Config{
		AgentsRoot:   a.cfg.Memory.AgentsRoot,
		AgentName:    a.name,
		EmbeddingDim: a.cfg.Memory.EmbeddingDim,
		LogMaxSizeKB: a.cfg.Memory.LogMaxSizeKB,
		LogMaxEntries: a.cfg.Memory.LogMaxEntries,
		SQLDriver:    a.cfg.Memory.SQLDriver,
		Vector:       vec,
		Embedder:     client,
		EmbedModel:   a.cfg.LLM.EmbeddingModel,
	})
	if err != nil {
		return fmt.Errorf("agent: build memory manager: %w", err)
	}

	registry := skill.NewRegistry(a.name, executors)
	if err := registry.Initialize(a.cfg.Skill.CoreSkillsRoot, a.cfg.Memory.AgentsRoot); err != nil {
		return fmt.Errorf("agent: initialize skill registry: %w", err)
	}

	twoStage := planner.New(client)
	summarizer := memory.NewLLMSummarizer(client, a.cfg.LLM.ReasoningModel)

	driver := graph.NewDriver(mem, summarizer,
		NewClassifierNode(client, a.cfg.LLM.ParserModel),
		NewPlannerNode(twoStage, a.cfg.LLM.ReasoningModel, a.cfg.LLM.ParserModel, registry),
		NewActorNode(client, a.cfg.LLM.ToolModel, registry, a.cfg.UnsafeCodeExecution),
		NewAuditorNode(client, a.cfg.LLM.ParserModel),
		NewResponderNode(client, a.cfg.LLM.ReasoningModel),
	)

	a.registry = registry
	a.memory = mem
	a.driver = driver
	a.initialized = true
	return nil
}

// RunResult is what a caller of Run receives back (spec §7: "For TASK,
// the caller receives the full state... callers decide how to render it").
type RunResult struct {
	IntentType    graph.IntentType
	Plan          []planner.PlanStep
	ToolOutputs   map[string]string
	FinalResponse string
}

// Run executes one full graph traversal for intent (spec §3 Agent.run).
func (a *Agent) Run(ctx context.Context, intent string) (*RunResult, error) {
	if !a.initialized {
		return nil, fmt.Errorf("agent: %q not initialized", a.name)
	}

	memoryContext, err := a.memory.FormatContextForPrompt()
	if err != nil {
		return nil, fmt.Errorf("agent: load memory context: %w", err)
	}

	state := graph.NewState(a.name, intent, memoryContext, a)

	if err := a.driver.Run(ctx, state); err != nil {
		return nil, err
	}

	return &RunResult{
		IntentType:    state.IntentType,
		Plan:          state.Plan,
		ToolOutputs:   state.ToolOutputs,
		FinalResponse: state.FinalResponse,
	}, nil
}
