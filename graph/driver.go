package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fygarcia/AgentOS/logger"
	"github.com/fygarcia/AgentOS/memory"
)

// Driver executes the static topology over a single State until a
// terminal node is reached (spec §4.6). Exactly one Node runs per tick;
// the driver never jumps the step cursor by more than one, since that
// invariant is upheld by the Nodes themselves, not the driver.
type Driver struct {
	nodes      map[NodeName]Node
	memory     *memory.Manager
	summarizer memory.Summarizer
}

// NewDriver constructs a Driver over the given Nodes, keyed by their own
// Name(). mem is used to finalize state (spec §7: "the driver always
// finalizes memory before returning"). summarizer may be nil, in which
// case a run that becomes compaction-eligible is logged and left
// uncompacted rather than summarized.
func NewDriver(mem *memory.Manager, summarizer memory.Summarizer, nodes ...Node) *Driver {
	d := &Driver{nodes: make(map[NodeName]Node), memory: mem, summarizer: summarizer}
	for _, n := range nodes {
		d.nodes[n.Name()] = n
	}
	return d
}

// Run drives state from the Classifier entry point to a terminal node.
// Every node sees a context carrying a logger pre-attached with this
// run's run_id and agent name (spec's ambient-logging contract), fetched
// via logger.FromContext instead of the package-level slog default.
func (d *Driver) Run(ctx context.Context, state *State) error {
	runLog := logger.FromContext(ctx).With("run_id", state.RunID, "agent", state.AgentName)
	ctx = logger.WithContext(ctx, runLog)

	current := NodeClassifier

	for current != NodeTerminal {
		node, ok := d.nodes[current]
		if !ok {
			return fmt.Errorf("graph: no node registered for %q", current)
		}

		logger.FromContext(ctx).Debug("graph: span", "node", current)
		update, err := node.Run(ctx, state)
		if err != nil {
			d.finalizeOnError(ctx, state.RunID, current, err)
			return fmt.Errorf("graph: run %s: node %q failed: %w", state.RunID, current, err)
		}
		update.Apply(state)

		current = d.route(current, state)
	}

	d.finalizeOnSuccess(ctx, state)
	return nil
}

// route determines the next node after current has run, per the static
// topology in spec §4.6.
func (d *Driver) route(current NodeName, state *State) NodeName {
	switch current {
	case NodeClassifier:
		return RouteIntent(state.IntentType)
	case NodeResponder:
		return NodeTerminal
	case NodePlanner, NodeActor, NodeAuditor:
		return RouteStep(state.CurrentStepIndex, state.Plan)
	default:
		return NodeTerminal
	}
}

func (d *Driver) finalizeOnError(ctx context.Context, runID string, failedNode NodeName, err error) {
	if d.memory == nil {
		return
	}
	if logErr := d.memory.AppendLog(memory.EntryError, fmt.Sprintf("run %s: node %q failed: %v", runID, failedNode, err), nil); logErr != nil {
		logger.FromContext(ctx).Warn("graph: failed to log node error", "error", logErr)
	}
	if err := d.memory.UpdateNow("Error: recovery needed", nil); err != nil {
		logger.FromContext(ctx).Warn("graph: failed to update NOW.md after error", "error", err)
	}
}

func (d *Driver) finalizeOnSuccess(ctx context.Context, state *State) {
	if d.memory == nil {
		return
	}
	log := logger.FromContext(ctx)

	status := "Idle"
	outcome := fmt.Sprintf("run %s ended idle with no plan or response", state.RunID)
	if state.FinalResponse != "" {
		status = "Completed: responded to user"
		outcome = "responded to user with: " + state.FinalResponse
	} else if len(state.Plan) > 0 {
		status = fmt.Sprintf("Completed: %d/%d plan steps executed", state.CurrentStepIndex, len(state.Plan))
		outcome = fmt.Sprintf("executed %d/%d plan steps for objective %q", state.CurrentStepIndex, len(state.Plan), state.Objective)
	}
	if err := d.memory.UpdateNow(status, nil); err != nil {
		log.Warn("graph: failed to update NOW.md on completion", "error", err)
	}

	if err := d.memory.StoreMemory(ctx, outcome, map[string]any{"run_id": state.RunID}); err != nil {
		log.Warn("graph: failed to store run outcome in cold memory", "error", err)
	}

	d.maybeCompact(ctx, log)
}

// maybeCompact runs the compaction trigger check the memory core exposes
// but never calls on its own (spec §4.2 Open Question #3: the Manager
// owns triggering, an injected Summarizer owns generating). Without a
// summarizer wired in, an eligible log is left uncompacted rather than
// archived with no summary.
func (d *Driver) maybeCompact(ctx context.Context, log *slog.Logger) {
	eligible, err := d.memory.CompactionEligible()
	if err != nil {
		log.Warn("graph: failed to check compaction eligibility", "error", err)
		return
	}
	if !eligible {
		return
	}
	if d.summarizer == nil {
		log.Warn("graph: log is compaction-eligible but no summarizer is configured")
		return
	}

	logContent, err := d.memory.ReadLog(0)
	if err != nil {
		log.Warn("graph: failed to read log for compaction", "error", err)
		return
	}
	summary, err := d.summarizer.Summarize(ctx, logContent)
	if err != nil {
		log.Warn("graph: failed to summarize log for compaction", "error", err)
		return
	}
	if err := d.memory.CompactLog(ctx, summary); err != nil {
		log.Warn("graph: failed to compact log", "error", err)
	}
}
