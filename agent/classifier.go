// Package agent implements the five graph nodes (Classifier, Planner,
// Actor, Auditor, Responder) and the Agent type that owns a registry
// and a memory manager (spec §4.5, §3 Agent). Each node is grounded on
// the corresponding node in the original reference implementation,
// adapted to the typed ExecutionState and validated Plan used here.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fygarcia/AgentOS/graph"
	"github.com/fygarcia/AgentOS/llm"
	"github.com/fygarcia/AgentOS/logger"
)

// ClassifierNode labels the user's intent as TASK, QUESTION, or CHAT
// using the parser-class LLM (spec §4.5).
type ClassifierNode struct {
	client llm.Client
	model  string
}

func NewClassifierNode(client llm.Client, model string) *ClassifierNode {
	return &ClassifierNode{client: client, model: model}
}

func (n *ClassifierNode) Name() graph.NodeName { return graph.NodeClassifier }

type classifierResponse struct {
	IntentType string `json:"intent_type"`
	Reasoning  string `json:"reasoning"`
}

func (n *ClassifierNode) Run(ctx context.Context, state *graph.State) (graph.Update, error) {
	userInput := lastUserMessage(state)

	prompt := fmt.Sprintf(
		`Classify the following user input into exactly one category: TASK, QUESTION, or CHAT.

- TASK: the user wants something done (create, modify, run, build, fix...).
- QUESTION: the user wants a factual answer, with no action required.
- CHAT: greetings, small talk, or anything else.

User input: %q

Return a JSON object: {"intent_type": "TASK|QUESTION|CHAT", "reasoning": "brief reason"}`,
		userInput,
	)

	log := logger.FromContext(ctx).With("node", n.Name())
	intent := graph.IntentTask // fail-open toward planning (spec §4.5)

	raw, err := n.client.Generate(ctx, n.model, prompt, true)
	if err != nil {
		log.Warn("classifier: llm call failed, defaulting to TASK", "error", err)
	} else {
		var resp classifierResponse
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			log.Warn("classifier: unparseable response, defaulting to TASK", "error", err, "raw", raw)
		} else {
			switch strings.ToUpper(strings.TrimSpace(resp.IntentType)) {
			case string(graph.IntentTask):
				intent = graph.IntentTask
			case string(graph.IntentQuestion):
				intent = graph.IntentQuestion
			case string(graph.IntentChat):
				intent = graph.IntentChat
			default:
				log.Warn("classifier: unrecognized intent_type, defaulting to TASK", "intent_type", resp.IntentType)
			}
		}
	}

	return graph.Update{IntentType: &intent}, nil
}

func lastUserMessage(state *graph.State) string {
	for i := len(state.Messages) - 1; i >= 0; i-- {
		if state.Messages[i].Role == "user" {
			return state.Messages[i].Content
		}
	}
	return ""
}
