package agent

import (
	"context"
	"fmt"

	"github.com/fygarcia/AgentOS/graph"
	"github.com/fygarcia/AgentOS/llm"
	"github.com/fygarcia/AgentOS/logger"
)

// ResponderNode answers QUESTION and CHAT intents directly with the
// reasoning-class LLM (spec §4.5). It is not fatal on LLM failure: it
// sets final_response to an apology instead of propagating the error.
type ResponderNode struct {
	client llm.Client
	model  string
}

func NewResponderNode(client llm.Client, model string) *ResponderNode {
	return &ResponderNode{client: client, model: model}
}

func (n *ResponderNode) Name() graph.NodeName { return graph.NodeResponder }

func (n *ResponderNode) Run(ctx context.Context, state *graph.State) (graph.Update, error) {
	userInput := lastUserMessage(state)

	var systemPrompt string
	switch state.IntentType {
	case graph.IntentChat:
		systemPrompt = "You are a friendly, conversational assistant. Keep replies brief and warm."
	default: // QUESTION
		systemPrompt = "You are a precise assistant. Answer the question directly and concisely, with no preamble."
	}

	if state.MemoryContext != "" {
		systemPrompt += "\n\n" + state.MemoryContext
	}

	prompt := fmt.Sprintf("%s\n\nUser: %s", systemPrompt, userInput)

	response, err := n.client.Generate(ctx, n.model, prompt, false)
	if err != nil {
		logger.FromContext(ctx).With("node", n.Name()).Warn("responder: llm call failed, apologizing", "error", err)
		apology := "I'm sorry, I wasn't able to come up with a response just now — could you try again?"
		return graph.Update{FinalResponse: &apology}, nil
	}

	return graph.Update{FinalResponse: &response}, nil
}
