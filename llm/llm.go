// Package llm provides the LLMClient abstraction: uniform text-completion
// and embedding calls across backends (spec §4.1).
package llm

import (
	"context"
	"fmt"
)

// ErrorKind taxonomizes LLMClient failures (spec §7).
type ErrorKind string

const (
	ErrTimeout   ErrorKind = "timeout"
	ErrTransport ErrorKind = "transport"
	ErrProtocol  ErrorKind = "protocol"
	ErrModel     ErrorKind = "model"
)

// Error is the typed error every LLMClient implementation raises.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("llm: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Client is the uniform LLM capability set (spec §4.1).
type Client interface {
	// Generate calls model with prompt. When jsonMode is true, the backend
	// is asked to constrain its output to valid JSON.
	Generate(ctx context.Context, model, prompt string, jsonMode bool) (string, error)

	// Embed returns a text embedding of dimension D, per the model's
	// configured embedding size.
	Embed(ctx context.Context, model, text string) ([]float32, error)
}
