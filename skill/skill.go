// Package skill implements the layered (core + per-agent) skill catalog
// described in spec §4.3: discovery, manifest parsing, override semantics,
// and uniform invocation.
package skill

import (
	"context"
	"fmt"
)

// ParamSpec describes one named parameter of a Skill (spec §3).
type ParamSpec struct {
	Type        string `yaml:"type" json:"type"`
	Required    bool   `yaml:"required" json:"required"`
	Default     any    `yaml:"default,omitempty" json:"default,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Example is one ordered input/output sample attached to a Skill.
type Example struct {
	Input       map[string]any `yaml:"input,omitempty" json:"input,omitempty"`
	Output      any            `yaml:"output,omitempty" json:"output,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
}

// ExecuteFunc is the callable hook a Skill invokes. Skills loaded purely
// from a manifest with no matching registered executor are
// documentation-only (spec §4.3's "no-runtime" case).
type ExecuteFunc func(ctx context.Context, params map[string]any) (any, error)

// Skill is the uniform, registry-resident description of an invocable
// operation (spec §3).
type Skill struct {
	Name        string               `yaml:"name" json:"name"`
	Description string               `yaml:"description" json:"description"`
	Category    string               `yaml:"category,omitempty" json:"category,omitempty"`
	Version     string               `yaml:"version,omitempty" json:"version,omitempty"`
	Parameters  map[string]ParamSpec `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Returns     map[string]any       `yaml:"returns,omitempty" json:"returns,omitempty"`
	Examples    []Example            `yaml:"examples,omitempty" json:"examples,omitempty"`
	Tags        []string             `yaml:"tags,omitempty" json:"tags,omitempty"`

	Agent             string `yaml:"-" json:"agent"`
	IsCore            bool   `yaml:"-" json:"is_core"`
	OverridesCore     bool   `yaml:"-" json:"overrides_core"`
	PromptInstructions string `yaml:"-" json:"prompt_instructions,omitempty"`

	execute ExecuteFunc
}

// ErrMissingParameter is returned when a required parameter is absent.
type ErrMissingParameter struct {
	Skill     string
	Parameter string
}

func (e *ErrMissingParameter) Error() string {
	return fmt.Sprintf("skill: missing required parameter %q for skill %q", e.Parameter, e.Skill)
}

// ErrNoRuntime is returned when a documentation-only skill is invoked.
type ErrNoRuntime struct{ Skill string }

func (e *ErrNoRuntime) Error() string {
	return fmt.Sprintf("skill: %q has no runtime hook (documentation-only)", e.Skill)
}

// ErrExecutionFailed wraps a panic/error raised by a skill's hook.
type ErrExecutionFailed struct {
	Skill string
	Err   error
}

func (e *ErrExecutionFailed) Error() string {
	return fmt.Sprintf("skill: %q execution failed: %v", e.Skill, e.Err)
}

func (e *ErrExecutionFailed) Unwrap() error { return e.Err }

// Execute validates required parameters then invokes the skill's hook.
func (s *Skill) Execute(ctx context.Context, params map[string]any) (out any, err error) {
	for name, spec := range s.Parameters {
		if spec.Required {
			if _, ok := params[name]; !ok {
				return nil, &ErrMissingParameter{Skill: s.Name, Parameter: name}
			}
		}
	}

	if s.execute == nil {
		return nil, &ErrNoRuntime{Skill: s.Name}
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &ErrExecutionFailed{Skill: s.Name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	out, err = s.execute(ctx, params)
	if err != nil {
		return nil, &ErrExecutionFailed{Skill: s.Name, Err: err}
	}
	return out, nil
}

// HasRuntime reports whether the skill has an executable hook attached.
func (s *Skill) HasRuntime() bool { return s.execute != nil }
