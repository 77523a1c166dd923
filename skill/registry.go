package skill

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fygarcia/AgentOS/registry"
)

// Executors is a process-wide, statically-populated table of skill-name →
// callable hook. Go cannot dynamically load code the way the Python
// original imports arbitrary .py modules at scan time, so instead of
// exec-ing a sibling source file next to SKILL.md, a skill's runtime is
// looked up here by name once its manifest has been parsed — the same
// "local built-in repository" shape as a tool registry pre-populated at
// startup rather than discovered from disk.
type Executors struct {
	mu    sync.RWMutex
	funcs map[string]ExecuteFunc
}

// NewExecutors constructs an empty Executors table.
func NewExecutors() *Executors {
	return &Executors{funcs: make(map[string]ExecuteFunc)}
}

// Register attaches an executable hook to a skill name.
func (e *Executors) Register(name string, fn ExecuteFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.funcs[name] = fn
}

func (e *Executors) lookup(name string) (ExecuteFunc, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn, ok := e.funcs[name]
	return fn, ok
}

// Registry is the layered (core + per-agent) skill catalog (spec §4.3).
// The name→Skill index itself is a registry.BaseRegistry[*Skill]; the
// by-agent/by-category groupings are thin secondary indices over it.
type Registry struct {
	agentName string
	executors *Executors

	skills     *registry.BaseRegistry[*Skill]
	coreSkills *registry.BaseRegistry[*Skill]

	mu               sync.RWMutex
	skillsByAgent    map[string][]string
	skillsByCategory map[string][]string
	initialized      bool
}

// NewRegistry constructs a registry owned by agentName ("core" for the
// universal, agent-less registry).
func NewRegistry(agentName string, executors *Executors) *Registry {
	if agentName == "" {
		agentName = "core"
	}
	return &Registry{
		agentName:        agentName,
		executors:        executors,
		skills:           registry.NewBaseRegistry[*Skill](),
		coreSkills:       registry.NewBaseRegistry[*Skill](),
		skillsByAgent:    make(map[string][]string),
		skillsByCategory: make(map[string][]string),
	}
}

// Initialize performs the layered load: core skills first, then (unless
// this is the core registry) this agent's own skills, which may override
// core skills of the same name (spec §4.3).
func (r *Registry) Initialize(coreSkillsRoot, agentsRoot string) error {
	r.mu.Lock()
	if r.initialized {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	coreCount, err := r.ScanDirectory(coreSkillsRoot, "core", true)
	if err != nil {
		slog.Warn("skill: core directory scan failed", "dir", coreSkillsRoot, "error", err)
	}

	agentCount := 0
	if r.agentName != "core" {
		agentDir := filepath.Join(agentsRoot, r.agentName, "skills")
		if _, statErr := os.Stat(agentDir); statErr == nil {
			agentCount, err = r.ScanDirectory(agentDir, r.agentName, false)
			if err != nil {
				slog.Warn("skill: agent directory scan failed", "dir", agentDir, "error", err)
			}
		}
	}

	r.mu.Lock()
	r.initialized = true
	r.mu.Unlock()

	slog.Info("skill: registry initialized",
		"agent", r.agentName, "core_skills", coreCount, "agent_skills", agentCount)
	return nil
}

// ScanDirectory discovers SKILL.md manifest directories under dir and
// registers each one. Returns the number of skills registered.
func (r *Registry) ScanDirectory(dir, agentName string, isCore bool) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skillMD := filepath.Join(dir, entry.Name(), "SKILL.md")
		if _, err := os.Stat(skillMD); err != nil {
			continue
		}

		fm, body, err := ParseSkillMD(skillMD)
		if err != nil {
			slog.Error("skill: failed to load manifest", "path", skillMD, "error", err)
			continue
		}

		sk := fm.toSkill(agentName, isCore, body)
		if fn, ok := r.executors.lookup(sk.Name); ok {
			sk.execute = fn
		}

		r.register(sk)
		count++
	}
	return count, nil
}

// register applies the override semantics from spec §4.3.
func (r *Registry) register(sk *Skill) {
	if existing, exists := r.skills.Get(sk.Name); exists {
		switch {
		case existing.IsCore && !sk.IsCore:
			sk.OverridesCore = true
			slog.Info("skill: agent skill overrides core skill", "skill", sk.Name)
		case sk.IsCore && !existing.IsCore:
			slog.Warn("skill: core skill registered after agent skill, ignoring", "skill", sk.Name)
			return
		default:
			slog.Warn("skill: duplicate skill registration, overwriting", "skill", sk.Name)
		}
	}

	if sk.IsCore {
		r.coreSkills.Set(sk.Name, sk)
	}

	r.skills.Set(sk.Name, sk)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexAppend(r.skillsByAgent, sk.Agent, sk.Name)
	r.indexAppend(r.skillsByCategory, sk.Category, sk.Name)
}

func (r *Registry) indexAppend(index map[string][]string, key, name string) {
	for _, existing := range index[key] {
		if existing == name {
			return
		}
	}
	index[key] = append(index[key], name)
}

func (r *Registry) Get(name string) (*Skill, bool) {
	return r.skills.Get(name)
}

func (r *Registry) Has(name string) bool {
	return r.skills.Has(name)
}

// All returns every registered skill in name order (registry.BaseRegistry
// already returns List() sorted by key, which for this catalog is Name).
func (r *Registry) All() []*Skill {
	return r.skills.List()
}

// CoreSkills returns every skill loaded from the core skills directory,
// in name order, regardless of whether an agent skill later overrode it.
func (r *Registry) CoreSkills() []*Skill {
	return r.coreSkills.List()
}

func (r *Registry) ByAgent(agent string) []*Skill {
	r.mu.RLock()
	names := append([]string{}, r.skillsByAgent[agent]...)
	r.mu.RUnlock()
	return r.resolve(names)
}

func (r *Registry) ByCategory(category string) []*Skill {
	r.mu.RLock()
	names := append([]string{}, r.skillsByCategory[category]...)
	r.mu.RUnlock()
	return r.resolve(names)
}

func (r *Registry) resolve(names []string) []*Skill {
	out := make([]*Skill, 0, len(names))
	for _, name := range names {
		if sk, ok := r.skills.Get(name); ok {
			out = append(out, sk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Search performs a case-insensitive substring match over name,
// description, and tags (spec §4.3).
func (r *Registry) Search(query string) []*Skill {
	query = strings.ToLower(query)
	var matches []*Skill
	for _, sk := range r.All() {
		if strings.Contains(strings.ToLower(sk.Name), query) ||
			strings.Contains(strings.ToLower(sk.Description), query) {
			matches = append(matches, sk)
			continue
		}
		for _, tag := range sk.Tags {
			if strings.Contains(strings.ToLower(tag), query) {
				matches = append(matches, sk)
				break
			}
		}
	}
	return matches
}

// Execute validates and invokes a skill by name (spec §4.3).
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) (any, error) {
	sk, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("skill: %q not found in registry", name)
	}
	return sk.Execute(ctx, params)
}

// PromptContext renders the deterministic "Available skills:" block used
// to seed the Planner's system prompt (spec §4.3, original_source
// get_skill_prompt_context).
func (r *Registry) PromptContext(agent string) string {
	var skills []*Skill
	if agent != "" {
		skills = r.ByAgent(agent)
	} else {
		skills = r.All()
	}

	if len(skills) == 0 {
		return "No skills available."
	}

	var b strings.Builder
	b.WriteString("Available skills:\n")
	for _, sk := range skills {
		names := make([]string, 0, len(sk.Parameters))
		for pname := range sk.Parameters {
			names = append(names, pname)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, pname := range names {
			if sk.Parameters[pname].Required {
				parts = append(parts, pname+"*")
			} else {
				parts = append(parts, pname)
			}
		}

		fmt.Fprintf(&b, "  - %s(%s): %s\n", sk.Name, strings.Join(parts, ", "), sk.Description)
	}
	b.WriteString("\n(* = required parameter)")
	return b.String()
}
