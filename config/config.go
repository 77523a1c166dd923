// Package config provides configuration types for the agent runtime.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider identifies an LLMClient backend.
type Provider string

const (
	ProviderLocalHTTP   Provider = "local-http"
	ProviderMock        Provider = "mock"
	ProviderHostedCloud Provider = "hosted-cloud"
)

// LLMConfig configures the LLMClient abstraction (spec §3 AgentConfig, §4.1).
type LLMConfig struct {
	Provider Provider `yaml:"provider"`
	BaseURL  string   `yaml:"base_url"`
	APIKey   string   `yaml:"api_key"`

	// Logical model slots.
	ReasoningModel string `yaml:"reasoning_model"`
	ParserModel    string `yaml:"parser_model"`
	ToolModel      string `yaml:"tool_model"`
	EmbeddingModel string `yaml:"embedding_model"`

	ReasoningTimeoutSeconds int `yaml:"reasoning_timeout_seconds"`
	ParserTimeoutSeconds    int `yaml:"parser_timeout_seconds"`
}

// SetDefaults implements the Validate/SetDefaults pattern used throughout.
func (c *LLMConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLocalHTTP
	}
	if c.BaseURL == "" && c.Provider == ProviderLocalHTTP {
		c.BaseURL = "http://localhost:11434"
	}
	if c.ReasoningModel == "" {
		c.ReasoningModel = "gpt-oss:20b"
	}
	if c.ParserModel == "" {
		c.ParserModel = "llama3.1:8b"
	}
	if c.ToolModel == "" {
		c.ToolModel = c.ParserModel
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "nomic-embed-text"
	}
	if c.ReasoningTimeoutSeconds == 0 {
		c.ReasoningTimeoutSeconds = 180
	}
	if c.ParserTimeoutSeconds == 0 {
		c.ParserTimeoutSeconds = 60
	}
}

// Validate enforces the invariants from spec §3.
func (c *LLMConfig) Validate() error {
	switch c.Provider {
	case ProviderLocalHTTP:
		if c.BaseURL == "" {
			return fmt.Errorf("llm: base_url is required for provider %q", c.Provider)
		}
		if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
			return fmt.Errorf("llm: base_url %q must be absolute", c.BaseURL)
		}
	case ProviderHostedCloud:
		if c.APIKey == "" {
			return fmt.Errorf("llm: api_key is required for provider %q", c.Provider)
		}
	case ProviderMock:
		// no invariants
	default:
		return fmt.Errorf("llm: unknown provider %q", c.Provider)
	}
	if c.ReasoningTimeoutSeconds < 120 {
		return fmt.Errorf("llm: reasoning_timeout_seconds must be >= 120, got %d", c.ReasoningTimeoutSeconds)
	}
	if c.ParserTimeoutSeconds < 30 {
		return fmt.Errorf("llm: parser_timeout_seconds must be >= 30, got %d", c.ParserTimeoutSeconds)
	}
	return nil
}

// MemoryConfig configures the three-tier MemoryManager (spec §4.2).
type MemoryConfig struct {
	AgentsRoot      string `yaml:"agents_root"`
	LogMaxSizeKB    int    `yaml:"log_max_size_kb"`
	LogMaxEntries   int    `yaml:"log_max_entries"`
	EmbeddingDim    int    `yaml:"embedding_dimension"`
	SQLDriver       string `yaml:"sql_driver"`       // sqlite3, postgres, mysql
	VectorBackend   string `yaml:"vector_backend"`   // chromem, qdrant
	QdrantHost      string `yaml:"qdrant_host"`
	QdrantPort      int    `yaml:"qdrant_port"`
}

func (c *MemoryConfig) SetDefaults() {
	if c.AgentsRoot == "" {
		c.AgentsRoot = "./agents"
	}
	if c.LogMaxSizeKB == 0 {
		c.LogMaxSizeKB = 50
	}
	if c.LogMaxEntries == 0 {
		c.LogMaxEntries = 100
	}
	if c.EmbeddingDim == 0 {
		c.EmbeddingDim = 768
	}
	if c.SQLDriver == "" {
		c.SQLDriver = "sqlite3"
	}
	if c.VectorBackend == "" {
		c.VectorBackend = "chromem"
	}
	if c.VectorBackend == "qdrant" {
		if c.QdrantHost == "" {
			c.QdrantHost = "localhost"
		}
		if c.QdrantPort == 0 {
			c.QdrantPort = 6334
		}
	}
}

func (c *MemoryConfig) Validate() error {
	if c.LogMaxSizeKB <= 0 {
		return fmt.Errorf("memory: log_max_size_kb must be positive")
	}
	if c.LogMaxEntries <= 0 {
		return fmt.Errorf("memory: log_max_entries must be positive")
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("memory: embedding_dimension must be positive")
	}
	switch c.SQLDriver {
	case "sqlite3", "postgres", "mysql":
	default:
		return fmt.Errorf("memory: unknown sql_driver %q", c.SQLDriver)
	}
	switch c.VectorBackend {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("memory: unknown vector_backend %q", c.VectorBackend)
	}
	return nil
}

// SkillConfig configures the layered skill registry (spec §4.3).
type SkillConfig struct {
	CoreSkillsRoot string `yaml:"core_skills_root"`
}

func (c *SkillConfig) SetDefaults() {
	if c.CoreSkillsRoot == "" {
		c.CoreSkillsRoot = "./core/skills"
	}
}

func (c *SkillConfig) Validate() error {
	if c.CoreSkillsRoot == "" {
		return fmt.Errorf("skill: core_skills_root must not be empty")
	}
	return nil
}

// LoggingConfig configures the slog wrapper.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", c.Level)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging: unknown format %q", c.Format)
	}
	return nil
}

// Config is the process-wide, loaded-once configuration (spec §3 AgentConfig).
type Config struct {
	LLM                  LLMConfig     `yaml:"llm"`
	Memory               MemoryConfig  `yaml:"memory"`
	Skill                SkillConfig   `yaml:"skill"`
	Logging              LoggingConfig `yaml:"logging"`
	ObservabilityEnabled bool          `yaml:"observability_enabled"`
	UnsafeCodeExecution  bool          `yaml:"unsafe_code_execution"`
}

// SetDefaults applies zero-config defaults to every sub-config.
func (c *Config) SetDefaults() {
	c.LLM.SetDefaults()
	c.Memory.SetDefaults()
	c.Skill.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate runs after SetDefaults and fails fast on contradictions.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Memory.Validate(); err != nil {
		return err
	}
	if err := c.Skill.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}

// Load reads a YAML config file, expands environment variables, applies
// defaults, and validates. An empty path produces a fully-defaulted Config.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		expanded := expandEnvVars(string(raw))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}
