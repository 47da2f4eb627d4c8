// Package config provides configuration loading for voyagent. Values come
// from hardcoded defaults, an optional YAML file, and environment variables,
// in increasing order of precedence.
package config

import (
	"time"

	"github.com/voyagent/voyagent/core"
)

// MemoryConfig bounds the per-session conversation store.
type MemoryConfig struct {
	MaxItems      int `koanf:"max_items"`
	ContextBudget int `koanf:"context_budget"`
}

// RetrievalConfig tunes grounding retrieval.
type RetrievalConfig struct {
	TopK      int     `koanf:"top_k"`
	Threshold float64 `koanf:"threshold"`
	Scope     string  `koanf:"scope"`
}

// OrchestratorConfig bounds request execution.
type OrchestratorConfig struct {
	MaxResolveAttempts int           `koanf:"max_resolve_attempts"`
	ToolTimeout        time.Duration `koanf:"tool_timeout"`
	RequestTimeout     time.Duration `koanf:"request_timeout"`
	MaxConcurrentTools int           `koanf:"max_concurrent_tools"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Config is the root configuration document.
type Config struct {
	Memory       MemoryConfig       `koanf:"memory"`
	Retrieval    RetrievalConfig    `koanf:"retrieval"`
	Orchestrator OrchestratorConfig `koanf:"orchestrator"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// defaultYAML holds the baseline configuration; file and environment values
// override it field by field.
const defaultYAML = `
memory:
  max_items: 10
  context_budget: 4000
retrieval:
  top_k: 5
  threshold: 0.5
  scope: ""
orchestrator:
  max_resolve_attempts: 2
  tool_timeout: 10s
  request_timeout: 60s
  max_concurrent_tools: 4
logging:
  level: info
  format: json
`

// Validate checks the loaded values, returning a core.ConfigError for the
// first violation found.
func (c *Config) Validate() error {
	if c.Memory.MaxItems < 1 {
		return core.NewConfigError("memory.max_items", "must be >= 1, got %d", c.Memory.MaxItems)
	}
	if c.Memory.ContextBudget < 1 {
		return core.NewConfigError("memory.context_budget", "must be >= 1, got %d", c.Memory.ContextBudget)
	}
	if c.Retrieval.TopK < 1 {
		return core.NewConfigError("retrieval.top_k", "must be >= 1, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.Threshold < -1 || c.Retrieval.Threshold > 1 {
		return core.NewConfigError("retrieval.threshold", "must be within [-1, 1], got %g", c.Retrieval.Threshold)
	}
	if c.Orchestrator.MaxResolveAttempts < 0 {
		return core.NewConfigError("orchestrator.max_resolve_attempts", "must be >= 0, got %d", c.Orchestrator.MaxResolveAttempts)
	}
	if c.Orchestrator.ToolTimeout <= 0 {
		return core.NewConfigError("orchestrator.tool_timeout", "must be positive, got %s", c.Orchestrator.ToolTimeout)
	}
	if c.Orchestrator.RequestTimeout <= 0 {
		return core.NewConfigError("orchestrator.request_timeout", "must be positive, got %s", c.Orchestrator.RequestTimeout)
	}
	if c.Orchestrator.MaxConcurrentTools < 1 {
		return core.NewConfigError("orchestrator.max_concurrent_tools", "must be >= 1, got %d", c.Orchestrator.MaxConcurrentTools)
	}
	return nil
}
