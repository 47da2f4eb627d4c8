package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment variables read by Load.
const envPrefix = "VOYAGENT_"

// Load builds a Config from defaults, an optional YAML file, and VOYAGENT_*
// environment variables (highest precedence). An empty configPath skips the
// file layer entirely; a path that does not exist is an error so typos fail
// loudly.
//
// Environment variables use an underscore separator and map to YAML fields
// by splitting on the first underscore after the prefix:
//
//	VOYAGENT_MEMORY_MAX_ITEMS            -> memory.max_items
//	VOYAGENT_ORCHESTRATOR_TOOL_TIMEOUT   -> orchestrator.tool_timeout
//	VOYAGENT_LOGGING_LEVEL               -> logging.level
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaultYAML)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// VOYAGENT_SECTION_FIELD_NAME -> section.field_name: split on the
		// first underscore only so compound field names keep theirs.
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the baseline configuration without touching the file
// system or the environment.
func Default() *Config {
	cfg, err := loadDefaults()
	if err != nil {
		// The embedded defaults are compile-time constants; failing to parse
		// them is a programming error.
		panic(err)
	}
	return cfg
}

func loadDefaults() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(defaultYAML)), yaml.Parser()); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
