package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds settings read from polint.yaml, the way config/agent.go
// held AgentConfig for the teacher's agent workflows.
type Config struct {
	// RulePaths lists directories whose *.rules files are loaded; only files
	// directly inside each directory are read, not subdirectories.
	RulePaths []string `yaml:"rule_paths"`
	// EntityPaths lists directories holding *.entities files. No polint
	// command reads it.
	EntityPaths []string `yaml:"entity_paths"`
	// DefaultEnvironment is used when a rule run does not specify one.
	DefaultEnvironment string `yaml:"default_environment"`
	// WrapColumn is the line width used by the PO serializer when wrapping
	// comments and single-line fields. Zero disables wrapping.
	WrapColumn int `yaml:"wrap_column"`
}

// DefaultConfig returns the configuration used when no polint.yaml is found.
func DefaultConfig() *Config {
	return &Config{
		RulePaths:          []string{"po/rules"},
		EntityPaths:        []string{"po/entities"},
		DefaultEnvironment: "",
		WrapColumn:         79,
	}
}

// Load reads polint.yaml from explicitPath if given, else from the project
// root discovered by Open, else returns DefaultConfig().
func Load(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = filepath.Join(RootOrCwd(), "polint.yaml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
