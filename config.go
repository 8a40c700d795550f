package sheen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the user-tunable pieces of the engine: the theme mapping
// capture base names to colors, the info-string alias table, and an optional
// directory of rule files overriding the bundled ones.
type Config struct {
	// Theme maps the first dot-separated segment of a capture name
	// ("punctuation" for "punctuation.special") to a color name or
	// "#rrggbb" value.
	Theme map[string]string `yaml:"theme"`

	// Aliases extends the built-in info-string table, e.g. "py3": "python".
	Aliases map[string]string `yaml:"aliases"`

	// RulesDir, when set, is searched for <lang>/highlights.scm before the
	// bundled rules.
	RulesDir string `yaml:"rules-dir,omitempty"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Theme: map[string]string{
			"type":        "cyan",
			"function":    "blue",
			"keyword":     "magenta",
			"string":      "green",
			"comment":     "white",
			"constant":    "yellow",
			"variable":    "white",
			"operator":    "white",
			"punctuation": "white",
		},
		Aliases: map[string]string{},
	}
}

// LoadConfig reads a yaml config file. A missing file is not an error: the
// defaults apply.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// WriteDefaultConfig creates a config file populated with the defaults,
// refusing to clobber an existing one.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
