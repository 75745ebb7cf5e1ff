// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/steadops/pullup/internal/core/format"
)

// Constants for default paths
const (
	DefaultConfigDir      = ".pullup"
	DefaultConfigFileName = "config.yaml"

	// DefaultCheckoutBase is the per-hostname checkout root, relative to
	// the user's home directory. Kept compatible with ansible-pull so a
	// node can switch between the two without re-cloning.
	DefaultCheckoutBase = "~/.ansible/pull"
)

// Config holds defaults that may be overridden by command-line flags.
// Everything here is optional; a node with no config file behaves
// identically to one with an empty file.
type Config struct {
	// Repository defaults
	URL        string `yaml:"url"`
	Directory  string `yaml:"directory"`
	ModuleName string `yaml:"module_name"`
	Checkout   string `yaml:"checkout"`

	// Directory containing the ansible and ansible-playbook binaries.
	// Empty means resolve them from PATH.
	AnsiblePath string `yaml:"ansible_path"`
}

// NewDefaultConfig creates a default configuration
func NewDefaultConfig() *Config {
	return &Config{}
}

// AnsibleCommand returns the command used for the checkout invocation.
func (c *Config) AnsibleCommand() string {
	if c.AnsiblePath == "" {
		return "ansible"
	}
	return filepath.Join(ExpandPathWithTilde(c.AnsiblePath), "ansible")
}

// PlaybookCommand returns the command used for the playbook invocation.
func (c *Config) PlaybookCommand() string {
	if c.AnsiblePath == "" {
		return "ansible-playbook"
	}
	return filepath.Join(ExpandPathWithTilde(c.AnsiblePath), "ansible-playbook")
}

// ExpandPathWithTilde expands ~ to user home directory
// It respects the PULLUP_HOME environment variable for testing purposes.
func ExpandPathWithTilde(path string) string {
	if path == "~" {
		home := getHomeDir()
		if home == "" {
			return path // Return original if can't expand
		}
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home := getHomeDir()
		if home == "" {
			return path // Return original if can't expand
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// getHomeDir returns the home directory, respecting PULLUP_HOME for testing
func getHomeDir() string {
	// Check for test override first
	if pullupHome := os.Getenv("PULLUP_HOME"); pullupHome != "" {
		return pullupHome
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "" // Return empty if can't determine
	}
	return home
}

// GlobalConfigFilePath returns the absolute path to the global config file.
func GlobalConfigFilePath() (string, error) {
	home := getHomeDir()
	if home == "" {
		return "", fmt.Errorf("could not get user home directory")
	}

	return filepath.Join(home, DefaultConfigDir, DefaultConfigFileName), nil
}

// LoadConfig loads the application configuration. It starts with default
// settings, then merges settings from the config file. The
// configPathOverride parameter allows specifying a custom config file path
// (the --config flag); if empty, the default global path is used. A missing
// config file is not an error.
func LoadConfig(configPathOverride string) (*Config, error) {
	config := NewDefaultConfig()

	var configPath string
	if configPathOverride != "" {
		configPath = ExpandPathWithTilde(configPathOverride)
	} else {
		var err error
		configPath, err = GlobalConfigFilePath()
		if err != nil {
			// Non-fatal: behave as if no config file exists.
			return config, nil
		}
	}

	fileConfig, err := LoadConfigFile(configPath)
	if err != nil {
		if os.IsNotExist(err) && configPathOverride == "" {
			return config, nil
		}
		return nil, err
	}

	mergeConfigs(config, fileConfig)

	return config, nil
}

// LoadConfigFile loads a configuration from a specific file path
func LoadConfigFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path cannot be empty")
	}

	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	config := &Config{}
	if err := format.ParseFile(path, config); err != nil {
		return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
	}

	return config, nil
}

// mergeConfigs merges source config into target config
// Only non-zero values from source override target
func mergeConfigs(target, source *Config) {
	if source.URL != "" {
		target.URL = source.URL
	}
	if source.Directory != "" {
		target.Directory = source.Directory
	}
	if source.ModuleName != "" {
		target.ModuleName = source.ModuleName
	}
	if source.Checkout != "" {
		target.Checkout = source.Checkout
	}
	if source.AnsiblePath != "" {
		target.AnsiblePath = source.AnsiblePath
	}
}

// SaveGlobalConfig saves the provided configuration to the global config path.
func SaveGlobalConfig(config *Config) error {
	globalPath, err := GlobalConfigFilePath()
	if err != nil {
		return fmt.Errorf("could not determine global config path for saving: %w", err)
	}

	globalDir := filepath.Dir(globalPath)
	if err := os.MkdirAll(globalDir, 0755); err != nil {
		return fmt.Errorf("error creating global config directory '%s': %w", globalDir, err)
	}

	if err := format.WriteYAML(globalPath, config); err != nil {
		return fmt.Errorf("error writing global config file '%s': %w", globalPath, err)
	}

	return nil
}
