// Package config loads the optional YAML settings file that supplies
// defaults for connection flags. Flags always win over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable overriding the settings path.
const EnvVar = "GRAPHDRIFT_CONFIG"

// Settings are the file-supplied defaults. Every field is optional.
type Settings struct {
	Neo4jURI            string `yaml:"neo4j_uri"`
	Neo4jUser           string `yaml:"neo4j_user"`
	Neo4jPasswordEnvVar string `yaml:"neo4j_password_env_var"`
	DriftDirectory      string `yaml:"drift_detection_directory"`
}

// DefaultPath returns the settings path from the environment or the
// per-user default (~/.graphdrift/config.yaml).
func DefaultPath(environ []string) string {
	for _, entry := range environ {
		if strings.HasPrefix(entry, EnvVar+"=") {
			return strings.TrimPrefix(entry, EnvVar+"=")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".graphdrift", "config.yaml")
	}
	return filepath.Join(home, ".graphdrift", "config.yaml")
}

// LoadFile parses a settings file. A missing file is not an error:
// the zero Settings value is returned so flag defaults apply.
func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%s: invalid YAML: %w", path, err)
	}
	return s, nil
}
