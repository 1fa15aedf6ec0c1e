package config

import (
	"errors"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Parser errors.
var (
	ErrFileNotFound = errors.New("configuration file not found")
)

// LoadConfig loads configuration from a file path: it reads the file,
// substitutes environment variables, parses YAML over a copy of
// DefaultConfig so any field the file omits keeps its default.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig parses configuration from YAML data, substituting
// "${VAR}"/"$VAR" environment references first.
func ParseConfig(data []byte) (*Config, error) {
	data = substituteEnvVars(data)

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}|\$(\w+)`)

func substituteEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		sub := envVarPattern.FindSubmatch(match)
		name := string(sub[1])
		if name == "" {
			name = string(sub[2])
		}
		if val, ok := os.LookupEnv(name); ok {
			return []byte(val)
		}
		return match
	})
}
