package command

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// HandlerConfig describes one external handler command for a URI scheme.
type HandlerConfig struct {
	Scheme      string            `yaml:"scheme" json:"scheme"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of handlers.yaml
type ConfigFile struct {
	Handlers []HandlerConfig `yaml:"handlers" json:"handlers"`
}

// LoadHandlers reads a configuration file (YAML or JSON, by extension) and
// returns a map of schemes to handler configs. A missing file is not an
// error: it means no handlers are configured.
func LoadHandlers(path string) (map[string]HandlerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]HandlerConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read handlers config: %w", err)
	}

	var cfg ConfigFile
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse handlers.json: %w", err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse handlers.yaml: %w", err)
		}
	}

	handlerMap := make(map[string]HandlerConfig)
	for _, h := range cfg.Handlers {
		if h.Scheme == "" {
			continue
		}
		handlerMap[strings.ToLower(h.Scheme)] = h
	}

	return handlerMap, nil
}
