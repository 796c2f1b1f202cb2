package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultRef = "HEAD"

type TrailerConfig struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type Config struct {
	Trailer TrailerConfig `yaml:"trailer"`
	Ref     string        `yaml:"ref,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Trailer: TrailerConfig{Key: "Co-Authored-By"},
		Ref:     DefaultRef,
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// LoadMergedConfig layers the repo-local config over the global one. A field
// set in the repo config wins; unset fields fall through, and a ref left
// unset everywhere defaults to HEAD.
func LoadMergedConfig(resolver *RepoResolver) (*Config, error) {
	cfg, err := LoadConfig(resolver.GlobalConfigPath())
	if err != nil {
		return nil, err
	}

	if repoPath, ok := resolver.RepoConfigPath(); ok {
		local, err := LoadConfig(repoPath)
		if err != nil {
			return nil, err
		}

		if local.Trailer.Key != "" {
			cfg.Trailer.Key = local.Trailer.Key
		}
		if local.Trailer.Value != "" {
			cfg.Trailer.Value = local.Trailer.Value
		}
		if local.Ref != "" {
			cfg.Ref = local.Ref
		}
	}

	if cfg.Ref == "" {
		cfg.Ref = DefaultRef
	}

	return cfg, nil
}
