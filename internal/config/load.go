package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override. A double underscore
	// separates nesting levels: RECOFORM_RECOMMENDER__BASE_URL.
	EnvPrefix = "RECOFORM_"
	// PathEnvVar names a config file when --config is not given.
	PathEnvVar = "RECOFORM_CONFIG"
)

// DefaultPaths are searched when neither --config nor RECOFORM_CONFIG is set.
var DefaultPaths = []string{"recoform.yaml", "recoform.yml", "config/recoform.yaml"}

// LoadOptions controls where configuration comes from.
type LoadOptions struct {
	// Path is an explicit config file; a missing file is an error.
	Path string
	// Overrides are applied last, keyed by dotted path (server.addr).
	Overrides map[string]any
	// SkipSearch disables the DefaultPaths lookup.
	SkipSearch bool
}

// Load builds the effective configuration and validates it.
func Load(opts LoadOptions) (*Config, string, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, "", fmt.Errorf("config: load defaults: %w", err)
	}

	path, err := resolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, "", fmt.Errorf("config: load environment: %w", err)
	}

	for key, value := range opts.Overrides {
		if err := k.Set(key, value); err != nil {
			return nil, "", fmt.Errorf("config: override %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, "", fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func resolvePath(opts LoadOptions) (string, error) {
	if opts.Path != "" {
		if _, err := os.Stat(opts.Path); err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		return opts.Path, nil
	}
	if envPath := os.Getenv(PathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("config: %s: %w", PathEnvVar, err)
		}
		return envPath, nil
	}
	if opts.SkipSearch {
		return "", nil
	}
	for _, candidate := range DefaultPaths {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("config: %w", err)
		}
	}
	return "", nil
}

// envTransform maps RECOFORM_SERVER__SHUTDOWN_GRACE to server.shutdown_grace.
// RECOFORM_CONFIG is consumed by resolvePath and dropped here.
func envTransform(key string) string {
	if key == PathEnvVar {
		return ""
	}
	trimmed := strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(trimmed), "__", ".")
}
