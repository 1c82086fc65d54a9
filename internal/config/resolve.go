package config

import (
	"os"
	"path/filepath"

	foundation "git.home.luguber.info/inful/labdocs/internal/foundation/errors"
)

// Environment variables consulted by the CLI.
const (
	EnvEnvironment = "HOMELAB_ENV"
	EnvConfigPath  = "HOMELAB_CONFIG_PATH"
)

// DefaultConfigDirs are tried, in order, below the project root.
var DefaultConfigDirs = []string{"config-local", "config-example"}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ResolveEnvironment picks the environment name: explicit flag, then
// HOMELAB_ENV, then DefaultEnvironment.
func ResolveEnvironment(flag string, lookup LookupFunc) string {
	if flag != "" {
		return flag
	}
	if lookup != nil {
		if env, ok := lookup(EnvEnvironment); ok && env != "" {
			return env
		}
	}
	return DefaultEnvironment
}

// ResolveConfigDir picks the configuration directory: explicit flag, then
// HOMELAB_CONFIG_PATH, then the first existing DefaultConfigDirs entry under
// root. The explicit choices are returned as given, even if they do not exist.
func ResolveConfigDir(flag string, lookup LookupFunc, root string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if lookup != nil {
		if p, ok := lookup(EnvConfigPath); ok && p != "" {
			return p, nil
		}
	}
	for _, name := range DefaultConfigDirs {
		candidate := filepath.Join(root, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", foundation.UsageError("No configuration directory found! Specify with --config or create config-local/").
		WithContext("root", root).
		Build()
}
