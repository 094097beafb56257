package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoConfig is returned by ResolveConfigPath when no file exists in any
// standard location. Callers fall back to built-in defaults.
var ErrNoConfig = errors.New("no configuration file found")

// ConfigFile is the base name searched for by ResolveConfigPath.
const ConfigFile = "blogclaw.yaml"

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/blogclaw/blogclaw.yaml → ~/.config/blogclaw/blogclaw.yaml → ./blogclaw.yaml
func ResolveConfigPath() (string, error) {
	candidates := configCandidates()
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w (searched: %v)", ErrNoConfig, candidates)
}

func configCandidates() []string {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "blogclaw", ConfigFile))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "blogclaw", ConfigFile))
	}

	return append(candidates, ConfigFile)
}

// resolveOptionalConfig returns path when set, otherwise the first standard
// location that exists, or "" for defaults.
func resolveOptionalConfig(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	resolved, err := ResolveConfigPath()
	if errors.Is(err, ErrNoConfig) {
		return "", nil
	}
	return resolved, err
}
