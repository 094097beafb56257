package config

import "path/filepath"

// ResolveSettingsPath returns the settings file location. A relative
// SettingsPath is taken relative to the directory holding cfgPath; with no
// config file it stays relative to the working directory.
func ResolveSettingsPath(cfg *Config, cfgPath string) string {
	p := cfg.SettingsPath
	if p == "" {
		p = DefaultSettingsFile
	}
	if filepath.IsAbs(p) || cfgPath == "" {
		return p
	}
	return filepath.Join(filepath.Dir(cfgPath), p)
}
