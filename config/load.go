package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations and falls back to
// Defaults() when no file exists.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the resolved
// path, which is empty when no file was found.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := ResolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Defaults(), "", nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.BaseDir = baseDir

	// Resolve relative paths against the config file's directory
	if cfg.REPL.History != "" && !filepath.IsAbs(cfg.REPL.History) {
		cfg.REPL.History = filepath.Join(baseDir, cfg.REPL.History)
	}
	if out := cfg.Logging.Output; out != "stderr" && out != "stdout" && out != "" && !filepath.IsAbs(out) {
		cfg.Logging.Output = filepath.Join(baseDir, out)
	}

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}

	return cfg, absPath, nil
}

// Validate checks the configuration for errors.
// Call it again after applying CLI overrides.
func Validate(cfg *Config) error {
	var errs []string

	validFormats := map[string]bool{"plain": true, "repr": true}
	if !validFormats[cfg.Output.Format] {
		errs = append(errs, fmt.Sprintf("invalid output format: %s (must be plain or repr)", cfg.Output.Format))
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Sprintf("invalid watch debounce: %s (must not be negative)", cfg.Watch.Debounce))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Logging.Level))
	}

	if cfg.Logging.Output == "" {
		errs = append(errs, "logging.output is required (stderr, stdout, or a file path)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Warnings returns non-fatal configuration issues that should be reported to the user.
func Warnings(cfg *Config) []string {
	var warnings []string

	if cfg.Watch.Debounce > 0 && cfg.Watch.Debounce < 10*time.Millisecond {
		warnings = append(warnings, fmt.Sprintf("watch.debounce %s is very short - editors that save in several writes may trigger repeated runs", cfg.Watch.Debounce))
	}

	if cfg.REPL.History != "" {
		if _, err := os.Stat(filepath.Dir(cfg.REPL.History)); err != nil {
			warnings = append(warnings, fmt.Sprintf("repl.history: directory %s does not exist - history will not be saved", filepath.Dir(cfg.REPL.History)))
		}
	}

	return warnings
}

// ResolveConfigPath finds the config file to use.
// Search order: explicit path > TERN_CONFIG env > ./tern.yaml > ~/.config/tern/tern.yaml.
// An empty path with a nil error means no config file was found.
func ResolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("TERN_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("TERN_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("tern.yaml"); err == nil {
		return "tern.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "tern", "tern.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}
