package config

import "time"

// Config represents the complete Tern configuration
type Config struct {
	BaseDir   string        `yaml:"-"`         // Directory containing config file, for resolving relative paths
	Typecheck bool          `yaml:"typecheck"` // Run the type checker before evaluating
	Output    OutputConfig  `yaml:"output"`
	REPL      REPLConfig    `yaml:"repl"`
	Watch     WatchConfig   `yaml:"watch"`
	Logging   LoggingConfig `yaml:"logging"`
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	Format string `yaml:"format"` // plain or repr (strings quoted)
}

// REPLConfig holds interactive shell settings
type REPLConfig struct {
	History string `yaml:"history"` // History file path (default: temp dir)
	Prompt  string `yaml:"prompt"`  // Main prompt (default: ">> ")
}

// WatchConfig holds --watch settings
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"` // Quiet period before re-running (default: 100ms)
}

// LoggingConfig holds driver diagnostics settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Output string `yaml:"output"` // stderr, stdout, or file path
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Typecheck: false,
		Output: OutputConfig{
			Format: "plain",
		},
		REPL: REPLConfig{
			Prompt: ">> ",
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
		},
	}
}
