package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sambeau/tern/config"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

var levels = map[string]int{
	"debug": levelDebug,
	"info":  levelInfo,
	"warn":  levelWarn,
	"error": levelError,
}

// logger writes driver diagnostics, never program output.
type logger struct {
	w     io.Writer
	level int
}

// newLogger builds a logger from logging settings. The returned func closes
// the log file, if one was opened.
func newLogger(cfg config.LoggingConfig, stdout, stderr io.Writer) (*logger, func(), error) {
	l := &logger{level: levels[cfg.Level]}
	switch cfg.Output {
	case "stderr", "":
		l.w = stderr
	case "stdout":
		l.w = stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		l.w = f
		return l, func() { f.Close() }, nil
	}
	return l, func() {}, nil
}

func (l *logger) logf(level int, prefix, format string, args ...any) {
	if level < l.level {
		return
	}
	fmt.Fprintf(l.w, prefix+" "+format+"\n", args...)
}

func (l *logger) Debugf(format string, args ...any) { l.logf(levelDebug, "[DEBUG]", format, args...) }
func (l *logger) Infof(format string, args ...any)  { l.logf(levelInfo, "[INFO]", format, args...) }
func (l *logger) Warnf(format string, args ...any)  { l.logf(levelWarn, "[WARN]", format, args...) }
func (l *logger) Errorf(format string, args ...any) { l.logf(levelError, "[ERROR]", format, args...) }
