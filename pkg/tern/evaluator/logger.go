package evaluator

import (
	"fmt"
	"io"
	"os"
)

// Logger receives program output from `printing`.
type Logger interface {
	Log(values ...interface{})
	LogLine(values ...interface{})
}

// writerLogger joins values with spaces, the way `printing` shows them.
type writerLogger struct {
	w io.Writer
}

func (l *writerLogger) Log(values ...interface{}) {
	for i, v := range values {
		if i > 0 {
			io.WriteString(l.w, " ")
		}
		fmt.Fprint(l.w, v)
	}
}

func (l *writerLogger) LogLine(values ...interface{}) {
	l.Log(values...)
	io.WriteString(l.w, "\n")
}

// WriterLogger returns a logger that writes to w.
func WriterLogger(w io.Writer) Logger {
	return &writerLogger{w: w}
}

// NullLogger returns a logger that discards all output.
func NullLogger() Logger {
	return WriterLogger(io.Discard)
}

// DefaultLogger is the default stdout logger
var DefaultLogger = WriterLogger(os.Stdout)
