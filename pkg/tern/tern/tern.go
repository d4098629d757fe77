// Package tern provides a public API for embedding the Tern interpreter.
package tern

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/sambeau/tern/pkg/tern/ast"
	"github.com/sambeau/tern/pkg/tern/checker"
	perrors "github.com/sambeau/tern/pkg/tern/errors"
	"github.com/sambeau/tern/pkg/tern/evaluator"
	"github.com/sambeau/tern/pkg/tern/parser"
)

// Value is an alias for evaluator.Value for convenience
type Value = evaluator.Value

// Logger is an alias for evaluator.Logger for convenience
type Logger = evaluator.Logger

// WriterLogger returns a logger that writes program output to w.
func WriterLogger(w io.Writer) Logger { return evaluator.WriterLogger(w) }

// NullLogger returns a logger that discards program output.
func NullLogger() Logger { return evaluator.NullLogger() }

// Options controls a run.
type Options struct {
	Typecheck bool   // run the type checker before evaluating
	Logger    Logger // receives `printing` output; nil means stdout
	File      string // source path attached to errors
}

// Check parses source and type-checks it.
func Check(source string) (ast.Expression, error) {
	program, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	return checker.Check(program)
}

// Run lexes, parses, optionally type-checks and evaluates source in a fresh
// environment.
func Run(source string, opts Options) (Value, error) {
	v, err := run(source, opts)
	if err != nil {
		return nil, withFile(err, opts.File)
	}
	return v, nil
}

func run(source string, opts Options) (Value, error) {
	program, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	if opts.Typecheck {
		if program, err = checker.Check(program); err != nil {
			return nil, err
		}
	}
	return evaluator.New(opts.Logger).Eval(program)
}

func withFile(err error, file string) error {
	var terr *perrors.TernError
	if file != "" && stderrors.As(err, &terr) {
		return terr.WithFile(file)
	}
	return err
}

// Unit is one brace-delimited program within a batch file.
type Unit struct {
	Index  int    // 0-based position in the batch
	Source string // text between the braces, braces removed
	Line   int    // line of the opening brace
	Column int    // column just after the opening brace
}

// SplitUnits cuts source into the programs enclosed by top-level `{` `}`
// pairs. Nested braces are dropped from the unit text, text outside any pair
// is ignored, as are blank units and a final unit that is never closed.
func SplitUnits(source string) []Unit {
	var (
		units []Unit
		buf   strings.Builder
		depth int
		cur   Unit
	)
	line, col := 1, 1
	for _, c := range source {
		switch {
		case c == '{':
			if depth == 0 {
				cur = Unit{Line: line, Column: col + 1}
			}
			depth++
		case c == '}' && depth > 0:
			depth--
			if depth == 0 {
				if strings.TrimSpace(buf.String()) != "" {
					cur.Index = len(units)
					cur.Source = buf.String()
					units = append(units, cur)
				}
				buf.Reset()
			}
		case depth > 0:
			buf.WriteRune(c)
		}

		if c == '\n' {
			line, col = line+1, 1
		} else {
			col++
		}
	}
	return units
}

// RunUnits runs every unit of a batch in order, each in its own environment,
// calling fn with each result. It stops at the first failure; the error
// names the unit and its positions refer to the whole source. A source with
// no braces at all runs as a single unit.
func RunUnits(source string, opts Options, fn func(Unit, Value)) error {
	for _, u := range batch(source) {
		v, err := run(u.Source, opts)
		if err != nil {
			return fmt.Errorf("unit %d: %w", u.Index, withFile(shift(err, u), opts.File))
		}
		if fn != nil {
			fn(u, v)
		}
	}
	return nil
}

// CheckUnits parses every unit of a batch without running it, and type
// checks each one too when opts.Typecheck is set. Errors are reported as
// by RunUnits.
func CheckUnits(source string, opts Options) error {
	for _, u := range batch(source) {
		program, err := parser.Parse(u.Source)
		if err == nil && opts.Typecheck {
			_, err = checker.Check(program)
		}
		if err != nil {
			return fmt.Errorf("unit %d: %w", u.Index, withFile(shift(err, u), opts.File))
		}
	}
	return nil
}

// batch splits source into units, treating a source with no braces at all
// as a single unit.
func batch(source string) []Unit {
	units := SplitUnits(source)
	if len(units) == 0 && !strings.ContainsAny(source, "{}") && strings.TrimSpace(source) != "" {
		units = []Unit{{Source: source, Line: 1, Column: 1}}
	}
	return units
}

// shift moves a unit-relative error position into source coordinates.
func shift(err error, u Unit) error {
	var terr *perrors.TernError
	if !stderrors.As(err, &terr) || terr.Line == 0 {
		return err
	}
	col := terr.Column
	if terr.Line == 1 {
		col += u.Column - 1
	}
	return terr.WithPosition(terr.Line+u.Line-1, col)
}

// Session evaluates successive sources against one environment, so names
// made by a top-level `assign` stay visible to later sources.
type Session struct {
	opts    Options
	checker *checker.Checker
	eval    *evaluator.Evaluator
}

// NewSession creates a session with empty environments.
func NewSession(opts Options) *Session {
	s := &Session{opts: opts}
	s.Reset()
	return s
}

// Eval runs one source in the session. A source that fails leaves no
// bindings behind in either environment.
func (s *Session) Eval(source string) (Value, error) {
	program, err := parser.Parse(source)
	if err != nil {
		return nil, withFile(err, s.opts.File)
	}

	types := s.checker.Env().Snapshot()
	values := s.eval.Env().Snapshot()
	rollback := func(err error) (Value, error) {
		s.checker.Env().Restore(types)
		s.eval.Env().Restore(values)
		return nil, withFile(err, s.opts.File)
	}

	if s.opts.Typecheck {
		if program, err = s.checker.Check(program); err != nil {
			return rollback(err)
		}
	}
	v, err := s.eval.Eval(program)
	if err != nil {
		return rollback(err)
	}
	return v, nil
}

// Bindings returns the names currently bound in the session's global scope.
func (s *Session) Bindings() map[string]Value {
	return s.eval.Env().Bindings()
}

// Reset discards every binding.
func (s *Session) Reset() {
	s.checker = checker.New()
	s.eval = evaluator.New(s.opts.Logger)
}

// SetTypecheck turns the checking pass on or off for later sources.
func (s *Session) SetTypecheck(on bool) {
	s.opts.Typecheck = on
}

// Typecheck reports whether the checking pass is on.
func (s *Session) Typecheck() bool {
	return s.opts.Typecheck
}
