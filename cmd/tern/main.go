package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/sambeau/tern/config"
	"github.com/sambeau/tern/pkg/tern/evaluator"
	"github.com/sambeau/tern/pkg/tern/repl"
	"github.com/sambeau/tern/pkg/tern/tern"
)

// Version information, set at build time via -ldflags
var (
	Version = "dev"     // -X main.Version=$(git describe --tags --always)
	Commit  = "unknown" // -X main.Commit=$(git rev-parse --short HEAD)
)

// errReported means the failure has already been printed to stderr.
var errReported = errors.New("failed")

func main() {
	ctx := context.Background()
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv)
	if errors.Is(err, errReported) {
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options is the resolved command line.
type options struct {
	cfg    *config.Config
	eval   string
	check  bool
	watch  bool
	files  []string
	log    *logger
	stdout io.Writer
	stderr io.Writer
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("tern", flag.ContinueOnError)
	flags.SetOutput(io.Discard) // Suppress default -h output

	var (
		configPath  = flags.String("config", "", "Path to config file")
		evalCode    = flags.String("e", "", "Evaluate code string")
		checkMode   = flags.Bool("check", false, "Parse and type check without executing")
		typecheck   = flags.Bool("typecheck", false, "Type check before evaluating")
		repr        = flags.Bool("repr", false, "Quote string results")
		watchMode   = flags.Bool("watch", false, "Re-run the file whenever it changes")
		logLevel    = flags.String("log-level", "", "Override logging.level")
		showVersion = flags.Bool("version", false, "Show version")
		showHelp    = flags.Bool("help", false, "Show help")
	)
	flags.StringVar(evalCode, "eval", "", "Alias for -e")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout)
			return nil
		}
		printUsage(stderr)
		return err
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}
	if *showVersion {
		fmt.Fprintf(stdout, "tern version %s (%s)\n", Version, Commit)
		return nil
	}

	cfg, configFile, err := config.LoadWithPath(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Apply CLI overrides
	if *typecheck {
		cfg.Typecheck = true
	}
	if *repr {
		cfg.Output.Format = "repr"
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log, closeLog, err := newLogger(cfg.Logging, stdout, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	for _, warning := range config.Warnings(cfg) {
		log.Warnf("%s", warning)
	}
	if configFile != "" {
		log.Debugf("config: %s", configFile)
	}

	opts := &options{
		cfg:    cfg,
		eval:   *evalCode,
		check:  *checkMode,
		watch:  *watchMode,
		files:  flags.Args(),
		log:    log,
		stdout: stdout,
		stderr: stderr,
	}

	switch {
	case opts.eval != "":
		return runSource(opts, "<eval>", opts.eval)
	case opts.check:
		if len(opts.files) == 0 {
			return fmt.Errorf("--check requires at least one file")
		}
		return checkFiles(opts)
	case opts.watch:
		if len(opts.files) != 1 {
			return fmt.Errorf("--watch requires exactly one file")
		}
		ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return watchFile(ctx, opts, opts.files[0])
	case len(opts.files) > 0:
		return runFiles(opts)
	case !interactive(stdin):
		source, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		return runSource(opts, "<stdin>", string(source))
	default:
		repl.Start(stdout, repl.Options{
			Prompt:      cfg.REPL.Prompt,
			HistoryFile: cfg.REPL.History,
			Typecheck:   cfg.Typecheck,
			Repr:        cfg.Output.Format == "repr",
			Version:     Version,
		})
		return nil
	}
}

// interactive reports whether stdin is a terminal.
func interactive(stdin io.Reader) bool {
	f, ok := stdin.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `tern - Tern language interpreter

Usage:
  tern [options] [file...]
  tern -e "code"
  tern --check <file>...
  tern --watch <file>

Options:
  -e, --eval CODE    Evaluate a code string
  --check            Parse (and type check) files without executing them
  --typecheck        Type check each program before evaluating it
  --repr             Quote string results
  --watch            Re-run the file whenever it is saved
  --config PATH      Path to config file (default: auto-detect)
  --log-level LEVEL  debug, info, warn or error
  --version          Show version
  --help             Show this help

Files may hold several programs, each wrapped in { }. A file without braces
is a single program. With no file and no -e, tern reads a program from
stdin when it is piped, and otherwise starts the REPL.

Config Resolution:
  1. --config flag
  2. TERN_CONFIG environment variable
  3. ./tern.yaml
  4. ~/.config/tern/tern.yaml

Examples:
  tern                               Start the REPL
  tern prog.tern                     Run every program in prog.tern
  tern -e "let a is 5 in a + a end"  Evaluate inline code (outputs: 10)
  tern --typecheck --check *.tern    Check files without running them
  tern --watch prog.tern             Re-run prog.tern on every save

`)
}

// runFiles runs each file's programs in order, stopping at the first failure.
func runFiles(opts *options) error {
	for _, filename := range opts.files {
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("reading file '%s': %w", filename, err)
		}
		if err := runSource(opts, filename, string(content)); err != nil {
			return err
		}
	}
	return nil
}

// runSource runs every program in source and prints each result.
func runSource(opts *options, filename, source string) error {
	start := time.Now()
	opts.log.Debugf("running %s (typecheck=%t)", filename, opts.cfg.Typecheck)

	runOpts := tern.Options{
		Typecheck: opts.cfg.Typecheck,
		Logger:    tern.WriterLogger(opts.stdout),
		File:      filename,
	}
	err := tern.RunUnits(source, runOpts, func(u tern.Unit, v tern.Value) {
		opts.log.Debugf("unit %d (line %d) done after %s", u.Index, u.Line, time.Since(start))
		printResult(opts.stdout, v, opts.cfg.Output.Format)
	})
	if err != nil {
		printError(opts.stderr, source, err)
		return errReported
	}
	return nil
}

// checkFiles parses, and with --typecheck also checks, every unit of every
// file. All files are checked before reporting failure.
func checkFiles(opts *options) error {
	failed := false
	for _, filename := range opts.files {
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("reading %s: %w", filename, err)
		}
		source := string(content)
		err = tern.CheckUnits(source, tern.Options{Typecheck: opts.cfg.Typecheck, File: filename})
		if err != nil {
			printError(opts.stderr, source, err)
			failed = true
			continue
		}
		opts.log.Infof("%s: ok", filename)
	}
	if failed {
		return errReported
	}
	return nil
}

func printResult(w io.Writer, v tern.Value, format string) {
	if v == nil || v == evaluator.NULL {
		return
	}
	if format == "repr" {
		fmt.Fprintln(w, evaluator.Repr(v))
		return
	}
	fmt.Fprintln(w, v.Inspect())
}
