// Package repl implements the interactive Tern shell.
package repl

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	perrors "github.com/sambeau/tern/pkg/tern/errors"
	"github.com/sambeau/tern/pkg/tern/evaluator"
	"github.com/sambeau/tern/pkg/tern/lexer"
	"github.com/sambeau/tern/pkg/tern/tern"
)

const PROMPT = ">> "
const CONTINUATION_PROMPT = ".. "

const TERN_LOGO = `
▀█▀ █▀▀ █▀█ █▄░█
░█░ ██▄ █▀▄ █░▀█ `

// Options configures a REPL session.
type Options struct {
	Prompt      string // defaults to PROMPT
	HistoryFile string // defaults to .tern_history in the temp dir
	Typecheck   bool   // check each entry before evaluating it
	Repr        bool   // quote strings in results
	Version     string
}

// openers are the keywords whose form is closed by `end` or `done`.
var openers = map[string]bool{
	"if": true, "while": true, "for": true, "let": true, "letMut": true,
	"letAnd": true, "seq": true, "put": true, "printing": true, "ubool": true,
}

// shell holds the state that survives between entries.
type shell struct {
	session *tern.Session
	out     io.Writer
	repr    bool
}

func newShell(out io.Writer, opts Options) *shell {
	return &shell{
		session: tern.NewSession(tern.Options{
			Typecheck: opts.Typecheck,
			Logger:    tern.WriterLogger(out),
		}),
		out:  out,
		repr: opts.Repr,
	}
}

// Start runs the REPL with line editing, history, and tab completion until
// the user exits.
func Start(out io.Writer, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(filterCompletions)

	historyFile := opts.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".tern_history")
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	basePrompt := opts.Prompt
	if basePrompt == "" {
		basePrompt = PROMPT
	}

	fmt.Fprintf(out, "%s", TERN_LOGO)
	fmt.Fprintln(out, "v", opts.Version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	sh := newShell(out, opts)
	var inputBuffer strings.Builder

	for {
		currentPrompt := basePrompt
		if inputBuffer.Len() > 0 {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 {
			if trimmed == "exit" || trimmed == "quit" {
				fmt.Fprintln(out, "Goodbye!")
				return
			}
			if strings.HasPrefix(trimmed, ":") {
				sh.command(trimmed)
				continue
			}
			if trimmed == "" {
				continue
			}
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			continue
		}

		line.AppendHistory(fullInput)
		sh.eval(fullInput)
		inputBuffer.Reset()
	}
}

// eval runs one complete entry and prints its result or error.
func (sh *shell) eval(input string) {
	v, err := sh.session.Eval(input)
	if err != nil {
		printError(sh.out, err)
		return
	}
	if v == evaluator.NULL {
		io.WriteString(sh.out, "OK\n")
		return
	}
	if sh.repr {
		io.WriteString(sh.out, evaluator.Repr(v)+"\n")
	} else {
		io.WriteString(sh.out, v.Inspect()+"\n")
	}
}

// command handles REPL meta-commands that start with ':'
func (sh *shell) command(cmd string) {
	out := sh.out
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(out, "REPL Commands:")
		fmt.Fprintln(out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(out, "  :env            Show names bound with assign")
		fmt.Fprintln(out, "  :clear          Clear all bindings")
		fmt.Fprintln(out, "  :typecheck      Toggle type checking before evaluation")
		fmt.Fprintln(out, "  :repr           Toggle quoting of string results")
		fmt.Fprintln(out, "  exit, quit      Exit the REPL")

	case ":env":
		printEnvironment(sh.session.Bindings(), out)

	case ":clear":
		sh.session.Reset()
		fmt.Fprintln(out, "Environment cleared")

	case ":typecheck":
		sh.session.SetTypecheck(!sh.session.Typecheck())
		// a fresh checker does not know names bound before the switch
		sh.session.Reset()
		fmt.Fprintf(out, "Type checking %s (environment cleared)\n", onOff(sh.session.Typecheck()))

	case ":repr":
		sh.repr = !sh.repr
		fmt.Fprintf(out, "Repr output %s\n", onOff(sh.repr))

	default:
		fmt.Fprintf(out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

// printEnvironment displays the session's bindings, sorted by name.
func printEnvironment(vars map[string]evaluator.Value, out io.Writer) {
	if len(vars) == 0 {
		fmt.Fprintln(out, "(no bindings)")
		return
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := vars[name]
		value := evaluator.Repr(v)
		if len(value) > 60 {
			value = value[:57] + "..."
		}
		fmt.Fprintf(out, "  %s: %s = %s\n", name, strings.ToLower(string(v.Type())), value)
	}
}

// filterCompletions returns completion suggestions based on current input
func filterCompletions(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if line[len(line)-1] == ' ' || line[len(line)-1] == '\t' {
		return nil
	}

	words := strings.Fields(line)
	lastWord := words[len(words)-1]
	prefix := line[:len(line)-len(lastWord)]

	var matches []string
	for _, word := range lexer.Keywords() {
		if strings.HasPrefix(word, lastWord) {
			matches = append(matches, prefix+word)
		}
	}
	return matches
}

// needsMoreInput reports whether input stops inside a string, a bracket
// pair, or a keyword form still waiting for its `end` or `done`.
func needsMoreInput(input string) bool {
	l := lexer.New(input)
	depth, brackets := 0, 0
	for {
		tok, err := l.NextToken()
		if err != nil {
			return perrors.HasCode(err, "LEX-0001")
		}
		switch {
		case tok.Type == lexer.EOF:
			return depth > 0 || brackets > 0
		case tok.Type == lexer.KEYWORD && openers[tok.Literal]:
			depth++
		case tok.Type == lexer.KEYWORD && (tok.Literal == "end" || tok.Literal == "done"):
			depth--
		case tok.Type == lexer.OPERATOR && (tok.Literal == "(" || tok.Literal == "["):
			brackets++
		case tok.Type == lexer.OPERATOR && (tok.Literal == ")" || tok.Literal == "]"):
			brackets--
		}
	}
}

// printError prints a Tern error in its long form, or any other error as is.
func printError(out io.Writer, err error) {
	var terr *perrors.TernError
	if stderrors.As(err, &terr) {
		io.WriteString(out, terr.PrettyString())
	} else {
		io.WriteString(out, err.Error())
	}
	io.WriteString(out, "\n")
}
