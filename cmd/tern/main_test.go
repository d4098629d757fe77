package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func noenv(string) string { return "" }

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := run(context.Background(), args, strings.NewReader(stdin), stdout, stderr, noenv)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestRunVersion(t *testing.T) {
	stdout, _, err := runCLI(t, "", "--version")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "tern version") {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestRunHelp(t *testing.T) {
	stdout, _, err := runCLI(t, "", "--help")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, want := range []string{"tern - Tern language interpreter", "--config", "--watch", "--typecheck"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in help, got %q", want, stdout)
		}
	}
}

func TestRunInvalidFlag(t *testing.T) {
	if _, _, err := runCLI(t, "", "--invalid-flag"); err == nil {
		t.Error("expected error for invalid flag")
	}
}

func TestRunMissingConfig(t *testing.T) {
	_, _, err := runCLI(t, "", "--config", "/nonexistent/tern.yaml", "-e", "1")
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("expected 'config file not found' error, got %q", err.Error())
	}
}

func TestRunInvalidLogLevel(t *testing.T) {
	_, _, err := runCLI(t, "", "--log-level", "loud", "-e", "1")
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("expected log level error, got %v", err)
	}
}

func TestEvaluateInline(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"arithmetic", []string{"-e", "1 + 2 * 3"}, "7\n"},
		{"let", []string{"-e", "let a is 5 in a + a end"}, "10\n"},
		{"boolean", []string{"-e", "1 < 2"}, "True\n"},
		{"string", []string{"-e", `reversestr ( "abc" )`}, "cba\n"},
		{"repr string", []string{"--repr", "-e", `reversestr ( "abc" )`}, "\"cba\"\n"},
		{"printing", []string{"-e", `seq printing "hi" end ; 1 end`}, "hi\n1\n"},
		{"eval alias", []string{"--eval", "2"}, "2\n"},
		{"empty seq prints nothing", []string{"-e", "seq end"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runCLI(t, "", tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr)
			}
			if stdout != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, stdout)
			}
		})
	}
}

func TestEvaluateInlineError(t *testing.T) {
	_, stderr, err := runCLI(t, "", "-e", "let a is 1 in\n  b end")
	if err != errReported {
		t.Fatalf("expected errReported, got %v", err)
	}
	for _, want := range []string{"Runtime error", "<eval>", "identifier not found: b", "    b end", "    ^"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("expected %q in stderr, got:\n%s", want, stderr)
		}
	}
}

func TestTypecheckFlag(t *testing.T) {
	stdout, _, err := runCLI(t, "", "-e", `1 = "a"`)
	if err != nil || stdout != "False\n" {
		t.Errorf("eval-only: expected False, got %q (%v)", stdout, err)
	}

	_, stderr, err := runCLI(t, "", "--typecheck", "-e", `1 = "a"`)
	if err != errReported {
		t.Fatalf("expected errReported, got %v", err)
	}
	if !strings.Contains(stderr, "Type error") {
		t.Errorf("expected a type error, got %q", stderr)
	}
}

func TestRunFileUnits(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prog.tern", `{ let a is 5 in a + a end }
{ letMut b is 2 in put b is get b + 1 end end }
{ slice "Hello, world!" start 0 stop 5 }
`)

	stdout, stderr, err := runCLI(t, "", path)
	if err != nil {
		t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr)
	}
	if stdout != "10\n3\nHello\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestRunFileStopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prog.tern", "{ 1 }\n{\n  assign x is 1 ;\n}\n{ 3 }\n")

	stdout, stderr, err := runCLI(t, "", path)
	if err != errReported {
		t.Fatalf("expected errReported, got %v", err)
	}
	if stdout != "1\n" {
		t.Errorf("expected only the first unit to run, got %q", stdout)
	}
	if !strings.Contains(stderr, "line 3") {
		t.Errorf("expected the error on line 3 of the file, got:\n%s", stderr)
	}
}

func TestRunMissingFile(t *testing.T) {
	_, _, err := runCLI(t, "", filepath.Join(t.TempDir(), "missing.tern"))
	if err == nil || !strings.Contains(err.Error(), "reading file") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestRunStdin(t *testing.T) {
	stdout, _, err := runCLI(t, "{ 2 * 21 }")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "42\n" {
		t.Errorf("expected 42, got %q", stdout)
	}
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.tern", "{ 1 + 2 }\n{ let a is 1 in a end }")
	bad := writeFile(t, dir, "bad.tern", "{ 1 + }")
	mistyped := writeFile(t, dir, "typed.tern", `{ 1 + "a" }`)

	if _, stderr, err := runCLI(t, "", "--check", good); err != nil {
		t.Errorf("expected good.tern to pass: %v\n%s", err, stderr)
	}

	_, stderr, err := runCLI(t, "", "--check", bad, good)
	if err != errReported {
		t.Fatalf("expected errReported, got %v", err)
	}
	if !strings.Contains(stderr, "Syntax error") {
		t.Errorf("expected a syntax error, got %q", stderr)
	}
	if !strings.Contains(stderr, "good.tern: ok") {
		t.Errorf("expected later files to be checked, got %q", stderr)
	}

	if _, _, err := runCLI(t, "", "--check", mistyped); err != nil {
		t.Errorf("parse-only check should accept %s: %v", mistyped, err)
	}
	if _, _, err := runCLI(t, "", "--check", "--typecheck", mistyped); err != errReported {
		t.Errorf("expected type error with --typecheck, got %v", err)
	}

	if _, _, err := runCLI(t, "", "--check"); err == nil {
		t.Error("expected error without files")
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "tern.yaml", "typecheck: true\noutput:\n  format: repr\n")

	stdout, _, err := runCLI(t, "", "--config", configPath, "-e", `concat ( "a" , "b" )`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "\"ab\"\n" {
		t.Errorf("expected repr output, got %q", stdout)
	}

	if _, _, err := runCLI(t, "", "--config", configPath, "-e", `1 = "a"`); err != errReported {
		t.Errorf("expected typecheck from config, got %v", err)
	}
}

func TestDebugLogging(t *testing.T) {
	_, stderr, err := runCLI(t, "", "--log-level", "debug", "-e", "{1}{2}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr, "[DEBUG] running <eval>") || !strings.Contains(stderr, "[DEBUG] unit 1") {
		t.Errorf("expected debug lines, got %q", stderr)
	}

	_, stderr, _ = runCLI(t, "", "-e", "1")
	if strings.Contains(stderr, "[DEBUG]") {
		t.Errorf("debug lines should be filtered at info, got %q", stderr)
	}
}

func TestLogFileOutput(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "tern.log")
	configPath := writeFile(t, dir, "tern.yaml", "logging:\n  level: debug\n  output: tern.log\n")

	if _, _, err := runCLI(t, "", "--config", configPath, "-e", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "[DEBUG]") {
		t.Errorf("expected debug lines in log file, got %q", data)
	}
}

func TestPrintSourceContext(t *testing.T) {
	var buf bytes.Buffer
	printSourceContext(&buf, []string{"first", "\t  let x is", "third"}, 2, 4)
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "    let x is" {
		t.Errorf("unexpected source line %q", lines[0])
	}
	// leading whitespace is trimmed from both lines
	if lines[1] != "    ^" {
		t.Errorf("unexpected pointer line %q", lines[1])
	}

	buf.Reset()
	printSourceContext(&buf, []string{"only"}, 5, 1)
	if buf.Len() != 0 {
		t.Errorf("expected nothing for an out-of-range line, got %q", buf.String())
	}
}

// syncBuffer is a bytes.Buffer safe for use from the watch goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, b *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(b.String(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q, output so far: %q", want, b.String())
}

func TestWatchReruns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prog.tern", "{ 1 + 1 }")
	configPath := writeFile(t, dir, "tern.yaml", "watch:\n  debounce: 20ms\n")

	ctx, cancel := context.WithCancel(context.Background())
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, []string{"--config", configPath, "--watch", path}, strings.NewReader(""), stdout, stderr, noenv)
	}()

	waitFor(t, stdout, "2\n")
	waitFor(t, stderr, "[INFO] watching")

	if err := os.WriteFile(path, []byte("{ 40 + 2 }"), 0644); err != nil {
		t.Fatalf("failed to rewrite file: %v", err)
	}
	waitFor(t, stdout, "42\n")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchRequiresOneFile(t *testing.T) {
	if _, _, err := runCLI(t, "", "--watch"); err == nil {
		t.Error("expected error without a file")
	}
}
