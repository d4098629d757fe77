package tern

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/sambeau/tern/pkg/tern/ast"
	perrors "github.com/sambeau/tern/pkg/tern/errors"
	"github.com/sambeau/tern/pkg/tern/evaluator"
)

func TestRun(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "7"},
		{"let a is 5 in let a is (a + a) in a end end", "20"},
		{"letMut b is 2 in put b is (get b + 1) end end", "3"},
		{`slice "Hello, world!" start 0 stop 5`, "Hello"},
		{`concat ( "ab" , "cd" )`, "abcd"},
		{"func fact ( n ) if n < 2 then 1 else n * funCall fact ( n - 1 ) end , funCall fact ( 5 )", "120"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Run(tt.input, Options{Logger: NullLogger()})
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if v.Inspect() != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, v.Inspect())
			}
		})
	}
}

func TestRunTypecheck(t *testing.T) {
	// eval-only compares different kinds as unequal
	v, err := Run(`1 = "a"`, Options{Logger: NullLogger()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if v != evaluator.FALSE {
		t.Errorf("expected False, got %s", v.Inspect())
	}

	_, err = Run(`1 = "a"`, Options{Typecheck: true, Logger: NullLogger()})
	if !perrors.HasCode(err, "TYPE-0002") {
		t.Errorf("expected TYPE-0002, got %v", err)
	}
}

func TestRunAttachesFile(t *testing.T) {
	_, err := Run("get missing", Options{Logger: NullLogger(), File: "prog.tern"})
	var terr *perrors.TernError
	if !stderrors.As(err, &terr) {
		t.Fatalf("expected *TernError, got %T", err)
	}
	if terr.File != "prog.tern" {
		t.Errorf("expected file prog.tern, got %q", terr.File)
	}
	if terr.Code != "UNDEF-0001" {
		t.Errorf("expected UNDEF-0001, got %s", terr.Code)
	}
}

func TestRunPrintsToLogger(t *testing.T) {
	var out strings.Builder
	_, err := Run(`seq printing "hi" end ; printing 1 + 1 end ; 0 end`, Options{Logger: WriterLogger(&out)})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := out.String(); got != "hi\n2\n" {
		t.Errorf("expected %q, got %q", "hi\n2\n", got)
	}
}

func TestCheck(t *testing.T) {
	expr, err := Check("if 1 < 2 then 3 else 4 end")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if expr.Type() != ast.IntegerType {
		t.Errorf("expected integer, got %s", expr.Type())
	}

	if _, err := Check(`1 + "a"`); !perrors.HasCode(err, "TYPE-0001") {
		t.Errorf("expected TYPE-0001, got %v", err)
	}
	if _, err := Check("let x is"); perrors.ClassOf(err) != perrors.ClassParse {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestSplitUnits(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"single", "{ 1 }", []string{" 1 "}},
		{"two", "{1}\n{2}", []string{"1", "2"}},
		{"nested braces are stripped", "{ a {b} c }", []string{" a b c "}},
		{"text outside is ignored", "junk {1} junk", []string{"1"}},
		{"blank units are skipped", "{ }{\n}{3}", []string{"3"}},
		{"unterminated final unit", "{1}{2", []string{"1"}},
		{"stray close brace", "}{1}", []string{"1"}},
		{"no braces", "1 + 2", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := SplitUnits(tt.input)
			if len(units) != len(tt.expected) {
				t.Fatalf("expected %d units, got %d: %#v", len(tt.expected), len(units), units)
			}
			for i, u := range units {
				if u.Source != tt.expected[i] {
					t.Errorf("unit %d: expected %q, got %q", i, tt.expected[i], u.Source)
				}
				if u.Index != i {
					t.Errorf("unit %d: wrong index %d", i, u.Index)
				}
			}
		})
	}
}

func TestSplitUnitsPositions(t *testing.T) {
	units := SplitUnits("{1}\n\n  {\n2\n}")
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].Line != 1 || units[0].Column != 2 {
		t.Errorf("unit 0: expected 1:2, got %d:%d", units[0].Line, units[0].Column)
	}
	if units[1].Line != 3 || units[1].Column != 4 {
		t.Errorf("unit 1: expected 3:4, got %d:%d", units[1].Line, units[1].Column)
	}
}

func TestRunUnits(t *testing.T) {
	var results []string
	err := RunUnits("{ 1 + 1 }\n{ let a is 5 in a + a end }", Options{Logger: NullLogger()}, func(u Unit, v Value) {
		results = append(results, v.Inspect())
	})
	if err != nil {
		t.Fatalf("RunUnits failed: %v", err)
	}
	if strings.Join(results, ",") != "2,10" {
		t.Errorf("expected 2,10, got %v", results)
	}
}

func TestRunUnitsIsolatesEnvironments(t *testing.T) {
	err := RunUnits("{ assign x is 1 }\n{ assign x is 2 }", Options{Logger: NullLogger()}, nil)
	if err != nil {
		t.Errorf("each unit should get a fresh environment: %v", err)
	}
}

func TestRunUnitsWithoutBraces(t *testing.T) {
	var got Value
	err := RunUnits("2 * 21", Options{Logger: NullLogger()}, func(u Unit, v Value) { got = v })
	if err != nil {
		t.Fatalf("RunUnits failed: %v", err)
	}
	if got == nil || got.Inspect() != "42" {
		t.Errorf("expected 42, got %v", got)
	}
}

func TestRunUnitsStopsAtFirstFailure(t *testing.T) {
	ran := 0
	src := "{ 1 }\n{\n  get x\n}\n{ 3 }"
	err := RunUnits(src, Options{Logger: NullLogger(), File: "batch.tern"}, func(u Unit, v Value) { ran++ })
	if err == nil {
		t.Fatal("expected an error")
	}
	if ran != 1 {
		t.Errorf("expected 1 unit to run, got %d", ran)
	}
	if !strings.HasPrefix(err.Error(), "unit 1: ") {
		t.Errorf("expected unit prefix, got %q", err.Error())
	}

	var terr *perrors.TernError
	if !stderrors.As(err, &terr) {
		t.Fatalf("expected wrapped *TernError, got %T", err)
	}
	if terr.Line != 3 {
		t.Errorf("expected line 3 of the batch, got %d", terr.Line)
	}
	if terr.File != "batch.tern" {
		t.Errorf("expected file batch.tern, got %q", terr.File)
	}
}

func TestRunUnitsShiftsFirstLineColumns(t *testing.T) {
	err := RunUnits("{1}   {get x}", Options{Logger: NullLogger()}, nil)
	var terr *perrors.TernError
	if !stderrors.As(err, &terr) {
		t.Fatalf("expected *TernError, got %v", err)
	}
	if terr.Line != 1 || terr.Column < 8 {
		t.Errorf("expected position on line 1 at or after column 8, got %d:%d", terr.Line, terr.Column)
	}
}

func TestWriterLogger(t *testing.T) {
	var sb strings.Builder
	l := WriterLogger(&sb)
	l.Log("a", 1)
	l.LogLine("x", "y")
	if sb.String() != "a 1x y\n" {
		t.Errorf("unexpected output %q", sb.String())
	}
}

func TestSession(t *testing.T) {
	s := NewSession(Options{Logger: NullLogger()})
	if _, err := s.Eval("assign x is 40"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	v, err := s.Eval("x + 2")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if v.Inspect() != "42" {
		t.Errorf("expected 42, got %s", v.Inspect())
	}
	if _, ok := s.Bindings()["x"]; !ok {
		t.Errorf("expected x in bindings, got %v", s.Bindings())
	}

	if _, err := s.Eval("assign x is 1"); !perrors.HasCode(err, "STATE-0001") {
		t.Errorf("expected STATE-0001, got %v", err)
	}

	s.Reset()
	if _, err := s.Eval("x"); !perrors.HasCode(err, "UNDEF-0001") {
		t.Errorf("expected UNDEF-0001 after Reset, got %v", err)
	}
}

func TestSessionTypecheck(t *testing.T) {
	s := NewSession(Options{Logger: NullLogger(), Typecheck: true})
	if _, err := s.Eval(`assign s is "abc"`); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, err := s.Eval("s + 1"); !perrors.HasCode(err, "TYPE-0001") {
		t.Errorf("expected TYPE-0001, got %v", err)
	}

	s.SetTypecheck(false)
	if s.Typecheck() {
		t.Error("expected typecheck off")
	}
}

func TestSessionFailedEntryLeavesNoBindings(t *testing.T) {
	for _, typecheck := range []bool{false, true} {
		s := NewSession(Options{Logger: NullLogger(), Typecheck: typecheck})

		if _, err := s.Eval("assign x is 1 quot 0"); !perrors.HasCode(err, "OP-0001") {
			t.Fatalf("typecheck=%t: expected OP-0001, got %v", typecheck, err)
		}
		if _, err := s.Eval("x"); !perrors.HasCode(err, "UNDEF-0001") {
			t.Errorf("typecheck=%t: expected UNDEF-0001 for x, got %v", typecheck, err)
		}

		if _, err := s.Eval("seq assign y is 1 ; 1 quot 0 end"); !perrors.HasCode(err, "OP-0001") {
			t.Fatalf("typecheck=%t: expected OP-0001, got %v", typecheck, err)
		}
		if len(s.Bindings()) != 0 {
			t.Errorf("typecheck=%t: expected no bindings, got %v", typecheck, s.Bindings())
		}

		v, err := s.Eval("assign x is 2")
		if err != nil {
			t.Fatalf("typecheck=%t: rebinding x failed: %v", typecheck, err)
		}
		if v.Inspect() != "2" {
			t.Errorf("typecheck=%t: expected 2, got %s", typecheck, v.Inspect())
		}
	}
}

func TestCheckUnits(t *testing.T) {
	if err := CheckUnits("{ 1 + 2 }\n{ get x }", Options{}); err != nil {
		t.Errorf("parse-only check should accept unbound names: %v", err)
	}

	err := CheckUnits("{ 1 }\n{ 1 + \"a\" }", Options{Typecheck: true, File: "a.tern"})
	if !perrors.HasCode(err, "TYPE-0001") {
		t.Fatalf("expected TYPE-0001, got %v", err)
	}
	var terr *perrors.TernError
	if stderrors.As(err, &terr) && (terr.Line != 2 || terr.File != "a.tern") {
		t.Errorf("expected a.tern line 2, got %s line %d", terr.File, terr.Line)
	}

	if err := CheckUnits("{ let x is }", Options{}); perrors.ClassOf(err) != perrors.ClassParse {
		t.Errorf("expected parse error, got %v", err)
	}
}
