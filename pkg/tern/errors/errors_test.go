package errors

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestTernError_String(t *testing.T) {
	tests := []struct {
		name     string
		err      *TernError
		expected string
	}{
		{
			name:     "message only",
			err:      &TernError{Message: "something went wrong"},
			expected: "something went wrong",
		},
		{
			name:     "with line and column",
			err:      &TernError{Message: "unexpected token", Line: 5, Column: 10},
			expected: "line 5, column 10: unexpected token",
		},
		{
			name:     "with file",
			err:      &TernError{Message: "parse error", File: "fact.tern", Line: 3, Column: 1},
			expected: "fact.tern: line 3, column 1: parse error",
		},
		{
			name: "with hints",
			err: &TernError{
				Message: "identifier not found: lenn",
				Line:    1,
				Column:  1,
				Hints:   []string{"Did you mean `len`?"},
			},
			expected: "line 1, column 1: identifier not found: lenn\n  Did you mean `len`?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTernError_PrettyString(t *testing.T) {
	tests := []struct {
		name     string
		err      *TernError
		contains []string
	}{
		{
			name:     "syntax error",
			err:      &TernError{Class: ClassParse, Message: "expected 'end'", Line: 2, Column: 4},
			contains: []string{"Syntax error", "line 2, column 4", "expected 'end'"},
		},
		{
			name:     "type error",
			err:      &TernError{Class: ClassType, Message: "cannot compare integer with string"},
			contains: []string{"Type error", "cannot compare"},
		},
		{
			name:     "runtime error with file and hint",
			err:      &TernError{Class: ClassUndefined, Message: "identifier not found: x", File: "a.tern", Line: 1, Column: 2, Hints: []string{"Did you mean `y`?"}},
			contains: []string{"Runtime error", "in: a.tern", "at: line 1, column 2", "hint: Did you mean `y`?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.PrettyString()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("PrettyString() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestNew_RendersCatalogTemplate(t *testing.T) {
	err := New("TYPE-0001", map[string]any{"Operator": "+", "Left": "integer", "Right": "string"})

	if err.Class != ClassType {
		t.Errorf("Class = %q, want %q", err.Class, ClassType)
	}
	if err.Code != "TYPE-0001" {
		t.Errorf("Code = %q, want TYPE-0001", err.Code)
	}
	want := "operator '+' requires integer operands, got integer and string"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

func TestNew_UnknownCode(t *testing.T) {
	err := New("NOPE-9999", map[string]any{"message": "custom"})
	if err.Message != "custom" {
		t.Errorf("Message = %q, want custom", err.Message)
	}
	if err.Class != ClassInvalid {
		t.Errorf("Class = %q, want %q", err.Class, ClassInvalid)
	}
}

func TestNewWithPosition(t *testing.T) {
	err := NewWithPosition("LEX-0001", 4, 7, nil)
	if err.Line != 4 || err.Column != 7 {
		t.Errorf("position = %d:%d, want 4:7", err.Line, err.Column)
	}
	if !err.IsSyntaxError() {
		t.Error("LEX-0001 should be a syntax error")
	}
	if len(err.Hints) != 1 {
		t.Errorf("expected one hint, got %v", err.Hints)
	}
}

func TestHasCodeAndClassOf(t *testing.T) {
	base := New("STATE-0001", map[string]any{"Name": "x"})
	wrapped := fmt.Errorf("unit 2: %w", base)

	if !HasCode(wrapped, "STATE-0001") {
		t.Error("HasCode should see through wrapping")
	}
	if HasCode(wrapped, "STATE-0002") {
		t.Error("HasCode matched the wrong code")
	}
	if ClassOf(wrapped) != ClassState {
		t.Errorf("ClassOf = %q, want %q", ClassOf(wrapped), ClassState)
	}
	if ClassOf(fmt.Errorf("plain")) != "" {
		t.Error("ClassOf should be empty for foreign errors")
	}
}

func TestToJSON(t *testing.T) {
	err := NewWithPosition("UNDEF-0001", 1, 3, map[string]any{"Name": "zz"})
	data, jerr := err.ToJSON()
	if jerr != nil {
		t.Fatalf("ToJSON: %v", jerr)
	}

	var decoded map[string]any
	if jerr := json.Unmarshal(data, &decoded); jerr != nil {
		t.Fatalf("unmarshal: %v", jerr)
	}
	if decoded["code"] != "UNDEF-0001" {
		t.Errorf("code = %v", decoded["code"])
	}
	if decoded["class"] != "undefined" {
		t.Errorf("class = %v", decoded["class"])
	}
}

func TestFindClosestMatch(t *testing.T) {
	tests := []struct {
		input      string
		candidates []string
		expected   string
	}{
		{"cnt", []string{"count", "cat"}, "cat"},
		{"lenght", []string{"length", "width"}, "length"},
		{"x", []string{"x"}, ""},
		{"completely", []string{"a", "b"}, ""},
		{"", []string{"a"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FindClosestMatch(tt.input, tt.candidates); got != tt.expected {
				t.Errorf("FindClosestMatch(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewUndefinedIdentifier(t *testing.T) {
	err := NewUndefinedIdentifier("contr", []string{"counter", "total"})
	if len(err.Hints) != 1 || !strings.Contains(err.Hints[0], "counter") {
		t.Errorf("expected counter hint, got %v", err.Hints)
	}

	err = NewUndefinedIdentifier("q", []string{"counter"})
	if len(err.Hints) != 0 {
		t.Errorf("expected no hints, got %v", err.Hints)
	}
}
