// Package errors provides structured error types for the Tern language.
//
// This package defines TernError, a unified error type that represents lexer,
// parser, type checker and runtime failures with enough metadata for display
// and programmatic handling.
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassLex       ErrorClass = "lex"       // Malformed tokens
	ClassParse     ErrorClass = "parse"     // Syntax errors
	ClassType      ErrorClass = "type"      // Type mismatches
	ClassUndefined ErrorClass = "undefined" // Name resolution
	ClassState     ErrorClass = "state"     // Structural errors (duplicate bindings)
	ClassIndex     ErrorClass = "index"     // Out of bounds
	ClassOperator  ErrorClass = "operator"  // Invalid operations
	ClassInvalid   ErrorClass = "invalid"   // No rule for a node in the running pass
)

// TernError represents any error from lexing, parsing, checking or evaluation.
type TernError struct {
	Class   ErrorClass     `json:"class"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hints   []string       `json:"hints,omitempty"`
	Line    int            `json:"line"`   // 1-based line (0 if unknown)
	Column  int            `json:"column"` // 1-based column (0 if unknown)
	File    string         `json:"file,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *TernError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *TernError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *TernError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassLex, ClassParse:
		sb.WriteString("Syntax error")
	case ClassType:
		sb.WriteString("Type error")
	default:
		sb.WriteString("Runtime error")
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  hint: ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *TernError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *TernError) WithFile(file string) *TernError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *TernError) WithPosition(line, column int) *TernError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsSyntaxError reports whether the error was raised before the AST existed.
func (e *TernError) IsSyntaxError() bool {
	return e.Class == ClassLex || e.Class == ClassParse
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // Message template with {{.placeholders}}
	Hints    []string // Hint templates
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Lexical errors
	"LEX-0001": {
		Class:    ClassLex,
		Template: "unterminated string",
		Hints:    []string{`close the string with a matching "`},
	},
	"LEX-0002": {
		Class:    ClassLex,
		Template: "unexpected character '{{.Char}}'",
	},

	// Parse errors
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got {{.Got}}",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected token {{.Token}}",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "invalid integer literal: {{.Literal}}",
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "expected identifier after '{{.After}}', got {{.Got}}",
	},

	// Type errors
	"TYPE-0001": {
		Class:    ClassType,
		Template: "operator '{{.Operator}}' requires integer operands, got {{.Left}} and {{.Right}}",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "cannot compare {{.Left}} with {{.Right}}",
	},
	"TYPE-0003": {
		Class:    ClassType,
		Template: "{{.Construct}} condition must be boolean, got {{.Got}}",
	},
	"TYPE-0004": {
		Class:    ClassType,
		Template: "if branches have different types: {{.Then}} and {{.Else}}",
	},
	"TYPE-0005": {
		Class:    ClassType,
		Template: "cannot put {{.Got}} into '{{.Name}}' of type {{.Want}}",
	},
	"TYPE-0006": {
		Class:    ClassType,
		Template: "ubool needs an integer or a string, got {{.Got}}",
	},
	"TYPE-0007": {
		Class:    ClassType,
		Template: "operator '{{.Operator}}' requires boolean operands, got {{.Got}}",
	},
	"TYPE-0008": {
		Class:    ClassType,
		Template: "{{.Construct}} requires a string, got {{.Got}}",
	},
	"TYPE-0009": {
		Class:    ClassType,
		Template: "{{.Construct}} requires {{.Want}}, got {{.Got}}",
	},

	// Name resolution errors
	"UNDEF-0001": {
		Class:    ClassUndefined,
		Template: "identifier not found: {{.Name}}",
	},
	"UNDEF-0002": {
		Class:    ClassUndefined,
		Template: "'{{.Name}}' is not a function, it is {{.Got}}",
	},

	// Structural errors
	"STATE-0001": {
		Class:    ClassState,
		Template: "'{{.Name}}' is already bound in this scope",
	},

	// Index errors
	"INDEX-0001": {
		Class:    ClassIndex,
		Template: "index {{.Index}} out of range (length {{.Length}})",
	},
	"INDEX-0002": {
		Class:    ClassIndex,
		Template: "cannot pop from empty list '{{.Name}}'",
	},

	// Operator errors
	"OP-0001": {
		Class:    ClassOperator,
		Template: "{{.Operation}} by zero",
	},
	"OP-0002": {
		Class:    ClassOperator,
		Template: "integer overflow: {{.Left}} {{.Operator}} {{.Right}} does not fit in 64 bits",
	},

	// Unhandled node kinds
	"INVALID-0001": {
		Class:    ClassInvalid,
		Template: "invalid program: {{.Pass}} has no rule for {{.Node}}",
	},
}

// New creates a TernError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *TernError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &TernError{
			Class:   ClassInvalid,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &TernError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a TernError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *TernError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// HasCode reports whether err is, or wraps, a TernError with the given code.
func HasCode(err error, code string) bool {
	var terr *TernError
	if stderrors.As(err, &terr) {
		return terr.Code == code
	}
	return false
}

// ClassOf returns the class of err if it is, or wraps, a TernError.
func ClassOf(err error) ErrorClass {
	var terr *TernError
	if stderrors.As(err, &terr) {
		return terr.Class
	}
	return ""
}

func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// ============================================================================
// Fuzzy Matching - "Did you mean?" suggestions
// ============================================================================

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// threshold grows with the input: short words tolerate one edit, longer words up to three.
func threshold(input string) int {
	switch {
	case len(input) >= 7:
		return 3
	case len(input) >= 4:
		return 2
	default:
		return 1
	}
}

// FindClosestMatch finds the closest match to the given string from candidates.
// Returns an empty string when nothing is within the edit threshold.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	// sorted so ties resolve the same way on every run
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	var bestMatch string
	bestDistance := -1
	for _, candidate := range sorted {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= 0 || bestDistance > threshold(input) {
		return ""
	}
	return bestMatch
}

// NewUndefinedIdentifier creates an undefined identifier error with optional fuzzy matching.
func NewUndefinedIdentifier(name string, available []string) *TernError {
	err := New("UNDEF-0001", map[string]any{"Name": name})

	if suggestion := FindClosestMatch(name, available); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}

	return err
}
