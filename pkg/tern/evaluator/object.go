package evaluator

import (
	"strconv"
	"strings"

	"github.com/sambeau/tern/pkg/tern/ast"
	"github.com/sambeau/tern/pkg/tern/environment"
)

type ObjectType string

const (
	INTEGER_OBJ  = "INTEGER"
	BOOLEAN_OBJ  = "BOOLEAN"
	STRING_OBJ   = "STRING"
	LIST_OBJ     = "LIST"
	FUNCTION_OBJ = "FUNCTION"
	NULL_OBJ     = "NULL"
)

// Value represents all runtime values in Tern
type Value interface {
	Type() ObjectType
	Inspect() string
}

// Integer represents integer values
type Integer struct {
	Value int64
}

func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Type() ObjectType { return INTEGER_OBJ }

// Boolean represents boolean values
type Boolean struct {
	Value bool
}

func (b *Boolean) Inspect() string {
	if b.Value {
		return "True"
	}
	return "False"
}
func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }

// String represents string values
type String struct {
	Value string
}

func (s *String) Inspect() string  { return s.Value }
func (s *String) Type() ObjectType { return STRING_OBJ }

// List is an ordered list of values. Lists are never mutated in place:
// listappend and popval build a new list and rebind it.
type List struct {
	Elements []Value
}

func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = Repr(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (l *List) Type() ObjectType { return LIST_OBJ }

// Function is a closure: parameters, body and the scope chain it was defined in.
type Function struct {
	Name   string
	Params []*ast.Variable
	Body   ast.Expression
	Scope  *environment.Scope[Value]
}

func (f *Function) Inspect() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return "<func " + f.Name + "(" + strings.Join(names, ", ") + ")>"
}
func (f *Function) Type() ObjectType { return FUNCTION_OBJ }

// Null is the value of a loop that never ran or an empty seq.
type Null struct{}

func (n *Null) Inspect() string  { return "null" }
func (n *Null) Type() ObjectType { return NULL_OBJ }

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// Repr renders a value the way it would be written in source: strings are
// quoted, everything else matches Inspect.
func Repr(v Value) string {
	if s, ok := v.(*String); ok {
		return strconv.Quote(s.Value)
	}
	return v.Inspect()
}

// Equal compares values structurally. Values of different kinds are unequal.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case *Integer:
		b, ok := b.(*Integer)
		return ok && a.Value == b.Value
	case *Boolean:
		b, ok := b.(*Boolean)
		return ok && a.Value == b.Value
	case *String:
		b, ok := b.(*String)
		return ok && a.Value == b.Value
	case *List:
		b, ok := b.(*List)
		if !ok || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Equal(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	case *Null:
		_, ok := b.(*Null)
		return ok
	default:
		return a == b
	}
}

// typeName is the lower-case kind used in error messages.
func typeName(v Value) string {
	return strings.ToLower(string(v.Type()))
}
