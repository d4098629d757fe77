// Package ast defines the closed family of Tern syntax tree nodes.
package ast

import (
	"strconv"
	"strings"

	"github.com/sambeau/tern/pkg/tern/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
	Position() (line, column int)
}

// Expression is every Tern node: the language has no statements.
type Expression interface {
	Node
	expressionNode()
	Type() Type
}

// base holds the token a node starts at.
type base struct {
	Token lexer.Token
}

func (b *base) expressionNode()      {}
func (b *base) TokenLiteral() string { return b.Token.Literal }
func (b *base) Position() (int, int) { return b.Token.Line, b.Token.Column }

// ---------------------------------------------------------------------------
// Literals: their type is fixed, so they carry no slot.

// IntegerLiteral represents 42
type IntegerLiteral struct {
	base
	Value int64
}

func (il *IntegerLiteral) Type() Type     { return IntegerType }
func (il *IntegerLiteral) String() string { return strconv.FormatInt(il.Value, 10) }

// BooleanLiteral represents True and False
type BooleanLiteral struct {
	base
	Value bool
}

func (bl *BooleanLiteral) Type() Type { return BooleanType }
func (bl *BooleanLiteral) String() string {
	if bl.Value {
		return "True"
	}
	return "False"
}

// StringLiteral represents "text"
type StringLiteral struct {
	base
	Value string
}

func (sl *StringLiteral) Type() Type     { return StringType }
func (sl *StringLiteral) String() string { return `"` + sl.Value + `"` }

// ---------------------------------------------------------------------------
// Names and operators

// Variable is a bare identifier reference.
type Variable struct {
	base
	Typed
	Name string
}

func (v *Variable) String() string { return v.Name }

// BinOp is a binary operator application.
type BinOp struct {
	base
	Typed
	Operator string
	Left     Expression
	Right    Expression
}

func (b *BinOp) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}

// UnOp is a prefix operator application (only `not`).
type UnOp struct {
	base
	Typed
	Operator string
	Operand  Expression
}

func (u *UnOp) String() string { return "(" + u.Operator + " " + u.Operand.String() + ")" }

// UBoolOp coerces an integer or string to a boolean.
type UBoolOp struct {
	base
	Typed
	Operand Expression
}

func (u *UBoolOp) String() string { return "ubool " + u.Operand.String() + " end" }

// ---------------------------------------------------------------------------
// Control flow

// IfElse represents if C then T else F end
type IfElse struct {
	base
	Typed
	Condition Expression
	Then      Expression
	Else      Expression
}

func (ie *IfElse) String() string {
	return "if " + ie.Condition.String() + " then " + ie.Then.String() +
		" else " + ie.Else.String() + " end"
}

// While represents while C do B done
type While struct {
	base
	Typed
	Condition Expression
	Body      Expression
}

func (w *While) String() string {
	return "while " + w.Condition.String() + " do " + w.Body.String() + " done"
}

// For represents for V is Init ; Cond ; Update ; Body end
type For struct {
	base
	Typed
	Var       *Variable
	Init      Expression
	Condition Expression
	Update    Expression
	Body      Expression
}

func (f *For) String() string {
	return "for " + f.Var.String() + " is " + f.Init.String() + " ; " +
		f.Condition.String() + " ; " + f.Update.String() + " ; " + f.Body.String() + " end"
}

// Seq evaluates its expressions in order; its value is the last one.
type Seq struct {
	base
	Typed
	Body []Expression
}

func (s *Seq) String() string {
	parts := make([]string, len(s.Body))
	for i, e := range s.Body {
		parts[i] = e.String()
	}
	return "seq " + strings.Join(parts, " ; ") + " end"
}

// Print represents printing E end
type Print struct {
	base
	Typed
	Value Expression
}

func (p *Print) String() string { return "printing " + p.Value.String() + " end" }

// ---------------------------------------------------------------------------
// Bindings

// Let represents let V is E in B end. Mutable marks the letMut form, which
// binds identically.
type Let struct {
	base
	Typed
	Name    *Variable
	Value   Expression
	Body    Expression
	Mutable bool
}

func (l *Let) String() string {
	kw := "let"
	if l.Mutable {
		kw = "letMut"
	}
	return kw + " " + l.Name.String() + " is " + l.Value.String() + " in " + l.Body.String() + " end"
}

// LetAnd binds two names evaluated against the outer scope.
type LetAnd struct {
	base
	Typed
	First       *Variable
	FirstValue  Expression
	Second      *Variable
	SecondValue Expression
	Body        Expression
}

func (la *LetAnd) String() string {
	return "letAnd " + la.First.String() + " is " + la.FirstValue.String() + " ; " +
		la.Second.String() + " is " + la.SecondValue.String() + " in " + la.Body.String() + " end"
}

// Assign creates a binding in the innermost scope.
type Assign struct {
	base
	Typed
	Name  *Variable
	Value Expression
}

func (a *Assign) String() string { return "assign " + a.Name.String() + " is " + a.Value.String() }

// Put overwrites an existing binding wherever it is found.
type Put struct {
	base
	Typed
	Name  *Variable
	Value Expression
}

func (p *Put) String() string { return "put " + p.Name.String() + " is " + p.Value.String() + " end" }

// Get reads a binding.
type Get struct {
	base
	Typed
	Name *Variable
}

func (g *Get) String() string { return "get " + g.Name.String() }

// ---------------------------------------------------------------------------
// Functions

// LetFun binds Name to a function and evaluates Rest with it in scope.
type LetFun struct {
	base
	Typed
	Name   *Variable
	Params []*Variable
	Body   Expression
	Rest   Expression
}

func (lf *LetFun) String() string {
	return "func " + lf.Name.String() + " (" + joinVars(lf.Params) + ") " +
		lf.Body.String() + " , " + lf.Rest.String()
}

// FunCall invokes a bound function.
type FunCall struct {
	base
	Typed
	Name *Variable
	Args []Expression
}

func (fc *FunCall) String() string {
	args := make([]string, len(fc.Args))
	for i, a := range fc.Args {
		args[i] = a.String()
	}
	return "funCall " + fc.Name.String() + " (" + strings.Join(args, ", ") + ")"
}

// ---------------------------------------------------------------------------
// String primitives

// StrLength represents strlength ( E )
type StrLength struct {
	base
	Typed
	Value Expression
}

func (s *StrLength) String() string { return "strlength (" + s.Value.String() + ")" }

// VowelCount represents vowelnumb ( E )
type VowelCount struct {
	base
	Typed
	Value Expression
}

func (v *VowelCount) String() string { return "vowelnumb (" + v.Value.String() + ")" }

// StringIndex represents stringidx ( V , I )
type StringIndex struct {
	base
	Typed
	Name  *Variable
	Index Expression
}

func (s *StringIndex) String() string {
	return "stringidx (" + s.Name.String() + ", " + s.Index.String() + ")"
}

// Slice represents slice E start S stop E2, a half-open character range.
type Slice struct {
	base
	Typed
	Value Expression
	Start Expression
	Stop  Expression
}

func (s *Slice) String() string {
	return "slice " + s.Value.String() + " start " + s.Start.String() + " stop " + s.Stop.String()
}

// Reverse represents reversestr ( E )
type Reverse struct {
	base
	Typed
	Value Expression
}

func (r *Reverse) String() string { return "reversestr (" + r.Value.String() + ")" }

// Concat represents concat ( A , B )
type Concat struct {
	base
	Typed
	Left  Expression
	Right Expression
}

func (c *Concat) String() string { return "concat (" + c.Left.String() + ", " + c.Right.String() + ")" }

// WordCount represents lenSen V
type WordCount struct {
	base
	Typed
	Name *Variable
}

func (w *WordCount) String() string { return "lenSen " + w.Name.String() }

// ---------------------------------------------------------------------------
// List primitives

// ListLiteral represents lst [ E1 , E2 ]
type ListLiteral struct {
	base
	Typed
	Elements []Expression
}

func (l *ListLiteral) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "lst [" + strings.Join(parts, ", ") + "]"
}

// Cons represents listappend E in V
type Cons struct {
	base
	Typed
	Name  *Variable
	Value Expression
}

func (c *Cons) String() string { return "listappend " + c.Value.String() + " in " + c.Name.String() }

// PopLast represents popval ( V )
type PopLast struct {
	base
	Typed
	Name *Variable
}

func (p *PopLast) String() string { return "popval (" + p.Name.String() + ")" }

// IsEmpty represents isEmpty V
type IsEmpty struct {
	base
	Typed
	Name *Variable
}

func (ie *IsEmpty) String() string { return "isEmpty " + ie.Name.String() }

// Index represents index V [ I ]
type Index struct {
	base
	Typed
	Name  *Variable
	Index Expression
}

func (ix *Index) String() string { return "index " + ix.Name.String() + " [" + ix.Index.String() + "]" }

// Len represents len V
type Len struct {
	base
	Typed
	Name *Variable
}

func (l *Len) String() string { return "len " + l.Name.String() }

func joinVars(vars []*Variable) string {
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	return strings.Join(names, ", ")
}

// Describe names a node kind for diagnostics, e.g. "list literal".
func Describe(node Node) string {
	switch n := node.(type) {
	case *IntegerLiteral:
		return "integer literal"
	case *BooleanLiteral:
		return "boolean literal"
	case *StringLiteral:
		return "string literal"
	case *Variable:
		return "variable"
	case *BinOp:
		return "operator '" + n.Operator + "'"
	case *UnOp:
		return "operator '" + n.Operator + "'"
	case *UBoolOp:
		return "ubool"
	case *IfElse:
		return "if"
	case *While:
		return "while"
	case *For:
		return "for"
	case *Seq:
		return "seq"
	case *Print:
		return "printing"
	case *Let:
		if n.Mutable {
			return "letMut"
		}
		return "let"
	case *LetAnd:
		return "letAnd"
	case *Assign:
		return "assign"
	case *Put:
		return "put"
	case *Get:
		return "get"
	case *LetFun:
		return "function definition"
	case *FunCall:
		return "function call"
	case *StrLength:
		return "strlength"
	case *VowelCount:
		return "vowelnumb"
	case *StringIndex:
		return "stringidx"
	case *Slice:
		return "slice"
	case *Reverse:
		return "reversestr"
	case *Concat:
		return "concat"
	case *WordCount:
		return "lenSen"
	case *ListLiteral:
		return "list literal"
	case *Cons:
		return "listappend"
	case *PopLast:
		return "popval"
	case *IsEmpty:
		return "isEmpty"
	case *Index:
		return "index"
	case *Len:
		return "len"
	default:
		return "unknown node"
	}
}
