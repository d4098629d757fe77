// Package evaluator executes Tern syntax trees by walking them.
package evaluator

import (
	stderrors "errors"

	"github.com/sambeau/tern/pkg/tern/ast"
	"github.com/sambeau/tern/pkg/tern/environment"
	perrors "github.com/sambeau/tern/pkg/tern/errors"
)

// Environment binds names to runtime values.
type Environment = environment.Environment[Value]

// NewEnvironment creates a new environment
func NewEnvironment() *Environment {
	return environment.New[Value]()
}

// Evaluator runs expressions against one environment.
type Evaluator struct {
	env    *Environment
	Logger Logger // receives `printing` output
}

// New creates an evaluator with a fresh environment. A nil logger means
// DefaultLogger.
func New(logger Logger) *Evaluator {
	if logger == nil {
		logger = DefaultLogger
	}
	return &Evaluator{env: NewEnvironment(), Logger: logger}
}

// Env exposes the evaluator's environment, e.g. for a REPL listing bindings.
func (e *Evaluator) Env() *Environment {
	return e.env
}

// Eval evaluates expr in a fresh environment, printing to DefaultLogger.
func Eval(expr ast.Expression) (Value, error) {
	return New(nil).Eval(expr)
}

// Eval evaluates expr. Bindings made by top-level `assign` persist in the
// evaluator's global scope between calls.
func (e *Evaluator) Eval(expr ast.Expression) (Value, error) {
	v, err := e.eval(expr)
	if err != nil {
		return nil, positioned(err, expr)
	}
	return v, nil
}

// positioned stamps the node's position on errors raised without one.
func positioned(err error, node ast.Node) error {
	var terr *perrors.TernError
	if stderrors.As(err, &terr) && terr.Line == 0 {
		line, col := node.Position()
		return terr.WithPosition(line, col)
	}
	return err
}

func newError(node ast.Node, code string, data map[string]any) error {
	line, col := node.Position()
	return perrors.NewWithPosition(code, line, col, data)
}

func (e *Evaluator) eval(node ast.Expression) (Value, error) {
	switch n := node.(type) {
	// Literals
	case *ast.IntegerLiteral:
		return &Integer{Value: n.Value}, nil
	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(n.Value), nil
	case *ast.StringLiteral:
		return &String{Value: n.Value}, nil

	case *ast.Variable:
		return e.lookup(n)

	// Operators
	case *ast.BinOp:
		return e.evalBinOp(n)
	case *ast.UnOp:
		return e.evalUnOp(n)
	case *ast.UBoolOp:
		return e.evalUBool(n)

	// Control flow
	case *ast.IfElse:
		cond, err := e.condition("if", n.Condition)
		if err != nil {
			return nil, err
		}
		if cond {
			return e.sub(n.Then)
		}
		return e.sub(n.Else)

	case *ast.While:
		return e.evalWhile(n)
	case *ast.For:
		return e.evalFor(n)

	case *ast.Seq:
		var result Value = NULL
		for _, item := range n.Body {
			v, err := e.sub(item)
			if err != nil {
				return nil, err
			}
			result = v
		}
		return result, nil

	case *ast.Print:
		v, err := e.sub(n.Value)
		if err != nil {
			return nil, err
		}
		e.Logger.LogLine(v.Inspect())
		return v, nil

	// Bindings
	case *ast.Let:
		v, err := e.sub(n.Value)
		if err != nil {
			return nil, err
		}
		defer e.env.Enter()()
		if err := e.env.Add(n.Name.Name, v); err != nil {
			return nil, positioned(err, n.Name)
		}
		return e.sub(n.Body)

	case *ast.LetAnd:
		return e.evalLetAnd(n)

	case *ast.Assign:
		v, err := e.sub(n.Value)
		if err != nil {
			return nil, err
		}
		if err := e.env.Add(n.Name.Name, v); err != nil {
			return nil, positioned(err, n.Name)
		}
		return v, nil

	case *ast.Put:
		v, err := e.sub(n.Value)
		if err != nil {
			return nil, err
		}
		if err := e.env.Update(n.Name.Name, v); err != nil {
			return nil, positioned(err, n.Name)
		}
		return v, nil

	case *ast.Get:
		return e.lookup(n.Name)

	// Functions
	case *ast.LetFun:
		defer e.env.Enter()()
		fn := &Function{Name: n.Name.Name, Params: n.Params, Body: n.Body, Scope: e.env.Capture()}
		if err := e.env.Add(n.Name.Name, fn); err != nil {
			return nil, positioned(err, n.Name)
		}
		return e.sub(n.Rest)

	case *ast.FunCall:
		return e.evalFunCall(n)

	// String primitives
	case *ast.StrLength:
		return e.evalStrLength(n)
	case *ast.VowelCount:
		return e.evalVowelCount(n)
	case *ast.StringIndex:
		return e.evalStringIndex(n)
	case *ast.Slice:
		return e.evalSlice(n)
	case *ast.Reverse:
		return e.evalReverse(n)
	case *ast.Concat:
		return e.evalConcat(n)
	case *ast.WordCount:
		return e.evalWordCount(n)

	// List primitives
	case *ast.ListLiteral:
		return e.evalListLiteral(n)
	case *ast.Cons:
		return e.evalCons(n)
	case *ast.PopLast:
		return e.evalPopLast(n)
	case *ast.IsEmpty:
		return e.evalIsEmpty(n)
	case *ast.Index:
		return e.evalIndex(n)
	case *ast.Len:
		return e.evalLen(n)
	}

	return nil, positioned(perrors.New("INVALID-0001", map[string]any{
		"Pass": "evaluator",
		"Node": ast.Describe(node),
	}), node)
}

// sub evaluates a child node, stamping its position on any error.
func (e *Evaluator) sub(node ast.Expression) (Value, error) {
	v, err := e.eval(node)
	if err != nil {
		return nil, positioned(err, node)
	}
	return v, nil
}

func (e *Evaluator) lookup(v *ast.Variable) (Value, error) {
	val, err := e.env.Get(v.Name)
	if err != nil {
		return nil, positioned(err, v)
	}
	return val, nil
}

// condition evaluates a loop or if condition, which must be a boolean.
func (e *Evaluator) condition(construct string, node ast.Expression) (bool, error) {
	v, err := e.sub(node)
	if err != nil {
		return false, err
	}
	b, ok := v.(*Boolean)
	if !ok {
		return false, newError(node, "TYPE-0003", map[string]any{
			"Construct": construct,
			"Got":       typeName(v),
		})
	}
	return b.Value, nil
}

// evalWhile pushes one scope for the whole loop, not one per iteration.
func (e *Evaluator) evalWhile(n *ast.While) (Value, error) {
	defer e.env.Enter()()

	var result Value = NULL
	for {
		ok, err := e.condition("while", n.Condition)
		if err != nil {
			return nil, err
		}
		if !ok {
			return result, nil
		}
		if result, err = e.sub(n.Body); err != nil {
			return nil, err
		}
	}
}

func (e *Evaluator) evalFor(n *ast.For) (Value, error) {
	initial, err := e.sub(n.Init)
	if err != nil {
		return nil, err
	}

	defer e.env.Enter()()
	if err := e.env.Add(n.Var.Name, initial); err != nil {
		return nil, positioned(err, n.Var)
	}

	var result Value = NULL
	for {
		ok, err := e.condition("for", n.Condition)
		if err != nil {
			return nil, err
		}
		if !ok {
			return result, nil
		}
		if result, err = e.sub(n.Body); err != nil {
			return nil, err
		}
		if _, err := e.sub(n.Update); err != nil {
			return nil, err
		}
	}
}

// evalLetAnd evaluates both values against the outer scope before binding
// either.
func (e *Evaluator) evalLetAnd(n *ast.LetAnd) (Value, error) {
	first, err := e.sub(n.FirstValue)
	if err != nil {
		return nil, err
	}
	second, err := e.sub(n.SecondValue)
	if err != nil {
		return nil, err
	}

	defer e.env.Enter()()
	if err := e.bindOrUpdate(n.First.Name, first); err != nil {
		return nil, positioned(err, n.First)
	}
	if err := e.bindOrUpdate(n.Second.Name, second); err != nil {
		return nil, positioned(err, n.Second)
	}
	return e.sub(n.Body)
}

// bindOrUpdate uses the innermost-scope membership test to pick between
// updating and adding.
func (e *Evaluator) bindOrUpdate(name string, v Value) error {
	if e.env.HasLocal(name) {
		return e.env.Update(name, v)
	}
	return e.env.Add(name, v)
}

// evalFunCall evaluates arguments in the caller's scope, then runs the body in
// a new scope on top of the function's defining scope. Parameters and
// arguments are paired up to the shorter of the two lists.
func (e *Evaluator) evalFunCall(n *ast.FunCall) (Value, error) {
	callee, err := e.lookup(n.Name)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*Function)
	if !ok {
		return nil, newError(n.Name, "UNDEF-0002", map[string]any{
			"Name": n.Name.Name,
			"Got":  typeName(callee),
		})
	}

	args := make([]Value, len(n.Args))
	for i, arg := range n.Args {
		if args[i], err = e.sub(arg); err != nil {
			return nil, err
		}
	}

	defer e.env.Swap(fn.Scope)()
	defer e.env.Enter()()
	for i := 0; i < len(fn.Params) && i < len(args); i++ {
		if err := e.env.Add(fn.Params[i].Name, args[i]); err != nil {
			return nil, positioned(err, fn.Params[i])
		}
	}
	return e.sub(fn.Body)
}
