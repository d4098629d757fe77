// Package checker assigns static types to a Tern syntax tree.
//
// Check never mutates its input: it returns a copy of the tree with every
// type slot filled, or the first type error it meets.
package checker

import (
	stderrors "errors"

	"github.com/sambeau/tern/pkg/tern/ast"
	"github.com/sambeau/tern/pkg/tern/environment"
	perrors "github.com/sambeau/tern/pkg/tern/errors"
)

// Checker holds the name-to-type environment for one pass.
type Checker struct {
	env *environment.Environment[ast.Type]
}

// New creates a checker with an empty global scope.
func New() *Checker {
	return &Checker{env: environment.New[ast.Type]()}
}

// Env exposes the checker's name-to-type environment.
func (c *Checker) Env() *environment.Environment[ast.Type] {
	return c.env
}

// Check type-checks expr in a fresh environment.
func Check(expr ast.Expression) (ast.Expression, error) {
	return New().Check(expr)
}

// Check returns a typed copy of expr.
func (c *Checker) Check(expr ast.Expression) (ast.Expression, error) {
	typed, err := c.check(expr)
	if err != nil {
		return nil, positioned(err, expr)
	}
	return typed, nil
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

func (c *Checker) check(node ast.Expression) (ast.Expression, error) {
	switch n := node.(type) {
	// Literals
	case *ast.IntegerLiteral, *ast.BooleanLiteral, *ast.StringLiteral:
		return n, nil

	case *ast.Variable:
		v, err := c.variable(n)
		if err != nil {
			return nil, err
		}
		return v, nil

	// Operators
	case *ast.BinOp:
		return c.checkBinOp(n)

	case *ast.UnOp:
		operand, err := c.sub(n.Operand)
		if err != nil {
			return nil, err
		}
		if operand.Type() != ast.BooleanType {
			return nil, positioned(perrors.New("TYPE-0007", map[string]any{
				"Operator": n.Operator,
				"Got":      operand.Type().String(),
			}), n)
		}
		out := *n
		out.Operand = operand
		out.SetType(ast.BooleanType)
		return &out, nil

	case *ast.UBoolOp:
		operand, err := c.sub(n.Operand)
		if err != nil {
			return nil, err
		}
		// any operand type; the evaluator rejects kinds it cannot test
		out := *n
		out.Operand = operand
		out.SetType(ast.BooleanType)
		return &out, nil

	// Control flow
	case *ast.IfElse:
		return c.checkIfElse(n)

	case *ast.While:
		defer c.env.Enter()()
		cond, err := c.condition("while", n.Condition)
		if err != nil {
			return nil, err
		}
		body, err := c.sub(n.Body)
		if err != nil {
			return nil, err
		}
		out := *n
		out.Condition, out.Body = cond, body
		out.SetType(body.Type())
		return &out, nil

	case *ast.For:
		return c.checkFor(n)

	case *ast.Seq:
		out := *n
		out.Body = make([]ast.Expression, len(n.Body))
		for i, item := range n.Body {
			typed, err := c.sub(item)
			if err != nil {
				return nil, err
			}
			out.Body[i] = typed
			out.SetType(typed.Type())
		}
		return &out, nil

	case *ast.Print:
		value, err := c.sub(n.Value)
		if err != nil {
			return nil, err
		}
		out := *n
		out.Value = value
		out.SetType(value.Type())
		return &out, nil

	// Bindings
	case *ast.Let:
		value, err := c.sub(n.Value)
		if err != nil {
			return nil, err
		}
		defer c.env.Enter()()
		if err := c.env.Add(n.Name.Name, value.Type()); err != nil {
			return nil, positioned(err, n.Name)
		}
		body, err := c.sub(n.Body)
		if err != nil {
			return nil, err
		}
		out := *n
		out.Name = typedVariable(n.Name, value.Type())
		out.Value, out.Body = value, body
		out.SetType(body.Type())
		return &out, nil

	case *ast.LetAnd:
		return c.checkLetAnd(n)

	case *ast.Assign:
		value, err := c.sub(n.Value)
		if err != nil {
			return nil, err
		}
		if err := c.env.Add(n.Name.Name, value.Type()); err != nil {
			return nil, positioned(err, n.Name)
		}
		out := *n
		out.Name = typedVariable(n.Name, value.Type())
		out.Value = value
		out.SetType(value.Type())
		return &out, nil

	case *ast.Put:
		value, err := c.sub(n.Value)
		if err != nil {
			return nil, err
		}
		want, err := c.env.Get(n.Name.Name)
		if err != nil {
			return nil, positioned(err, n.Name)
		}
		if value.Type() != want {
			return nil, positioned(perrors.New("TYPE-0005", map[string]any{
				"Got":  value.Type().String(),
				"Name": n.Name.Name,
				"Want": want.String(),
			}), n)
		}
		out := *n
		out.Name = typedVariable(n.Name, want)
		out.Value = value
		out.SetType(want)
		return &out, nil

	case *ast.Get:
		name, err := c.variable(n.Name)
		if err != nil {
			return nil, err
		}
		out := *n
		out.Name = name
		out.SetType(name.Type())
		return &out, nil

	// String primitives
	case *ast.StrLength:
		value, err := c.str("strlength", n.Value)
		if err != nil {
			return nil, err
		}
		out := *n
		out.Value = value
		out.SetType(ast.IntegerType)
		return &out, nil

	case *ast.VowelCount:
		value, err := c.str("vowelnumb", n.Value)
		if err != nil {
			return nil, err
		}
		out := *n
		out.Value = value
		out.SetType(ast.IntegerType)
		return &out, nil

	case *ast.Reverse:
		value, err := c.str("reversestr", n.Value)
		if err != nil {
			return nil, err
		}
		out := *n
		out.Value = value
		out.SetType(ast.StringType)
		return &out, nil

	case *ast.Concat:
		left, err := c.str("concat", n.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.str("concat", n.Right)
		if err != nil {
			return nil, err
		}
		out := *n
		out.Left, out.Right = left, right
		out.SetType(ast.StringType)
		return &out, nil

	case *ast.StringIndex:
		name, err := c.strName("stringidx", n.Name)
		if err != nil {
			return nil, err
		}
		idx, err := c.integer("stringidx", n.Index)
		if err != nil {
			return nil, err
		}
		out := *n
		out.Name, out.Index = name, idx
		out.SetType(ast.StringType)
		return &out, nil

	case *ast.Slice:
		value, err := c.str("slice", n.Value)
		if err != nil {
			return nil, err
		}
		start, err := c.integer("slice", n.Start)
		if err != nil {
			return nil, err
		}
		stop, err := c.integer("slice", n.Stop)
		if err != nil {
			return nil, err
		}
		out := *n
		out.Value, out.Start, out.Stop = value, start, stop
		out.SetType(ast.StringType)
		return &out, nil

	case *ast.WordCount:
		name, err := c.strName("lenSen", n.Name)
		if err != nil {
			return nil, err
		}
		out := *n
		out.Name = name
		out.SetType(ast.IntegerType)
		return &out, nil

	case *ast.Len:
		name, err := c.strName("len", n.Name)
		if err != nil {
			return nil, err
		}
		out := *n
		out.Name = name
		out.SetType(ast.IntegerType)
		return &out, nil

	case *ast.IsEmpty:
		name, err := c.strName("isEmpty", n.Name)
		if err != nil {
			return nil, err
		}
		out := *n
		out.Name = name
		out.SetType(ast.BooleanType)
		return &out, nil
	}

	// Lists and functions have no static types.
	return nil, positioned(perrors.New("INVALID-0001", map[string]any{
		"Pass": "type checker",
		"Node": ast.Describe(node),
	}), node)
}

// sub checks a child node, stamping its position on any error.
func (c *Checker) sub(node ast.Expression) (ast.Expression, error) {
	typed, err := c.check(node)
	if err != nil {
		return nil, positioned(err, node)
	}
	return typed, nil
}

func (c *Checker) variable(v *ast.Variable) (*ast.Variable, error) {
	t, err := c.env.Get(v.Name)
	if err != nil {
		return nil, positioned(err, v)
	}
	return typedVariable(v, t), nil
}

func typedVariable(v *ast.Variable, t ast.Type) *ast.Variable {
	out := *v
	out.SetType(t)
	return &out
}

func (c *Checker) checkBinOp(n *ast.BinOp) (ast.Expression, error) {
	left, err := c.sub(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.sub(n.Right)
	if err != nil {
		return nil, err
	}
	lt, rt := left.Type(), right.Type()

	var result ast.Type
	switch n.Operator {
	case "+", "-", "*", "/", "%", "quot", "rem":
		if lt != ast.IntegerType || rt != ast.IntegerType {
			return nil, operandError(n, lt, rt)
		}
		result = ast.IntegerType
	case "<", ">", "≤", "≥":
		if lt != ast.IntegerType || rt != ast.IntegerType {
			return nil, operandError(n, lt, rt)
		}
		result = ast.BooleanType
	case "=", "≠":
		if lt != rt {
			return nil, positioned(perrors.New("TYPE-0002", map[string]any{
				"Left":  lt.String(),
				"Right": rt.String(),
			}), n)
		}
		result = ast.BooleanType
	case "&":
		if lt != rt || (lt != ast.IntegerType && lt != ast.BooleanType) {
			return nil, operandError(n, lt, rt)
		}
		result = lt
	case "and", "or":
		for _, t := range []ast.Type{lt, rt} {
			if t != ast.BooleanType {
				return nil, positioned(perrors.New("TYPE-0007", map[string]any{
					"Operator": n.Operator,
					"Got":      t.String(),
				}), n)
			}
		}
		result = ast.BooleanType
	default:
		return nil, positioned(perrors.New("INVALID-0001", map[string]any{
			"Pass": "type checker",
			"Node": ast.Describe(n),
		}), n)
	}

	out := *n
	out.Left, out.Right = left, right
	out.SetType(result)
	return &out, nil
}

func operandError(n *ast.BinOp, lt, rt ast.Type) error {
	return positioned(perrors.New("TYPE-0001", map[string]any{
		"Operator": n.Operator,
		"Left":     lt.String(),
		"Right":    rt.String(),
	}), n)
}

func (c *Checker) checkIfElse(n *ast.IfElse) (ast.Expression, error) {
	cond, err := c.condition("if", n.Condition)
	if err != nil {
		return nil, err
	}
	then, err := c.sub(n.Then)
	if err != nil {
		return nil, err
	}
	alt, err := c.sub(n.Else)
	if err != nil {
		return nil, err
	}
	if then.Type() != alt.Type() {
		return nil, positioned(perrors.New("TYPE-0004", map[string]any{
			"Then": then.Type().String(),
			"Else": alt.Type().String(),
		}), n)
	}
	out := *n
	out.Condition, out.Then, out.Else = cond, then, alt
	out.SetType(then.Type())
	return &out, nil
}

func (c *Checker) checkFor(n *ast.For) (ast.Expression, error) {
	initial, err := c.sub(n.Init)
	if err != nil {
		return nil, err
	}

	defer c.env.Enter()()
	if err := c.env.Add(n.Var.Name, initial.Type()); err != nil {
		return nil, positioned(err, n.Var)
	}
	cond, err := c.condition("for", n.Condition)
	if err != nil {
		return nil, err
	}
	body, err := c.sub(n.Body)
	if err != nil {
		return nil, err
	}
	update, err := c.sub(n.Update)
	if err != nil {
		return nil, err
	}

	out := *n
	out.Var = typedVariable(n.Var, initial.Type())
	out.Init, out.Condition, out.Update, out.Body = initial, cond, update, body
	out.SetType(body.Type())
	return &out, nil
}

func (c *Checker) checkLetAnd(n *ast.LetAnd) (ast.Expression, error) {
	first, err := c.sub(n.FirstValue)
	if err != nil {
		return nil, err
	}
	second, err := c.sub(n.SecondValue)
	if err != nil {
		return nil, err
	}

	defer c.env.Enter()()
	for _, b := range []struct {
		name *ast.Variable
		t    ast.Type
	}{{n.First, first.Type()}, {n.Second, second.Type()}} {
		if err := c.bindOrUpdate(b.name.Name, b.t); err != nil {
			return nil, positioned(err, b.name)
		}
	}
	body, err := c.sub(n.Body)
	if err != nil {
		return nil, err
	}

	out := *n
	out.First = typedVariable(n.First, first.Type())
	out.Second = typedVariable(n.Second, second.Type())
	out.FirstValue, out.SecondValue, out.Body = first, second, body
	out.SetType(body.Type())
	return &out, nil
}

// bindOrUpdate uses the innermost-scope membership test to pick between
// updating and adding.
func (c *Checker) bindOrUpdate(name string, t ast.Type) error {
	if c.env.HasLocal(name) {
		return c.env.Update(name, t)
	}
	return c.env.Add(name, t)
}

func (c *Checker) condition(construct string, node ast.Expression) (ast.Expression, error) {
	cond, err := c.sub(node)
	if err != nil {
		return nil, err
	}
	if cond.Type() != ast.BooleanType {
		return nil, positioned(perrors.New("TYPE-0003", map[string]any{
			"Construct": construct,
			"Got":       cond.Type().String(),
		}), node)
	}
	return cond, nil
}

func (c *Checker) str(construct string, node ast.Expression) (ast.Expression, error) {
	typed, err := c.sub(node)
	if err != nil {
		return nil, err
	}
	if typed.Type() != ast.StringType {
		return nil, positioned(perrors.New("TYPE-0008", map[string]any{
			"Construct": construct,
			"Got":       typed.Type().String(),
		}), node)
	}
	return typed, nil
}

func (c *Checker) strName(construct string, v *ast.Variable) (*ast.Variable, error) {
	typed, err := c.variable(v)
	if err != nil {
		return nil, err
	}
	if typed.Type() != ast.StringType {
		return nil, positioned(perrors.New("TYPE-0008", map[string]any{
			"Construct": construct,
			"Got":       typed.Type().String(),
		}), v)
	}
	return typed, nil
}

func (c *Checker) integer(construct string, node ast.Expression) (ast.Expression, error) {
	typed, err := c.sub(node)
	if err != nil {
		return nil, err
	}
	if typed.Type() != ast.IntegerType {
		return nil, positioned(perrors.New("TYPE-0009", map[string]any{
			"Construct": construct,
			"Want":      "an " + ast.IntegerType.String(),
			"Got":       typed.Type().String(),
		}), node)
	}
	return typed, nil
}
