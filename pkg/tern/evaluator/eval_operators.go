package evaluator

import (
	"math"
	"strings"

	"github.com/sambeau/tern/pkg/tern/ast"
)

func (e *Evaluator) evalBinOp(n *ast.BinOp) (Value, error) {
	switch n.Operator {
	case "and", "or":
		return e.evalLogical(n)
	}

	left, err := e.sub(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.sub(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "=":
		return nativeBoolToBooleanObject(Equal(left, right)), nil
	case "≠":
		return nativeBoolToBooleanObject(!Equal(left, right)), nil
	}

	switch {
	case left.Type() == INTEGER_OBJ && right.Type() == INTEGER_OBJ:
		return evalIntegerInfix(n, left.(*Integer).Value, right.(*Integer).Value)
	case left.Type() == STRING_OBJ && right.Type() == STRING_OBJ:
		return evalStringInfix(n, left.(*String).Value, right.(*String).Value)
	case n.Operator == "&" && left.Type() == BOOLEAN_OBJ && right.Type() == BOOLEAN_OBJ:
		return nativeBoolToBooleanObject(left.(*Boolean).Value && right.(*Boolean).Value), nil
	}
	return nil, operandError(n, left, right)
}

func operandError(n *ast.BinOp, left, right Value) error {
	return newError(n, "TYPE-0001", map[string]any{
		"Operator": n.Operator,
		"Left":     typeName(left),
		"Right":    typeName(right),
	})
}

func evalIntegerInfix(n *ast.BinOp, l, r int64) (Value, error) {
	switch n.Operator {
	case "+":
		return checked(n, l, r, addInt)
	case "-":
		return checked(n, l, r, subInt)
	case "*":
		return checked(n, l, r, mulInt)
	case "/", "quot":
		if r == 0 {
			return nil, newError(n, "OP-0001", map[string]any{"Operation": "division"})
		}
		if l == math.MinInt64 && r == -1 {
			return nil, overflowError(n, l, r)
		}
		return &Integer{Value: floorDiv(l, r)}, nil
	case "%", "rem":
		if r == 0 {
			return nil, newError(n, "OP-0001", map[string]any{"Operation": "modulo"})
		}
		return &Integer{Value: floorMod(l, r)}, nil
	case "&":
		return &Integer{Value: l & r}, nil
	case "<":
		return nativeBoolToBooleanObject(l < r), nil
	case ">":
		return nativeBoolToBooleanObject(l > r), nil
	case "≤":
		return nativeBoolToBooleanObject(l <= r), nil
	case "≥":
		return nativeBoolToBooleanObject(l >= r), nil
	}
	return nil, operandError(n, &Integer{Value: l}, &Integer{Value: r})
}

// evalStringInfix handles concatenation with + and lexical ordering.
func evalStringInfix(n *ast.BinOp, l, r string) (Value, error) {
	switch n.Operator {
	case "+":
		return &String{Value: l + r}, nil
	case "<":
		return nativeBoolToBooleanObject(strings.Compare(l, r) < 0), nil
	case ">":
		return nativeBoolToBooleanObject(strings.Compare(l, r) > 0), nil
	case "≤":
		return nativeBoolToBooleanObject(strings.Compare(l, r) <= 0), nil
	case "≥":
		return nativeBoolToBooleanObject(strings.Compare(l, r) >= 0), nil
	}
	return nil, operandError(n, &String{Value: l}, &String{Value: r})
}

func checked(n *ast.BinOp, l, r int64, op func(a, b int64) (int64, bool)) (Value, error) {
	v, ok := op(l, r)
	if !ok {
		return nil, overflowError(n, l, r)
	}
	return &Integer{Value: v}, nil
}

func overflowError(n *ast.BinOp, l, r int64) error {
	return newError(n, "OP-0002", map[string]any{
		"Left":     l,
		"Operator": n.Operator,
		"Right":    r,
	})
}

// addInt, subInt and mulInt report false when the result does not fit in
// an int64.
func addInt(a, b int64) (int64, bool) {
	s := a + b
	return s, (s > a) == (b > 0)
}

func subInt(a, b int64) (int64, bool) {
	d := a - b
	return d, (d < a) == (b > 0)
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return p, false
	}
	return p, p/b == a
}

// floorDiv rounds the quotient toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// floorMod returns a remainder with the sign of the divisor.
func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

// evalLogical short-circuits: the right operand is only evaluated when needed.
func (e *Evaluator) evalLogical(n *ast.BinOp) (Value, error) {
	left, err := e.boolean(n.Operator, n.Left)
	if err != nil {
		return nil, err
	}
	if n.Operator == "and" && !left {
		return FALSE, nil
	}
	if n.Operator == "or" && left {
		return TRUE, nil
	}
	right, err := e.boolean(n.Operator, n.Right)
	if err != nil {
		return nil, err
	}
	return nativeBoolToBooleanObject(right), nil
}

func (e *Evaluator) boolean(operator string, node ast.Expression) (bool, error) {
	v, err := e.sub(node)
	if err != nil {
		return false, err
	}
	b, ok := v.(*Boolean)
	if !ok {
		return false, newError(node, "TYPE-0007", map[string]any{
			"Operator": operator,
			"Got":      typeName(v),
		})
	}
	return b.Value, nil
}

func (e *Evaluator) evalUnOp(n *ast.UnOp) (Value, error) {
	operand, err := e.boolean(n.Operator, n.Operand)
	if err != nil {
		return nil, err
	}
	return nativeBoolToBooleanObject(!operand), nil
}

// evalUBool maps an integer to "non-zero" and a string to "non-empty". The
// annotated type decides when the tree has been checked; otherwise the
// runtime kind does.
func (e *Evaluator) evalUBool(n *ast.UBoolOp) (Value, error) {
	v, err := e.sub(n.Operand)
	if err != nil {
		return nil, err
	}

	kind := n.Operand.Type()
	if kind == ast.NoType {
		switch v.(type) {
		case *Integer:
			kind = ast.IntegerType
		case *String:
			kind = ast.StringType
		}
	}

	switch kind {
	case ast.IntegerType:
		if i, ok := v.(*Integer); ok {
			return nativeBoolToBooleanObject(i.Value != 0), nil
		}
	case ast.StringType:
		if s, ok := v.(*String); ok {
			return nativeBoolToBooleanObject(s.Value != ""), nil
		}
	}
	return nil, newError(n, "TYPE-0006", map[string]any{"Got": typeName(v)})
}
