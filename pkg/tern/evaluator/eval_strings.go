package evaluator

import (
	"strings"
	"unicode/utf8"

	"github.com/sambeau/tern/pkg/tern/ast"
)

// str evaluates node and requires a string.
func (e *Evaluator) str(construct string, node ast.Expression) (string, error) {
	v, err := e.sub(node)
	if err != nil {
		return "", err
	}
	s, ok := v.(*String)
	if !ok {
		return "", newError(node, "TYPE-0008", map[string]any{
			"Construct": construct,
			"Got":       typeName(v),
		})
	}
	return s.Value, nil
}

// boundStr looks up a name that must hold a string.
func (e *Evaluator) boundStr(construct string, name *ast.Variable) (string, error) {
	return e.str(construct, name)
}

// integer evaluates node and requires an integer.
func (e *Evaluator) integer(construct string, node ast.Expression) (int64, error) {
	v, err := e.sub(node)
	if err != nil {
		return 0, err
	}
	i, ok := v.(*Integer)
	if !ok {
		return 0, newError(node, "TYPE-0009", map[string]any{
			"Construct": construct,
			"Want":      "an integer",
			"Got":       typeName(v),
		})
	}
	return i.Value, nil
}

func (e *Evaluator) evalStrLength(n *ast.StrLength) (Value, error) {
	s, err := e.str("strlength", n.Value)
	if err != nil {
		return nil, err
	}
	return &Integer{Value: int64(utf8.RuneCountInString(s))}, nil
}

// evalVowelCount counts the lower-case vowels a, e, i, o and u.
func (e *Evaluator) evalVowelCount(n *ast.VowelCount) (Value, error) {
	s, err := e.str("vowelnumb", n.Value)
	if err != nil {
		return nil, err
	}
	var count int64
	for _, c := range s {
		if strings.ContainsRune("aeiou", c) {
			count++
		}
	}
	return &Integer{Value: count}, nil
}

func (e *Evaluator) evalStringIndex(n *ast.StringIndex) (Value, error) {
	s, err := e.boundStr("stringidx", n.Name)
	if err != nil {
		return nil, err
	}
	idx, err := e.integer("stringidx", n.Index)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	i, ok := resolveIndex(idx, len(runes))
	if !ok {
		return nil, newError(n.Index, "INDEX-0001", map[string]any{"Index": idx, "Length": len(runes)})
	}
	return &String{Value: string(runes[i])}, nil
}

// evalSlice extracts the half-open character range [start, stop). Negative
// bounds count from the end and out-of-range bounds are clamped.
func (e *Evaluator) evalSlice(n *ast.Slice) (Value, error) {
	s, err := e.str("slice", n.Value)
	if err != nil {
		return nil, err
	}
	start, err := e.integer("slice", n.Start)
	if err != nil {
		return nil, err
	}
	stop, err := e.integer("slice", n.Stop)
	if err != nil {
		return nil, err
	}

	runes := []rune(s)
	from, to := clampBound(start, len(runes)), clampBound(stop, len(runes))
	if from >= to {
		return &String{Value: ""}, nil
	}
	return &String{Value: string(runes[from:to])}, nil
}

func clampBound(b int64, length int) int {
	if b < 0 {
		b += int64(length)
	}
	if b < 0 {
		return 0
	}
	if b > int64(length) {
		return length
	}
	return int(b)
}

// resolveIndex maps a possibly negative index onto [0, length).
func resolveIndex(idx int64, length int) (int, bool) {
	if idx < 0 {
		idx += int64(length)
	}
	if idx < 0 || idx >= int64(length) {
		return 0, false
	}
	return int(idx), true
}

func (e *Evaluator) evalReverse(n *ast.Reverse) (Value, error) {
	s, err := e.str("reversestr", n.Value)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return &String{Value: string(runes)}, nil
}

func (e *Evaluator) evalConcat(n *ast.Concat) (Value, error) {
	left, err := e.str("concat", n.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.str("concat", n.Right)
	if err != nil {
		return nil, err
	}
	return &String{Value: left + right}, nil
}

// evalWordCount counts whitespace-separated words.
func (e *Evaluator) evalWordCount(n *ast.WordCount) (Value, error) {
	s, err := e.boundStr("lenSen", n.Name)
	if err != nil {
		return nil, err
	}
	return &Integer{Value: int64(len(strings.Fields(s)))}, nil
}
