package evaluator

import (
	"unicode/utf8"

	"github.com/sambeau/tern/pkg/tern/ast"
)

func (e *Evaluator) evalListLiteral(n *ast.ListLiteral) (Value, error) {
	elements := make([]Value, len(n.Elements))
	for i, el := range n.Elements {
		v, err := e.sub(el)
		if err != nil {
			return nil, err
		}
		elements[i] = v
	}
	return &List{Elements: elements}, nil
}

// boundList looks up a name that must hold a list.
func (e *Evaluator) boundList(construct string, name *ast.Variable) (*List, error) {
	v, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	list, ok := v.(*List)
	if !ok {
		return nil, newError(name, "TYPE-0009", map[string]any{
			"Construct": construct,
			"Want":      "a list",
			"Got":       typeName(v),
		})
	}
	return list, nil
}

// evalCons appends to the list bound to the name, rebinds the name to the
// new list and returns it.
func (e *Evaluator) evalCons(n *ast.Cons) (Value, error) {
	v, err := e.sub(n.Value)
	if err != nil {
		return nil, err
	}
	list, err := e.boundList("listappend", n.Name)
	if err != nil {
		return nil, err
	}

	elements := make([]Value, len(list.Elements), len(list.Elements)+1)
	copy(elements, list.Elements)
	updated := &List{Elements: append(elements, v)}
	if err := e.env.Update(n.Name.Name, updated); err != nil {
		return nil, positioned(err, n.Name)
	}
	return updated, nil
}

// evalPopLast drops the last element, rebinds the name and returns the
// shortened list.
func (e *Evaluator) evalPopLast(n *ast.PopLast) (Value, error) {
	list, err := e.boundList("popval", n.Name)
	if err != nil {
		return nil, err
	}
	if len(list.Elements) == 0 {
		return nil, newError(n, "INDEX-0002", map[string]any{"Name": n.Name.Name})
	}

	elements := make([]Value, len(list.Elements)-1)
	copy(elements, list.Elements)
	updated := &List{Elements: elements}
	if err := e.env.Update(n.Name.Name, updated); err != nil {
		return nil, positioned(err, n.Name)
	}
	return updated, nil
}

// length returns the element count of a list or the character count of a
// string bound to name.
func (e *Evaluator) length(construct string, name *ast.Variable) (int, error) {
	v, err := e.lookup(name)
	if err != nil {
		return 0, err
	}
	switch v := v.(type) {
	case *List:
		return len(v.Elements), nil
	case *String:
		return utf8.RuneCountInString(v.Value), nil
	}
	return 0, newError(name, "TYPE-0009", map[string]any{
		"Construct": construct,
		"Want":      "a list or a string",
		"Got":       typeName(v),
	})
}

func (e *Evaluator) evalLen(n *ast.Len) (Value, error) {
	l, err := e.length("len", n.Name)
	if err != nil {
		return nil, err
	}
	return &Integer{Value: int64(l)}, nil
}

func (e *Evaluator) evalIsEmpty(n *ast.IsEmpty) (Value, error) {
	l, err := e.length("isEmpty", n.Name)
	if err != nil {
		return nil, err
	}
	return nativeBoolToBooleanObject(l == 0), nil
}

// evalIndex reads one element of a list, or one character of a string.
func (e *Evaluator) evalIndex(n *ast.Index) (Value, error) {
	v, err := e.lookup(n.Name)
	if err != nil {
		return nil, err
	}
	idx, err := e.integer("index", n.Index)
	if err != nil {
		return nil, err
	}

	switch v := v.(type) {
	case *List:
		i, ok := resolveIndex(idx, len(v.Elements))
		if !ok {
			return nil, newError(n.Index, "INDEX-0001", map[string]any{"Index": idx, "Length": len(v.Elements)})
		}
		return v.Elements[i], nil
	case *String:
		runes := []rune(v.Value)
		i, ok := resolveIndex(idx, len(runes))
		if !ok {
			return nil, newError(n.Index, "INDEX-0001", map[string]any{"Index": idx, "Length": len(runes)})
		}
		return &String{Value: string(runes[i])}, nil
	}
	return nil, newError(n.Name, "TYPE-0009", map[string]any{
		"Construct": "index",
		"Want":      "a list or a string",
		"Got":       typeName(v),
	})
}
