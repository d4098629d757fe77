// Package environment implements the scope stack shared by the type checker
// (binding names to types) and the evaluator (binding names to values).
package environment

import (
	"maps"
	"sort"

	perrors "github.com/sambeau/tern/pkg/tern/errors"
)

// Scope is one frame of bindings. Frames link outward to the scope they were
// entered from.
type Scope[T any] struct {
	store map[string]T
	outer *Scope[T]
}

func newScope[T any](outer *Scope[T]) *Scope[T] {
	return &Scope[T]{store: make(map[string]T), outer: outer}
}

// Environment is a stack of scopes; the innermost scope is the top.
type Environment[T any] struct {
	current *Scope[T]
}

// New creates an environment holding a single, empty global scope.
func New[T any]() *Environment[T] {
	return &Environment[T]{current: newScope[T](nil)}
}

// Enter pushes a fresh scope and returns the function that pops it.
// Callers pair the two with defer so the scope is popped on every exit path:
//
//	defer env.Enter()()
func (e *Environment[T]) Enter() (exit func()) {
	saved := e.current
	e.current = newScope(saved)
	return func() { e.current = saved }
}

// Capture returns the innermost scope so a function value can hold on to the
// chain it was defined in.
func (e *Environment[T]) Capture() *Scope[T] {
	return e.current
}

// Swap makes s the innermost scope and returns the function that restores the
// previous chain.
func (e *Environment[T]) Swap(s *Scope[T]) (restore func()) {
	saved := e.current
	e.current = s
	return func() { e.current = saved }
}

// Depth reports the number of scopes on the stack.
func (e *Environment[T]) Depth() int {
	n := 0
	for s := e.current; s != nil; s = s.outer {
		n++
	}
	return n
}

// Add binds name in the innermost scope. Binding a name that already exists in
// that scope is an error; shadowing an outer binding is not.
func (e *Environment[T]) Add(name string, value T) error {
	if _, ok := e.current.store[name]; ok {
		return perrors.New("STATE-0001", map[string]any{"Name": name})
	}
	e.current.store[name] = value
	return nil
}

// Get looks name up from the innermost scope outward.
func (e *Environment[T]) Get(name string) (T, error) {
	for s := e.current; s != nil; s = s.outer {
		if v, ok := s.store[name]; ok {
			return v, nil
		}
	}
	var zero T
	return zero, perrors.NewUndefinedIdentifier(name, e.Names())
}

// Update overwrites name in the scope where it is found.
func (e *Environment[T]) Update(name string, value T) error {
	for s := e.current; s != nil; s = s.outer {
		if _, ok := s.store[name]; ok {
			s.store[name] = value
			return nil
		}
	}
	return perrors.NewUndefinedIdentifier(name, e.Names())
}

// HasLocal is the innermost-scope membership test: it ignores outer scopes,
// unlike Get.
func (e *Environment[T]) HasLocal(name string) bool {
	_, ok := e.current.store[name]
	return ok
}

// Snapshot copies the innermost scope's bindings.
func (e *Environment[T]) Snapshot() map[string]T {
	return maps.Clone(e.current.store)
}

// Restore replaces the innermost scope's bindings with a snapshot. The scope
// itself is kept, so closures that captured it see the restored bindings.
func (e *Environment[T]) Restore(saved map[string]T) {
	clear(e.current.store)
	maps.Copy(e.current.store, saved)
}

// Names returns every visible name, sorted.
func (e *Environment[T]) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for s := e.current; s != nil; s = s.outer {
		for name := range s.store {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Bindings returns the visible bindings, inner scopes hiding outer ones.
func (e *Environment[T]) Bindings() map[string]T {
	out := make(map[string]T)
	for s := e.current; s != nil; s = s.outer {
		for name, v := range s.store {
			if _, ok := out[name]; !ok {
				out[name] = v
			}
		}
	}
	return out
}
