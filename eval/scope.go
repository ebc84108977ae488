package eval

import "github.com/lumelang/lume"

// Scope is one frame of a scope chain. Frames are shared by pointer:
// closures keep a handle to the scope active at their creation, and later
// lets in the enclosing block stay visible through it. Parents always point
// rootward, so the scope graph is a DAG and plain shared pointers suffice.
//
// Bindings live in a tuple keyed by symbol, so rebinding a name replaces the
// previous entry: the most recent let wins.
type Scope struct {
	parent   *Scope
	bindings lume.Tuple[Value]
}

// NewScope creates a scope frame with the given parent. A nil parent makes a
// root frame.
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent}
}

// Lookup resolves a name leaf-to-root through the chain.
func (s *Scope) Lookup(name lume.Sym) (Value, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if value, ok := scope.bindings.Get(name); ok {
			return value, true
		}
	}

	return nil, false
}

// Bind inserts a binding into this frame, replacing any previous binding of
// the same name in this frame.
func (s *Scope) Bind(name lume.Sym, value Value) {
	s.bindings.Insert(name, value)
}

// Each visits the bindings of this frame only, in key order.
func (s *Scope) Each(visit func(name lume.Sym, value Value)) {
	for e := range s.bindings.All() {
		visit(e.Key, e.Value)
	}
}
