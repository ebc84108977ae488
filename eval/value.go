// Package eval reduces lume syntax trees to values under a lexically-scoped
// environment and a dynamically-scoped context environment.
package eval

import "github.com/lumelang/lume"

// Value is the closed set of runtime value variants.
type Value interface{ value() }

type (
	// Bool is a boolean value.
	Bool bool

	// Sym is an interned symbol value.
	Sym lume.Sym

	// Str is a string value.
	Str string

	// Int is a 64-bit integer value.
	Int int64

	// Float is a 64-bit floating point value.
	Float float64

	// Tuple is a positional/named tuple value.
	Tuple struct {
		Entries lume.Tuple[Value]
	}

	// List is an ordered sequence of values.
	List []Value

	// Fn is a function value: parameter patterns, a body, and the lexical
	// scope captured at creation. The context scope is deliberately not
	// captured; it flows through calls dynamically.
	Fn struct {
		Params lume.Tuple[lume.Pat]
		Body   lume.Expr
		Scope  *Scope
	}
)

func (Bool) value()  {}
func (Sym) value()   {}
func (Str) value()   {}
func (Int) value()   {}
func (Float) value() {}
func (Tuple) value() {}
func (List) value()  {}
func (*Fn) value()   {}

// equal compares two values of matching variants. The second result is false
// when the variants mismatch or either side is a function.
func equal(a, b Value) (eq, ok bool) {
	switch av := a.(type) {
	case Bool:
		if bv, ok := b.(Bool); ok {
			return av == bv, true
		}
	case Sym:
		if bv, ok := b.(Sym); ok {
			return av == bv, true
		}
	case Str:
		if bv, ok := b.(Str); ok {
			return av == bv, true
		}
	case Int:
		if bv, ok := b.(Int); ok {
			return av == bv, true
		}
	case Float:
		if bv, ok := b.(Float); ok {
			return av == bv, true
		}
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok {
			return false, false
		}

		ok = true
		eq = av.Entries.Equal(&bv.Entries, func(x, y Value) bool {
			same, sameOK := equal(x, y)
			if !sameOK {
				ok = false
			}

			return same && sameOK
		})

		return eq && ok, ok
	case List:
		bv, ok := b.(List)
		if !ok {
			return false, false
		}

		if len(av) != len(bv) {
			return false, true
		}

		for i := range av {
			same, ok := equal(av[i], bv[i])
			if !ok {
				return false, false
			}

			if !same {
				return false, true
			}
		}

		return true, true
	}

	return false, false
}
