package lume_test

import (
	"testing"

	"github.com/lumelang/lume"
)

func TestInterner_InternIsIdempotent(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()

	if got := in.Intern(""); got != lume.Sym(0) {
		t.Errorf("Intern(\"\") = %d, want 0", got)
	}

	if in.Intern("") != in.Intern("") {
		t.Error("interning the same string twice returned different symbols")
	}

	if got := in.Intern("abc"); got != lume.Sym(1) {
		t.Errorf("Intern(\"abc\") = %d, want 1", got)
	}

	if in.Intern("abc") != in.Intern("abc") {
		t.Error("interning the same string twice returned different symbols")
	}
}

func TestInterner_Lookup(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()

	strings := []string{"", "x0", "@self", "d013397b-f874-49e0-9f38-01fa235caabc"}

	syms := make([]lume.Sym, len(strings))
	for i, s := range strings {
		syms[i] = in.Intern(s)
	}

	for i, sym := range syms {
		if got := in.Lookup(sym); got != strings[i] {
			t.Errorf("Lookup(%d) = %q, want %q", sym, got, strings[i])
		}
	}
}

func TestInterner_Private(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()
	in.Intern("a")

	p := in.Private()
	if p != lume.Sym(1) {
		t.Errorf("Private() = %d, want 1", p)
	}

	if got := in.Lookup(p); got != "#1" {
		t.Errorf("Lookup(private) = %q, want %q", got, "#1")
	}

	// Private symbols share the handle space: the next intern continues
	// after them.
	if got := in.Intern("b"); got != lume.Sym(2) {
		t.Errorf("Intern after Private = %d, want 2", got)
	}
}
