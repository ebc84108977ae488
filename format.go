package lume

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatExpr renders an expression back to parseable source. Compound
// operator operands are wrapped in braces, so the output reparses to the
// same tree regardless of precedence.
func FormatExpr(expr Expr, interner *Interner) string {
	f := &formatter{interner: interner}
	f.expr(expr)

	return f.b.String()
}

// FormatStmt renders a statement back to parseable source.
func FormatStmt(stmt Stmt, interner *Interner) string {
	f := &formatter{interner: interner}
	f.stmt(stmt)

	return f.b.String()
}

// FormatMod renders a module back to parseable source.
func FormatMod(mod *Mod, interner *Interner) string {
	f := &formatter{interner: interner}
	f.mod(mod)

	return f.b.String()
}

// FormatPat renders a pattern back to parseable source.
func FormatPat(pat Pat, interner *Interner) string {
	f := &formatter{interner: interner}
	f.pat(pat)

	return f.b.String()
}

type formatter struct {
	b        strings.Builder
	interner *Interner
}

func (f *formatter) expr(expr Expr) {
	switch kind := expr.Kind.(type) {
	case VoidExpr:
		f.b.WriteString("{}")
	case BlockExpr:
		f.b.WriteString("{ ")
		for i, stmt := range kind.Stmts {
			if i > 0 {
				f.b.WriteString(", ")
			}
			f.stmt(stmt)
		}
		f.b.WriteString(" }")
	case TupleExpr:
		f.exprTuple(kind.Entries)
	case ListExpr:
		f.b.WriteByte('[')
		for i, item := range kind.Items {
			if i > 0 {
				f.b.WriteString(", ")
			}
			f.expr(item)
		}
		f.b.WriteByte(']')
	case CallExpr:
		f.expr(kind.Fn)
		f.exprTuple(kind.Args)
	case FnExpr:
		f.params(kind.Params)
		f.b.WriteByte(' ')
		f.expr(kind.Body)
	case IdentExpr:
		f.b.WriteString(f.interner.Lookup(kind.Name))
	case CtxIdentExpr:
		f.b.WriteString(f.interner.Lookup(kind.Name))
	case SymExpr:
		f.b.WriteString(quote(f.interner.Lookup(kind.Value), '\''))
	case StrExpr:
		f.b.WriteString(quote(kind.Value, '"'))
	case IntExpr:
		f.b.WriteString(strconv.FormatInt(kind.Value, 10))
	case FloatExpr:
		f.b.WriteString(formatFloat(kind.Value))
	case BoolExpr:
		f.b.WriteString(strconv.FormatBool(kind.Value))
	case UnaryExpr:
		f.b.WriteString(kind.Op.String())
		f.operand(kind.Operand)
	case BinaryExpr:
		if kind.Op == BinDot {
			f.operand(kind.Left)
			f.b.WriteByte('.')
			f.expr(kind.Right)
			return
		}

		f.operand(kind.Left)
		f.b.WriteByte(' ')
		f.b.WriteString(kind.Op.String())
		f.b.WriteByte(' ')
		f.operand(kind.Right)
	case IfElseExpr:
		f.b.WriteString("if ")
		f.expr(kind.Cond)
		f.b.WriteByte(' ')
		f.braced(kind.Then)
		f.b.WriteString(" else ")
		if chained, ok := kind.Else.Kind.(IfElseExpr); ok {
			f.expr(NewExpr(chained))
			return
		}
		f.braced(kind.Else)
	}
}

// operand prints an operator operand, grouping compound sub-expressions.
// Parentheses build tuples in this grammar, so grouping uses a braced block
// instead: the single-statement collapse makes it vanish on reparse.
func (f *formatter) operand(expr Expr) {
	switch expr.Kind.(type) {
	case BinaryExpr, UnaryExpr, IfElseExpr, FnExpr:
		f.b.WriteString("{ ")
		f.expr(expr)
		f.b.WriteString(" }")
	default:
		f.expr(expr)
	}
}

// braced prints an expression inside braces, reusing a block's own braces
// when it already is one. The single-statement collapse makes the wrapped
// form reparse to the original expression.
func (f *formatter) braced(expr Expr) {
	switch expr.Kind.(type) {
	case BlockExpr, VoidExpr:
		f.expr(expr)
	default:
		f.b.WriteString("{ ")
		f.expr(expr)
		f.b.WriteString(" }")
	}
}

func (f *formatter) exprTuple(entries Tuple[Expr]) {
	f.b.WriteByte('(')

	first := true
	for e := range entries.All() {
		if !first {
			f.b.WriteString(", ")
		}
		first = false

		if e.Named {
			f.b.WriteString(f.interner.Lookup(e.Key))
			f.b.WriteString(": ")
		}

		f.expr(e.Value)
	}

	f.b.WriteByte(')')
}

func (f *formatter) params(params Tuple[Pat]) {
	f.b.WriteByte('|')

	first := true
	for e := range params.All() {
		if !first {
			f.b.WriteString(", ")
		}
		first = false

		if e.Named {
			f.b.WriteString(f.interner.Lookup(e.Key))
			f.b.WriteString(": ")
		}

		f.pat(e.Value)
	}

	f.b.WriteByte('|')
}

func (f *formatter) pat(pat Pat) {
	switch kind := pat.(type) {
	case TuplePat:
		f.b.WriteByte('(')

		first := true
		for e := range kind.Entries.All() {
			if !first {
				f.b.WriteString(", ")
			}
			first = false

			if e.Named {
				f.b.WriteString(f.interner.Lookup(e.Key))
				f.b.WriteString(": ")
			}

			f.pat(e.Value)
		}

		f.b.WriteByte(')')
	case ListPat:
		f.b.WriteByte('[')
		for i, item := range kind.Items {
			if i > 0 {
				f.b.WriteString(", ")
			}
			f.pat(item)
		}
		f.b.WriteByte(']')
	case IdentPat:
		f.b.WriteString(f.interner.Lookup(kind.Name))
	case CtxIdentPat:
		f.b.WriteString(f.interner.Lookup(kind.Name))
	case SymPat:
		f.b.WriteString(quote(f.interner.Lookup(kind.Value), '\''))
	case StrPat:
		f.b.WriteString(quote(kind.Value, '"'))
	case IntPat:
		f.b.WriteString(strconv.FormatInt(kind.Value, 10))
	case FloatPat:
		f.b.WriteString(formatFloat(kind.Value))
	case BoolPat:
		f.b.WriteString(strconv.FormatBool(kind.Value))
	case WildPat:
		f.b.WriteByte('_')
	}
}

func (f *formatter) stmt(stmt Stmt) {
	switch s := stmt.(type) {
	case LetStmt:
		f.b.WriteString("let ")
		f.pat(s.Pat)
		f.b.WriteString(" = ")
		f.expr(s.Value)
	case ExprStmt:
		f.expr(s.Expr)
	}
}

func (f *formatter) mod(mod *Mod) {
	if len(mod.Deps) > 0 {
		f.b.WriteString("use { ")
		for i, dep := range mod.Deps {
			if i > 0 {
				f.b.WriteString(", ")
			}
			f.dep(dep)
		}
		f.b.WriteString(" }")

		if len(mod.Defs) > 0 {
			f.b.WriteString(", ")
		}
	}

	for i, def := range mod.Defs {
		if i > 0 {
			f.b.WriteString(", ")
		}
		f.stmt(def)
	}
}

func (f *formatter) dep(dep Dep) {
	if dep.Path.Local {
		f.b.WriteByte('.')
	}

	for i, segment := range dep.Path.Segments {
		if i > 0 {
			f.b.WriteByte('.')
		}
		f.b.WriteString(f.interner.Lookup(segment))
	}

	f.b.WriteString(" (")
	for i, binding := range dep.Bindings {
		if i > 0 {
			f.b.WriteString(", ")
		}
		f.b.WriteString(f.interner.Lookup(binding.Source))
	}
	f.b.WriteByte(')')
}

// quote renders a string or symbol literal, re-encoding bytes the lexer and
// escape grammar can read back.
func quote(s string, delimiter byte) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(delimiter)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c == delimiter:
			b.WriteByte('\\')
			b.WriteByte(delimiter)
		case c == 0x00:
			b.WriteString(`\0`)
		case c == 0x07:
			b.WriteString(`\a`)
		case c == 0x08:
			b.WriteString(`\b`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == 0x0B:
			b.WriteString(`\v`)
		case c == 0x0C:
			b.WriteString(`\f`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < 0x20 || c == 0x7F:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}

	b.WriteByte(delimiter)

	return b.String()
}

// formatFloat renders a float the numeric grammar can read back: exponents
// never carry an explicit plus sign.
func formatFloat(value float64) string {
	s := strconv.FormatFloat(value, 'g', -1, 64)
	s = strings.ReplaceAll(s, "e+", "e")

	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}

	return s
}
