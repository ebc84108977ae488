package lume_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/lumelang/lume"
)

var astOpts = []cmp.Option{
	cmp.AllowUnexported(
		lume.Tuple[lume.Expr]{},
		lume.Tuple[lume.Pat]{},
	),
	cmpopts.EquateEmpty(),
}

// Expression construction helpers.

func intE(v int64) lume.Expr     { return lume.NewExpr(lume.IntExpr{Value: v}) }
func floatE(v float64) lume.Expr { return lume.NewExpr(lume.FloatExpr{Value: v}) }
func boolE(v bool) lume.Expr     { return lume.NewExpr(lume.BoolExpr{Value: v}) }
func strE(v string) lume.Expr    { return lume.NewExpr(lume.StrExpr{Value: v}) }
func identE(s lume.Sym) lume.Expr {
	return lume.NewExpr(lume.IdentExpr{Name: s})
}

func binE(op lume.BinOp, l, r lume.Expr) lume.Expr {
	return lume.NewExpr(lume.BinaryExpr{Op: op, Left: l, Right: r})
}

func unE(op lume.UnOp, operand lume.Expr) lume.Expr {
	return lume.NewExpr(lume.UnaryExpr{Op: op, Operand: operand})
}

func callE(fn lume.Expr, args ...lume.Entry[lume.Expr]) lume.Expr {
	return lume.NewExpr(lume.CallExpr{Fn: fn, Args: lume.FromEntries(args)})
}

func tupleE(entries ...lume.Entry[lume.Expr]) lume.Expr {
	return lume.NewExpr(lume.TupleExpr{Entries: lume.FromEntries(entries)})
}

func parseExpr(t *testing.T, source string, in *lume.Interner) lume.Expr {
	t.Helper()

	expr, err := lume.ParseExpr(source, in)
	if err != nil {
		t.Fatalf("ParseExpr(%q) error: %v", source, err)
	}

	return expr
}

func requireKind(t *testing.T, err error, kind lume.ErrorKind) {
	t.Helper()

	var syntaxErr *lume.SyntaxError
	if !errors.As(err, &syntaxErr) || syntaxErr.Kind != kind {
		t.Fatalf("error = %v, want kind %v", err, kind)
	}
}

func TestParser_Idents(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()

	for _, name := range []string{"x", "y2", "lower_snake_case", "UpperCamelCase"} {
		want := lume.NewExpr(lume.IdentExpr{Name: in.Intern(name)})
		if diff := cmp.Diff(want, parseExpr(t, name, in), astOpts...); diff != "" {
			t.Errorf("ParseExpr(%q) mismatch (-want +got):\n%s", name, diff)
		}
	}

	for _, name := range []string{"@", "@0", "@self"} {
		want := lume.NewExpr(lume.CtxIdentExpr{Name: in.Intern(name)})
		if diff := cmp.Diff(want, parseExpr(t, name, in), astOpts...); diff != "" {
			t.Errorf("ParseExpr(%q) mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestParser_Strings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{`""`, ""},
		{`"\""`, `"`},
		{`"\\"`, `\`},
		{`"\0\a\b\t\v\f\n\r"`, "\x00\x07\x08\t\x0B\x0C\n\r"},
		{`"\x00\x01\x7f"`, "\x00\x01\x7f"},
	}

	in := lume.NewInterner()

	for _, tt := range tests {
		got := parseExpr(t, tt.input, in)
		if diff := cmp.Diff(strE(tt.want), got, astOpts...); diff != "" {
			t.Errorf("ParseExpr(%s) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestParser_StringEscapeInvalid(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()

	for _, input := range []string{`"\z"`, `"\xFF"`, `"\x8f"`, `"\x1"`} {
		_, err := lume.ParseExpr(input, in)
		requireKind(t, err, lume.ErrStringEscSeqInvalid)
	}
}

func TestParser_Symbols(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()
	empty := in.Intern("")
	backslash := in.Intern(`\`)
	x := in.Intern("x")

	tests := []struct {
		input string
		want  lume.Sym
	}{
		{`''`, empty},
		{`'\\'`, backslash},
		{`'x'`, x},
	}

	for _, tt := range tests {
		got := parseExpr(t, tt.input, in)
		if diff := cmp.Diff(lume.NewExpr(lume.SymExpr{Value: tt.want}), got, astOpts...); diff != "" {
			t.Errorf("ParseExpr(%s) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestParser_Ints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"7", 7},
		{"123", 123},
		{"0777", 777},
		{"0b1010", 10},
		{"0o747", 0o747},
		{"0xfAb93", 0xfab93},
		{"9223372036854775807", 9223372036854775807},
	}

	in := lume.NewInterner()

	for _, tt := range tests {
		got := parseExpr(t, tt.input, in)
		if diff := cmp.Diff(intE(tt.want), got, astOpts...); diff != "" {
			t.Errorf("ParseExpr(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestParser_IntOverflow(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()

	for _, input := range []string{"9223372036854775808", "0x8000000000000000"} {
		_, err := lume.ParseExpr(input, in)
		requireKind(t, err, lume.ErrIntInvalid)
	}
}

func TestParser_FloatsAndBools(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()

	for input, want := range map[string]float64{"0.0": 0, "1.0": 1, "3.141592": 3.141592, "2.5e2": 250} {
		got := parseExpr(t, input, in)
		if diff := cmp.Diff(floatE(want), got, astOpts...); diff != "" {
			t.Errorf("ParseExpr(%q) mismatch (-want +got):\n%s", input, diff)
		}
	}

	for input, want := range map[string]bool{"true": true, "false": false} {
		got := parseExpr(t, input, in)
		if diff := cmp.Diff(boolE(want), got, astOpts...); diff != "" {
			t.Errorf("ParseExpr(%q) mismatch (-want +got):\n%s", input, diff)
		}
	}
}

func TestParser_Tuples(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()
	x := in.Intern("x")
	y := in.Intern("y")
	name := in.Intern("name")
	age := in.Intern("age")

	tests := []struct {
		input string
		want  lume.Expr
	}{
		{"()", tupleE()},
		{"(1)", tupleE(lume.Pos(intE(1)))},
		{"(1, 2, 3)", tupleE(lume.Pos(intE(1)), lume.Pos(intE(2)), lume.Pos(intE(3)))},
		{"(1, 2, 3,)", tupleE(lume.Pos(intE(1)), lume.Pos(intE(2)), lume.Pos(intE(3)))},
		{"(x: 1, y: 2)", tupleE(lume.Named(x, intE(1)), lume.Named(y, intE(2)))},
		{
			`("id", name: "Bob", age: 49)`,
			tupleE(lume.Pos(strE("id")), lume.Named(name, strE("Bob")), lume.Named(age, intE(49))),
		},
		// Positional after named is tolerated.
		{"(x: 1, 2)", tupleE(lume.Named(x, intE(1)), lume.Pos(intE(2)))},
	}

	for _, tt := range tests {
		got := parseExpr(t, tt.input, in)
		if diff := cmp.Diff(tt.want, got, astOpts...); diff != "" {
			t.Errorf("ParseExpr(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestParser_Lists(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()

	tests := []struct {
		input string
		want  lume.Expr
	}{
		{"[]", lume.NewExpr(lume.ListExpr{Items: []lume.Expr{}})},
		{"[1]", lume.NewExpr(lume.ListExpr{Items: []lume.Expr{intE(1)}})},
		{"[1, 2, 3]", lume.NewExpr(lume.ListExpr{Items: []lume.Expr{intE(1), intE(2), intE(3)}})},
	}

	for _, tt := range tests {
		got := parseExpr(t, tt.input, in)
		if diff := cmp.Diff(tt.want, got, astOpts...); diff != "" {
			t.Errorf("ParseExpr(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestParser_Precedence(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()

	tests := []struct {
		input string
		want  lume.Expr
	}{
		{"0 + 0", binE(lume.BinAdd, intE(0), intE(0))},
		{"0 + 0 * 0", binE(lume.BinAdd, intE(0), binE(lume.BinMul, intE(0), intE(0)))},
		{
			"0 * 0 + 0 / 0 - 0",
			binE(lume.BinSub,
				binE(lume.BinAdd,
					binE(lume.BinMul, intE(0), intE(0)),
					binE(lume.BinDiv, intE(0), intE(0))),
				intE(0)),
		},
		// Left associativity across equal binding powers.
		{"1 - 2 - 3", binE(lume.BinSub, binE(lume.BinSub, intE(1), intE(2)), intE(3))},
		// Unary binds tighter than any binary operator except the dot.
		{"2 * -1", binE(lume.BinMul, intE(2), unE(lume.UnNeg, intE(1)))},
		{"-2 ** 2", binE(lume.BinExp, unE(lume.UnNeg, intE(2)), intE(2))},
		// Comparison below arithmetic, logic below comparison.
		{
			"1 + 2 < 3 && true",
			binE(lume.BinAnd,
				binE(lume.BinLt, binE(lume.BinAdd, intE(1), intE(2)), intE(3)),
				boolE(true)),
		},
	}

	for _, tt := range tests {
		got := parseExpr(t, tt.input, in)
		if diff := cmp.Diff(tt.want, got, astOpts...); diff != "" {
			t.Errorf("ParseExpr(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestParser_CallsAndDot(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()
	f := in.Intern("f")
	g := in.Intern("g")
	h := in.Intern("h")
	x := in.Intern("x")
	y := in.Intern("y")
	z := in.Intern("z")

	tests := []struct {
		input string
		want  lume.Expr
	}{
		{
			"f(x) * g(y) + h(z)",
			binE(lume.BinAdd,
				binE(lume.BinMul,
					callE(identE(f), lume.Pos(identE(x))),
					callE(identE(g), lume.Pos(identE(y)))),
				callE(identE(h), lume.Pos(identE(z)))),
		},
		{
			"f(x)(y)",
			callE(callE(identE(f), lume.Pos(identE(x))), lume.Pos(identE(y))),
		},
		{"x.y", binE(lume.BinDot, identE(x), identE(y))},
		{"x.0", binE(lume.BinDot, identE(x), intE(0))},
		{
			"x.y.z",
			binE(lume.BinDot, binE(lume.BinDot, identE(x), identE(y)), identE(z)),
		},
		// Dot binds tighter than unary minus.
		{"-x.y", unE(lume.UnNeg, binE(lume.BinDot, identE(x), identE(y)))},
	}

	for _, tt := range tests {
		got := parseExpr(t, tt.input, in)
		if diff := cmp.Diff(tt.want, got, astOpts...); diff != "" {
			t.Errorf("ParseExpr(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestParser_Functions(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()
	x := in.Intern("x")
	y := in.Intern("y")
	z := in.Intern("z")

	tests := []struct {
		input string
		want  lume.Expr
	}{
		{
			"|x| x",
			lume.NewExpr(lume.FnExpr{
				Params: lume.FromEntries([]lume.Entry[lume.Pat]{lume.Pos[lume.Pat](lume.IdentPat{Name: x})}),
				Body:   identE(x),
			}),
		},
		{
			"|x, y, z| x(y, z)",
			lume.NewExpr(lume.FnExpr{
				Params: lume.FromEntries([]lume.Entry[lume.Pat]{
					lume.Pos[lume.Pat](lume.IdentPat{Name: x}),
					lume.Pos[lume.Pat](lume.IdentPat{Name: y}),
					lume.Pos[lume.Pat](lume.IdentPat{Name: z}),
				}),
				Body: callE(identE(x), lume.Pos(identE(y)), lume.Pos(identE(z))),
			}),
		},
		{
			"|_| 1",
			lume.NewExpr(lume.FnExpr{
				Params: lume.FromEntries([]lume.Entry[lume.Pat]{lume.Pos[lume.Pat](lume.WildPat{})}),
				Body:   intE(1),
			}),
		},
	}

	for _, tt := range tests {
		got := parseExpr(t, tt.input, in)
		if diff := cmp.Diff(tt.want, got, astOpts...); diff != "" {
			t.Errorf("ParseExpr(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestParser_Blocks(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()
	x := in.Intern("x")
	y := in.Intern("y")

	tests := []struct {
		input string
		want  lume.Expr
	}{
		{"{}", lume.NewExpr(lume.VoidExpr{})},
		{"{{{{{}}}}}", lume.NewExpr(lume.VoidExpr{})},
		// A block holding exactly one expression statement is that
		// expression.
		{"{{1}}", intE(1)},
		{
			"{ let x = 0, let y = 1, [x, y] }",
			lume.NewExpr(lume.BlockExpr{Stmts: []lume.Stmt{
				lume.LetStmt{Pat: lume.IdentPat{Name: x}, Value: intE(0)},
				lume.LetStmt{Pat: lume.IdentPat{Name: y}, Value: intE(1)},
				lume.ExprStmt{Expr: lume.NewExpr(lume.ListExpr{Items: []lume.Expr{identE(x), identE(y)}})},
			}}),
		},
		// Newlines separate statements via auto-comma.
		{
			"{\n let x = 0\n let y = 1\n [x, y]\n }",
			lume.NewExpr(lume.BlockExpr{Stmts: []lume.Stmt{
				lume.LetStmt{Pat: lume.IdentPat{Name: x}, Value: intE(0)},
				lume.LetStmt{Pat: lume.IdentPat{Name: y}, Value: intE(1)},
				lume.ExprStmt{Expr: lume.NewExpr(lume.ListExpr{Items: []lume.Expr{identE(x), identE(y)}})},
			}}),
		},
	}

	for _, tt := range tests {
		got := parseExpr(t, tt.input, in)
		if diff := cmp.Diff(tt.want, got, astOpts...); diff != "" {
			t.Errorf("ParseExpr(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestParser_IfElse(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()
	x := in.Intern("x")
	y := in.Intern("y")

	want := lume.NewExpr(lume.IfElseExpr{
		Cond: binE(lume.BinLt, identE(x), identE(y)),
		Then: identE(x),
		Else: lume.NewExpr(lume.IfElseExpr{
			Cond: binE(lume.BinLt, identE(y), intE(10)),
			Then: identE(y),
			Else: intE(10),
		}),
	})

	got := parseExpr(t, "if x < y { x } else if y < 10 { y } else { 10 }", in)
	if diff := cmp.Diff(want, got, astOpts...); diff != "" {
		t.Errorf("if-else chain mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_ForReserved(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()

	_, err := lume.ParseExpr("for x", in)
	requireKind(t, err, lume.ErrInvalidToken)
}

func TestParser_LetFunctionSugar(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()
	f := in.Intern("f")
	x := in.Intern("x")

	want := lume.LetStmt{
		Pat: lume.IdentPat{Name: f},
		Value: lume.NewExpr(lume.FnExpr{
			Params: lume.FromEntries([]lume.Entry[lume.Pat]{lume.Pos[lume.Pat](lume.IdentPat{Name: x})}),
			Body:   binE(lume.BinAdd, identE(x), intE(1)),
		}),
	}

	got, err := lume.ParseStmt("let f(x) = x + 1", in)
	if err != nil {
		t.Fatalf("ParseStmt error: %v", err)
	}

	if diff := cmp.Diff(lume.Stmt(want), got, astOpts...); diff != "" {
		t.Errorf("let sugar mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_LiteralPatterns(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()
	x := in.Intern("x")
	ok := in.Intern("ok")

	got, err := lume.ParseStmt(`let ('ok', 1, true, x) = y`, in)
	if err != nil {
		t.Fatalf("ParseStmt error: %v", err)
	}

	want := lume.Stmt(lume.LetStmt{
		Pat: lume.TuplePat{Entries: lume.FromEntries([]lume.Entry[lume.Pat]{
			lume.Pos[lume.Pat](lume.SymPat{Value: ok}),
			lume.Pos[lume.Pat](lume.IntPat{Value: 1}),
			lume.Pos[lume.Pat](lume.BoolPat{Value: true}),
			lume.Pos[lume.Pat](lume.IdentPat{Name: x}),
		})},
		Value: identE(in.Intern("y")),
	})

	if diff := cmp.Diff(want, got, astOpts...); diff != "" {
		t.Errorf("literal pattern mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_Delimiters(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()

	for _, input := range []string{"(1, 2", "[1, 2", "{ let x = 1"} {
		_, err := lume.ParseExpr(input, in)
		requireKind(t, err, lume.ErrDelimiters)
	}
}

func TestParser_Module(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()
	x := in.Intern("x")
	y := in.Intern("y")
	z := in.Intern("z")
	w := in.Intern("w")
	q := in.Intern("q")

	source := "\nuse {\n    x.y.z (w)\n}\nlet q = w\n"

	got, err := lume.ParseModule(source, in)
	if err != nil {
		t.Fatalf("ParseModule error: %v", err)
	}

	want := &lume.Mod{
		Deps: []lume.Dep{{
			Path:     lume.ModPath{Local: false, Segments: []lume.Sym{x, y, z}},
			Bindings: []lume.Binding{{Source: w, Dest: w}},
		}},
		Defs: []lume.Stmt{
			lume.LetStmt{Pat: lume.IdentPat{Name: q}, Value: identE(w)},
		},
	}

	if diff := cmp.Diff(want, got, astOpts...); diff != "" {
		t.Errorf("module mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_LocalDep(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()
	a := in.Intern("a")
	x := in.Intern("x")
	y := in.Intern("y")

	got, err := lume.ParseModule("use { .a (x) }\nlet y = x", in)
	if err != nil {
		t.Fatalf("ParseModule error: %v", err)
	}

	want := &lume.Mod{
		Deps: []lume.Dep{{
			Path:     lume.ModPath{Local: true, Segments: []lume.Sym{a}},
			Bindings: []lume.Binding{{Source: x, Dest: x}},
		}},
		Defs: []lume.Stmt{
			lume.LetStmt{Pat: lume.IdentPat{Name: y}, Value: identE(x)},
		},
	}

	if diff := cmp.Diff(want, got, astOpts...); diff != "" {
		t.Errorf("module mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_NoUnboundExprAtModuleLevel(t *testing.T) {
	t.Parallel()

	in := lume.NewInterner()

	_, err := lume.ParseModule("let x = 1\nx + 1\n", in)
	requireKind(t, err, lume.ErrNoUnboundExprAtModuleLevel)
}
