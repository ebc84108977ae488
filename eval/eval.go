package eval

import (
	"math"

	"github.com/lumelang/lume"
)

// EvalExpr reduces an expression to a value under a lexical scope and a
// context scope. Evaluation is synchronous and runs to completion or to the
// first error.
func EvalExpr(expr lume.Expr, scope, ctx *Scope) (Value, error) {
	switch kind := expr.Kind.(type) {
	case lume.VoidExpr:
		return nil, ErrVoid
	case lume.IdentExpr:
		value, ok := scope.Lookup(kind.Name)
		if !ok {
			return nil, ErrUnbound
		}

		return value, nil
	case lume.CtxIdentExpr:
		value, ok := ctx.Lookup(kind.Name)
		if !ok {
			return nil, ErrUnbound
		}

		return value, nil
	case lume.SymExpr:
		return Sym(kind.Value), nil
	case lume.StrExpr:
		return Str(kind.Value), nil
	case lume.IntExpr:
		return Int(kind.Value), nil
	case lume.FloatExpr:
		return Float(kind.Value), nil
	case lume.BoolExpr:
		return Bool(kind.Value), nil
	case lume.TupleExpr:
		return evalTuple(kind.Entries, scope, ctx)
	case lume.ListExpr:
		result := make(List, 0, len(kind.Items))

		for _, item := range kind.Items {
			value, err := EvalExpr(item, scope, ctx)
			if err != nil {
				return nil, err
			}

			result = append(result, value)
		}

		return result, nil
	case lume.UnaryExpr:
		return evalUnary(kind, scope, ctx)
	case lume.BinaryExpr:
		return evalBinary(kind, scope, ctx)
	case lume.BlockExpr:
		blockScope := NewScope(scope)

		for _, stmt := range kind.Stmts {
			value, err := EvalStmt(stmt, blockScope, ctx)
			if err != nil {
				return nil, err
			}

			if value != nil {
				return value, nil
			}
		}

		return nil, ErrVoid
	case lume.IfElseExpr:
		cond, err := EvalExpr(kind.Cond, scope, ctx)
		if err != nil {
			return nil, err
		}

		taken, ok := cond.(Bool)
		if !ok {
			return nil, ErrTypes
		}

		if taken {
			return EvalExpr(kind.Then, scope, ctx)
		}

		return EvalExpr(kind.Else, scope, ctx)
	case lume.FnExpr:
		return &Fn{Params: kind.Params, Body: kind.Body, Scope: scope}, nil
	case lume.CallExpr:
		return evalCall(kind, scope, ctx)
	default:
		return nil, ErrTypes
	}
}

func evalTuple(entries lume.Tuple[lume.Expr], scope, ctx *Scope) (Value, error) {
	var result lume.Tuple[Value]

	for e := range entries.All() {
		value, err := EvalExpr(e.Value, scope, ctx)
		if err != nil {
			return nil, err
		}

		if e.Named {
			result.Insert(e.Key, value)
		} else {
			result.Push(value)
		}
	}

	return Tuple{Entries: result}, nil
}

func evalUnary(expr lume.UnaryExpr, scope, ctx *Scope) (Value, error) {
	operand, err := EvalExpr(expr.Operand, scope, ctx)
	if err != nil {
		return nil, err
	}

	switch expr.Op {
	case lume.UnNeg:
		switch v := operand.(type) {
		case Int:
			return -v, nil
		case Float:
			return -v, nil
		}
	case lume.UnBitNot:
		if v, ok := operand.(Int); ok {
			return ^v, nil
		}
	case lume.UnNot:
		// Reserved.
	}

	return nil, ErrTypes
}

func evalBinary(expr lume.BinaryExpr, scope, ctx *Scope) (Value, error) {
	switch expr.Op {
	case lume.BinDot:
		return evalDot(expr, scope, ctx)
	case lume.BinAnd, lume.BinOr:
		return evalShortCircuit(expr, scope, ctx)
	}

	left, err := EvalExpr(expr.Left, scope, ctx)
	if err != nil {
		return nil, err
	}

	right, err := EvalExpr(expr.Right, scope, ctx)
	if err != nil {
		return nil, err
	}

	switch expr.Op {
	case lume.BinAdd:
		switch a := left.(type) {
		case Int:
			if b, ok := right.(Int); ok {
				return a + b, nil
			}
		case Float:
			if b, ok := right.(Float); ok {
				return a + b, nil
			}
		}
	case lume.BinSub:
		switch a := left.(type) {
		case Int:
			if b, ok := right.(Int); ok {
				return a - b, nil
			}
		case Float:
			if b, ok := right.(Float); ok {
				return a - b, nil
			}
		}
	case lume.BinMul:
		switch a := left.(type) {
		case Int:
			if b, ok := right.(Int); ok {
				return a * b, nil
			}
		case Float:
			if b, ok := right.(Float); ok {
				return a * b, nil
			}
		}
	case lume.BinDiv:
		switch a := left.(type) {
		case Int:
			if b, ok := right.(Int); ok {
				if b == 0 {
					return nil, ErrDivideByZero
				}

				return a / b, nil
			}
		case Float:
			if b, ok := right.(Float); ok {
				return a / b, nil
			}
		}
	case lume.BinMod:
		if a, ok := left.(Int); ok {
			if b, ok := right.(Int); ok {
				if b == 0 {
					return nil, ErrDivideByZero
				}

				return a % b, nil
			}
		}
	case lume.BinExp:
		switch a := left.(type) {
		case Int:
			if b, ok := right.(Int); ok {
				return ipow(a, b)
			}
		case Float:
			if b, ok := right.(Float); ok {
				return fpow(a, b), nil
			}
		}
	case lume.BinEq:
		eq, ok := equal(left, right)
		if !ok {
			return nil, ErrTypes
		}

		return Bool(eq), nil
	case lume.BinNotEq:
		eq, ok := equal(left, right)
		if !ok {
			return nil, ErrTypes
		}

		return Bool(!eq), nil
	case lume.BinLt:
		return compare(left, right, func(c int) bool { return c < 0 })
	case lume.BinLtEq:
		return compare(left, right, func(c int) bool { return c <= 0 })
	case lume.BinGt:
		return compare(left, right, func(c int) bool { return c > 0 })
	case lume.BinGtEq:
		return compare(left, right, func(c int) bool { return c >= 0 })
	case lume.BinBitAnd, lume.BinBitOr, lume.BinXor, lume.BinShiftL, lume.BinShiftR:
		// Reserved.
	}

	return nil, ErrTypes
}

// evalDot looks up a tuple member. The right operand must be a bare
// identifier for named lookup or an integer literal indexing the positional
// prefix.
func evalDot(expr lume.BinaryExpr, scope, ctx *Scope) (Value, error) {
	left, err := EvalExpr(expr.Left, scope, ctx)
	if err != nil {
		return nil, err
	}

	tuple, ok := left.(Tuple)
	if !ok {
		return nil, ErrTypes
	}

	switch key := expr.Right.Kind.(type) {
	case lume.IdentExpr:
		value, ok := tuple.Entries.Get(key.Name)
		if !ok {
			return nil, ErrKeyNotFound
		}

		return value, nil
	case lume.IntExpr:
		if key.Value < 0 {
			return nil, ErrKeyNotFound
		}

		value, ok := tuple.Entries.At(int(key.Value))
		if !ok {
			return nil, ErrKeyNotFound
		}

		return value, nil
	default:
		return nil, ErrTypes
	}
}

// evalShortCircuit handles && and ||. The left operand must be boolean; the
// right is only evaluated when it decides the result, and must then be
// boolean too.
func evalShortCircuit(expr lume.BinaryExpr, scope, ctx *Scope) (Value, error) {
	left, err := EvalExpr(expr.Left, scope, ctx)
	if err != nil {
		return nil, err
	}

	decided, ok := left.(Bool)
	if !ok {
		return nil, ErrTypes
	}

	if (expr.Op == lume.BinAnd && !bool(decided)) || (expr.Op == lume.BinOr && bool(decided)) {
		return decided, nil
	}

	right, err := EvalExpr(expr.Right, scope, ctx)
	if err != nil {
		return nil, err
	}

	value, ok := right.(Bool)
	if !ok {
		return nil, ErrTypes
	}

	return value, nil
}

// compare orders two values. Ordering is defined on strings, ints, and
// floats only; floats follow IEEE 754, so any comparison against NaN is
// false.
func compare(left, right Value, want func(int) bool) (Value, error) {
	switch a := left.(type) {
	case Str:
		if b, ok := right.(Str); ok {
			switch {
			case a < b:
				return Bool(want(-1)), nil
			case a > b:
				return Bool(want(1)), nil
			default:
				return Bool(want(0)), nil
			}
		}
	case Int:
		if b, ok := right.(Int); ok {
			switch {
			case a < b:
				return Bool(want(-1)), nil
			case a > b:
				return Bool(want(1)), nil
			default:
				return Bool(want(0)), nil
			}
		}
	case Float:
		if b, ok := right.(Float); ok {
			switch {
			case a < b:
				return Bool(want(-1)), nil
			case a > b:
				return Bool(want(1)), nil
			case a == b:
				return Bool(want(0)), nil
			default:
				// NaN on either side: no ordering holds.
				return Bool(false), nil
			}
		}
	}

	return nil, ErrTypes
}

// ipow raises an integer to a non-negative integer power. A negative
// exponent has no integer result.
func ipow(base, exp Int) (Value, error) {
	if exp < 0 {
		return nil, ErrTypes
	}

	result := Int(1)
	for ; exp > 0; exp-- {
		result *= base
	}

	return result, nil
}

func fpow(base, exp Float) Float {
	return Float(math.Pow(float64(base), float64(exp)))
}

func evalCall(expr lume.CallExpr, scope, ctx *Scope) (Value, error) {
	callee, err := EvalExpr(expr.Fn, scope, ctx)
	if err != nil {
		return nil, err
	}

	fn, ok := callee.(*Fn)
	if !ok {
		return nil, ErrTypes
	}

	var args lume.Tuple[Value]

	for e := range expr.Args.All() {
		value, err := EvalExpr(e.Value, scope, ctx)
		if err != nil {
			return nil, err
		}

		if e.Named {
			args.Insert(e.Key, value)
		} else {
			args.Push(value)
		}
	}

	callScope := NewScope(fn.Scope)

	err = bindTuple(callScope, ctx, &fn.Params, &args)
	if err != nil {
		return nil, err
	}

	return EvalExpr(fn.Body, callScope, ctx)
}

// bindTuple matches a pattern tuple against a value tuple: positional
// sub-patterns consume consecutive positional values from index zero, named
// sub-patterns look up by key.
func bindTuple(scope, ctx *Scope, pats *lume.Tuple[lume.Pat], values *lume.Tuple[Value]) error {
	i := 0

	for e := range pats.All() {
		var (
			value Value
			ok    bool
		)

		if e.Named {
			value, ok = values.Get(e.Key)
		} else {
			value, ok = values.At(i)
			i++
		}

		if !ok {
			return ErrMismatch
		}

		err := bind(scope, ctx, e.Value, value)
		if err != nil {
			return err
		}
	}

	return nil
}

// bind matches one pattern against one value, inserting identifier bindings
// into the lexical scope and context bindings into the context scope.
func bind(scope, ctx *Scope, pat lume.Pat, value Value) error {
	switch p := pat.(type) {
	case lume.WildPat:
		return nil
	case lume.IdentPat:
		scope.Bind(p.Name, value)
		return nil
	case lume.CtxIdentPat:
		ctx.Bind(p.Name, value)
		return nil
	case lume.SymPat:
		if v, ok := value.(Sym); ok && v == Sym(p.Value) {
			return nil
		}

		return ErrMismatch
	case lume.StrPat:
		if v, ok := value.(Str); ok && v == Str(p.Value) {
			return nil
		}

		return ErrMismatch
	case lume.IntPat:
		if v, ok := value.(Int); ok && v == Int(p.Value) {
			return nil
		}

		return ErrMismatch
	case lume.FloatPat:
		if v, ok := value.(Float); ok && v == Float(p.Value) {
			return nil
		}

		return ErrMismatch
	case lume.BoolPat:
		if v, ok := value.(Bool); ok && v == Bool(p.Value) {
			return nil
		}

		return ErrMismatch
	case lume.TuplePat:
		if v, ok := value.(Tuple); ok {
			return bindTuple(scope, ctx, &p.Entries, &v.Entries)
		}

		return ErrMismatch
	case lume.ListPat:
		v, ok := value.(List)
		if !ok || len(v) != len(p.Items) {
			return ErrMismatch
		}

		for i, item := range p.Items {
			err := bind(scope, ctx, item, v[i])
			if err != nil {
				return err
			}
		}

		return nil
	default:
		return ErrMismatch
	}
}

// EvalStmt executes one statement. A let binds and yields nil; an expression
// statement yields its value.
func EvalStmt(stmt lume.Stmt, scope, ctx *Scope) (Value, error) {
	switch s := stmt.(type) {
	case lume.LetStmt:
		value, err := EvalExpr(s.Value, scope, ctx)
		if err != nil {
			return nil, err
		}

		return nil, bind(scope, ctx, s.Pat, value)
	case lume.ExprStmt:
		return EvalExpr(s.Expr, scope, ctx)
	default:
		return nil, ErrTypes
	}
}

// Module is an evaluated module: its declared dependencies and the scope its
// definitions were bound in.
type Module struct {
	Deps  []lume.Dep
	Scope *Scope
}

// EvalModule evaluates a module's definitions into scope. Dependency
// resolution happens before this call; the session binds imported names into
// scope first.
func EvalModule(mod *lume.Mod, scope, ctx *Scope) (*Module, error) {
	for _, def := range mod.Defs {
		_, err := EvalStmt(def, scope, ctx)
		if err != nil {
			return nil, err
		}
	}

	return &Module{Deps: mod.Deps, Scope: scope}, nil
}
