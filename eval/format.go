package eval

import (
	"strconv"
	"strings"

	"github.com/lumelang/lume"
)

// FormatValue renders a value for display, REPL-style. Symbols and strings
// print in their literal form; functions print their parameter list with the
// body elided.
func FormatValue(value Value, interner *lume.Interner) string {
	var b strings.Builder

	writeValue(&b, value, interner)

	return b.String()
}

func writeValue(b *strings.Builder, value Value, interner *lume.Interner) {
	switch v := value.(type) {
	case Bool:
		b.WriteString(strconv.FormatBool(bool(v)))
	case Sym:
		b.WriteByte('\'')
		b.WriteString(interner.Lookup(lume.Sym(v)))
		b.WriteByte('\'')
	case Str:
		b.WriteString(strconv.Quote(string(v)))
	case Int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case Float:
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 64))
	case Tuple:
		b.WriteByte('(')

		first := true
		for e := range v.Entries.All() {
			if !first {
				b.WriteString(", ")
			}
			first = false

			if e.Named {
				b.WriteString(interner.Lookup(e.Key))
				b.WriteString(": ")
			}

			writeValue(b, e.Value, interner)
		}

		b.WriteByte(')')
	case List:
		b.WriteByte('[')

		for i, item := range v {
			if i > 0 {
				b.WriteString(", ")
			}

			writeValue(b, item, interner)
		}

		b.WriteByte(']')
	case *Fn:
		b.WriteString(lume.FormatPat(lume.TuplePat{Entries: v.Params}, interner))
		b.WriteString(" -> ...")
	default:
		b.WriteString("?")
	}
}
