package intent

import "github.com/atlekbai/dynquery/internal/expr"

// Arg is one call argument. Named arguments form a record or criteria
// bundle; unnamed ones are positional values, expr.Fields records or
// *expr.Expr filters.
type Arg struct {
	Name  string
	Value any
}

func Named(name string, value any) Arg { return Arg{Name: name, Value: value} }
func Value(value any) Arg              { return Arg{Value: value} }

func (a Arg) IsNamed() bool { return a.Name != "" }

// Args is shorthand for a list of positional values.
func Args(values ...any) []Arg {
	out := make([]Arg, len(values))
	for i, v := range values {
		out[i] = Value(v)
	}
	return out
}

func allNamed(args []Arg) bool {
	if len(args) == 0 {
		return false
	}
	for _, a := range args {
		if !a.IsNamed() {
			return false
		}
	}
	return true
}

// bundle turns named arguments into a record, nil values included.
func bundle(args []Arg) expr.Fields {
	var fs expr.Fields
	for _, a := range args {
		fs = fs.Set(a.Name, a.Value)
	}
	return fs
}

func single[T any](args []Arg) (T, bool) {
	var zero T
	if len(args) != 1 || args[0].IsNamed() {
		return zero, false
	}
	v, ok := args[0].Value.(T)
	return v, ok
}
