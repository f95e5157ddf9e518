package expr

import (
	"fmt"

	"github.com/atlekbai/dynquery/internal/ident"
	"github.com/atlekbai/dynquery/internal/qerr"
)

// Field is one name/value entry of a record or criteria mapping.
type Field struct {
	Name  string
	Value any
}

// Fields is an ordered column→value mapping. It is used both for record
// payloads (insert/update bodies) and for equality criteria. Names are
// compared in homogenized form; insertion order is preserved.
type Fields []Field

// F is shorthand for building a Field.
func F(name string, value any) Field { return Field{Name: name, Value: value} }

// NewFields builds a mapping from fields, later duplicates replacing
// earlier ones in place.
func NewFields(fields ...Field) Fields {
	var out Fields
	for _, f := range fields {
		out = out.Set(f.Name, f.Value)
	}
	return out
}

func (fs Fields) index(name string) int {
	key := ident.Homogenize(name)
	for i, f := range fs {
		if ident.Homogenize(f.Name) == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under name.
func (fs Fields) Get(name string) (any, bool) {
	if i := fs.index(name); i >= 0 {
		return fs[i].Value, true
	}
	return nil, false
}

// Has reports whether name is present.
func (fs Fields) Has(name string) bool { return fs.index(name) >= 0 }

// Set returns a mapping with name set to value, keeping its position when
// the name already exists.
func (fs Fields) Set(name string, value any) Fields {
	out := fs.Clone()
	if i := out.index(name); i >= 0 {
		out[i].Value = value
		return out
	}
	return append(out, Field{Name: name, Value: value})
}

// Without returns a copy with the named entries removed.
func (fs Fields) Without(names ...string) Fields {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[ident.Homogenize(n)] = true
	}
	out := make(Fields, 0, len(fs))
	for _, f := range fs {
		if !drop[ident.Homogenize(f.Name)] {
			out = append(out, f)
		}
	}
	return out
}

// NonNil returns a copy without nil-valued entries.
func (fs Fields) NonNil() Fields {
	out := make(Fields, 0, len(fs))
	for _, f := range fs {
		if f.Value != nil {
			out = append(out, f)
		}
	}
	return out
}

// Names returns the entry names in order.
func (fs Fields) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// Values returns the entry values in order.
func (fs Fields) Values() []any {
	values := make([]any, len(fs))
	for i, f := range fs {
		values[i] = f.Value
	}
	return values
}

func (fs Fields) Clone() Fields {
	if fs == nil {
		return nil
	}
	out := make(Fields, len(fs))
	copy(out, fs)
	return out
}

// FromCriteria converts an equality mapping into a left-deep conjunction of
// table.column == value leaves, in insertion order.
func FromCriteria(table string, criteria Fields) (*Expr, error) {
	if len(criteria) == 0 {
		return nil, fmt.Errorf("%w: no criteria for table %q", qerr.ErrEmptyCriteria, table)
	}
	leaves := make([]*Expr, len(criteria))
	for i, f := range criteria {
		leaves[i] = Ref(table, f.Name).Eq(f.Value)
	}
	return And(leaves...), nil
}
