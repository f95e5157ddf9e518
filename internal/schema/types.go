package schema

import (
	"github.com/atlekbai/dynquery/internal/ident"
)

type Column struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type,omitempty"`
	Nullable bool   `yaml:"nullable,omitempty"`
}

// ForeignKey links a detail table's columns to a master table's unique
// columns. MasterColumns[i] pairs with DetailColumns[i].
type ForeignKey struct {
	Name          string   `yaml:"name,omitempty"`
	MasterTable   string   `yaml:"master_table"`
	MasterColumns []string `yaml:"master_columns"`
	DetailTable   string   `yaml:"detail_table"`
	DetailColumns []string `yaml:"detail_columns"`
}

// Valid reports whether both column lists are non-empty and the same length.
func (fk *ForeignKey) Valid() bool {
	return len(fk.MasterColumns) > 0 && len(fk.MasterColumns) == len(fk.DetailColumns)
}

// Table is read-only metadata for one table. ForeignKeys holds the keys
// declared on this table, i.e. the ones where it is the detail side.
type Table struct {
	Schema         string
	ActualName     string
	Columns        []Column
	KeyColumnNames []string
	ForeignKeys    []ForeignKey

	columnsByName map[string]*Column
}

// NewTable builds a Table and indexes its columns by homogenized name.
func NewTable(name string, columns []Column, keys []string, fks []ForeignKey) *Table {
	t := &Table{
		ActualName:     name,
		Columns:        columns,
		KeyColumnNames: keys,
		ForeignKeys:    fks,
	}
	t.index()
	return t
}

func (t *Table) index() {
	t.columnsByName = make(map[string]*Column, len(t.Columns))
	for i := range t.Columns {
		t.columnsByName[ident.Homogenize(t.Columns[i].Name)] = &t.Columns[i]
	}
}

// FindColumn looks a column up by any spelling that homogenizes to its name.
func (t *Table) FindColumn(name string) (*Column, bool) {
	c, ok := t.columnsByName[ident.Homogenize(name)]
	return c, ok
}

// ForeignKeysTo returns the keys declared on t that reference master.
// Keys whose column lists do not pair up are skipped.
func (t *Table) ForeignKeysTo(master string) []ForeignKey {
	var out []ForeignKey
	key := ident.Homogenize(master)
	for _, fk := range t.ForeignKeys {
		if !fk.Valid() {
			continue
		}
		if ident.Homogenize(fk.MasterTable) == key {
			out = append(out, fk)
		}
	}
	return out
}
