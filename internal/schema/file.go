package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileSchema is the on-disk form of a schema description:
//
//	dialect: sqlserver
//	tables:
//	  - name: Users
//	    columns: [Id, Name]
//	    keys: [Id]
//	  - name: Orders
//	    columns: [Id, UserId]
//	    keys: [Id]
//	    foreign_keys:
//	      - master_table: Users
//	        master_columns: [Id]
//	        detail_columns: [UserId]
type fileSchema struct {
	Dialect string      `yaml:"dialect"`
	Tables  []fileTable `yaml:"tables"`
}

type fileTable struct {
	Name        string       `yaml:"name"`
	Schema      string       `yaml:"schema"`
	Columns     []Column     `yaml:"columns"`
	Keys        []string     `yaml:"keys"`
	ForeignKeys []ForeignKey `yaml:"foreign_keys"`
}

// LoadFile reads a YAML schema description. A non-empty dialect overrides
// the one named in the file.
func LoadFile(path, dialect string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return ParseYAML(data, dialect)
}

// ParseYAML builds a cache from a YAML schema description.
func ParseYAML(data []byte, dialect string) (*Cache, error) {
	var fs fileSchema
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("parse schema file: %w", err)
	}

	if dialect == "" {
		dialect = fs.Dialect
	}
	if dialect == "" {
		dialect = "sqlserver"
	}
	d, err := DialectByName(dialect)
	if err != nil {
		return nil, err
	}

	tables := make([]*Table, 0, len(fs.Tables))
	for _, ft := range fs.Tables {
		if ft.Name == "" {
			return nil, fmt.Errorf("schema file: table without a name")
		}
		for i := range ft.ForeignKeys {
			fk := &ft.ForeignKeys[i]
			if fk.DetailTable == "" {
				fk.DetailTable = ft.Name
			}
			if !fk.Valid() {
				return nil, fmt.Errorf("schema file: foreign key %q on %q pairs %d master columns with %d detail columns",
					fk.Name, ft.Name, len(fk.MasterColumns), len(fk.DetailColumns))
			}
		}
		t := NewTable(ft.Name, ft.Columns, ft.Keys, ft.ForeignKeys)
		t.Schema = ft.Schema
		tables = append(tables, t)
	}

	return NewCacheFromTables(d, tables...), nil
}

// UnmarshalYAML accepts either a bare column name or a mapping.
func (c *Column) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		c.Name = n.Value
		return nil
	}
	type plain Column
	return n.Decode((*plain)(c))
}
