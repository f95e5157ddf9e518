package schema

import (
	"fmt"
	"sync"

	"github.com/go-openapi/inflect"

	"github.com/atlekbai/dynquery/internal/ident"
	"github.com/atlekbai/dynquery/internal/qerr"
)

// Source is the read-only schema view consumed by the query engine.
type Source interface {
	FindTable(name string) (*Table, error)
	Dialect() Dialect
}

// Cache holds the table metadata of one database. It is loaded once and then
// read concurrently by every request; Replace swaps the whole set atomically.
type Cache struct {
	mu      sync.RWMutex
	dialect Dialect
	tables  map[string]*Table
	order   []*Table
}

func NewCache(d Dialect) *Cache {
	return &Cache{
		dialect: d,
		tables:  make(map[string]*Table),
	}
}

// NewCacheFromTables creates a cache pre-populated with tables.
func NewCacheFromTables(d Dialect, tables ...*Table) *Cache {
	c := NewCache(d)
	c.Replace(tables)
	return c
}

// Replace installs a new table set.
func (c *Cache) Replace(tables []*Table) {
	byName := make(map[string]*Table, len(tables))
	order := make([]*Table, 0, len(tables))
	for _, t := range tables {
		if t.columnsByName == nil {
			t.index()
		}
		byName[ident.Homogenize(t.ActualName)] = t
		order = append(order, t)
	}

	c.mu.Lock()
	c.tables = byName
	c.order = order
	c.mu.Unlock()
}

// FindTable resolves name to a table. Names match in homogenized form; when
// no table matches exactly, the plural and singular forms are tried, so
// "User" finds "Users" and "people" finds "person".
func (c *Cache) FindTable(name string) (*Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, candidate := range []string{name, inflect.Pluralize(name), inflect.Singularize(name)} {
		if t, ok := c.tables[ident.Homogenize(candidate)]; ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", qerr.ErrUnknownTable, name)
}

// KeyColumnNames returns the primary key columns of table.
func (c *Cache) KeyColumnNames(table string) ([]string, error) {
	t, err := c.FindTable(table)
	if err != nil {
		return nil, err
	}
	return t.KeyColumnNames, nil
}

// Tables returns the loaded tables in load order.
func (c *Cache) Tables() []*Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Table, len(c.order))
	copy(out, c.order)
	return out
}

// TableCount returns the number of loaded tables.
func (c *Cache) TableCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func (c *Cache) Dialect() Dialect { return c.dialect }

// QuoteIdentifier quotes name with the cache's dialect.
func (c *Cache) QuoteIdentifier(name string) string {
	return c.dialect.QuoteIdentifier(name)
}
