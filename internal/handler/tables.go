package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atlekbai/dynquery/internal/qerr"
	"github.com/atlekbai/dynquery/internal/schema"
)

// Catalog is the read side of the schema cache.
type Catalog interface {
	Tables() []*schema.Table
	FindTable(name string) (*schema.Table, error)
}

type tableJSON struct {
	Name        string       `json:"name"`
	Schema      string       `json:"schema,omitempty"`
	Columns     []columnJSON `json:"columns"`
	Keys        []string     `json:"keys"`
	ForeignKeys []fkJSON     `json:"foreign_keys,omitempty"`
}

type columnJSON struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Nullable bool   `json:"nullable,omitempty"`
}

type fkJSON struct {
	Name          string   `json:"name,omitempty"`
	MasterTable   string   `json:"master_table"`
	MasterColumns []string `json:"master_columns"`
	DetailColumns []string `json:"detail_columns"`
}

func toTableJSON(t *schema.Table) tableJSON {
	out := tableJSON{
		Name:    t.ActualName,
		Schema:  t.Schema,
		Columns: make([]columnJSON, len(t.Columns)),
		Keys:    t.KeyColumnNames,
	}
	if out.Keys == nil {
		out.Keys = []string{}
	}
	for i, c := range t.Columns {
		out.Columns[i] = columnJSON{Name: c.Name, Type: c.Type, Nullable: c.Nullable}
	}
	for _, fk := range t.ForeignKeys {
		out.ForeignKeys = append(out.ForeignKeys, fkJSON{
			Name:          fk.Name,
			MasterTable:   fk.MasterTable,
			MasterColumns: fk.MasterColumns,
			DetailColumns: fk.DetailColumns,
		})
	}
	return out
}

// Tables serves the schema cache.
type Tables struct {
	catalog Catalog
}

func NewTables(catalog Catalog) Tables {
	return Tables{catalog: catalog}
}

// Index handle GET /
func (t Tables) Index(c *gin.Context) {
	tables := t.catalog.Tables()
	out := make([]tableJSON, len(tables))
	for i, tbl := range tables {
		out[i] = toTableJSON(tbl)
	}
	c.JSON(http.StatusOK, out)
}

// Show handle GET /:table
func (t Tables) Show(c *gin.Context) {
	tbl, err := t.catalog.FindTable(c.Param("table"))
	if errors.Is(err, qerr.ErrUnknownTable) {
		writeError(c, http.StatusNotFound, "TABLE_NOT_FOUND", "Table not found", err.Error())
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "INTERNAL", "Schema lookup failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, toTableJSON(tbl))
}

// Mount handlers to router group.
func (t Tables) Mount(router *gin.RouterGroup) {
	router.GET("", t.Index)
	router.GET("/:table", t.Show)
}
