// Package exec runs compiled statements against a database.
package exec

import (
	"context"

	"github.com/atlekbai/dynquery/internal/render"
)

// Result is the outcome of one statement. Selects fill Columns and Rows;
// every other statement reports RowsAffected.
type Result struct {
	Columns      []string
	Rows         []map[string]any
	RowsAffected int64
}

// Executor runs a statement.
type Executor interface {
	Exec(ctx context.Context, st *render.Statement) (*Result, error)
}

// single trims rows to the first for statements expecting one row.
func single(st *render.Statement, rows []map[string]any) []map[string]any {
	if st.Single && len(rows) > 1 {
		return rows[:1]
	}
	return rows
}
