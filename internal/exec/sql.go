package exec

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atlekbai/dynquery/internal/render"
)

// DB is the subset of *sql.DB used to run statements.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLExecutor runs statements through database/sql, for the mysql, sqlite
// and lib/pq drivers.
type SQLExecutor struct {
	db DB
}

func NewSQLExecutor(db DB) *SQLExecutor {
	return &SQLExecutor{db: db}
}

func (e *SQLExecutor) Exec(ctx context.Context, st *render.Statement) (*Result, error) {
	if st.Op != render.OpSelect {
		res, err := e.db.ExecContext(ctx, st.SQL, st.Args...)
		if err != nil {
			return nil, fmt.Errorf("exec %s %s: %w", st.Op, st.Table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected %s: %w", st.Table, err)
		}
		return &Result{RowsAffected: n}, nil
	}

	rows, err := e.db.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", st.Table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", st.Table, err)
	}
	var records []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", st.Table, err)
		}
		rec := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
				continue
			}
			rec[col] = values[i]
		}
		records = append(records, rec)
		if st.Single {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows %s: %w", st.Table, err)
	}
	records = single(st, records)
	return &Result{Columns: columns, Rows: records, RowsAffected: int64(len(records))}, nil
}
