package exec

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlekbai/dynquery/internal/render"
)

// PgConn is the subset of pgxpool.Pool used to run statements.
type PgConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ PgConn = (*pgxpool.Pool)(nil)

// PgExecutor runs statements rendered with the postgres dialect.
type PgExecutor struct {
	conn PgConn
}

func NewPgExecutor(conn PgConn) *PgExecutor {
	return &PgExecutor{conn: conn}
}

// NewPool creates a pgx pool and verifies connectivity.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func (e *PgExecutor) Exec(ctx context.Context, st *render.Statement) (*Result, error) {
	if st.Op != render.OpSelect {
		tag, err := e.conn.Exec(ctx, st.SQL, st.Args...)
		if err != nil {
			return nil, fmt.Errorf("exec %s %s: %w", st.Op, st.Table, err)
		}
		return &Result{RowsAffected: tag.RowsAffected()}, nil
	}

	rows, err := e.conn.Query(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", st.Table, err)
	}
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}
	records, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", st.Table, err)
	}
	records = single(st, records)
	return &Result{Columns: columns, Rows: records, RowsAffected: int64(len(records))}, nil
}
