package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

const tablesQuery = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = $1 AND table_type = 'BASE TABLE'
ORDER BY table_name
`

const columnsQuery = `
SELECT column_name, data_type, is_nullable = 'YES'
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position
`

const keysQuery = `
SELECT kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
	ON kcu.constraint_name = tc.constraint_name
	AND kcu.table_schema = tc.table_schema
	AND kcu.table_name = tc.table_name
WHERE tc.constraint_type = 'PRIMARY KEY'
	AND tc.table_schema = $1 AND tc.table_name = $2
ORDER BY kcu.ordinal_position
`

// Columns of composite keys are paired through unnest WITH ORDINALITY;
// information_schema.constraint_column_usage loses that pairing.
const foreignKeysQuery = `
SELECT c.conname, tgt.relname,
	array_agg(ta.attname ORDER BY k.ord),
	array_agg(sa.attname ORDER BY k.ord)
FROM pg_constraint c
JOIN pg_class src ON src.oid = c.conrelid
JOIN pg_class tgt ON tgt.oid = c.confrelid
JOIN pg_namespace n ON n.oid = src.relnamespace
CROSS JOIN LATERAL unnest(c.conkey, c.confkey) WITH ORDINALITY AS k(src_att, tgt_att, ord)
JOIN pg_attribute sa ON sa.attrelid = c.conrelid AND sa.attnum = k.src_att
JOIN pg_attribute ta ON ta.attrelid = c.confrelid AND ta.attnum = k.tgt_att
WHERE c.contype = 'f' AND n.nspname = $1 AND src.relname = $2
GROUP BY c.conname, tgt.relname
ORDER BY c.conname
`

// Querier is the subset of pgxpool.Pool used for introspection.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LoadPostgres introspects every base table of dbSchema. Tables are listed
// first, then their columns, keys and foreign keys are read in parallel.
func (c *Cache) LoadPostgres(ctx context.Context, db Querier, dbSchema string) error {
	rows, err := db.Query(ctx, tablesQuery, dbSchema)
	if err != nil {
		return fmt.Errorf("schema load tables: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("schema scan tables: %w", err)
	}

	tables := make([]*Table, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, name := range names {
		g.Go(func() error {
			t, err := loadPostgresTable(gctx, db, dbSchema, name)
			if err != nil {
				return fmt.Errorf("schema load %s: %w", name, err)
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.Replace(tables)
	return nil
}

func loadPostgresTable(ctx context.Context, db Querier, dbSchema, name string) (*Table, error) {
	rows, err := db.Query(ctx, columnsQuery, dbSchema, name)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	columns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Column, error) {
		var col Column
		err := row.Scan(&col.Name, &col.Type, &col.Nullable)
		return col, err
	})
	if err != nil {
		return nil, fmt.Errorf("columns scan: %w", err)
	}

	rows, err = db.Query(ctx, keysQuery, dbSchema, name)
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("keys scan: %w", err)
	}

	rows, err = db.Query(ctx, foreignKeysQuery, dbSchema, name)
	if err != nil {
		return nil, fmt.Errorf("foreign keys: %w", err)
	}
	fks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ForeignKey, error) {
		fk := ForeignKey{DetailTable: name}
		err := row.Scan(&fk.Name, &fk.MasterTable, &fk.MasterColumns, &fk.DetailColumns)
		return fk, err
	})
	if err != nil {
		return nil, fmt.Errorf("foreign keys scan: %w", err)
	}

	t := NewTable(name, columns, keys, fks)
	t.Schema = dbSchema
	return t, nil
}
