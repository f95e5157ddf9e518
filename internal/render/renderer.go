// Package render turns expressions, join plans and records into
// dialect-quoted, parameterized SQL.
package render

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/atlekbai/dynquery/internal/expr"
	"github.com/atlekbai/dynquery/internal/ident"
	"github.com/atlekbai/dynquery/internal/join"
	"github.com/atlekbai/dynquery/internal/qerr"
	"github.com/atlekbai/dynquery/internal/schema"
)

type Op int

const (
	OpSelect Op = iota
	OpInsert
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpSelect:
		return "select"
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Statement is one rendered statement. Args line up with the placeholders
// of SQL. Single marks a find that expects at most one row.
type Statement struct {
	ID     uuid.UUID
	Op     Op
	Table  string
	SQL    string
	Args   []any
	Single bool
}

func newStatement(op Op, table, sql string, args []any) *Statement {
	if args == nil {
		args = []any{}
	}
	return &Statement{ID: uuid.New(), Op: op, Table: table, SQL: sql, Args: args}
}

// Renderer is safe for concurrent use.
type Renderer struct {
	src         schema.Source
	likeStrings bool
}

type Option func(*Renderer)

// WithLikeStrings controls whether equality against a string renders as
// LIKE. It is on by default.
func WithLikeStrings(on bool) Option {
	return func(r *Renderer) { r.likeStrings = on }
}

func New(src schema.Source, opts ...Option) *Renderer {
	r := &Renderer{src: src, likeStrings: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) quote(name string) string {
	return r.src.Dialect().StatementIdentifier(name)
}

// Select renders SELECT <table>.* FROM <table> [joins] [WHERE ...]. Every
// table where references must be in plan; a nil plan allows only table.
func (r *Renderer) Select(table string, where *expr.Expr, plan *join.Plan) (*Statement, error) {
	t, err := r.src.FindTable(table)
	if err != nil {
		return nil, err
	}
	if err := r.checkJoined(t, where, plan); err != nil {
		return nil, err
	}

	qt := r.quote(t.ActualName)
	qb := sq.Select(qt + ".*").
		From(qt).
		PlaceholderFormat(r.src.Dialect().Placeholders())
	if plan != nil {
		for _, clause := range plan.Clauses() {
			qb = qb.JoinClause(clause)
		}
	}
	if where != nil {
		cond, err := r.condition(where)
		if err != nil {
			return nil, err
		}
		qb = qb.Where(cond)
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("render select %s: %w", t.ActualName, err)
	}
	return newStatement(OpSelect, t.ActualName, sql, args), nil
}

// Insert renders INSERT INTO <table> (<cols>) VALUES (<params>) in record order.
func (r *Renderer) Insert(table string, record expr.Fields) (*Statement, error) {
	t, err := r.src.FindTable(table)
	if err != nil {
		return nil, err
	}
	if len(record) == 0 {
		return nil, fmt.Errorf("%w: insert into %q", qerr.ErrEmptyRecord, t.ActualName)
	}
	cols, err := r.recordColumns(t, record)
	if err != nil {
		return nil, err
	}

	sql, args, err := sq.Insert(r.quote(t.ActualName)).
		Columns(cols...).
		Values(record.Values()...).
		PlaceholderFormat(r.src.Dialect().InsertPlaceholders()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("render insert %s: %w", t.ActualName, err)
	}
	return newStatement(OpInsert, t.ActualName, sql, args), nil
}

// Update renders UPDATE <table> SET col = ?, ... WHERE .... The filter must
// stay on table.
func (r *Renderer) Update(table string, record expr.Fields, where *expr.Expr) (*Statement, error) {
	t, err := r.src.FindTable(table)
	if err != nil {
		return nil, err
	}
	if len(record) == 0 {
		return nil, fmt.Errorf("%w: update %q", qerr.ErrEmptyRecord, t.ActualName)
	}
	if where == nil {
		return nil, fmt.Errorf("%w: update %q", qerr.ErrEmptyCriteria, t.ActualName)
	}
	if err := r.checkSingleTable(t, where, "update"); err != nil {
		return nil, err
	}
	cols, err := r.recordColumns(t, record)
	if err != nil {
		return nil, err
	}
	cond, err := r.condition(where)
	if err != nil {
		return nil, err
	}

	qb := sq.Update(r.quote(t.ActualName)).PlaceholderFormat(r.src.Dialect().Placeholders())
	for i, col := range cols {
		qb = qb.Set(col, record[i].Value)
	}
	sql, args, err := qb.Where(cond).ToSql()
	if err != nil {
		return nil, fmt.Errorf("render update %s: %w", t.ActualName, err)
	}
	return newStatement(OpUpdate, t.ActualName, sql, args), nil
}

// Delete renders DELETE FROM <table> WHERE .... The filter must stay on table.
func (r *Renderer) Delete(table string, where *expr.Expr) (*Statement, error) {
	t, err := r.src.FindTable(table)
	if err != nil {
		return nil, err
	}
	if where == nil {
		return nil, fmt.Errorf("%w: delete from %q", qerr.ErrEmptyCriteria, t.ActualName)
	}
	if err := r.checkSingleTable(t, where, "delete"); err != nil {
		return nil, err
	}
	cond, err := r.condition(where)
	if err != nil {
		return nil, err
	}

	sql, args, err := sq.Delete(r.quote(t.ActualName)).
		Where(cond).
		PlaceholderFormat(r.src.Dialect().Placeholders()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("render delete %s: %w", t.ActualName, err)
	}
	return newStatement(OpDelete, t.ActualName, sql, args), nil
}

// recordColumns maps record names to quoted column names.
func (r *Renderer) recordColumns(t *schema.Table, record expr.Fields) ([]string, error) {
	cols := make([]string, len(record))
	for i, f := range record {
		c, ok := t.FindColumn(f.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q on %q", qerr.ErrUnknownColumn, f.Name, t.ActualName)
		}
		cols[i] = r.quote(c.Name)
	}
	return cols, nil
}

func (r *Renderer) checkJoined(main *schema.Table, where *expr.Expr, plan *join.Plan) error {
	if where == nil {
		return nil
	}
	for _, ref := range where.References() {
		owner, err := r.src.FindTable(ref.Table())
		if err != nil {
			return err
		}
		if ident.Equal(owner.ActualName, main.ActualName) {
			continue
		}
		if plan == nil || !plan.Has(owner.ActualName) {
			return fmt.Errorf("%w: %s references %q which is not joined to %q",
				qerr.ErrInvalidExpression, ref, owner.ActualName, main.ActualName)
		}
	}
	return nil
}

func (r *Renderer) checkSingleTable(main *schema.Table, where *expr.Expr, verb string) error {
	for _, ref := range where.References() {
		owner, err := r.src.FindTable(ref.Table())
		if err != nil {
			return err
		}
		if len(ref.Owners()) > 1 || !ident.Equal(owner.ActualName, main.ActualName) {
			return fmt.Errorf("%w: %s on %q cannot filter through %s", qerr.ErrUnsupportedOperation, verb, main.ActualName, ref)
		}
	}
	return nil
}
