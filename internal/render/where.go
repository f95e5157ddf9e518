package render

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/atlekbai/dynquery/internal/expr"
	"github.com/atlekbai/dynquery/internal/qerr"
)

// sqlOp maps a comparison to its SQL operator.
func sqlOp(op expr.Op) string {
	switch op {
	case expr.OpEqual:
		return "="
	case expr.OpNotEqual:
		return "!="
	case expr.OpGreaterThan:
		return ">"
	case expr.OpGreaterThanOrEqual:
		return ">="
	case expr.OpLessThan:
		return "<"
	case expr.OpLessThanOrEqual:
		return "<="
	case expr.OpLike:
		return "LIKE"
	default:
		return ""
	}
}

// condition converts e into a squirrel predicate. Parameters are emitted in
// the order operands are met walking the tree depth first, left to right.
func (r *Renderer) condition(e *expr.Expr) (sq.Sqlizer, error) {
	if e.Op().IsBoolean() {
		left, right := e.Operands()
		l, err := r.condition(left)
		if err != nil {
			return nil, err
		}
		rt, err := r.condition(right)
		if err != nil {
			return nil, err
		}
		if e.Op() == expr.OpOr {
			return sq.Or{l, rt}, nil
		}
		return sq.And{l, rt}, nil
	}
	return r.comparison(e)
}

func (r *Renderer) comparison(e *expr.Expr) (sq.Sqlizer, error) {
	ref, value, refLeft := e.Comparison()
	col, err := r.column(ref)
	if err != nil {
		return nil, err
	}

	op := e.Op()
	switch value.(type) {
	case expr.ColumnRef, *expr.Expr:
		return nil, fmt.Errorf("%w: %s compares %s with %T, not a value", qerr.ErrInvalidExpression, op, ref, value)
	}
	if value == nil {
		switch op {
		case expr.OpEqual:
			return sq.Eq{col: nil}, nil
		case expr.OpNotEqual:
			return sq.NotEq{col: nil}, nil
		default:
			return nil, fmt.Errorf("%w: %s compares %s with null", qerr.ErrInvalidExpression, op, ref)
		}
	}

	sqlop := sqlOp(op)
	if _, ok := value.(string); ok && op == expr.OpEqual && r.likeStrings {
		sqlop = "LIKE"
	}
	if refLeft {
		return sq.Expr(fmt.Sprintf("%s %s ?", col, sqlop), value), nil
	}
	return sq.Expr(fmt.Sprintf("? %s %s", sqlop, col), value), nil
}

// column returns the quoted, table-qualified name of ref as spelled in the
// schema.
func (r *Renderer) column(ref expr.ColumnRef) (string, error) {
	t, err := r.src.FindTable(ref.Table())
	if err != nil {
		return "", err
	}
	c, ok := t.FindColumn(ref.Column())
	if !ok {
		return "", fmt.Errorf("%w: %q on %q", qerr.ErrUnknownColumn, ref.Column(), t.ActualName)
	}
	return r.quote(t.ActualName) + "." + r.quote(c.Name), nil
}
