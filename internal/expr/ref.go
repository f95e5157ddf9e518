package expr

import (
	"fmt"
	"strings"

	"github.com/atlekbai/dynquery/internal/ident"
	"github.com/atlekbai/dynquery/internal/qerr"
)

// ColumnRef identifies a column through its owning table. Owners holds the
// table chain from the outermost table to the one that owns the column, so
// users.orders.total has Owners ["users", "orders"] and Column "total".
type ColumnRef struct {
	owners []string
	column string
}

// Ref returns a reference to column on table.
func Ref(table, column string) ColumnRef {
	return ColumnRef{owners: []string{table}, column: column}
}

// RefVia returns a reference to column reached through the table chain.
// The chain must name at least one table.
func RefVia(tables []string, column string) ColumnRef {
	owners := make([]string, len(tables))
	copy(owners, tables)
	return ColumnRef{owners: owners, column: column}
}

// ParseRef parses a dotted reference such as "users.id" or "users.orders.total".
func ParseRef(s string) (ColumnRef, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return ColumnRef{}, fmt.Errorf("%w: column reference %q needs a table and a column", qerr.ErrInvalidExpression, s)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return ColumnRef{}, fmt.Errorf("%w: empty segment in column reference %q", qerr.ErrInvalidExpression, s)
		}
	}
	return RefVia(parts[:len(parts)-1], parts[len(parts)-1]), nil
}

// Table returns the table that owns the column.
func (r ColumnRef) Table() string {
	if len(r.owners) == 0 {
		return ""
	}
	return r.owners[len(r.owners)-1]
}

// Column returns the column name as written.
func (r ColumnRef) Column() string { return r.column }

// Owners returns a copy of the owner chain.
func (r ColumnRef) Owners() []string {
	out := make([]string, len(r.owners))
	copy(out, r.owners)
	return out
}

// Equal compares two references by their homogenized names.
func (r ColumnRef) Equal(other ColumnRef) bool {
	if len(r.owners) != len(other.owners) || !ident.Equal(r.column, other.column) {
		return false
	}
	for i := range r.owners {
		if !ident.Equal(r.owners[i], other.owners[i]) {
			return false
		}
	}
	return true
}

func (r ColumnRef) String() string {
	return strings.Join(r.owners, ".") + "." + r.column
}

// Eq returns r == value.
func (r ColumnRef) Eq(value any) *Expr { return leaf(OpEqual, r, value) }

// Ne returns r != value.
func (r ColumnRef) Ne(value any) *Expr { return leaf(OpNotEqual, r, value) }

// Gt returns r > value.
func (r ColumnRef) Gt(value any) *Expr { return leaf(OpGreaterThan, r, value) }

// Gte returns r >= value.
func (r ColumnRef) Gte(value any) *Expr { return leaf(OpGreaterThanOrEqual, r, value) }

// Lt returns r < value.
func (r ColumnRef) Lt(value any) *Expr { return leaf(OpLessThan, r, value) }

// Lte returns r <= value.
func (r ColumnRef) Lte(value any) *Expr { return leaf(OpLessThanOrEqual, r, value) }

// Like returns r LIKE pattern.
func (r ColumnRef) Like(pattern any) *Expr { return leaf(OpLike, r, pattern) }
