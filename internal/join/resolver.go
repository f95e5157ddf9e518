// Package join infers the JOIN clauses needed by an expression that reaches
// beyond its main table, using foreign-key metadata.
package join

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atlekbai/dynquery/internal/expr"
	"github.com/atlekbai/dynquery/internal/ident"
	"github.com/atlekbai/dynquery/internal/qerr"
	"github.com/atlekbai/dynquery/internal/schema"
)

type Type int

const (
	Inner Type = iota
	Left
)

func (t Type) keyword() string {
	if t == Left {
		return "LEFT JOIN"
	}
	return "JOIN"
}

// ParseType accepts "inner" (or "") and "left".
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "", "inner":
		return Inner, nil
	case "left":
		return Left, nil
	}
	return Inner, fmt.Errorf("unknown join type %q", s)
}

// Resolver builds join plans. Relations found between two tables are kept
// for the resolver's lifetime, so build a new one when the schema changes.
type Resolver struct {
	src       schema.Source
	joinType  Type
	relations sync.Map // pairKey -> *relation
}

type relation struct {
	fk     schema.ForeignKey
	clause string
}

func NewResolver(src schema.Source, joinType Type) *Resolver {
	return &Resolver{src: src, joinType: joinType}
}

// Resolve returns the plan joining every table e references to main. Each
// reference's owner chain is walked from main; a table already in the plan
// is never joined again. When main has no foreign key to the first table of
// a chain, the tables joined so far are tried in the order they were added.
func (r *Resolver) Resolve(main string, e *expr.Expr) (*Plan, error) {
	mainTable, err := r.src.FindTable(main)
	if err != nil {
		return nil, err
	}
	plan := newPlan(mainTable)
	if e == nil {
		return plan, nil
	}

	for _, ref := range e.References() {
		chain, err := r.chain(mainTable, ref)
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(chain); i++ {
			anchor, next := chain[i-1], chain[i]
			if anchor == next || plan.Has(next.ActualName) {
				continue
			}
			rel, err := r.relation(anchor, next)
			if err != nil && i == 1 && unrelated(err) {
				rel, err = r.relationFromPlan(plan, next, err)
			}
			if err != nil {
				return nil, err
			}
			plan.add(next, rel.clause)
		}
	}
	return plan, nil
}

// chain resolves ref's owners to tables, prefixed with main unless the
// chain already starts there.
func (r *Resolver) chain(main *schema.Table, ref expr.ColumnRef) ([]*schema.Table, error) {
	owners := ref.Owners()
	chain := make([]*schema.Table, 0, len(owners)+1)
	chain = append(chain, main)
	for _, name := range owners {
		t, err := r.src.FindTable(name)
		if err != nil {
			return nil, fmt.Errorf("reference %s: %w", ref, err)
		}
		if t == chain[len(chain)-1] {
			continue
		}
		chain = append(chain, t)
	}
	return chain, nil
}

// relationFromPlan finds next's relation to a joined table other than main.
// orig is returned when none has a foreign key to next.
func (r *Resolver) relationFromPlan(plan *Plan, next *schema.Table, orig error) (*relation, error) {
	for _, t := range plan.Tables()[1:] {
		rel, err := r.relation(t, next)
		if err == nil {
			return rel, nil
		}
		if !unrelated(err) {
			return nil, err
		}
	}
	return nil, orig
}

// unrelated reports whether err says two tables share no foreign key, as
// opposed to sharing several.
func unrelated(err error) bool {
	var rerr *qerr.SchemaResolutionError
	return errors.As(err, &rerr) && rerr.Reason == ""
}

func (r *Resolver) relation(anchor, next *schema.Table) (*relation, error) {
	key := ident.Homogenize(anchor.ActualName) + "\x00" + ident.Homogenize(next.ActualName)
	if v, ok := r.relations.Load(key); ok {
		return v.(*relation), nil
	}

	rel, err := r.findRelation(anchor, next)
	if err != nil {
		return nil, err
	}
	v, _ := r.relations.LoadOrStore(key, rel)
	return v.(*relation), nil
}

// findRelation prefers next as the detail of anchor, then anchor as the
// detail of next.
func (r *Resolver) findRelation(anchor, next *schema.Table) (*relation, error) {
	directions := []struct{ master, detail *schema.Table }{
		{anchor, next},
		{next, anchor},
	}
	for _, d := range directions {
		fks := d.detail.ForeignKeysTo(d.master.ActualName)
		switch len(fks) {
		case 0:
			continue
		case 1:
			return &relation{fk: fks[0], clause: r.clause(next, d.master, d.detail, fks[0])}, nil
		default:
			names := make([]string, len(fks))
			for i, fk := range fks {
				names[i] = fk.Name
			}
			return nil, &qerr.SchemaResolutionError{
				Left:   anchor.ActualName,
				Right:  next.ActualName,
				Reason: fmt.Sprintf("%d foreign keys from %q to %q are ambiguous: %s", len(fks), d.detail.ActualName, d.master.ActualName, strings.Join(names, ", ")),
			}
		}
	}
	return nil, &qerr.SchemaResolutionError{Left: anchor.ActualName, Right: next.ActualName}
}

func (r *Resolver) clause(joined, master, detail *schema.Table, fk schema.ForeignKey) string {
	q := r.src.Dialect().StatementIdentifier
	conds := make([]string, len(fk.MasterColumns))
	for i := range fk.MasterColumns {
		conds[i] = fmt.Sprintf("%s.%s = %s.%s",
			q(master.ActualName), q(fk.MasterColumns[i]),
			q(detail.ActualName), q(fk.DetailColumns[i]))
	}
	return fmt.Sprintf("%s %s ON (%s)", r.joinType.keyword(), q(joined.ActualName), strings.Join(conds, " AND "))
}
