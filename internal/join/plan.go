package join

import (
	"strings"

	"github.com/atlekbai/dynquery/internal/ident"
	"github.com/atlekbai/dynquery/internal/schema"
)

// Plan maps every table a statement touches to its JOIN clause. The main
// table comes first with an empty clause; the rest follow in the order
// they were resolved.
type Plan struct {
	entries []entry
	index   map[string]int
}

type entry struct {
	table  *schema.Table
	clause string
}

func newPlan(main *schema.Table) *Plan {
	p := &Plan{index: make(map[string]int)}
	p.add(main, "")
	return p
}

func (p *Plan) add(t *schema.Table, clause string) {
	p.index[ident.Homogenize(t.ActualName)] = len(p.entries)
	p.entries = append(p.entries, entry{table: t, clause: clause})
}

func (p *Plan) Main() *schema.Table { return p.entries[0].table }

// Has reports whether table is the main table or already joined.
func (p *Plan) Has(table string) bool {
	_, ok := p.index[ident.Homogenize(table)]
	return ok
}

// Tables returns every table in the plan, main first.
func (p *Plan) Tables() []*schema.Table {
	out := make([]*schema.Table, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.table
	}
	return out
}

// Clauses returns the non-empty join clauses in resolution order.
func (p *Plan) Clauses() []string {
	out := make([]string, 0, len(p.entries)-1)
	for _, e := range p.entries[1:] {
		out = append(out, e.clause)
	}
	return out
}

// NeedsJoins reports whether any table besides the main one is involved.
func (p *Plan) NeedsJoins() bool { return len(p.entries) > 1 }

// String is the join text: the clauses separated by spaces.
func (p *Plan) String() string { return strings.Join(p.Clauses(), " ") }
