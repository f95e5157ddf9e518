// Package intent turns a request name and its arguments into an Intent: the
// kind of statement to build plus its criteria, filter and record.
package intent

import (
	"fmt"

	"github.com/atlekbai/dynquery/internal/expr"
	"github.com/atlekbai/dynquery/internal/qerr"
)

// Kind is the statement an Intent asks for.
type Kind int

const (
	Find Kind = iota
	FindAll
	Insert
	Update
	UpdateBy
	DeleteBy
)

var kindNames = map[Kind]string{
	Find:     "Find",
	FindAll:  "FindAll",
	Insert:   "Insert",
	Update:   "Update",
	UpdateBy: "UpdateBy",
	DeleteBy: "DeleteBy",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Intent is a parsed request. Exactly one of Criteria and Where is set for
// filtered kinds; both are empty for an unfiltered FindAll and for Insert.
type Intent struct {
	Kind     Kind
	Table    string
	Method   Method
	Criteria expr.Fields
	Where    *expr.Expr
	Record   expr.Fields
}

// Filter returns the intent's filter expression, building it from the
// criteria mapping when no expression was supplied. It is nil when the
// intent is unfiltered.
func (in *Intent) Filter() (*expr.Expr, error) {
	if in.Where != nil {
		return in.Where, nil
	}
	if len(in.Criteria) == 0 {
		return nil, nil
	}
	return expr.FromCriteria(in.Table, in.Criteria)
}

// KeySource supplies primary key columns for update-by-key.
type KeySource interface {
	KeyColumnNames(table string) ([]string, error)
}

// Parser is stateless apart from its key source and safe for concurrent use.
type Parser struct {
	keys KeySource
}

func NewParser(keys KeySource) *Parser {
	return &Parser{keys: keys}
}

// Parse resolves name against the request grammar and binds args.
func (p *Parser) Parse(table, name string, args []Arg) (*Intent, error) {
	m, err := ParseMethod(name)
	if err != nil {
		return nil, err
	}
	in := &Intent{Table: table, Method: m}

	switch m.Verb {
	case VerbFind:
		in.Kind = Find
		if m.All {
			in.Kind = FindAll
		}
		err = p.bindFind(in, args)
	case VerbInsert:
		in.Kind = Insert
		in.Record, err = recordOf(name, args)
	case VerbUpdate:
		if m.HasBy() {
			in.Kind = UpdateBy
			err = p.bindUpdateBy(in, args)
		} else {
			in.Kind = Update
			err = p.bindUpdate(in, args)
		}
	case VerbDelete:
		in.Kind = DeleteBy
		err = p.bindDelete(in, args)
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (p *Parser) bindFind(in *Intent, args []Arg) error {
	m := in.Method
	if m.HasBy() {
		criteria, err := byValues(m, args)
		if err != nil {
			return err
		}
		in.Criteria = criteria
		return nil
	}

	switch {
	case len(args) == 0:
		if in.Kind == FindAll {
			return nil
		}
		return fmt.Errorf("%w: %s on %q", qerr.ErrEmptyCriteria, m.Name, in.Table)
	case allNamed(args):
		in.Criteria = bundle(args)
		return nil
	}
	if e, ok := single[*expr.Expr](args); ok {
		if e == nil && in.Kind == Find {
			return fmt.Errorf("%w: %s on %q", qerr.ErrEmptyCriteria, m.Name, in.Table)
		}
		in.Where = e
		return nil
	}
	if rec, ok := single[expr.Fields](args); ok {
		in.Criteria = rec.NonNil()
		if len(in.Criteria) == 0 && in.Kind == Find {
			return fmt.Errorf("%w: %s on %q", qerr.ErrEmptyCriteria, m.Name, in.Table)
		}
		return nil
	}
	return fmt.Errorf("%w: %s expects an expression, a record or named arguments", qerr.ErrArgumentMismatch, m.Name)
}

func (p *Parser) bindUpdate(in *Intent, args []Arg) error {
	rec, err := recordOf(in.Method.Name, args)
	if err != nil {
		return err
	}
	keys, err := p.keys.KeyColumnNames(in.Table)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("%w: %q has no key columns to update by", qerr.ErrUnsupportedOperation, in.Table)
	}
	in.Criteria, in.Record, err = splitCriteria(in.Table, rec, keys)
	return err
}

// bindUpdateBy accepts a named bundle or record holding both criteria and
// payload, or the By values positionally followed by one record.
func (p *Parser) bindUpdateBy(in *Intent, args []Arg) error {
	m := in.Method
	if len(args) == len(m.By)+1 {
		if rec, ok := args[len(args)-1].Value.(expr.Fields); ok && !args[len(args)-1].IsNamed() {
			criteria, err := byValues(m, args[:len(m.By)])
			if err != nil {
				return err
			}
			rec = rec.NonNil()
			if len(rec) == 0 {
				return fmt.Errorf("%w: %s on %q", qerr.ErrEmptyRecord, m.Name, in.Table)
			}
			in.Criteria, in.Record = criteria, rec
			return nil
		}
	}

	rec, err := recordOf(m.Name, args)
	if err != nil {
		return err
	}
	in.Criteria, in.Record, err = splitCriteria(in.Table, rec, m.By)
	return err
}

// bindDelete handles both delete and deleteby<fields>.
func (p *Parser) bindDelete(in *Intent, args []Arg) error {
	m := in.Method
	if m.HasBy() {
		criteria, err := byValues(m, args)
		if err != nil {
			return err
		}
		in.Criteria = criteria
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: %s on %q", qerr.ErrEmptyCriteria, m.Name, in.Table)
	}
	if e, ok := single[*expr.Expr](args); ok && e != nil {
		in.Where = e
		return nil
	}
	rec, err := recordOf(m.Name, args)
	if err != nil {
		return err
	}
	in.Criteria = rec
	return nil
}

// byValues pairs the By fields with the argument values in order.
func byValues(m Method, args []Arg) (expr.Fields, error) {
	if len(args) != len(m.By) {
		return nil, fmt.Errorf("%w: %s names %d fields but got %d arguments",
			qerr.ErrArgumentMismatch, m.Name, len(m.By), len(args))
	}
	criteria := make(expr.Fields, len(m.By))
	for i, f := range m.By {
		criteria[i] = expr.F(f, args[i].Value)
	}
	return criteria, nil
}

// recordOf reads the single record of insert, update and delete.
func recordOf(name string, args []Arg) (expr.Fields, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: %s", qerr.ErrEmptyRecord, name)
	}
	if allNamed(args) {
		return bundle(args), nil
	}
	if rec, ok := single[expr.Fields](args); ok {
		rec = rec.NonNil()
		if len(rec) == 0 {
			return nil, fmt.Errorf("%w: %s", qerr.ErrEmptyRecord, name)
		}
		return rec, nil
	}
	return nil, fmt.Errorf("%w: %s expects named arguments or a single record", qerr.ErrArgumentMismatch, name)
}

// splitCriteria moves the named fields out of rec into a criteria mapping.
func splitCriteria(table string, rec expr.Fields, names []string) (criteria, rest expr.Fields, err error) {
	for _, n := range names {
		v, ok := rec.Get(n)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q on %q", qerr.ErrMissingKeyValue, n, table)
		}
		criteria = append(criteria, expr.F(n, v))
	}
	rest = rec.Without(names...)
	if len(rest) == 0 {
		return nil, nil, fmt.Errorf("%w: nothing to update on %q besides %v", qerr.ErrEmptyRecord, table, names)
	}
	return criteria, rest, nil
}
