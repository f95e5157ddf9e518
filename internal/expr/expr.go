// Package expr models filter expressions as an immutable binary tree.
//
// A leaf compares one column reference with one value. And/Or nodes combine
// two expressions. Trees are built bottom-up and never mutated: every
// combinator returns a new node.
package expr

import (
	"fmt"

	"github.com/atlekbai/dynquery/internal/qerr"
)

// Op is the operator kind of an expression node.
type Op int

const (
	OpEqual Op = iota
	OpNotEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
	OpLike
	OpAnd
	OpOr
)

var opNames = map[Op]string{
	OpEqual:              "==",
	OpNotEqual:           "!=",
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: ">=",
	OpLessThan:           "<",
	OpLessThanOrEqual:    "<=",
	OpLike:               "like",
	OpAnd:                "and",
	OpOr:                 "or",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// IsBoolean reports whether o combines two expressions.
func (o Op) IsBoolean() bool { return o == OpAnd || o == OpOr }

// Expr is a single node of an expression tree.
//
// For And/Or both operands are *Expr. For comparisons exactly one operand is
// a ColumnRef and the other is a literal value (nil allowed).
type Expr struct {
	op    Op
	left  any
	right any
}

func leaf(op Op, left, right any) *Expr {
	return &Expr{op: op, left: left, right: right}
}

// Compare builds a comparison leaf, validating that exactly one side is a
// column reference. The reference may sit on either side.
func Compare(op Op, left, right any) (*Expr, error) {
	if op.IsBoolean() {
		return nil, fmt.Errorf("%w: %s is not a comparison", qerr.ErrInvalidExpression, op)
	}
	_, lref := left.(ColumnRef)
	_, rref := right.(ColumnRef)
	if lref == rref {
		return nil, fmt.Errorf("%w: %s needs exactly one column reference operand", qerr.ErrInvalidExpression, op)
	}
	if isExpr(left) || isExpr(right) {
		return nil, fmt.Errorf("%w: %s cannot compare against an expression", qerr.ErrInvalidExpression, op)
	}
	return leaf(op, left, right), nil
}

// And combines expressions into a left-deep conjunction. Nil operands are
// skipped; And of a single expression is that expression.
func And(exprs ...*Expr) *Expr { return fold(OpAnd, exprs) }

// Or combines expressions into a left-deep disjunction.
func Or(exprs ...*Expr) *Expr { return fold(OpOr, exprs) }

func fold(op Op, exprs []*Expr) *Expr {
	var acc *Expr
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if acc == nil {
			acc = e
			continue
		}
		acc = &Expr{op: op, left: acc, right: e}
	}
	return acc
}

// And returns e AND other.
func (e *Expr) And(other *Expr) *Expr { return And(e, other) }

// Or returns e OR other.
func (e *Expr) Or(other *Expr) *Expr { return Or(e, other) }

func (e *Expr) Op() Op     { return e.op }
func (e *Expr) Left() any  { return e.left }
func (e *Expr) Right() any { return e.right }

// Operands returns the two child expressions of an And/Or node.
func (e *Expr) Operands() (*Expr, *Expr) {
	l, _ := e.left.(*Expr)
	r, _ := e.right.(*Expr)
	return l, r
}

// Comparison splits a leaf into its column reference and value. refLeft
// reports whether the reference was the left operand.
func (e *Expr) Comparison() (ref ColumnRef, value any, refLeft bool) {
	if r, ok := e.left.(ColumnRef); ok {
		return r, e.right, true
	}
	r, _ := e.right.(ColumnRef)
	return r, e.left, false
}

// References returns every column reference in the tree, depth-first and
// left to right.
func (e *Expr) References() []ColumnRef {
	var refs []ColumnRef
	e.Walk(func(n *Expr) {
		if n.op.IsBoolean() {
			return
		}
		ref, _, _ := n.Comparison()
		refs = append(refs, ref)
	})
	return refs
}

// Walk visits e and its descendants in pre-order, left operand first.
func (e *Expr) Walk(fn func(*Expr)) {
	if e == nil {
		return
	}
	fn(e)
	if e.op.IsBoolean() {
		l, r := e.Operands()
		l.Walk(fn)
		r.Walk(fn)
	}
}

// Leaves counts comparison nodes.
func (e *Expr) Leaves() int {
	n := 0
	e.Walk(func(x *Expr) {
		if !x.op.IsBoolean() {
			n++
		}
	})
	return n
}

func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	if e.op.IsBoolean() {
		l, r := e.Operands()
		return fmt.Sprintf("(%s %s %s)", l, e.op, r)
	}
	return fmt.Sprintf("%s %s %s", operandString(e.left), e.op, operandString(e.right))
}

func operandString(v any) string {
	switch x := v.(type) {
	case ColumnRef:
		return x.String()
	case string:
		return fmt.Sprintf("%q", x)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", x)
	}
}

func isExpr(v any) bool {
	_, ok := v.(*Expr)
	return ok
}
