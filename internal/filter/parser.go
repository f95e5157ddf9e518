// Package filter parses textual filter expressions such as
//
//	users.age >= 30 and (users.name like "S%" or orders.total > 100)
//
// into expression trees. References are dotted owner chains ending in a
// column; a bare column name is taken from the default table.
package filter

import (
	"fmt"
	"strconv"

	"github.com/atlekbai/dynquery/internal/expr"
	"github.com/atlekbai/dynquery/internal/qerr"
)

// Parse parses input. defaultTable qualifies bare column names and may be
// empty, in which case every reference must name its table.
func Parse(input, defaultTable string) (*expr.Expr, error) {
	p := &parser{lexer: NewLexer(input), table: defaultTable}
	e, err := p.parseBoolExpr()
	if err != nil {
		return nil, err
	}
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind != TokEOF {
		return nil, p.errorf(tok.Pos, "unexpected %s, expected end of expression", tok.Kind)
	}
	return e, nil
}

type parser struct {
	lexer *Lexer
	table string
}

// parseBoolExpr: boolTerm { "or" boolTerm }
func (p *parser) parseBoolExpr() (*expr.Expr, error) {
	left, err := p.parseBoolTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != TokOr {
			break
		}
		p.advance()
		right, err := p.parseBoolTerm()
		if err != nil {
			return nil, err
		}
		left = left.Or(right)
	}
	return left, nil
}

// parseBoolTerm: boolFactor { "and" boolFactor }
func (p *parser) parseBoolTerm() (*expr.Expr, error) {
	left, err := p.parseBoolFactor()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != TokAnd {
			break
		}
		p.advance()
		right, err := p.parseBoolFactor()
		if err != nil {
			return nil, err
		}
		left = left.And(right)
	}
	return left, nil
}

// parseBoolFactor: "(" boolExpr ")" | operand compOp operand
func (p *parser) parseBoolFactor() (*expr.Expr, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == TokLParen {
		p.advance()
		inner, err := p.parseBoolExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	tok, err = p.peek()
	if err != nil {
		return nil, err
	}
	op, ok := comparisonOp(tok.Kind)
	if !ok {
		return nil, p.errorf(tok.Pos, "expected comparison operator, got %s", tok.Kind)
	}
	p.advance()
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	e, err := expr.Compare(op, left, right)
	if err != nil {
		return nil, p.errorf(tok.Pos, "%v", err)
	}
	return e, nil
}

// parseOperand: reference | literal
func (p *parser) parseOperand() (any, error) {
	tok, err := p.lexer.Next()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case TokIdent:
		return p.parseReference(tok)
	case TokString:
		s, err := strconv.Unquote(`"` + tok.Lit + `"`)
		if err != nil {
			return nil, p.errorf(tok.Pos, "invalid string literal: %v", err)
		}
		return s, nil
	case TokNumber:
		return p.number(tok, false)
	case TokMinus:
		num, err := p.lexer.Next()
		if err != nil {
			return nil, err
		}
		if num.Kind != TokNumber {
			return nil, p.errorf(num.Pos, "expected number after '-', got %s", num.Kind)
		}
		return p.number(num, true)
	case TokTrue:
		return true, nil
	case TokFalse:
		return false, nil
	case TokNull:
		return nil, nil
	default:
		return nil, p.errorf(tok.Pos, "unexpected %s, expected column or value", tok.Kind)
	}
}

// parseReference: ident { "." ident }
func (p *parser) parseReference(first Token) (any, error) {
	parts := []string{first.Lit}
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != TokDot {
			break
		}
		p.advance()
		next, err := p.lexer.Next()
		if err != nil {
			return nil, err
		}
		if next.Kind != TokIdent {
			return nil, p.errorf(next.Pos, "expected name after '.', got %s", next.Kind)
		}
		parts = append(parts, next.Lit)
	}

	if len(parts) == 1 {
		if p.table == "" {
			return nil, p.errorf(first.Pos, "column %q needs a table", first.Lit)
		}
		return expr.Ref(p.table, first.Lit), nil
	}
	return expr.RefVia(parts[:len(parts)-1], parts[len(parts)-1]), nil
}

func (p *parser) number(tok Token, negative bool) (any, error) {
	lit := tok.Lit
	if negative {
		lit = "-" + lit
	}
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, p.errorf(tok.Pos, "invalid number %q", lit)
	}
	return f, nil
}

func comparisonOp(k TokenKind) (expr.Op, bool) {
	switch k {
	case TokEq:
		return expr.OpEqual, true
	case TokNeq:
		return expr.OpNotEqual, true
	case TokGt:
		return expr.OpGreaterThan, true
	case TokGte:
		return expr.OpGreaterThanOrEqual, true
	case TokLt:
		return expr.OpLessThan, true
	case TokLte:
		return expr.OpLessThanOrEqual, true
	case TokLike:
		return expr.OpLike, true
	}
	return 0, false
}

// --- Helpers ---

func (p *parser) peek() (Token, error) {
	return p.lexer.Peek()
}

func (p *parser) advance() {
	p.lexer.Next() //nolint:errcheck
}

func (p *parser) expect(kind TokenKind) error {
	tok, err := p.lexer.Next()
	if err != nil {
		return err
	}
	if tok.Kind != kind {
		return p.errorf(tok.Pos, "expected %s, got %s", kind, tok.Kind)
	}
	return nil
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return fmt.Errorf("%w: parse error at position %d: %s", qerr.ErrInvalidExpression, pos, fmt.Sprintf(format, args...))
}
