package golemdb

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// The memory backend evaluates the same annotation-query grammar the real
// store accepts: clauses of the form `field op literal` where literals are
// double-quoted strings or integers, combined with && and || (&& binds
// tighter), with optional parentheses. An absent annotation never matches.

type queryExpr interface {
	eval(strs map[string]string, nums map[string]int64) bool
}

type orExpr struct{ terms []queryExpr }

func (e orExpr) eval(strs map[string]string, nums map[string]int64) bool {
	for _, t := range e.terms {
		if t.eval(strs, nums) {
			return true
		}
	}
	return false
}

type andExpr struct{ terms []queryExpr }

func (e andExpr) eval(strs map[string]string, nums map[string]int64) bool {
	for _, t := range e.terms {
		if !t.eval(strs, nums) {
			return false
		}
	}
	return true
}

type strClause struct {
	field string
	op    string
	value string
}

func (c strClause) eval(strs map[string]string, _ map[string]int64) bool {
	actual, ok := strs[c.field]
	if !ok {
		return false
	}
	switch c.op {
	case "=":
		return actual == c.value
	case "!=":
		return actual != c.value
	case "<":
		return actual < c.value
	case "<=":
		return actual <= c.value
	case ">":
		return actual > c.value
	case ">=":
		return actual >= c.value
	}
	return false
}

type numClause struct {
	field string
	op    string
	value int64
}

func (c numClause) eval(_ map[string]string, nums map[string]int64) bool {
	actual, ok := nums[c.field]
	if !ok {
		return false
	}
	switch c.op {
	case "=":
		return actual == c.value
	case "!=":
		return actual != c.value
	case "<":
		return actual < c.value
	case "<=":
		return actual <= c.value
	case ">":
		return actual > c.value
	case ">=":
		return actual >= c.value
	}
	return false
}

// parseQuery compiles a query expression. An empty query matches everything.
func parseQuery(query string) (queryExpr, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return andExpr{}, nil
	}
	p := &queryParser{input: query}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, fmt.Errorf("unexpected input at offset %d: %q", p.pos, p.input[p.pos:])
	}
	return expr, nil
}

type queryParser struct {
	input string
	pos   int
}

func (p *queryParser) parseOr() (queryExpr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := []queryExpr{first}
	for p.consume("||") {
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return orExpr{terms: terms}, nil
}

func (p *queryParser) parseAnd() (queryExpr, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	terms := []queryExpr{first}
	for p.consume("&&") {
		next, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return andExpr{terms: terms}, nil
}

func (p *queryParser) parseUnary() (queryExpr, error) {
	p.skipSpace()
	if p.consume("(") {
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.consume(")") {
			return nil, fmt.Errorf("missing closing parenthesis at offset %d", p.pos)
		}
		return expr, nil
	}
	return p.parseClause()
}

func (p *queryParser) parseClause() (queryExpr, error) {
	field, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	op, err := p.parseOp()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("missing literal for field %q", field)
	}
	if p.input[p.pos] == '"' {
		value, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return strClause{field: field, op: op, value: value}, nil
	}
	value, err := p.parseNumber()
	if err != nil {
		return nil, err
	}
	return numClause{field: field, op: op, value: value}, nil
}

func (p *queryParser) parseIdent() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) {
		c := rune(p.input[p.pos])
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", fmt.Errorf("expected field name at offset %d", start)
	}
	return p.input[start:p.pos], nil
}

func (p *queryParser) parseOp() (string, error) {
	p.skipSpace()
	for _, op := range []string{"!=", "<=", ">=", "=", "<", ">"} {
		if strings.HasPrefix(p.input[p.pos:], op) {
			p.pos += len(op)
			return op, nil
		}
	}
	return "", fmt.Errorf("expected comparison operator at offset %d", p.pos)
}

func (p *queryParser) parseString() (string, error) {
	// Opening quote already sighted by the caller.
	p.pos++
	start := p.pos
	for p.pos < len(p.input) {
		if p.input[p.pos] == '"' {
			value := p.input[start:p.pos]
			p.pos++
			return value, nil
		}
		p.pos++
	}
	return "", fmt.Errorf("unterminated string literal at offset %d", start)
}

func (p *queryParser) parseNumber() (int64, error) {
	start := p.pos
	if p.pos < len(p.input) && p.input[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("expected literal at offset %d", start)
	}
	return strconv.ParseInt(p.input[start:p.pos], 10, 64)
}

func (p *queryParser) consume(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.input[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *queryParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}
