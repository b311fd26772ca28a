// Package expr implements the small infix expression language used by the
// to_valuator convert filter's expr= parameter: +,-,*,/,^, unary negation,
// and parentheses over the single variable x. Grammar and evaluation are a
// hand-written recursive-descent parser producing a tree of number,
// variable, binary-operator (+ - * / ^, one node type carrying the operator)
// and negation nodes. Parentheses only group; they leave no node of their
// own in the tree.
package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Node is an algebraic expression tree node.
type Node interface {
	eval(x float64) float64
}

type numNode float64

func (n numNode) eval(float64) float64 { return float64(n) }

type varNode struct{}

func (varNode) eval(x float64) float64 { return x }

type binNode struct {
	op   byte
	l, r Node
}

func (b binNode) eval(x float64) float64 {
	l, r := b.l.eval(x), b.r.eval(x)
	switch b.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		return l / r
	case '^':
		return math.Pow(l, r)
	}
	panic("expr: unknown operator " + string(b.op))
}

type negNode struct{ n Node }

func (n negNode) eval(x float64) float64 { return -n.n.eval(x) }

// Expr is a parsed, ready to evaluate expression.
type Expr struct {
	root Node
}

// Eval evaluates the expression with the variable x bound to the given
// value.
func (e *Expr) Eval(x float64) float64 { return e.root.eval(x) }

// Parse parses an infix expression string into an evaluable Expr. The
// precedence climb is structured as lowest-precedence/rightmost operator
// recursion: each level peels off the rightmost operator at its precedence
// before recursing on the left operand, matching the left-to-right
// evaluation order the spec calls for.
func Parse(s string) (*Expr, error) {
	toks, err := lex(s)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseExpr(0, len(toks))
	if err != nil {
		return nil, err
	}
	if p.pos != len(toks) {
		return nil, fmt.Errorf("expr: unexpected trailing tokens in %q", s)
	}
	return &Expr{root: n}, nil
}

// token kinds.
const (
	tNum = iota
	tVar
	tOp
	tLParen
	tRParen
)

type token struct {
	kind byte
	op   byte
	num  float64
}

func lex(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token{kind: tLParen})
			i++
		case c == ')':
			toks = append(toks, token{kind: tRParen})
			i++
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '^':
			toks = append(toks, token{kind: tOp, op: c})
			i++
		case c == 'x' || c == 'X':
			toks = append(toks, token{kind: tVar})
			i++
		case (c >= '0' && c <= '9') || c == '.':
			j := i
			for j < len(s) && ((s[j] >= '0' && s[j] <= '9') || s[j] == '.') {
				j++
			}
			f, err := strconv.ParseFloat(s[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("expr: bad number %q: %w", s[i:j], err)
			}
			toks = append(toks, token{kind: tNum, num: f})
			i = j
		default:
			return nil, fmt.Errorf("expr: unexpected character %q in %q", string(c), s)
		}
	}
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

// precedence, lowest to highest.
var precLevels = [][]byte{
	{'+', '-'},
	{'*', '/'},
	{'^'},
}

// parseExpr parses toks[start:end] at precedence level lvl, recursing to
// higher precedence (and finally parsePrimary) as lvl exhausts the table.
// It scans the range for the rightmost depth-zero operator at this level
// and splits there, so that "a - b - c" groups as (a-b)-c while "x^2"
// binds tightly.
func (p *parser) parseExpr(lvl, end int) (Node, error) {
	start := p.pos
	if lvl >= len(precLevels) {
		return p.parseUnary(end)
	}
	ops := precLevels[lvl]
	depth := 0
	splitAt := -1
	var splitOp byte
	for i := start; i < end; i++ {
		t := p.toks[i]
		switch t.kind {
		case tLParen:
			depth++
		case tRParen:
			depth--
		case tOp:
			// A leading operator, or one directly following another
			// operator or an open paren, is unary (e.g. "-x", "2*-x"),
			// never a binary split point.
			prevIsOperand := i > start &&
				(p.toks[i-1].kind == tNum || p.toks[i-1].kind == tVar || p.toks[i-1].kind == tRParen)
			if depth == 0 && prevIsOperand && containsOp(ops, t.op) {
				splitAt = i
				splitOp = t.op
			}
		}
	}
	if splitAt < 0 {
		return p.parseExpr(lvl+1, end)
	}
	p.pos = start
	left, err := p.parseExpr(lvl, splitAt)
	if err != nil {
		return nil, err
	}
	p.pos = splitAt + 1
	right, err := p.parseExpr(lvl+1, end)
	if err != nil {
		return nil, err
	}
	p.pos = end
	return binNode{op: splitOp, l: left, r: right}, nil
}

func containsOp(ops []byte, op byte) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

// parseUnary handles a leading unary minus before falling through to a
// primary (number, variable, or parenthesized sub-expression).
func (p *parser) parseUnary(end int) (Node, error) {
	if p.pos < end && p.toks[p.pos].kind == tOp && p.toks[p.pos].op == '-' {
		p.pos++
		n, err := p.parseUnary(end)
		if err != nil {
			return nil, err
		}
		return negNode{n: n}, nil
	}
	return p.parsePrimary(end)
}

func (p *parser) parsePrimary(end int) (Node, error) {
	if p.pos >= end {
		return nil, fmt.Errorf("expr: unexpected end of expression")
	}
	t := p.toks[p.pos]
	switch t.kind {
	case tNum:
		p.pos++
		return numNode(t.num), nil
	case tVar:
		p.pos++
		return varNode{}, nil
	case tLParen:
		// Find the matching close paren.
		depth := 1
		j := p.pos + 1
		for ; j < end; j++ {
			switch p.toks[j].kind {
			case tLParen:
				depth++
			case tRParen:
				depth--
			}
			if depth == 0 {
				break
			}
		}
		if depth != 0 {
			return nil, fmt.Errorf("expr: unbalanced parentheses")
		}
		p.pos++
		n, err := p.parseExpr(0, j)
		if err != nil {
			return nil, err
		}
		p.pos = j + 1
		return n, nil
	}
	return nil, fmt.Errorf("expr: unexpected token at position %d", p.pos)
}

// String renders the parsed tree back to a canonical infix form, mostly
// useful for diagnostics and tests.
func (e *Expr) String() string {
	var b strings.Builder
	writeNode(&b, e.root)
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case numNode:
		fmt.Fprintf(b, "%v", float64(v))
	case varNode:
		b.WriteString("x")
	case negNode:
		b.WriteString("-")
		writeNode(b, v.n)
	case binNode:
		b.WriteString("(")
		writeNode(b, v.l)
		fmt.Fprintf(b, " %c ", v.op)
		writeNode(b, v.r)
		b.WriteString(")")
	}
}
