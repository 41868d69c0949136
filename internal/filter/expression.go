package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// -----------------------------------------------------------------------
// AST nodes
// -----------------------------------------------------------------------

// Expr is the common interface for all AST nodes.
type Expr interface {
	exprNode()
}

// BinaryExpr represents AND / OR.
type BinaryExpr struct {
	Op    string // "AND" | "OR"
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// NotExpr represents NOT <expr>.
type NotExpr struct {
	Expr Expr
}

func (*NotExpr) exprNode() {}

// ComparisonExpr represents <field> <operator> <operand>.
type ComparisonExpr struct {
	Field Field
	Op    Operator
	Right Operand

	re *regexp.Regexp // compiled pattern of a matches comparison
}

func (*ComparisonExpr) exprNode() {}

// -----------------------------------------------------------------------
// Operands
// -----------------------------------------------------------------------

// Operand is either a literal value or another edge field.
type Operand interface {
	operandNode()
}

// LiteralOperand holds a pre-parsed constant: string, float64 or bool.
type LiteralOperand struct {
	Value any
}

func (*LiteralOperand) operandNode() {}

// FieldOperand names an edge attribute such as "target.kind".
type FieldOperand struct {
	Field Field
}

func (*FieldOperand) operandNode() {}

// -----------------------------------------------------------------------
// Tokenizer
// -----------------------------------------------------------------------

type tokenKind int

const (
	tokWord   tokenKind = iota // identifier or keyword
	tokOp     // ==, !=, >=, <=, >, <
	tokString // "…" or '…'
	tokNumber // 42 | 3.14
	tokBool   // true | false
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	val  string
	pos  int
}

func tokenize(expr string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(expr) {
		ch := expr[i]
		if unicode.IsSpace(rune(ch)) {
			i++
			continue
		}
		switch {
		case ch == '(':
			tokens = append(tokens, token{tokLParen, "(", i})
			i++
		case ch == ')':
			tokens = append(tokens, token{tokRParen, ")", i})
			i++
		case ch == '=' || ch == '!' || ch == '<' || ch == '>':
			if i+1 < len(expr) && expr[i+1] == '=' {
				tokens = append(tokens, token{tokOp, expr[i : i+2], i})
				i += 2
				continue
			}
			if ch == '=' || ch == '!' {
				return nil, fmt.Errorf("unexpected %q at position %d", ch, i)
			}
			tokens = append(tokens, token{tokOp, string(ch), i})
			i++
		case ch == '"' || ch == '\'':
			j := i + 1
			for j < len(expr) && expr[j] != ch {
				if expr[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(expr) {
				return nil, fmt.Errorf("unterminated string starting at position %d", i)
			}
			inner := expr[i+1 : j]
			inner = strings.ReplaceAll(inner, `\"`, `"`)
			inner = strings.ReplaceAll(inner, `\'`, `'`)
			inner = strings.ReplaceAll(inner, `\\`, `\`)
			tokens = append(tokens, token{tokString, inner, i})
			i = j + 1
		case unicode.IsDigit(rune(ch)):
			j := i
			for j < len(expr) && (unicode.IsDigit(rune(expr[j])) || expr[j] == '.') {
				j++
			}
			tokens = append(tokens, token{tokNumber, expr[i:j], i})
			i = j
		case unicode.IsLetter(rune(ch)) || ch == '_':
			j := i
			for j < len(expr) && (unicode.IsLetter(rune(expr[j])) || unicode.IsDigit(rune(expr[j])) || expr[j] == '_' || expr[j] == '.') {
				j++
			}
			word := expr[i:j]
			switch strings.ToLower(word) {
			case "true", "false":
				tokens = append(tokens, token{tokBool, strings.ToLower(word), i})
			default:
				tokens = append(tokens, token{tokWord, word, i})
			}
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", ch, i)
		}
	}
	tokens = append(tokens, token{tokEOF, "", len(expr)})
	return tokens, nil
}

// -----------------------------------------------------------------------
// Recursive-descent parser
// -----------------------------------------------------------------------

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) consume() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) keyword(kw string) bool {
	t := p.peek()
	return t.kind == tokWord && strings.EqualFold(t.val, kw)
}

// Parse parses an expression string into an AST. Field names and regular
// expressions are checked here so that evaluation cannot fail on them.
func Parse(expr string) (Expr, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("unexpected token %q at position %d", t.val, t.pos)
	}
	return node, nil
}

// or_expr = and_expr ( "OR" and_expr )*
func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("OR") {
		p.consume()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

// and_expr = not_expr ( "AND" not_expr )*
func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.keyword("AND") {
		p.consume()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

// not_expr = "NOT" not_expr | "(" or_expr ")" | comparison
func (p *parser) parseNot() (Expr, error) {
	if p.keyword("NOT") {
		p.consume()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Expr: inner}, nil
	}
	if p.peek().kind == tokLParen {
		p.consume()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if t := p.peek(); t.kind != tokRParen {
			return nil, fmt.Errorf("expected \")\" at position %d, got %q", t.pos, t.val)
		}
		p.consume()
		return inner, nil
	}
	return p.parseComparison()
}

// comparison = field operator operand
func (p *parser) parseComparison() (Expr, error) {
	t := p.peek()
	if t.kind != tokWord {
		return nil, fmt.Errorf("expected field name at position %d, got %q", t.pos, t.val)
	}
	field, err := lookupField(t.val)
	if err != nil {
		return nil, err
	}
	p.consume()

	t = p.peek()
	var op Operator
	switch {
	case t.kind == tokOp:
		op = Operator(t.val)
	case p.keyword(string(OpContains)):
		op = OpContains
	case p.keyword(string(OpMatches)):
		op = OpMatches
	default:
		return nil, fmt.Errorf("expected comparison operator after %s, got %q", field.Name, t.val)
	}
	p.consume()

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	cmp := &ComparisonExpr{Field: field, Op: op, Right: right}
	if err := cmp.check(); err != nil {
		return nil, err
	}
	return cmp, nil
}

// operand = field | literal
func (p *parser) parseOperand() (Operand, error) {
	t := p.consume()
	switch t.kind {
	case tokString:
		return &LiteralOperand{Value: t.val}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.val, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", t.val)
		}
		return &LiteralOperand{Value: f}, nil
	case tokBool:
		return &LiteralOperand{Value: t.val == "true"}, nil
	case tokWord:
		f, err := lookupField(t.val)
		if err != nil {
			return nil, err
		}
		return &FieldOperand{Field: f}, nil
	}
	return nil, fmt.Errorf("expected operand at position %d, got %q", t.pos, t.val)
}

// check rejects comparisons whose operand kinds can never match and
// compiles the pattern of a matches comparison.
func (c *ComparisonExpr) check() error {
	var right Kind
	switch r := c.Right.(type) {
	case *FieldOperand:
		right = r.Field.Kind
	case *LiteralOperand:
		right = kindOf(r.Value)
	}
	switch c.Op {
	case OpEq, OpNeq:
		if c.Field.Kind != right {
			return fmt.Errorf("%s is a %s, compared with a %s", c.Field.Name, c.Field.Kind, right)
		}
	case OpGt, OpGte, OpLt, OpLte:
		if c.Field.Kind != KindNumber || right != KindNumber {
			return fmt.Errorf("operator %s requires numbers, %s is a %s", c.Op, c.Field.Name, c.Field.Kind)
		}
	case OpContains:
		if c.Field.Kind != KindString || right != KindString {
			return fmt.Errorf("contains requires strings, %s is a %s", c.Field.Name, c.Field.Kind)
		}
	case OpMatches:
		var pattern string
		if lit, ok := c.Right.(*LiteralOperand); ok {
			pattern, _ = lit.Value.(string)
		}
		if pattern == "" || c.Field.Kind != KindString {
			return fmt.Errorf("matches requires a string field and a non-empty string pattern")
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("matches: invalid regex %q: %w", pattern, err)
		}
		c.re = re
	default:
		return fmt.Errorf("unknown operator %q", c.Op)
	}
	return nil
}
