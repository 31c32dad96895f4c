package cpabe

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParsePolicy parses a policy expression into an access tree.
//
// Grammar:
//
//	expr   = term { "or" term }
//	term   = factor { "and" factor }
//	factor = attribute | "(" expr ")" | k "of" "(" expr { "," expr } ")"
//
// Keywords are case-insensitive. Attributes are runs of letters, digits and
// the characters _ - . : @ = / not starting with a digit, or Go-quoted
// strings. Chains of the same operator flatten into one gate.
func ParsePolicy(s string) (*Node, error) {
	toks, err := lex(s)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %s at offset %d", ErrInvalidPolicy, t, t.pos)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokAttr
	tokInt
	tokAnd
	tokOr
	tokOf
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokKind
	text string
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokAttr:
		return fmt.Sprintf("attribute %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

func isKeyword(s string) bool {
	switch strings.ToLower(s) {
	case "and", "or", "of":
		return true
	}
	return false
}

func isAttributeRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.ContainsRune("_-.:@=/", r)
}

func lex(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		r, w := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			i += w
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case r == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case r == '"':
			lit, err := strconv.QuotedPrefix(s[i:])
			if err != nil {
				return nil, fmt.Errorf("%w: bad quoted attribute at offset %d", ErrInvalidPolicy, i)
			}
			v, _ := strconv.Unquote(lit)
			toks = append(toks, token{tokAttr, v, i})
			i += len(lit)
		case isAttributeRune(r):
			j := i
			for j < len(s) {
				r, w := utf8.DecodeRuneInString(s[j:])
				if !isAttributeRune(r) {
					break
				}
				j += w
			}
			word := s[i:j]
			toks = append(toks, classify(word, i))
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrInvalidPolicy, r, i)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(s)}), nil
}

func classify(word string, pos int) token {
	switch strings.ToLower(word) {
	case "and":
		return token{tokAnd, word, pos}
	case "or":
		return token{tokOr, word, pos}
	case "of":
		return token{tokOf, word, pos}
	}
	if _, err := strconv.Atoi(word); err == nil {
		return token{tokInt, word, pos}
	}
	return token{tokAttr, word, pos}
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokKind, what string) error {
	if t := p.next(); t.kind != k {
		return fmt.Errorf("%w: expected %s, got %s at offset %d", ErrInvalidPolicy, what, t, t.pos)
	}
	return nil
}

func (p *parser) expr() (*Node, error) {
	return p.chain(tokOr, p.term, Or)
}

func (p *parser) term() (*Node, error) {
	return p.chain(tokAnd, p.factor, And)
}

func (p *parser) chain(op tokKind, operand func() (*Node, error), gate func(...*Node) *Node) (*Node, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != op {
		return first, nil
	}
	children := []*Node{first}
	for p.peek().kind == op {
		p.next()
		n, err := operand()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return gate(children...), nil
}

func (p *parser) factor() (*Node, error) {
	t := p.next()
	switch t.kind {
	case tokAttr:
		return Leaf(t.text), nil
	case tokLParen:
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return n, nil
	case tokInt:
		k, _ := strconv.Atoi(t.text)
		if err := p.expect(tokOf, `"of"`); err != nil {
			return nil, err
		}
		if err := p.expect(tokLParen, `"("`); err != nil {
			return nil, err
		}
		var children []*Node
		for {
			n, err := p.expr()
			if err != nil {
				return nil, err
			}
			children = append(children, n)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
		if err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return Threshold(k, children...), nil
	default:
		return nil, fmt.Errorf("%w: unexpected %s at offset %d", ErrInvalidPolicy, t, t.pos)
	}
}
