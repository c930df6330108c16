package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-recoform/pkg/visibility"
)

// Evaluator interprets small boolean visibility rules.
//
// Supported syntax:
//   - truthiness: `method`
//   - comparisons against string or bool literals: `method == "cbf"`, `method != "svd"`
//   - composition: `!`, `&&`, `||` and parentheses
//
// Parsed rules are cached because the form evaluates the same handful of
// rules on every render.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]node
}

// New returns an Evaluator with an empty rule cache.
func New() *Evaluator {
	return &Evaluator{cache: make(map[string]node)}
}

var _ visibility.Evaluator = (*Evaluator)(nil)

// Eval implements visibility.Evaluator.
func (e *Evaluator) Eval(_ string, rule string, ctx visibility.Context) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}
	compiled, err := e.compile(trimmed)
	if err != nil {
		return false, err
	}
	return compiled.eval(ctx), nil
}

func (e *Evaluator) compile(rule string) (node, error) {
	e.mu.RLock()
	cached, ok := e.cache[rule]
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	tokens, err := tokenize(rule)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	compiled, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", p.peek().raw)
	}

	e.mu.Lock()
	e.cache[rule] = compiled
	e.mu.Unlock()
	return compiled, nil
}

type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenString
	tokenBool
	tokenEq
	tokenNeq
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

var operators = []struct {
	text string
	kind tokenKind
}{
	{"==", tokenEq},
	{"!=", tokenNeq},
	{"&&", tokenAnd},
	{"||", tokenOr},
	{"!", tokenNot},
	{"(", tokenLParen},
	{")", tokenRParen},
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		ch := input[i]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}

		if ch == '"' || ch == '\'' {
			end := i + 1
			for end < len(input) && input[end] != ch {
				if input[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(input) {
				return nil, errors.New("visibility/expr: unterminated string literal")
			}
			quoted := input[i : end+1]
			if ch == '\'' {
				quoted = `"` + strings.ReplaceAll(input[i+1:end], `"`, `\"`) + `"`
			}
			value, err := strconv.Unquote(quoted)
			if err != nil {
				return nil, fmt.Errorf("visibility/expr: invalid string literal: %w", err)
			}
			tokens = append(tokens, token{kind: tokenString, raw: value})
			i = end + 1
			continue
		}

		matched := false
		for _, op := range operators {
			if strings.HasPrefix(input[i:], op.text) {
				tokens = append(tokens, token{kind: op.kind, raw: op.text})
				i += len(op.text)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if ch == '=' || ch == '&' || ch == '|' {
			return nil, fmt.Errorf("visibility/expr: unexpected %q", ch)
		}

		start := i
		for i < len(input) && !strings.ContainsRune(" \t\n\r()!=&|\"'", rune(input[i])) {
			i++
		}
		word := input[start:i]
		switch strings.ToLower(word) {
		case "true", "false":
			tokens = append(tokens, token{kind: tokenBool, raw: strings.ToLower(word)})
		default:
			tokens = append(tokens, token{kind: tokenIdent, raw: word})
		}
	}
	return tokens, nil
}

type node interface {
	eval(ctx visibility.Context) bool
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) bool { return n.left.eval(ctx) || n.right.eval(ctx) }

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) bool { return n.left.eval(ctx) && n.right.eval(ctx) }

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) bool { return !n.inner.eval(ctx) }

type truthyNode struct{ ident string }

func (n truthyNode) eval(ctx visibility.Context) bool {
	value, ok := ctx.Values[n.ident]
	if !ok {
		return false
	}
	return truthy(value)
}

type compareNode struct {
	ident   string
	negate  bool
	literal token
}

func (n compareNode) eval(ctx visibility.Context) bool {
	value := ctx.Values[n.ident]
	var equal bool
	if n.literal.kind == tokenBool {
		equal = truthy(value) == (n.literal.raw == "true")
	} else {
		equal = asString(value) == n.literal.raw
	}
	return equal != n.negate
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) done() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) match(kind tokenKind) bool {
	if p.done() || p.tokens[p.pos].kind != kind {
		return false
	}
	p.pos++
	return true
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(tokenOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.match(tokenAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.match(tokenNot) {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if p.match(tokenLParen) {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.match(tokenRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}
	if p.done() {
		return nil, errors.New("visibility/expr: unexpected end of rule")
	}

	ident := p.peek()
	if ident.kind != tokenIdent {
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", ident.raw)
	}
	p.pos++

	negate := false
	switch {
	case p.match(tokenEq):
	case p.match(tokenNeq):
		negate = true
	default:
		return truthyNode{ident: ident.raw}, nil
	}

	if p.done() {
		return nil, errors.New("visibility/expr: missing literal")
	}
	lit := p.peek()
	switch lit.kind {
	case tokenString, tokenBool:
	case tokenIdent:
		// bare words compare as strings: method == cbf
		lit = token{kind: tokenString, raw: lit.raw}
	default:
		return nil, fmt.Errorf("visibility/expr: expected literal, got %q", lit.raw)
	}
	p.pos++
	return compareNode{ident: ident.raw, negate: negate, literal: lit}, nil
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(v)
		if err == nil {
			return parsed
		}
		return v != ""
	default:
		return true
	}
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
