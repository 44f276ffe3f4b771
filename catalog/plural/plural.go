// Package plural implements a dedicated recursive-descent parser for the
// gettext Plural-Forms expression grammar, producing an evaluator tree
// instead of transpiling to and invoking a host-language expression
// (spec.md §4.3, §9 design note 3: the source's "split at ? and : and
// rewrite &&/||" transform is an explicit open question the rewrite
// resolves by accepting the documented grammar and rejecting anything
// else cleanly, rather than assuming every Plural-Forms value fits that
// transform's shape).
package plural

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expr is a compiled plural expression. Eval(n) returns the msgstr index
// selected for count n.
type Expr interface {
	eval(n int) int
}

// Header is a parsed "Plural-Forms: nplurals=N; plural=<expr>;" header
// value.
type Header struct {
	NPlurals int
	Raw      string // the raw "plural=" expression text; not used as a cache key (Catalog.PluralHeader caches one Header per catalog)
	expr     Expr
}

// Index returns the msgstr slot selected for count n.
func (h *Header) Index(n int) int {
	if h.expr == nil {
		return 0
	}
	idx := h.expr.eval(n)
	if idx < 0 || idx >= h.NPlurals {
		if h.NPlurals <= 0 {
			return 0
		}
		idx = ((idx % h.NPlurals) + h.NPlurals) % h.NPlurals
	}
	return idx
}

var pluralFormsFieldRx = regexp.MustCompile(`nplurals\s*=\s*(\d+)\s*;\s*plural\s*=\s*([^;]*);?`)

// Parse parses a full "Plural-Forms" header field value, e.g.
// "nplurals=3; plural=n==1 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2;".
// nplurals defaults to 1 when the field is empty (spec.md §4.3).
func Parse(value string) (*Header, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return &Header{NPlurals: 1, expr: constExpr(0)}, nil
	}
	m := pluralFormsFieldRx.FindStringSubmatch(value)
	if m == nil {
		return nil, fmt.Errorf("plural: malformed Plural-Forms value %q", value)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, fmt.Errorf("plural: bad nplurals in %q: %w", value, err)
	}
	raw := strings.TrimSpace(m[2])
	expr, err := ParseExpr(raw)
	if err != nil {
		return nil, fmt.Errorf("plural: %w", err)
	}
	return &Header{NPlurals: n, Raw: raw, expr: expr}, nil
}

type constExpr int

func (c constExpr) eval(int) int { return int(c) }

// ParseExpr parses just the right-hand side of "plural=", a C-like ternary
// boolean/arithmetic expression over the single variable n.
func ParseExpr(s string) (Expr, error) {
	p := &exprParser{toks: tokenize(s), src: s}
	e, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("unexpected token %q in %q", p.toks[p.pos].text, s)
	}
	return e, nil
}
