// Package rules implements the translation-fault rule DSL and matcher
// (spec.md §4.4, §4.5): a trigger pattern tested against one part of a
// message, excepted by zero or more validity entries, composed with
// optional message/pattern filters. Grounded on misc/rules.py's Rule class
// and loadRulesFromFile.
package rules

import (
	"regexp"

	log "github.com/sirupsen/logrus"

	"github.com/polint/polint/catalog"
)

// Texts is the subset of a message's text fields a rule matches against.
// Rules never see the live catalog.Entry directly: a message filter runs
// against this detached copy, so filtering a message for one rule can
// never affect another rule or the catalog itself.
type Texts struct {
	Msgctxt     string
	Msgid       string
	MsgidPlural string
	Msgstr      []string
}

func textsFromEntry(e *catalog.Entry) Texts {
	ctx := e.Msgctxt()
	mid := e.MsgidPlural()
	return Texts{
		Msgctxt:     ctx.Value,
		Msgid:       e.Msgid(),
		MsgidPlural: mid.Value,
		Msgstr:      append([]string(nil), e.Msgstr.Items()...),
	}
}

// MsgFilterFunc mutates a detached copy of a message's texts before
// matching, in the given environment (empty string if none).
type MsgFilterFunc func(t *Texts, env string)

// RuleFilterFunc transforms a rule string (the trigger pattern, or a
// validity entry's pattern) before it is compiled as a regexp.
type RuleFilterFunc func(s string) string

// Span is a byte-offset match range within the text it was found in.
type Span struct {
	Start, End int
}

// Match is one failed span: msg's Part/Item text contains one or more
// Spans that triggered the rule and were not excepted by any validity
// entry.
type Match struct {
	Part  string
	Item  int
	Spans []Span
	Text  string
}

// Constraint is one key[=value] test inside a validity entry. Exactly one
// of Regex/List is populated, per Key.
type Constraint struct {
	Key    string // "env", "cat", "span", "after", "before", "ctx", "msgid", "msgstr"
	Invert bool
	Regex  *regexp.Regexp // span, after, before, ctx, msgid, msgstr
	List   []string       // env, cat
}

// ValidityEntry is one "valid ..." line: an AND of Constraints. A Rule's
// match is excepted if any one of its ValidityEntry list matches as a
// whole.
type ValidityEntry []Constraint

var knownValidityKeys = map[string]bool{
	"env": true, "cat": true, "span": true, "after": true,
	"before": true, "ctx": true, "msgid": true, "msgstr": true,
}

var regexValidityKeys = map[string]bool{
	"span": true, "after": true, "before": true, "ctx": true,
	"msgid": true, "msgstr": true,
}

// Rule is one compiled trigger pattern plus its validity exceptions.
type Rule struct {
	RawPattern string
	Pattern    *regexp.Regexp
	MsgPart    string // e.g. "msgid", "msgstr", "msgstr_0", "msgid_singular"
	Hint       string
	Ident      string
	Disabled   bool
	CaseSens   bool
	Environ    string

	Valid []ValidityEntry

	MFilter MsgFilterFunc
	RFilter RuleFilterFunc

	Count int
	TimeMs float64
	stat   bool
}

var validMsgParts = map[string]bool{
	"msgctxt": true, "msgid": true, "msgstr": true,
	"msgid_singular": true, "msgid_plural": true,
}

func isValidMsgPart(part string) bool {
	if validMsgParts[part] {
		return true
	}
	if len(part) > len("msgstr_") && part[:len("msgstr_")] == "msgstr_" {
		for _, c := range part[len("msgstr_"):] {
			if c < '0' || c > '9' {
				return false
			}
		}
		return true
	}
	return false
}

// Options configures a Rule at construction time; all fields are optional.
type Options struct {
	Hint     string
	Ident    string
	Valid    []ValidityEntry
	Stat     bool
	CaseSens bool
	Disabled bool
	Environ  string
	MFilter  MsgFilterFunc
	RFilter  RuleFilterFunc
}

// New compiles pattern against msgpart, honoring opts.RFilter (applied to
// the raw pattern text before compilation, the same way as to every valid
// entry's pattern). An invalid pattern disables the rule rather than
// failing construction, matching loadRulesFromFile's tolerant behavior.
func New(pattern, msgpart string, opts Options) (*Rule, error) {
	if !isValidMsgPart(msgpart) {
		return nil, &DSLError{Msg: "unknown trigger keyword '" + msgpart + "' in rule"}
	}
	r := &Rule{
		RawPattern: pattern,
		MsgPart:    msgpart,
		Hint:       opts.Hint,
		Ident:      opts.Ident,
		Disabled:   opts.Disabled,
		CaseSens:   opts.CaseSens,
		Environ:    opts.Environ,
		Valid:      opts.Valid,
		MFilter:    opts.MFilter,
		RFilter:    opts.RFilter,
		stat:       opts.Stat,
	}
	raw := pattern
	if r.RFilter != nil {
		raw = r.RFilter(raw)
	}
	cr, err := compileRegex(raw, r.CaseSens)
	if err != nil {
		log.Warnf("rule pattern %q does not compile, rule disabled: %v", pattern, err)
		r.Disabled = true
		return r, nil
	}
	r.Pattern = cr
	return r, nil
}

func compileRegex(pattern string, caseSens bool) (*regexp.Regexp, error) {
	if !caseSens {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

// DSLError is a rule-file syntax or semantic error.
type DSLError struct {
	Msg  string
	File string
	Line int
}

func (e *DSLError) Error() string {
	if e.File == "" {
		return e.Msg
	}
	if e.Line > 0 {
		return e.File + ": " + itoaSmall(e.Line) + ": " + e.Msg
	}
	return e.File + ": " + e.Msg
}

func itoaSmall(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

