package rules

import (
	"sort"
	"strings"

	"github.com/polint/polint/hook"
)

// filterEntry is one "addFilter*" directive: a composed filter function
// plus the handle set (for removeFilter) and the environment list it is
// restricted to (nil means environment-agnostic).
type filterEntry struct {
	handles   map[string]bool
	envs      []string // nil: applies in every environment
	msgFn     func(t *Texts)
	patternFn func(string) string // set instead of msgFn for a rule-pattern filter
	sig       string
}

// filterSet accumulates addFilter*/removeFilter/clearFilters directives
// while a rule file is parsed. A rule's own filter list starts as a copy
// of the enclosing global list and is independently mutable from then on,
// matching loadRulesFromFile's globalMsgFilters/msgFilters split.
type filterSet struct {
	entries []*filterEntry
}

func (fs *filterSet) clone() *filterSet {
	if fs == nil {
		return &filterSet{}
	}
	return &filterSet{entries: append([]*filterEntry(nil), fs.entries...)}
}

func (fs *filterSet) add(e *filterEntry) { fs.entries = append(fs.entries, e) }

func (fs *filterSet) clear() { fs.entries = nil }

// remove drops every entry sharing a handle with handles. It reports the
// handles that matched nothing, for the caller to report as an error (the
// directive-level environment gate, if any, is the caller's job).
func (fs *filterSet) remove(handles []string) []string {
	want := map[string]bool{}
	for _, h := range handles {
		want[strings.TrimSpace(h)] = true
	}
	seen := map[string]bool{}
	kept := fs.entries[:0:0]
	for _, e := range fs.entries {
		hit := false
		for h := range e.handles {
			if want[h] {
				hit = true
				seen[h] = true
			}
		}
		if hit {
			continue
		}
		kept = append(kept, e)
	}
	fs.entries = kept
	var unseen []string
	for h := range want {
		if !seen[h] {
			unseen = append(unseen, h)
		}
	}
	sort.Strings(unseen)
	return unseen
}

func containsEnv(envs []string, env string) bool {
	if envs == nil {
		return true
	}
	for _, e := range envs {
		if e == env {
			return true
		}
	}
	return false
}

// signature returns a stable string identifying this filter set's content,
// so that rules of one rule file (its includes included) sharing the same
// filters end up sharing one composed function instead of rebuilding it per
// rule. The seen-signature map lives in one loadRuleFile call; separately
// loaded rule files do not share composed functions.
func (fs *filterSet) signature() string {
	sigs := make([]string, len(fs.entries))
	for i, e := range fs.entries {
		sigs[i] = e.sig
	}
	return strings.Join(sigs, "\x05")
}

// composeRuleFilter builds a RuleFilterFunc out of every patternFn entry in
// this set, applied in order regardless of environment (rule-pattern text,
// e.g. a trigger or valid-entry pattern, is fixed at load time, before any
// operating environment is known).
func (fs *filterSet) composeRuleFilter() RuleFilterFunc {
	if fs == nil {
		return nil
	}
	var fns []func(string) string
	for _, e := range fs.entries {
		if e.patternFn != nil {
			fns = append(fns, e.patternFn)
		}
	}
	if len(fns) == 0 {
		return nil
	}
	return func(s string) string {
		for _, fn := range fns {
			s = fn(s)
		}
		return s
	}
}

// compose builds the final MsgFilterFunc for this set, applying every
// entry whose environment restriction matches env (or is unrestricted).
func (fs *filterSet) compose() MsgFilterFunc {
	if fs == nil || len(fs.entries) == 0 {
		return nil
	}
	entries := append([]*filterEntry(nil), fs.entries...)
	return func(t *Texts, env string) {
		for _, e := range entries {
			if containsEnv(e.envs, env) {
				e.msgFn(t)
			}
		}
	}
}

var filterKnownMsgParts = map[string]bool{
	"msg": true, "msgid": true, "msgstr": true, "pmsgid": true, "pmsgstr": true,
}

// parseFilterGeneral reads the common "handle=", "on=", "env=" fields
// shared by every addFilter* directive, returning the rest for the
// type-specific builder.
func parseFilterGeneral(fields []Field) (handles map[string]bool, parts []string, envs []string, rest []Field, err error) {
	handles = map[string]bool{}
	for _, f := range fields {
		switch f.Name {
		case "handle":
			for _, h := range strings.Split(f.Value, ",") {
				handles[strings.TrimSpace(h)] = true
			}
		case "on":
			for _, p := range strings.Split(f.Value, ",") {
				p = strings.TrimSpace(p)
				if !filterKnownMsgParts[p] && !filterKnownRuleParts[p] {
					return nil, nil, nil, nil, &DSLError{Msg: "unknown part for filter to act on: " + p}
				}
				parts = append(parts, p)
			}
		case "env":
			for _, e := range strings.Split(f.Value, ",") {
				envs = append(envs, strings.TrimSpace(e))
			}
		default:
			rest = append(rest, f)
		}
	}
	if len(parts) == 0 {
		return nil, nil, nil, nil, &DSLError{Msg: "no parts specified for the filter to act on"}
	}
	return handles, parts, envs, rest, nil
}

// applyOnParts wraps a plain text-transform as a Texts-mutating function
// scoped to the requested message parts.
func applyOnParts(parts []string, transform func(string) string) func(t *Texts) {
	sorted := append([]string(nil), parts...)
	sort.Strings(sorted)
	return func(t *Texts) {
		for _, p := range sorted {
			switch p {
			case "msg":
				t.Msgctxt = transform(t.Msgctxt)
				t.Msgid = transform(t.Msgid)
				t.MsgidPlural = transform(t.MsgidPlural)
				for i := range t.Msgstr {
					t.Msgstr[i] = transform(t.Msgstr[i])
				}
			case "msgid", "pmsgid":
				t.Msgid = transform(t.Msgid)
				t.MsgidPlural = transform(t.MsgidPlural)
			case "msgstr", "pmsgstr":
				for i := range t.Msgstr {
					t.Msgstr[i] = transform(t.Msgstr[i])
				}
			}
		}
	}
}

func buildFilterRegex(fields []Field) (func(string) string, string, error) {
	var matchStr, replStr string
	caseSens := false
	haveMatch := false
	for _, f := range fields {
		switch f.Name {
		case "match":
			matchStr = f.Value
			haveMatch = true
		case "repl":
			replStr = f.Value
		case "case":
			caseSens = fancyBool(f.Value)
		default:
			return nil, "", &DSLError{Msg: "unknown field in addFilterRegex directive: " + f.Name}
		}
	}
	if !haveMatch {
		return nil, "", &DSLError{Msg: "mandatory field 'match' missing in addFilterRegex directive"}
	}
	re, err := compileRegex(matchStr, caseSens)
	if err != nil {
		return nil, "", err
	}
	fn := func(s string) string { return re.ReplaceAllString(s, replStr) }
	sig := strings.Join([]string{matchStr, replStr, boolStr(caseSens)}, "\x04")
	return fn, sig, nil
}

func buildFilterHook(fields []Field) (func(string) string, string, error) {
	var name, factoryArgs string
	haveFactory := false
	for _, f := range fields {
		switch f.Name {
		case "name":
			name = f.Value
		case "factory":
			factoryArgs = f.Value
			haveFactory = true
		default:
			return nil, "", &DSLError{Msg: "unknown field in addFilterHook directive: " + f.Name}
		}
	}
	if name == "" {
		return nil, "", &DSLError{Msg: "mandatory field 'name' missing in addFilterHook directive"}
	}
	var h interface{}
	var err error
	if haveFactory {
		h, err = hook.LoadFactoryRequest(name, factoryArgs)
	} else {
		h, err = hook.LoadRequest(name)
	}
	if err != nil {
		return nil, "", err
	}
	sig := name
	if haveFactory {
		sig += "\x04" + factoryArgs
	}

	switch fn := h.(type) {
	case hook.TextHook:
		return func(s string) string {
			if out, ok := fn(s); ok {
				return out
			}
			return s
		}, sig, nil
	case func(string) (string, bool):
		return func(s string) string {
			if out, ok := fn(s); ok {
				return out
			}
			return s
		}, sig, nil
	default:
		return nil, "", &DSLError{Msg: "hook '" + name + "' is not a plain text hook"}
	}
}

func fancyBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
