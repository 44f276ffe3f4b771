package rules

import (
	"regexp"

	"github.com/polint/polint/catalog"
)

type textSpecItem struct {
	part string
	item int
	text string
}

// textSpec lists the (part, item, text) triples a rule's MsgPart trigger
// keyword selects out of t, per misc/rules.py's Rule.process.
func (r *Rule) textSpec(t Texts) []textSpecItem {
	switch r.MsgPart {
	case "msgid":
		return []textSpecItem{
			{"msgid", 0, t.Msgid},
			{"msgid_plural", 0, t.MsgidPlural},
		}
	case "msgstr":
		out := make([]textSpecItem, len(t.Msgstr))
		for i, s := range t.Msgstr {
			out[i] = textSpecItem{"msgstr", i, s}
		}
		return out
	case "msgctxt":
		return []textSpecItem{{"msgctxt", 0, t.Msgctxt}}
	case "msgid_singular":
		return []textSpecItem{{"msgid", 0, t.Msgid}}
	case "msgid_plural":
		return []textSpecItem{{"msgid_plural", 0, t.MsgidPlural}}
	default: // "msgstr_N"
		idx := 0
		for _, c := range r.MsgPart[len("msgstr_"):] {
			idx = idx*10 + int(c-'0')
		}
		if idx < 0 || idx >= len(t.Msgstr) {
			return nil
		}
		return []textSpecItem{{"msgstr", idx, t.Msgstr[idx]}}
	}
}

// Process applies the rule to msg within catName/env, returning the failed
// spans grouped by (part, item). nofilter skips the rule's own MFilter,
// for callers that already filtered msg identically. A disabled rule, or
// one scoped to a different environment, always returns nil.
func (r *Rule) Process(msg *catalog.Entry, catName, env string, nofilter bool) []Match {
	if r.Pattern == nil || r.Disabled {
		return nil
	}
	if r.Environ != "" && env != r.Environ {
		return nil
	}

	var start int64
	if r.stat {
		start = nowNano()
	}

	texts := textsFromEntry(msg)
	if !nofilter && r.MFilter != nil {
		r.MFilter(&texts, env)
	}

	type groupKey struct {
		part string
		item int
	}
	byKey := map[groupKey]*Match{}
	var order []groupKey

	for _, ts := range r.textSpec(texts) {
		locs := r.Pattern.FindAllStringIndex(ts.text, -1)
		for _, loc := range locs {
			excepted := false
			for _, entry := range r.Valid {
				if r.isValid(loc, ts.text, entry, msg, catName, env) {
					excepted = true
					break
				}
			}
			if excepted {
				continue
			}
			key := groupKey{ts.part, ts.item}
			m, ok := byKey[key]
			if !ok {
				m = &Match{Part: ts.part, Item: ts.item, Text: ts.text}
				byKey[key] = m
				order = append(order, key)
			}
			m.Spans = append(m.Spans, Span{Start: loc[0], End: loc[1]})
		}
	}

	r.Count++
	if r.stat {
		r.TimeMs += float64(nowNano()-start) / 1e6
	}

	if len(order) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(order))
	for _, key := range order {
		matches = append(matches, *byKey[key])
	}
	return matches
}

// isValid reports whether every constraint of entry matches the match at
// loc within text. "after"/"before" scan the surrounding text for an
// adjacent match rather than using a lookaround, since RE2 supports
// neither.
func (r *Rule) isValid(loc []int, text string, entry ValidityEntry, msg *catalog.Entry, catName, env string) bool {
	for _, c := range entry {
		var ok bool
		switch c.Key {
		case "env":
			ok = contains(c.List, env)
		case "cat":
			ok = contains(c.List, catName)
		case "span":
			ok = c.Regex.MatchString(text[loc[0]:loc[1]])
		case "after":
			ok = matchEndsAt(c.Regex, text[:loc[0]], loc[0])
		case "before":
			ok = matchStartsAt(c.Regex, text[loc[1]:])
		case "ctx":
			ok = c.Regex.MatchString(msg.Msgctxt().Value)
		case "msgid":
			ok = c.Regex.MatchString(msg.Msgid()) || c.Regex.MatchString(msg.MsgidPlural().Value)
		case "msgstr":
			for _, s := range msg.Msgstr.Items() {
				if c.Regex.MatchString(s) {
					ok = true
					break
				}
			}
		}
		if c.Invert {
			ok = !ok
		}
		if !ok {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// matchEndsAt reports whether any match of re in prefix ends exactly at
// pos, standing in for a trailing lookbehind that RE2 cannot express.
func matchEndsAt(re *regexp.Regexp, prefix string, pos int) bool {
	for _, loc := range re.FindAllStringIndex(prefix, -1) {
		if loc[1] == pos {
			return true
		}
	}
	return false
}

// matchStartsAt reports whether re's leftmost match in suffix begins at
// its very first byte (an adjacent match can only ever be the leftmost
// one, so later matches need not be considered), standing in for a
// leading lookahead.
func matchStartsAt(re *regexp.Regexp, suffix string) bool {
	loc := re.FindStringIndex(suffix)
	return loc != nil && loc[0] == 0
}
