package rules

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Field is one (name, value) pair parsed out of a rule-file line. Value is
// "" both for a bare name and for an explicit empty value ("name=" or
// `name=""`); distinguishing the two is never needed by this DSL.
type Field struct {
	Name  string
	Value string
}

const ruleStart = "*"

// triggerField, when it is a fields[0].Name, marks fields[0].Value as the
// trigger's message-part keyword and fields[1] as (pattern, matchmods).
const triggerField = ruleStart

// parseLine splits one logical rule-file line (following backslash
// continuations) into fields, mirroring misc/rules.py's _parseRuleLine.
// Shorthand trigger patterns ("{...}i" / "[...]i") are rewritten to the
// same (triggerField, part)+(pattern, mods) shape as the verbose form
// ("* msgid "...""), so downstream code handles only one shape.
func parseLine(line string) ([]Field, error) {
	var fields []Field
	p := 0
	n := len(line)
	inModifiers := false

	for p < n {
		for p < n && isSpace(line[p]) {
			p++
		}
		if p >= n || line[p] == '#' {
			break
		}

		switch {
		case len(fields) == 0 && (line[p] == '[' || line[p] == '{'):
			bropn := line[p]
			brcls := byte(']')
			fname := "msgstr"
			if bropn == '{' {
				brcls = '}'
				fname = "msgid"
			}
			p1 := p + 1
			balance := 1
			for balance > 0 {
				p++
				if p >= n {
					break
				}
				if line[p] == bropn {
					balance++
				} else if line[p] == brcls {
					balance--
				}
			}
			if balance > 0 {
				return nil, &DSLError{Msg: "unbalanced '" + string(bropn) + "' in shorthand trigger pattern"}
			}
			fields = append(fields, Field{triggerField, fname}, Field{line[p1:p], ""})
			p++
			inModifiers = true

		case len(fields) == 0 && line[p] == ruleStart[0]:
			p++
			for p < n && isSpace(line[p]) {
				p++
			}
			if p >= n {
				return nil, &DSLError{Msg: "missing match keyword in trigger pattern"}
			}
			p1 := p
			for p < n && (isAlnum(line[p]) || line[p] == '_') {
				p++
			}
			fname := line[p1:p]
			for p < n && isSpace(line[p]) {
				p++
			}
			if p >= n {
				return nil, &DSLError{Msg: "no pattern after the trigger keyword"}
			}
			end, value, err := findEndQuote(line, p)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{triggerField, fname}, Field{value, ""})
			p = end + 1
			inModifiers = true

		case inModifiers:
			p1 := p
			for p < n && !isSpace(line[p]) {
				p++
			}
			last := &fields[len(fields)-1]
			last.Value = last.Value + line[p1:p]

		default:
			p1 := p
			for p < n && !isSpace(line[p]) && line[p] != '=' {
				p++
			}
			fname := line[p1:p]
			if !validFieldName(fname) {
				return nil, &DSLError{Msg: "invalid field name: " + fname}
			}
			if p >= n || isSpace(line[p]) {
				fields = append(fields, Field{fname, ""})
				continue
			}
			p++ // skip '='
			if p >= n || isSpace(line[p]) {
				fields = append(fields, Field{fname, ""})
				continue
			}
			end, value, err := findEndQuote(line, p)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{fname, value})
			p = end + 1
		}
	}
	return fields, nil
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }
func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func validFieldName(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '!' {
		i = 1
	}
	if i >= len(s) || !(s[i] >= 'a' && s[i] <= 'z') {
		return false
	}
	for ; i < len(s); i++ {
		c := s[i]
		if !(isAlnum(c) || c == '_' || c == '-') {
			return false
		}
	}
	return true
}

// findEndQuote returns the index of the quote closing the one at pos,
// together with the quoted value. Backslash before the quote character
// escapes it (and is dropped); backslash elsewhere is kept literally, per
// misc/rules.py's _findEndQuote.
func findEndQuote(line string, pos int) (int, string, error) {
	quote := line[pos]
	var b strings.Builder
	e := pos + 1
	for e < len(line) {
		c := line[e]
		if c == '\\' {
			e++
			if e >= len(line) {
				break
			}
			c2 := line[e]
			if c2 != quote {
				b.WriteByte(c)
			}
			b.WriteByte(c2)
		} else if c == quote {
			return e, b.String(), nil
		} else {
			b.WriteByte(c)
		}
		e++
	}
	return 0, "", &DSLError{Msg: "non-terminated quoted string: " + line[pos:]}
}

// --- file-level loading -----------------------------------------------

// LoadOptions configures LoadFile/LoadDir.
type LoadOptions struct {
	Stat bool
	Env  string
}

// LoadFile parses one rule file (following "include" directives relative
// to its own directory) into a list of Rules, in the order they appear.
func LoadFile(path string, opts LoadOptions) ([]*Rule, error) {
	return loadRuleFile(path, opts, &filterSet{}, "")
}

// LoadDir loads every "*.rules" file directly under dir, the way loadRules
// assembles one language's rule directory: rules whose Environ conflicts
// with opts.Env are dropped, and when two rules share an Ident, the one
// defined in opts.Env wins over one from any other (or no) environment.
func LoadDir(dir string, opts LoadOptions) ([]*Rule, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var all []*Rule
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".rules") {
			continue
		}
		rs, err := LoadFile(filepath.Join(dir, e.Name()), opts)
		if err != nil {
			return nil, err
		}
		all = append(all, rs...)
	}

	if opts.Env != "" {
		kept := all[:0:0]
		for _, r := range all {
			if r.Environ != "" && r.Environ != opts.Env {
				continue
			}
			kept = append(kept, r)
		}
		all = kept

		identsThisEnv := map[string]bool{}
		for _, r := range all {
			if r.Ident != "" && r.Environ == opts.Env {
				identsThisEnv[r.Ident] = true
			}
		}
		kept = all[:0:0]
		for _, r := range all {
			if r.Ident != "" && r.Environ != opts.Env && identsThisEnv[r.Ident] {
				continue
			}
			kept = append(kept, r)
		}
		all = kept
	}
	return all, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text()+"\n")
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	lines = append(lines, "\n") // sentry line
	return lines, nil
}

func loadRuleFile(path string, opts LoadOptions, seedGlobalMsg *filterSet, seedGlobalEnv string) ([]*Rule, error) {
	type frame struct {
		lines []string
		path  string
		lno   int
	}

	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	var stack []frame
	lno := 0
	curPath := path

	var rules []*Rule
	inRule, inGroup := false, false

	var valid []ValidityEntry
	var pattern, msgpart, hint, ident, environ string
	disabled := false
	caseSens := true

	validGroups := map[string][]ValidityEntry{}
	var validGroupName string
	seenIdents := map[string]string{} // ident -> environ at definition

	globalEnviron := seedGlobalEnv
	globalMsg := seedGlobalMsg.clone()
	globalRule := &filterSet{}
	var msgFilters, ruleFilters *filterSet

	seenMsgSigs := map[string]MsgFilterFunc{}

	resetRuleState := func() {
		pattern, msgpart, hint, ident = "", "", "", ""
		disabled = false
		caseSens = true
		environ = ""
		msgFilters, ruleFilters = nil, nil
		valid = nil
	}

	for {
		for lno >= len(lines) {
			if len(stack) == 0 {
				lines = nil
				break
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			lines, curPath, lno = top.lines, top.path, top.lno
		}
		if lines == nil {
			break
		}
		lno++
		rawLine := lines[lno-1]

		// Backslash line continuation.
		line := rawLine
		for strings.HasSuffix(line, "\\\n") {
			line = line[:len(line)-2]
			if lno >= len(lines) {
				break
			}
			lno++
			line += lines[lno-1]
		}

		if strings.HasPrefix(strings.TrimSpace(rawLine), "#") {
			continue
		}

		fields, err := parseLine(line)
		if err != nil {
			return nil, wrapLineErr(err, curPath, lno)
		}

		// End of rule/group block on blank (or otherwise field-less) line,
		// or on encountering a new trigger line.
		if len(fields) == 0 || fields[0].Name == triggerField {
			if inRule {
				inRule = false
				if msgFilters == nil {
					msgFilters = globalMsg
				}
				if ruleFilters == nil {
					ruleFilters = globalRule
				}
				msgSig := msgFilters.signature()
				msgFn, ok := seenMsgSigs[msgSig]
				if !ok {
					msgFn = msgFilters.compose()
					seenMsgSigs[msgSig] = msgFn
				}
				rfilter := ruleFilters.composeRuleFilter()

				r, err := New(pattern, msgpart, Options{
					Hint: hint, Ident: ident, Valid: valid, Stat: opts.Stat,
					CaseSens: caseSens, Disabled: disabled,
					Environ: pick(environ, globalEnviron),
					MFilter:  msgFn, RFilter: rfilter,
				})
				if err != nil {
					return nil, wrapLineErr(err, curPath, lno)
				}
				rules = append(rules, r)
				resetRuleState()
			} else if inGroup {
				inGroup = false
				validGroups[validGroupName] = valid
				validGroupName = ""
				valid = nil
			}
		}

		if len(fields) == 0 {
			continue
		}

		switch {
		case fields[0].Name == triggerField:
			inRule = true
			msgpart = fields[0].Value
			if !isValidMsgPart(msgpart) {
				return nil, wrapLineErr(&DSLError{Msg: "unknown keyword '" + msgpart + "' in trigger pattern"}, curPath, lno)
			}
			pattern = fields[1].Name
			mods := fields[1].Value
			for _, m := range mods {
				if m != 'i' {
					return nil, wrapLineErr(&DSLError{Msg: "unknown match modifier '" + string(m) + "' in trigger pattern"}, curPath, lno)
				}
			}
			caseSens = !strings.ContainsRune(mods, 'i')

		case fields[0].Name == "valid":
			if !inRule && !inGroup {
				return nil, wrapLineErr(&DSLError{Msg: "'valid' directive outside of rule or validity group"}, curPath, lno)
			}
			ve, err := compileValidityEntry(fields[1:], rfilterOf(ruleFilters, globalRule), caseSens)
			if err != nil {
				return nil, wrapLineErr(err, curPath, lno)
			}
			valid = append(valid, ve)

		case fields[0].Name == "hint":
			if !inRule {
				return nil, wrapLineErr(&DSLError{Msg: "'hint' directive outside of rule"}, curPath, lno)
			}
			hint = fields[0].Value

		case fields[0].Name == "id":
			if !inRule {
				return nil, wrapLineErr(&DSLError{Msg: "'id' directive outside of rule"}, curPath, lno)
			}
			ident = fields[0].Value
			if prevEnv, seen := seenIdents[ident]; seen && prevEnv == globalEnviron {
				return nil, wrapLineErr(&DSLError{Msg: "duplicate rule identifier '" + ident + "'"}, curPath, lno)
			}
			seenIdents[ident] = globalEnviron

		case fields[0].Name == "disabled":
			if !inRule {
				return nil, wrapLineErr(&DSLError{Msg: "'disabled' directive outside of rule"}, curPath, lno)
			}
			disabled = true

		case fields[0].Name == "validGroup":
			if inGroup {
				return nil, wrapLineErr(&DSLError{Msg: "'validGroup' directive inside validity group"}, curPath, lno)
			}
			name := fields[1].Name
			if inRule {
				valid = append(valid, validGroups[name]...)
			} else {
				inGroup = true
				validGroupName = name
			}

		case fields[0].Name == "environment":
			if inGroup {
				return nil, wrapLineErr(&DSLError{Msg: "'environment' directive inside validity group"}, curPath, lno)
			}
			name := fields[1].Name
			if inRule {
				environ = name
			} else {
				globalEnviron = name
			}

		case strings.HasPrefix(fields[0].Name, "addFilter") || fields[0].Name == "removeFilter" || fields[0].Name == "clearFilters":
			var curMsg, curRule *filterSet
			var curEnviron string
			if inRule {
				if msgFilters == nil {
					msgFilters = globalMsg.clone()
				}
				if ruleFilters == nil {
					ruleFilters = globalRule.clone()
				}
				curMsg, curRule = msgFilters, ruleFilters
				curEnviron = pick(environ, globalEnviron)
			} else {
				curMsg, curRule = globalMsg, globalRule
				curEnviron = globalEnviron
			}

			if strings.HasPrefix(fields[0].Name, "addFilter") {
				filterType := fields[0].Name[len("addFilter"):]
				handles, parts, envs, rest, err := parseFilterGeneral(fields[1:])
				if err != nil {
					return nil, wrapLineErr(err, curPath, lno)
				}
				if envs == nil && curEnviron != "" {
					envs = []string{curEnviron}
				}
				var fn func(string) string
				var sig string
				switch filterType {
				case "Regex":
					fn, sig, err = buildFilterRegex(rest)
				case "Hook":
					fn, sig, err = buildFilterHook(rest)
				default:
					err = &DSLError{Msg: "unknown filter directive 'addFilter" + filterType + "'"}
				}
				if err != nil {
					return nil, wrapLineErr(err, curPath, lno)
				}
				msgParts, ruleParts := splitFilterParts(parts)
				if len(msgParts) > 0 {
					curMsg.add(&filterEntry{
						handles: handles, envs: envs,
						msgFn: applyOnParts(msgParts, fn),
						sig:   sig + "\x04" + strings.Join(sortedCopy(msgParts), ","),
					})
				}
				if len(ruleParts) > 0 {
					curRule.add(&filterEntry{
						handles: handles, envs: envs,
						msgFn: func(t *Texts) {}, // rule filters act on pattern text, not message text
						sig:   sig + "\x04" + strings.Join(sortedCopy(ruleParts), ","),
					})
					curRule.entries[len(curRule.entries)-1].patternFn = fn
				}
			} else if fields[0].Name == "removeFilter" {
				handle, envField, err := parseRemoveFilterFields(fields[1:])
				if err != nil {
					return nil, wrapLineErr(err, curPath, lno)
				}
				if envField != "" && (opts.Env == "" || !containsCSV(envField, opts.Env)) {
					// operating outside the selected environments; skip
				} else {
					handles := strings.Split(handle, ",")
					unseen := curMsg.remove(handles)
					unseen2 := curRule.remove(handles)
					unseen = intersectUnseen(unseen, unseen2)
					if len(unseen) > 0 {
						return nil, wrapLineErr(&DSLError{Msg: "no filters with these handles to remove: " + strings.Join(unseen, ", ")}, curPath, lno)
					}
				}
			} else {
				if len(fields) != 1 {
					return nil, wrapLineErr(&DSLError{Msg: "expected no fields in all-filter removal directive"}, curPath, lno)
				}
				curMsg.clear()
				curRule.clear()
			}

		case fields[0].Name == "include":
			if inRule || inGroup {
				return nil, wrapLineErr(&DSLError{Msg: "'include' directive inside a rule or group"}, curPath, lno)
			}
			incPath, err := resolveIncludeFields(fields[1:], curPath)
			if err != nil {
				return nil, wrapLineErr(err, curPath, lno)
			}
			incLines, err := readLines(incPath)
			if err != nil {
				return nil, wrapLineErr(err, curPath, lno)
			}
			stack = append(stack, frame{lines, curPath, lno})
			lines, curPath, lno = incLines, incPath, 0

		default:
			return nil, wrapLineErr(&DSLError{Msg: "unknown directive '" + fields[0].Name + "'"}, curPath, lno)
		}
	}

	return rules, nil
}

func wrapLineErr(err error, path string, lno int) error {
	if de, ok := err.(*DSLError); ok {
		de.File, de.Line = path, lno
		return de
	}
	return &DSLError{Msg: err.Error(), File: path, Line: lno}
}

func pick(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	return out
}

var filterKnownRuleParts = map[string]bool{"pattern": true}

func splitFilterParts(parts []string) (msgParts, ruleParts []string) {
	for _, p := range parts {
		if filterKnownRuleParts[p] {
			ruleParts = append(ruleParts, p)
		} else {
			msgParts = append(msgParts, p)
		}
	}
	return
}

func parseRemoveFilterFields(fields []Field) (handle, env string, err error) {
	for _, f := range fields {
		switch f.Name {
		case "handle":
			handle = f.Value
		case "env":
			env = f.Value
		default:
			return "", "", &DSLError{Msg: "unknown field in removeFilter directive: " + f.Name}
		}
	}
	if handle == "" {
		return "", "", &DSLError{Msg: "mandatory field 'handle' missing in removeFilter directive"}
	}
	return handle, env, nil
}

func containsCSV(csv, want string) bool {
	for _, x := range strings.Split(csv, ",") {
		if strings.TrimSpace(x) == want {
			return true
		}
	}
	return false
}

func intersectUnseen(a, b []string) []string {
	bset := map[string]bool{}
	for _, h := range b {
		bset[h] = true
	}
	var out []string
	for _, h := range a {
		if bset[h] {
			out = append(out, h)
		}
	}
	return out
}

func resolveIncludeFields(fields []Field, includingPath string) (string, error) {
	var file string
	for _, f := range fields {
		if f.Name == "file" {
			file = f.Value
		} else {
			return "", &DSLError{Msg: "unknown field in include directive: " + f.Name}
		}
	}
	if file == "" {
		return "", &DSLError{Msg: "mandatory field 'file' missing in include directive"}
	}
	if filepath.IsAbs(file) {
		return file, nil
	}
	return filepath.Join(filepath.Dir(includingPath), file), nil
}

func compileValidityEntry(fields []Field, rfilter RuleFilterFunc, caseSens bool) (ValidityEntry, error) {
	entry := make(ValidityEntry, 0, len(fields))
	for _, f := range fields {
		key := f.Name
		invert := false
		bkey := key
		if strings.HasPrefix(key, "!") {
			invert = true
			bkey = key[1:]
		}
		if !knownValidityKeys[bkey] {
			log.Warnf("unknown key %q in validity entry, skipped", key)
			continue // warn-and-skip, per _is_valid's tolerant parsing
		}
		value := f.Value
		if rfilter != nil {
			value = rfilter(value)
		}
		c := Constraint{Key: bkey, Invert: invert}
		if regexValidityKeys[bkey] {
			re, err := compileRegex(value, caseSens)
			if err != nil {
				return nil, err
			}
			c.Regex = re
		} else {
			for _, v := range strings.Split(value, ",") {
				c.List = append(c.List, strings.TrimSpace(v))
			}
		}
		entry = append(entry, c)
	}
	return entry, nil
}

func rfilterOf(fs *filterSet, fallback *filterSet) RuleFilterFunc {
	if fs != nil && len(fs.entries) > 0 {
		return fs.composeRuleFilter()
	}
	return fallback.composeRuleFilter()
}
