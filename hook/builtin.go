package hook

import (
	"strconv"
	"strings"

	"github.com/polint/polint/text"
)

// Built-in hooks wired from the text-transformation utilities (spec.md
// §4.6) into the static registry (design note 4), giving addFilterHook
// directives (rules/filters.go) real hooks to load by name without any
// dynamic module import. Grounded on misc/langdep.py's own built-in
// "remove/*", "resolve/*" hook paths that the original ships alongside the
// dynamically-loaded, per-language ones.
func init() {
	Register("remove/accel_marker", TextHook(func(s string) (string, bool) {
		out := text.RemoveAccelerator(s, nil, true)
		return out, out != s
	}))
	Register("remove/fmtdirs_c", TextHook(func(s string) (string, bool) {
		out := text.RemoveFmtDirs(s, "c", "")
		return out, out != s
	}))
	Register("remove/fmtdirs_python", TextHook(func(s string) (string, bool) {
		out := text.RemoveFmtDirs(s, "python", "")
		return out, out != s
	}))
	Register("remove/fmtdirs_qt", TextHook(func(s string) (string, bool) {
		out := text.RemoveFmtDirs(s, "qt", "")
		return out, out != s
	}))
	Register("remove/literals_heuristic", TextHook(func(s string) (string, bool) {
		out := text.RemoveLiterals(s, "", nil, nil, true)
		return out, out != s
	}))
	Register("case/first_to_upper", TextHook(func(s string) (string, bool) {
		out := text.FirstToUpper(s, 0, "~")
		return out, out != s
	}))
	Register("case/first_to_lower", TextHook(func(s string) (string, bool) {
		out := text.FirstToLower(s, 0, "~")
		return out, out != s
	}))

	// remove/accel_marker_set~"_,&,~" builds an accelerator remover for a
	// caller-supplied marker set instead of the greedy default.
	RegisterFactory("remove/accel_marker_set", Factory(func(args string) (interface{}, error) {
		accels := splitArgList(args)
		return TextHook(func(s string) (string, bool) {
			out := text.RemoveAccelerator(s, accels, false)
			return out, out != s
		}), nil
	}))

	// case/first_to_upper_alts~"2" propagates the capitalization across
	// nalts alternatives of the first directive (spec.md §4.6 first_to_case).
	RegisterFactory("case/first_to_upper_alts", Factory(func(args string) (interface{}, error) {
		n, _ := strconv.Atoi(strings.Trim(strings.TrimSpace(args), `'"`))
		return TextHook(func(s string) (string, bool) {
			out := text.FirstToUpper(s, n, "~")
			return out, out != s
		}), nil
	}))
}

// splitArgList parses a bracketed-or-bare comma list ("a,b,c" or
// "['a','b']") the way a factory's args tail is expected to carry a small
// argument-list literal (spec.md §4.7).
func splitArgList(args string) []string {
	args = strings.TrimSpace(args)
	args = strings.Trim(args, "[]")
	if args == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(args, ",") {
		part = strings.TrimSpace(part)
		part = strings.Trim(part, `'"`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
