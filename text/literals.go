package text

import "regexp"

var (
	literalURLRx        = regexp.MustCompile(`\S+://\S*[\w&=]`)
	literalWebRx         = regexp.MustCompile(`\w{3,}(\.[\w-]{2,})+`)
	literalEmailRx       = regexp.MustCompile(`\w[\w.-]*@\w+\.[\w.-]*\w`)
	literalCmdRx         = regexp.MustCompile(`(?i)[a-z\d_-]+\(\d\)`)
	literalCmdOptRx      = regexp.MustCompile(`(?i)(?:^|\s)(-[a-z\d]+)`)
	literalCmdOptLongRx  = regexp.MustCompile(`(?i)(?:^|\s)(--[a-z\d-]+)`)
	literalFileHomeRx    = regexp.MustCompile(`(?i)~(/[\w.-]+)+/?`)
	literalFileExtRx     = regexp.MustCompile(`(?i)\*\.[a-z\d]+`)
)

// RemoveLiterals replaces any caller-supplied literal substrings, then any
// caller-supplied regexes, with subs. When heuristic is set it then also
// replaces URLs, email addresses, web-site names, command references,
// command-line options and file-path-like substrings.
func RemoveLiterals(text, subs string, substrs []string, regexes []*regexp.Regexp, heuristic bool) string {
	for _, s := range substrs {
		text = replaceAll(text, s, subs)
	}
	for _, rx := range regexes {
		text = rx.ReplaceAllString(text, subs)
	}

	if heuristic {
		text = literalURLRx.ReplaceAllString(text, subs)
		text = literalEmailRx.ReplaceAllString(text, subs)
		text = literalWebRx.ReplaceAllString(text, subs)
		text = literalCmdRx.ReplaceAllString(text, subs)
		text = replaceGroup1(literalCmdOptLongRx, text, subs)
		text = replaceGroup1(literalCmdOptRx, text, subs)
		text = literalFileHomeRx.ReplaceAllString(text, subs)
		text = literalFileExtRx.ReplaceAllString(text, subs)
	}
	return text
}

func replaceAll(text, old, subs string) string {
	if old == "" {
		return text
	}
	for {
		idx := indexOf(text, old)
		if idx < 0 {
			return text
		}
		text = text[:idx] + subs + text[idx+len(old):]
	}
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m == 0 || m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

// replaceGroup1 replaces only the first capture group of each match,
// leaving a leading word boundary (e.g. a preceding space) untouched.
func replaceGroup1(rx *regexp.Regexp, text, subs string) string {
	return rx.ReplaceAllStringFunc(text, func(m string) string {
		loc := rx.FindStringSubmatchIndex(m)
		if loc == nil || loc[2] < 0 {
			return m
		}
		return m[:loc[2]] + subs + m[loc[3]:]
	})
}
