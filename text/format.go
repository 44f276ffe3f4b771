package text

import (
	"regexp"
	"strings"
)

var (
	fmtdirTailC       = regexp.MustCompile(`^[ +-]?\d*\.?\d*[a-zA-Z]`)
	fmtdirTailPython  = regexp.MustCompile(`^(\(.*?\))?[ +-]?\d*\.?\d*[a-zA-Z]`)
	fmtdirTailQt      = regexp.MustCompile(`^L?\d{1,2}`)
)

// RemoveFmtDirs strips format directives (e.g. "%d", "%(name)s", "%1") of
// the given keyword's style from text, replacing each with subs. format is
// one of "c", "kde", "qt", "python", optionally suffixed "-format" as in a
// gettext flag.
func RemoveFmtDirs(text, format, subs string) string {
	format = strings.ToLower(format)
	format = strings.TrimSuffix(format, "-format")

	switch format {
	case "c":
		return removeFmtDirsC(text, subs)
	case "kde", "qt":
		return removeFmtDirsQt(text, subs)
	case "python":
		return removeFmtDirsC(removeFmtDirsPython(text, subs), subs)
	default:
		return text
	}
}

func removeFmtDirsC(text, subs string) string {
	return removePercentDirs(text, fmtdirTailC, subs, false)
}

func removeFmtDirsPython(text, subs string) string {
	return removePercentDirs(text, fmtdirTailPython, subs, false)
}

func removeFmtDirsQt(text, subs string) string {
	return removePercentDirs(text, fmtdirTailQt, subs, true)
}

// removePercentDirs walks text looking for '%', treats "%%" as a literal
// escaped percent, and replaces any tailRx match right after '%' with subs
// (or drops it if subs is empty). If keepLiteralOnMiss is set (the Qt
// variant), a non-matching '%' is kept verbatim instead of being consumed.
func removePercentDirs(text string, tailRx *regexp.Regexp, subs string, keepLiteralOnMiss bool) string {
	var b strings.Builder
	p := 0
	for {
		idx := strings.IndexByte(text[p:], '%')
		if idx < 0 {
			b.WriteString(text[p:])
			break
		}
		b.WriteString(text[p : p+idx])
		p += idx + 1

		if p < len(text) && text[p] == '%' {
			b.WriteByte('%')
			p++
			continue
		}

		if loc := tailRx.FindStringIndex(text[p:]); loc != nil {
			p += loc[1]
			if subs != "" {
				b.WriteString(subs)
			}
		} else if keepLiteralOnMiss {
			b.WriteByte('%')
		}
	}
	return b.String()
}
