package text

import "strings"

// DefaultAltHead is the default starting string of an alternatives
// directive, e.g. "~@/pink/white/" picks between "pink" and "white".
const DefaultAltHead = "~@"

// ResolveAlternatives replaces each alternatives directive in text with
// its select'th (one-based) alternative out of total. If any directive is
// malformed, the original text is returned unchanged and malformed is
// true.
func ResolveAlternatives(input string, selectIdx, total int, fmtstr string, condf func(alts []string) bool, althead string) (text string, nresolved int, malformed bool) {
	if althead == "" {
		althead = DefaultAltHead
	}
	hlen := len(althead)
	original := input
	var b strings.Builder
	p := -1
	for {
		pp := p + 1
		p = strings.Index(input[pp:], althead)
		if p < 0 {
			b.WriteString(input[pp:])
			break
		}
		p += pp
		ps := p

		b.WriteString(input[pp:p])

		if len(input) < p+hlen+2 {
			malformed = true
			break
		}

		p += hlen
		sep := input[p]

		var alts []string
		ok := true
		for i := 0; i < total; i++ {
			pp2 := p + 1
			rel := strings.IndexByte(input[pp2:], sep)
			if rel < 0 {
				malformed = true
				ok = false
				break
			}
			p = pp2 + rel
			alts = append(alts, input[pp2:p])
		}
		if !ok {
			break
		}

		isel := selectIdx - 1
		if isel >= 0 && isel < len(alts) && (condf == nil || condf(alts)) {
			alt := alts[isel]
			if fmtstr != "" {
				alt = strings.Replace(fmtstr, "%s", alt, 1)
			}
			b.WriteString(alt)
			nresolved++
		} else {
			b.WriteString(input[ps : p+1])
		}
	}

	if malformed {
		return original, 0, true
	}
	return b.String(), nresolved, false
}

// ResolveAlternativesSimple returns the resolved text, or the input
// unchanged if any directive was malformed.
func ResolveAlternativesSimple(input string, selectIdx, total int, fmtstr string, condf func(alts []string) bool, althead string) string {
	out, _, malformed := ResolveAlternatives(input, selectIdx, total, fmtstr, condf, althead)
	if malformed {
		return input
	}
	return out
}

// FirstToCase changes the case of the first letter of text. When nalts > 0
// and that letter lies inside an alternatives directive (one starting with
// althead), the first letter of each of the directive's nalts alternatives
// is case-changed instead.
func FirstToCase(input string, upper bool, nalts int, althead string) string {
	if althead == "" {
		althead = DefaultAltHead
	}
	hlen := len(althead)
	runes := []rune(input)
	tlen := len(runes)

	remalts := 0
	checkcase := true
	inTag := false
	changed := 0
	var altsep rune
	var out strings.Builder

	i := 0
	for i < tlen {
		i0 := i
		c := runes[i]
		change := false

		switch {
		case c == '<':
			inTag = true
		case c == '>':
			inTag = false
		case !inTag && nalts > 0 && remalts == 0 && matchesAltHead(runes, i, althead):
			i += hlen
			if i >= tlen {
				return input
			}
			altsep = runes[i]
			remalts = nalts
			checkcase = true
		case !inTag && remalts > 0 && c == altsep:
			remalts--
			checkcase = true
		case !inTag && checkcase && isAlpha(c):
			change = true
			checkcase = false
		}

		i++
		seg := string(runes[i0:i])
		if change {
			changed++
			if upper {
				out.WriteString(strings.ToUpper(seg))
			} else {
				out.WriteString(strings.ToLower(seg))
			}
		} else {
			out.WriteString(seg)
		}

		if changed > 0 && remalts == 0 {
			out.WriteString(string(runes[i:]))
			break
		}
	}
	return out.String()
}

func matchesAltHead(runes []rune, i int, althead string) bool {
	h := []rune(althead)
	if i+len(h) > len(runes) {
		return false
	}
	for k, r := range h {
		if runes[i+k] != r {
			return false
		}
	}
	return true
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}

// FirstToUpper uppercases the first letter in text (see FirstToCase).
func FirstToUpper(text string, nalts int, althead string) string {
	return FirstToCase(text, true, nalts, althead)
}

// FirstToLower lowercases the first letter in text (see FirstToCase).
func FirstToLower(text string, nalts int, althead string) string {
	return FirstToCase(text, false, nalts, althead)
}
