package text

import "strings"

// usualAccelerators are the marker characters tried when RemoveAccelerator
// is called in greedy mode with no explicit marker list.
var usualAccelerators = []string{"_", "&", "~", "^"}

// RemoveAccelerator strips a keyboard-accelerator marker from text, e.g.
// "Foo &Bar" -> "Foo Bar", including the CJK "Foo Bar (&B)" style. If
// accels is nil, greedy selects whether to try usualAccelerators or leave
// text untouched. A doubled marker ("&&") is an escape and collapses to one
// literal marker.
//
// A single pass removes at most one occurrence per marker character, same
// as the algorithm it is ported from. Text combining an inline marker with
// a redundant parenthesized restatement of the same accelerator ("Foo
// &Bar (&B)") needs both removed, so passes repeat until the text stops
// changing; each pass strictly shortens the text on any removal, so this
// always terminates.
func RemoveAccelerator(text string, accels []string, greedy bool) string {
	if accels == nil {
		if !greedy {
			return text
		}
		accels = usualAccelerators
	}

	// Escaped markers are held as placeholders during the passes, so that
	// the single marker an escape collapses to is never taken for an
	// accelerator by a later pass.
	escapes := make([]string, len(accels))
	for i, accel := range accels {
		escapes[i] = string(rune(0xE000 + i))
		if accel != "" {
			text = strings.ReplaceAll(text, accel+accel, escapes[i])
		}
	}
	for {
		before := text
		for _, accel := range accels {
			text = removeOneAccelerator(text, accel)
		}
		if text == before {
			break
		}
	}
	for i, accel := range accels {
		text = strings.ReplaceAll(text, escapes[i], accel)
	}
	return text
}

func removeOneAccelerator(text, accel string) string {
	alen := len(accel)
	p := 0
	for {
		idx := strings.Index(text[p:], accel)
		if idx < 0 {
			break
		}
		p += idx

		next := p + alen
		if next < len(text) && isAlnumByte(text[next]) {
			if accel == "&" {
				if m := entityTailRx.FindStringIndex(text[next:]); m != nil {
					p = next + m[1]
					continue
				}
			}

			text = text[:p] + text[next:]

			if p > 0 && text[p-1] == '(' && p+1 < len(text) && text[p+1] == ')' {
				tlen := len(text)
				p1 := p - 2
				for p1 >= 0 && !isAlnumByte(text[p1]) {
					p1--
				}
				p1++
				p2 := p + 2
				for p2 < tlen && !isAlnumByte(text[p2]) {
					p2++
				}
				p2--
				switch {
				case p1 == 0:
					text = strings.TrimLeft(text[:p-1], " \t") + text[p2+1:]
				case p2+1 == tlen:
					text = text[:p1] + strings.TrimRight(text[p+2:], " \t")
				}
			}
			break
		}

		if next+alen <= len(text) && text[next:next+alen] == accel {
			text = text[:p] + text[next:]
		}
		p += alen
	}
	return text
}

func isAlnumByte(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
