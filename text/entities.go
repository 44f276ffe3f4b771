// Package text implements the message-text transforms rules and filters
// compose over: XML entity and alternatives-directive resolution,
// accelerator and format-directive stripping, literal removal, and
// variable expansion. Grounded on misc/resolve.py.
package text

import (
	"regexp"
	"strings"
)

var entityTailRx = regexp.MustCompile(`^([\w_:][\w\d._:-]*);`)

// ResolveEntities replaces XML entities in text with values looked up in
// entities. Entities in ignored are passed through untouched. When fcap is
// set, an unresolved capitalized entity name is retried lowercased, and if
// found, FirstToUpper is applied to its value (honoring nalts alternatives
// directives within the value). Returns the resolved text plus the
// resolved and unknown entity names. Whenever a pass resolved anything, it
// re-runs on its own output, until a pass resolves nothing, so a value that
// itself contains an entity reference is also expanded.
func ResolveEntities(input string, entities map[string]string, ignored map[string]bool, fcap bool, nalts int, althead string) (text string, resolved, unknown []string) {
	if althead == "" {
		althead = DefaultAltHead
	}
	var b strings.Builder
	remaining := input
	for {
		idx := strings.IndexByte(remaining, '&')
		if idx < 0 {
			b.WriteString(remaining)
			break
		}
		b.WriteString(remaining[:idx+1])
		remaining = remaining[idx+1:]

		m := entityTailRx.FindStringSubmatch(remaining)
		if m == nil {
			continue
		}
		name := m[1]
		if ignored[name] {
			continue
		}

		origName := name
		val, ok := entities[name]
		if fcap && !ok {
			lowered := FirstToLower(name, 0, althead)
			if v, ok2 := entities[lowered]; ok2 {
				name, val, ok = lowered, v, true
			}
		}
		if ok {
			resolved = append(resolved, name)
			if fcap && origName != name {
				val = FirstToUpper(val, nalts, althead)
			}
			// Drop the '&' already written and replace with the value.
			s := b.String()
			b.Reset()
			b.WriteString(s[:len(s)-1])
			b.WriteString(val)
			remaining = remaining[len(m[0]):]
		} else {
			unknown = append(unknown, name)
		}
	}

	text = b.String()
	if len(resolved) > 0 {
		// Re-run (recursively, until nothing resolves): a resolved value
		// may itself reference an entity, mirroring the original's
		// recursive re-resolution.
		again, resolvedMore, unknownMore := ResolveEntities(text, entities, ignored, fcap, nalts, althead)
		text = again
		resolved = append(resolved, resolvedMore...)
		unknown = append(unknown, unknownMore...)
	}
	return text, resolved, unknown
}

// ResolveEntitiesSimple returns only the resolved text.
func ResolveEntitiesSimple(input string, entities map[string]string, ignored map[string]bool, fcap bool, nalts int, althead string) string {
	out, _, _ := ResolveEntities(input, entities, ignored, fcap, nalts, althead)
	return out
}
