package catalog

import (
	"os"
	"path/filepath"
	"strings"
)

// WrapOptions configures the §4.2 re-renderer.
type WrapOptions struct {
	// Width is the target column for wrapped comments and quoted-string
	// fields. Zero disables wrapping (fields always render on one line).
	Width int
	// Force re-renders every bucket, ignoring the line cache entirely.
	Force bool
}

const (
	noobsPrefix    = "# "
	autoPrefix     = "#. "
	sourcePrefix   = "#: "
	flagPrefix     = "#, "
	obsoletePrefix = "#~ "
)

// renderEntry produces the final source lines for one entry, deciding per
// field bucket whether to reuse the cached raw lines or re-render, per
// spec.md §4.2.
func renderEntry(e *Entry, opts WrapOptions) []string {
	var out []string

	out = append(out, renderBucket(e.cache.ManualComment, e.fieldDirty("manualComment") || opts.Force,
		func() []string { return wrapComment(noobsPrefix, e.ManualComment.Items(), opts.Width) })...)

	out = append(out, renderBucket(e.cache.AutoComment, e.fieldDirty("autoComment") || opts.Force,
		func() []string { return wrapComment(autoPrefix, e.AutoComment.Items(), opts.Width) })...)

	if !e.Obsolete() {
		out = append(out, renderBucket(e.cache.Source, e.fieldDirty("source") || opts.Force,
			func() []string { return renderSource(e.Source.Items(), opts.Width) })...)
	}

	out = append(out, renderBucket(e.cache.Flags, e.fieldDirty("flag") || opts.Force,
		func() []string { return renderFlags(e.Flag.Slice()) })...)

	obsPrefix := ""
	if e.Obsolete() {
		obsPrefix = obsoletePrefix
	}
	prevPrefix := "#| "
	if e.Obsolete() {
		prevPrefix = "#~| "
	}

	if e.MsgctxtPrevious().Valid {
		out = append(out, renderBucket(e.cache.MsgctxtPrevious, e.fieldDirty("msgctxtPrevious") || opts.Force,
			func() []string { return wrapField(prevPrefix, "msgctxt", e.MsgctxtPrevious().Value, opts.Width) })...)
	}
	if e.MsgidPrevious().Valid {
		out = append(out, renderBucket(e.cache.MsgidPrevious, e.fieldDirty("msgidPrevious") || opts.Force,
			func() []string { return wrapField(prevPrefix, "msgid", e.MsgidPrevious().Value, opts.Width) })...)
	}
	if e.MsgidPluralPrevious().Valid {
		out = append(out, renderBucket(e.cache.MsgidPluralPrevious, e.fieldDirty("msgidPluralPrevious") || opts.Force,
			func() []string { return wrapField(prevPrefix, "msgid_plural", e.MsgidPluralPrevious().Value, opts.Width) })...)
	}

	if e.Msgctxt().Valid {
		out = append(out, renderBucket(e.cache.Msgctxt, e.fieldDirty("msgctxt") || opts.Force,
			func() []string { return wrapField(obsPrefix, "msgctxt", e.Msgctxt().Value, opts.Width) })...)
	}

	out = append(out, renderBucket(e.cache.Msgid, e.fieldDirty("msgid") || opts.Force,
		func() []string { return wrapField(obsPrefix, "msgid", e.Msgid(), opts.Width) })...)

	if e.IsPlural() {
		out = append(out, renderBucket(e.cache.MsgidPlural, e.fieldDirty("msgidPlural") || opts.Force,
			func() []string { return wrapField(obsPrefix, "msgid_plural", e.MsgidPlural().Value, opts.Width) })...)
	}

	out = append(out, renderMsgstrBucket(e, obsPrefix, opts)...)

	return out
}

// renderBucket reuses the cached raw lines when present and not forced to
// re-render; otherwise it calls render to produce fresh ones.
func renderBucket(cached []string, dirty bool, render func() []string) []string {
	if !dirty && len(cached) > 0 {
		return cached
	}
	return render()
}

// plurality change forces regeneration even when nothing else about msgstr
// changed (spec.md §4.2).
func renderMsgstrBucket(e *Entry, obsPrefix string, opts WrapOptions) []string {
	plural := e.IsPlural()
	cachedLooksPlural := len(e.cache.MsgstrPlural) > 0 && !allEmpty(e.cache.MsgstrPlural)
	cachedLooksSingular := len(e.cache.Msgstr) > 0

	plurailtyChanged := (plural && cachedLooksSingular && !cachedLooksPlural) ||
		(!plural && cachedLooksPlural)

	dirty := e.fieldDirty("msgstr") || opts.Force || plurailtyChanged

	if !dirty {
		if plural && len(e.cache.MsgstrPlural) > 0 {
			var out []string
			for _, bucket := range e.cache.MsgstrPlural {
				out = append(out, bucket...)
			}
			return out
		}
		if !plural && len(e.cache.Msgstr) > 0 {
			return e.cache.Msgstr
		}
	}
	return renderMsgstr(e.Msgstr.Items(), plural, obsPrefix, opts.Width)
}

func allEmpty(buckets [][]string) bool {
	for _, b := range buckets {
		if len(b) > 0 {
			return false
		}
	}
	return true
}

// renderSource joins source refs into one "#: " line wrapped at width; for
// simplicity this renderer emits one token-space-separated line per width
// chunk rather than breaking mid-token.
func renderSource(refs []SourceRef, width int) []string {
	if len(refs) == 0 {
		return nil
	}
	tokens := make([]string, len(refs))
	for i, r := range refs {
		if r.Line > 0 {
			tokens[i] = r.Path + ":" + itoa(r.Line)
		} else {
			tokens[i] = r.Path
		}
	}
	return wrapTokens(sourcePrefix, tokens, width)
}

// renderFlags emits a single "#, " line, forcing "fuzzy" first if present.
func renderFlags(flags []string) []string {
	if len(flags) == 0 {
		return nil
	}
	ordered := make([]string, 0, len(flags))
	hasFuzzy := false
	for _, f := range flags {
		if f == fuzzyFlag {
			hasFuzzy = true
			continue
		}
		ordered = append(ordered, f)
	}
	if hasFuzzy {
		ordered = append([]string{fuzzyFlag}, ordered...)
	}
	return []string{flagPrefix + strings.Join(ordered, ", ")}
}

// wrapComment unwraps (joins with spaces) and rewraps manual/automatic
// comments at the configured width, each physical line carrying prefix.
func wrapComment(prefix string, items []string, width int) []string {
	if len(items) == 0 {
		return nil
	}
	joined := strings.Join(items, " ")
	if width <= 0 {
		return []string{prefix + joined}
	}
	words := strings.Fields(joined)
	return wrapWords(prefix, words, width)
}

func wrapWords(prefix string, words []string, width int) []string {
	if len(words) == 0 {
		return []string{strings.TrimRight(prefix, " ")}
	}
	var lines []string
	cur := prefix
	empty := true
	for _, w := range words {
		candidate := cur
		if !empty {
			candidate += " "
		}
		candidate += w
		if !empty && len(candidate) > width {
			lines = append(lines, cur)
			cur = prefix + w
			empty = false
			continue
		}
		cur = candidate
		empty = false
	}
	lines = append(lines, cur)
	return lines
}

func wrapTokens(prefix string, tokens []string, width int) []string {
	if width <= 0 {
		return []string{prefix + strings.Join(tokens, " ")}
	}
	return wrapWords(prefix, tokens, width)
}

// wrapField renders one keyword/quoted-string field, splitting into
// continuation lines when it would exceed width.
func wrapField(obsPrefix, keyword, value string, width int) []string {
	escaped := poEscape(value)
	full := obsPrefix + keyword + ` "` + escaped + `"`
	if width <= 0 || len(full) <= width {
		return []string{full}
	}
	chunks := wrapQuoted(escaped, width-2)
	lines := make([]string, 0, len(chunks)+1)
	lines = append(lines, obsPrefix+keyword+` ""`)
	for _, c := range chunks {
		lines = append(lines, obsPrefix+`"`+c+`"`)
	}
	return lines
}

// wrapQuoted splits an already-escaped string into chunks of at most width
// bytes, preferring to break on a space.
func wrapQuoted(s string, width int) []string {
	if width < 8 {
		width = 8
	}
	var chunks []string
	for len(s) > width {
		cut := width
		if idx := strings.LastIndexByte(s[:width], ' '); idx > 0 {
			cut = idx + 1
		}
		chunks = append(chunks, s[:cut])
		s = s[cut:]
	}
	if len(s) > 0 {
		chunks = append(chunks, s)
	}
	return chunks
}

func itoa(n int) string {
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

// renderMsgstr renders the msgstr field: one bare line if not plural, else
// msgstr[0]..msgstr[k-1].
func renderMsgstr(values []string, plural bool, obsPrefix string, width int) []string {
	if !plural {
		v := ""
		if len(values) > 0 {
			v = values[0]
		}
		return wrapField(obsPrefix, "msgstr", v, width)
	}
	k := len(values)
	if k == 0 {
		k = 1
		values = []string{""}
	}
	var out []string
	for i := 0; i < k; i++ {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		out = append(out, wrapField(obsPrefix, "msgstr["+itoa(i)+"]", v, width)...)
	}
	return out
}

// SyncOptions governs serialization and the obsolete-reordering pass.
type SyncOptions struct {
	Wrap     WrapOptions
	NoObsEnd bool // skip hoisting obsolete entries to the trailing frontier
	Fit      bool // resize all-empty plural msgstr to the header plural count
}

// Render serializes the whole catalog (header first, then entries in
// order, honoring obstop hoisting and plural fitting) and returns the
// final text including tail.
func (c *Catalog) Render(opts SyncOptions) string {
	if c.Wrapping() == WrapNone {
		opts.Wrap.Width = 0
	}
	entries := c.orderedForRender(opts.NoObsEnd)

	if opts.Fit {
		n := c.PluralCount()
		for _, e := range entries {
			if !e.IsPlural() {
				continue
			}
			fitPluralCount(e, n)
		}
	}

	var b strings.Builder
	for _, e := range entries {
		lines := renderEntry(e, opts.Wrap)
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString(c.tail)
	return b.String()
}

func fitPluralCount(e *Entry, n int) {
	if n <= 0 {
		return
	}
	vals := e.Msgstr.Items()
	for _, v := range vals {
		if v != "" {
			return
		}
	}
	if len(vals) == n {
		return
	}
	fresh := make([]string, n)
	e.Msgstr.Set(fresh)
}

// orderedForRender computes the obstop-hoisted entry order without
// mutating the catalog's own index, per spec.md §4.2 "Obsolete reordering".
func (c *Catalog) orderedForRender(noObsEnd bool) []*Entry {
	entries := append([]*Entry(nil), c.entries...)
	if noObsEnd {
		return entries
	}

	frontier := len(entries)
	for frontier > 0 && entries[frontier-1].Obsolete() {
		frontier--
	}

	var hoisted []*Entry
	var rest []*Entry
	for i, e := range entries {
		if i < frontier && e.Obsolete() {
			hoisted = append(hoisted, e)
			continue
		}
		rest = append(rest, e)
	}
	if len(hoisted) == 0 {
		return entries
	}
	out := make([]*Entry, 0, len(entries))
	out = append(out, rest[:frontier-len(hoisted)]...)
	out = append(out, hoisted...)
	out = append(out, rest[frontier-len(hoisted):]...)
	return out
}

// WriteFile renders the catalog and performs the atomic sibling-temp-file
// write described in spec.md §4.2.
func (c *Catalog) WriteFile(path string, opts SyncOptions) error {
	text := c.Render(opts)
	encoded, err := encodeLine(text, c.encoding)
	if err != nil {
		return &SyntaxError{File: path, Reason: "cannot encode output as " + c.encoding + ": " + err.Error()}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".polint-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		backup := path + ".bak"
		if renErr := os.Rename(path, backup); renErr == nil {
			if err2 := os.Rename(tmpName, path); err2 != nil {
				os.Rename(backup, path)
				os.Remove(tmpName)
				return err2
			}
			os.Remove(backup)
			return nil
		}
		os.Remove(tmpName)
		return err
	}
	return nil
}
