package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/polint/polint/catalog/plural"
)

// Wrapping is the closed set of field-wrapping policies a header can
// select, read from the "Wrapping"/"X-Wrapping" fields (spec.md REDESIGN
// FLAGS: "model it as a small closed enum of wrappers with a selector
// function over the keyword set, not as arbitrary callables everywhere").
type Wrapping int

const (
	// WrapBasic wraps long fields at the configured column, as gettext
	// tools have always done. It is the default when no policy is set.
	WrapBasic Wrapping = iota
	// WrapNone never wraps a field onto multiple physical lines.
	WrapNone
)

func selectWrapping(keywords []string) Wrapping {
	for _, k := range keywords {
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "no", "none":
			return WrapNone
		}
	}
	return WrapBasic
}

// headerLines returns the header's msgstr split into non-blank "Key:
// Value" physical lines, in their original order.
func (c *Catalog) headerLines() []string {
	if c.header == nil {
		return nil
	}
	items := c.header.Msgstr.Items()
	if len(items) == 0 {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(items[0], "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func splitHeaderLine(l string) (key, val string, ok bool) {
	idx := strings.Index(l, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(l[:idx]), strings.TrimSpace(l[idx+1:]), true
}

// HeaderField returns the value of a header field, checked in the order
// given (so callers can pass a canonical name then its "X-"-prefixed
// fallback), and whether any of them was present.
func (c *Catalog) HeaderField(names ...string) (string, bool) {
	lines := c.headerLines()
	for _, name := range names {
		for _, l := range lines {
			k, v, ok := splitHeaderLine(l)
			if ok && k == name {
				return v, true
			}
		}
	}
	return "", false
}

// SetHeaderField sets or appends a "Key: Value" header line, preserving
// the position of an existing field with that key.
func (c *Catalog) SetHeaderField(key, value string) {
	if c.header == nil {
		return
	}
	lines := c.headerLines()
	found := false
	for i, l := range lines {
		if k, _, ok := splitHeaderLine(l); ok && k == key {
			lines[i] = key + ": " + value
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, key+": "+value)
	}
	rebuilt := strings.Join(lines, "\n") + "\n"
	c.header.Msgstr.Set([]string{rebuilt})
	c.invalidateHeaderCache()
}

// Accelerator returns the access-key marker character declared by
// Accelerator-Marker (falling back to X-Accelerator-Marker), or NoOpt if
// undetermined. Cached; SetAccelerator updates the cache without touching
// the header (spec.md §4.3).
func (c *Catalog) Accelerator() OptString {
	if !c.acceleratorDet {
		c.acceleratorDet = true
		if v, ok := c.HeaderField("Accelerator-Marker", "X-Accelerator-Marker"); ok {
			c.accelerator = Opt(v)
		}
	}
	return c.accelerator
}

func (c *Catalog) SetAccelerator(v OptString) {
	c.acceleratorDet = true
	c.accelerator = v
}

// Markup returns the comma-separated markup types declared by Text-Markup
// (falling back to X-Text-Markup), or NoOpt if undetermined.
func (c *Catalog) Markup() OptString {
	if !c.markupDet {
		c.markupDet = true
		if v, ok := c.HeaderField("Text-Markup", "X-Text-Markup"); ok {
			c.markup = Opt(v)
		}
	}
	return c.markup
}

func (c *Catalog) SetMarkup(v OptString) {
	c.markupDet = true
	c.markup = v
}

// Language returns the target language code from Language (falling back
// to X-Poedit-Language), or NoOpt if undetermined.
func (c *Catalog) Language() OptString {
	if !c.languageDet {
		c.languageDet = true
		if v, ok := c.HeaderField("Language", "X-Poedit-Language"); ok && v != "" {
			c.language = Opt(v)
		}
	}
	return c.language
}

func (c *Catalog) SetLanguage(v OptString) {
	c.languageDet = true
	c.language = v
}

// Environment returns the rule-environment tag from Environment (falling
// back to X-Environment), or NoOpt if undetermined.
func (c *Catalog) Environment() OptString {
	if !c.environmentDet {
		c.environmentDet = true
		if v, ok := c.HeaderField("Environment", "X-Environment"); ok {
			c.environment = Opt(v)
		}
	}
	return c.environment
}

func (c *Catalog) SetEnvironment(v OptString) {
	c.environmentDet = true
	c.environment = v
}

// Wrapping reports the field-wrapping policy from the Wrapping/X-Wrapping
// header fields.
func (c *Catalog) Wrapping() Wrapping {
	if !c.wrappingDet {
		c.wrappingDet = true
		if v, ok := c.HeaderField("Wrapping", "X-Wrapping"); ok {
			c.wrapping = selectWrapping(strings.Split(v, ","))
		} else {
			c.wrapping = WrapBasic
		}
	}
	return c.wrapping
}

func (c *Catalog) SetWrapping(w Wrapping) {
	c.wrappingDet = true
	c.wrapping = w
}

// PluralHeader parses and caches the Plural-Forms field.
func (c *Catalog) PluralHeader() *plural.Header {
	if c.pluralHeader != nil {
		return c.pluralHeader
	}
	raw, _ := c.HeaderField("Plural-Forms")
	h, err := plural.Parse(raw)
	if err != nil {
		h = &plural.Header{NPlurals: 1}
	}
	c.pluralHeader = h
	return h
}

// PluralCount returns the header-declared plural form count, defaulting
// to 1.
func (c *Catalog) PluralCount() int {
	return c.PluralHeader().NPlurals
}

// updateHeaderVars is the variable set expanded by UpdateHeader (spec.md
// §4.3 "update_header"): %basename, %poname, %project, %langname, %langcode.
type updateHeaderVars struct {
	Basename string
	Poname   string
	Project  string
	Langname string
	Langcode string
}

func expandHeaderVars(s string, v updateHeaderVars) string {
	r := strings.NewReplacer(
		"%basename", v.Basename,
		"%poname", v.Poname,
		"%project", v.Project,
		"%langname", v.Langname,
		"%langcode", v.Langcode,
	)
	return r.Replace(s)
}

// UpdateHeaderOptions carries the caller-supplied fields for UpdateHeader.
type UpdateHeaderOptions struct {
	Title       string
	Copyright   string
	License     string
	Author      string
	Project     string
	Langname    string
	Langcode    string
	Basename    string
	Poname      string
	Now         time.Time
}

// UpdateHeader expands variables in the supplied title/copyright/license,
// stamps the author-year line, and refreshes PO-Revision-Date, per
// spec.md §4.3.
func (c *Catalog) UpdateHeader(opts UpdateHeaderOptions) {
	vars := updateHeaderVars{
		Basename: opts.Basename,
		Poname:   opts.Poname,
		Project:  opts.Project,
		Langname: opts.Langname,
		Langcode: opts.Langcode,
	}

	comments := c.header.ManualComment.Items()
	if opts.Title != "" {
		comments = setOrPrependComment(comments, expandHeaderVars(opts.Title, vars))
	}
	if opts.Copyright != "" {
		comments = appendCommentIfAbsent(comments, expandHeaderVars(opts.Copyright, vars))
	}
	if opts.License != "" {
		comments = appendCommentIfAbsent(comments, expandHeaderVars(opts.License, vars))
	}
	if opts.Author != "" {
		comments = addAuthorYear(comments, opts.Author, opts.Now)
	}
	c.header.ManualComment.Set(comments)

	if opts.Project != "" {
		c.SetHeaderField("Project-Id-Version", opts.Project)
	}
	if opts.Langcode != "" {
		c.SetHeaderField("Language", opts.Langcode)
	}
	c.SetHeaderField("MIME-Version", "1.0")
	c.SetHeaderField("Content-Type", "text/plain; charset=UTF-8")
	c.SetHeaderField("Content-Transfer-Encoding", "8bit")
	c.SetHeaderField("PO-Revision-Date", formatPOTimestamp(opts.Now))
}

func setOrPrependComment(comments []string, text string) []string {
	if len(comments) > 0 {
		comments[0] = text
		return comments
	}
	return []string{text}
}

func appendCommentIfAbsent(comments []string, text string) []string {
	for _, c := range comments {
		if c == text {
			return comments
		}
	}
	return append(comments, text)
}

// addAuthorYear appends "<year> <author>" if an entry for author isn't
// already present for the given year, else leaves existing lines intact.
func addAuthorYear(comments []string, author string, now time.Time) []string {
	year := strconv.Itoa(now.Year())
	line := year + " " + author
	for _, c := range comments {
		if strings.Contains(c, author) && strings.Contains(c, year) {
			return comments
		}
	}
	return append(comments, line)
}

func formatPOTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04-0700")
}
