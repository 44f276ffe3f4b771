// Package report renders rule-matcher findings, the way the teacher's
// util/report.go and util/gettext_json.go rendered check/stat output:
// a human-readable stream for terminals, or JSON for a second consuming
// stage (e.g. another polint invocation, or an editor integration).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/polint/polint/catalog"
	"github.com/polint/polint/rules"
)

// Finding is one diagnostic record: a rule's unexcepted match against one
// message, keyed by the message's catalog key plus the field/index the
// match fell in (spec.md §4.5 "span-keyed diagnostic records").
type Finding struct {
	Catalog string        `json:"catalog"`
	RuleID  string        `json:"rule_id,omitempty"`
	Key     string        `json:"key"`
	Field   string        `json:"field"`
	Index   int           `json:"index"`
	Hint    string        `json:"hint,omitempty"`
	Text    string        `json:"text"`
	Spans   []rules.Span  `json:"spans"`
}

// FromMatches converts one rule's Process result against msg into Findings.
func FromMatches(catName, ruleID, hint string, key string, matches []rules.Match) []Finding {
	out := make([]Finding, 0, len(matches))
	for _, m := range matches {
		out = append(out, Finding{
			Catalog: catName,
			RuleID:  ruleID,
			Key:     key,
			Field:   m.Part,
			Index:   m.Item,
			Hint:    hint,
			Text:    m.Text,
			Spans:   m.Spans,
		})
	}
	return out
}

// colorize reports whether w should receive ANSI span highlighting: only
// when it is a terminal, mirroring util/files.go's isatty gating of
// interactive prompts.
func colorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// highlightSpans marks the byte ranges of spans within text using ANSI
// reverse video, only when out wants color; otherwise brackets them.
func highlightSpans(text string, spans []rules.Span, color bool) string {
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	prev := 0
	openTag, closeTag := "[", "]"
	if color {
		openTag, closeTag = "\x1b[7m", "\x1b[0m"
	}
	for _, sp := range spans {
		if sp.Start < prev || sp.Start > len(text) || sp.End > len(text) || sp.End < sp.Start {
			continue
		}
		b.WriteString(text[prev:sp.Start])
		b.WriteString(openTag)
		b.WriteString(text[sp.Start:sp.End])
		b.WriteString(closeTag)
		prev = sp.End
	}
	b.WriteString(text[prev:])
	return b.String()
}

// Print writes one line per finding: "catalog: key field[index]: [rule-id]
// hint -- <highlighted text>", the plain-text shape of the teacher's
// report.go lines. The "[index]" suffix appears for msgstr and for any
// nonzero index; a missing rule id prints as "?". Print itself does not
// log; Summary picks the log level.
func Print(w io.Writer, findings []Finding) {
	color := colorize(w)
	for _, f := range findings {
		loc := f.Field
		if f.Index > 0 || f.Field == "msgstr" {
			loc = fmt.Sprintf("%s[%d]", f.Field, f.Index)
		}
		ident := f.RuleID
		if ident == "" {
			ident = "?"
		}
		fmt.Fprintf(w, "%s: %s %s: [%s] %s -- %s\n",
			f.Catalog, f.Key, loc, ident, f.Hint, highlightSpans(f.Text, f.Spans, color))
	}
}

// Summary logs a one-line count via the shared logger, the way
// ReportInfoAndErrors chose Info vs. Error by an ok flag.
func Summary(logger *log.Logger, n int, catName string) {
	if n == 0 {
		logger.Infof("%s: no failures", catName)
		return
	}
	logger.Errorf("%s: %d failure(s)", catName, n)
}

// EmitJSON writes findings as a JSON array.
func EmitJSON(w io.Writer, findings []Finding) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(findings)
}

// ParseJSON re-ingests a findings array produced by EmitJSON. It first
// tries strict json.Unmarshal; on failure it falls back to a tolerant
// gjson walk, the same two-stage pattern util/gettext_json.go used to
// recover JSON that a second consuming stage had lightly reformatted.
func ParseJSON(data []byte) ([]Finding, error) {
	var strict []Finding
	if err := json.Unmarshal(data, &strict); err == nil {
		return strict, nil
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("report: invalid json input")
	}
	var out []Finding
	gjson.ParseBytes(data).ForEach(func(_, item gjson.Result) bool {
		f := Finding{
			Catalog: item.Get("catalog").String(),
			RuleID:  item.Get("rule_id").String(),
			Key:     item.Get("key").String(),
			Field:   item.Get("field").String(),
			Index:   int(item.Get("index").Int()),
			Hint:    item.Get("hint").String(),
			Text:    item.Get("text").String(),
		}
		item.Get("spans").ForEach(func(_, sp gjson.Result) bool {
			f.Spans = append(f.Spans, rules.Span{
				Start: int(sp.Get("Start").Int()),
				End:   int(sp.Get("End").Int()),
			})
			return true
		})
		out = append(out, f)
		return true
	})
	return out, nil
}

// Count is a small tally used by the stat subcommand, grounded on the
// shape of util/stat-po.go's per-catalog counters.
type Count struct {
	Catalog      string `json:"catalog"`
	Total        int    `json:"total"`
	Translated   int    `json:"translated"`
	Fuzzy        int    `json:"fuzzy"`
	Untranslated int    `json:"untranslated"`
}

// CountOf summarizes one catalog's translation state.
func CountOf(c *catalog.Catalog) Count {
	return Count{
		Catalog:      c.Filename(),
		Total:        c.Len(),
		Translated:   c.Translated(),
		Fuzzy:        c.FuzzyCount(),
		Untranslated: c.Untranslated(),
	}
}

// PrintCounts renders one line per catalog plus, when more than one catalog
// is given, a totals line, the shape of the teacher's stat.go table.
func PrintCounts(w io.Writer, counts []Count) {
	var total, translated, fuzzy, untranslated int
	for _, c := range counts {
		fmt.Fprintf(w, "%s: %d translated, %d fuzzy, %d untranslated.\n",
			c.Catalog, c.Translated, c.Fuzzy, c.Untranslated)
		total += c.Total
		translated += c.Translated
		fuzzy += c.Fuzzy
		untranslated += c.Untranslated
	}
	if len(counts) > 1 {
		fmt.Fprintf(w, "total: %d translated, %d fuzzy, %d untranslated (of %d messages).\n",
			translated, fuzzy, untranslated, total)
	}
}
