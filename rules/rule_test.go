package rules

import (
	"testing"

	"github.com/polint/polint/catalog"
)

func newTestEntry(msgid string, msgstr ...string) *catalog.Entry {
	e := catalog.NewEntry(msgid)
	e.Msgstr.Set(msgstr)
	return e
}

func TestNewCompilesPattern(t *testing.T) {
	r, err := New(`teh\b`, "msgstr", Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Disabled {
		t.Fatal("rule unexpectedly disabled")
	}
	if r.Pattern == nil {
		t.Fatal("Pattern not compiled")
	}
}

func TestNewInvalidPatternDisables(t *testing.T) {
	r, err := New(`(unterminated`, "msgstr", Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !r.Disabled {
		t.Fatal("expected rule to be disabled for an invalid pattern")
	}
}

func TestProcessFindsMatch(t *testing.T) {
	r, err := New(`teh\b`, "msgstr", Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e := newTestEntry("the quick fox", "teh quick fox")
	matches := r.Process(e, "test.po", "", false)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.Part != "msgstr" || m.Item != 0 {
		t.Fatalf("match = %+v, want part msgstr item 0", m)
	}
	if len(m.Spans) != 1 || m.Text[m.Spans[0].Start:m.Spans[0].End] != "teh" {
		t.Fatalf("unexpected spans: %+v", m.Spans)
	}
}

func TestProcessCaseInsensitive(t *testing.T) {
	r, err := New(`teh`, "msgstr", Options{CaseSens: false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e := newTestEntry("x", "TEH thing")
	if matches := r.Process(e, "test.po", "", false); len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
}

func TestProcessValidityExcepts(t *testing.T) {
	ve, err := compileValidityEntry([]Field{{Name: "before", Value: "nical"}}, nil, true)
	if err != nil {
		t.Fatalf("compileValidityEntry: %v", err)
	}
	r, err := New(`tech`, "msgstr", Options{Valid: []ValidityEntry{ve}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// "technical" matches but is excepted (followed by "nical"); a bare
	// "tech" elsewhere is not excepted.
	e := newTestEntry("x", "a technical tech issue")
	matches := r.Process(e, "test.po", "", false)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if len(matches[0].Spans) != 1 {
		t.Fatalf("got %d spans, want 1 (the excepted occurrence should be dropped)", len(matches[0].Spans))
	}
}

func TestProcessEnvironmentGating(t *testing.T) {
	r, err := New(`x`, "msgstr", Options{Environ: "kde"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e := newTestEntry("x", "x")
	if matches := r.Process(e, "test.po", "", false); matches != nil {
		t.Fatalf("rule scoped to kde fired outside it: %v", matches)
	}
	if matches := r.Process(e, "test.po", "kde", false); len(matches) != 1 {
		t.Fatalf("rule scoped to kde did not fire inside it")
	}
}

func TestProcessDisabledNeverFires(t *testing.T) {
	r, err := New(`x`, "msgstr", Options{Disabled: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e := newTestEntry("x", "x")
	if matches := r.Process(e, "test.po", "", false); matches != nil {
		t.Fatalf("disabled rule fired: %v", matches)
	}
}

func TestProcessMsgFilterAppliesBeforeMatch(t *testing.T) {
	r, err := New(`^clean$`, "msgstr", Options{
		MFilter: func(t *Texts, env string) {
			for i, s := range t.Msgstr {
				if s == "dirty" {
					t.Msgstr[i] = "clean"
				}
			}
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e := newTestEntry("x", "dirty")
	if matches := r.Process(e, "test.po", "", false); len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	// The real Msgstr is untouched; the filter only ever saw a detached copy.
	if got := e.Msgstr.Items()[0]; got != "dirty" {
		t.Fatalf("Msgstr mutated by filter: %q", got)
	}
}

func TestTextSpecMsgidCoversSingularAndPlural(t *testing.T) {
	r := &Rule{MsgPart: "msgid"}
	spec := r.textSpec(Texts{Msgid: "one", MsgidPlural: "many"})
	if len(spec) != 2 || spec[0].text != "one" || spec[1].text != "many" {
		t.Fatalf("unexpected spec: %+v", spec)
	}
}

func TestTextSpecMsgstrIndexed(t *testing.T) {
	r := &Rule{MsgPart: "msgstr_1"}
	spec := r.textSpec(Texts{Msgstr: []string{"a", "b", "c"}})
	if len(spec) != 1 || spec[0].text != "b" || spec[0].item != 1 {
		t.Fatalf("unexpected spec: %+v", spec)
	}
}
