package catalog

import "testing"

const samplePO = `msgid ""
msgstr ""
"Content-Type: text/plain; charset=UTF-8\n"
"Plural-Forms: nplurals=3; plural=n==1 ? 0 : 2;\n"

#: src/one.c:10
msgid "hello"
msgstr "bonjour"

#, fuzzy
#| msgid "old text"
msgid "greeting"
msgstr ""

#~ msgid "gone"
#~ msgstr "parti"
`

func mustLoad(t *testing.T, src string) *Catalog {
	t.Helper()
	c, err := Load([]byte(src), "test.po", LoadOptions{Lcache: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestLoadBasicFields(t *testing.T) {
	c := mustLoad(t, samplePO)
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	e, ok := c.Find(NoOpt, "hello")
	if !ok {
		t.Fatal("entry 'hello' not found")
	}
	if got := e.Msgstr.Items()[0]; got != "bonjour" {
		t.Fatalf("msgstr = %q, want bonjour", got)
	}
	if len(e.Source.Items()) != 1 || e.Source.Items()[0].Path != "src/one.c" || e.Source.Items()[0].Line != 10 {
		t.Fatalf("source refs = %+v", e.Source.Items())
	}
}

func TestFuzzyInvariant(t *testing.T) {
	c := mustLoad(t, samplePO)
	e, ok := c.Find(NoOpt, "greeting")
	if !ok {
		t.Fatal("entry 'greeting' not found")
	}
	if !e.Fuzzy() {
		t.Fatal("expected fuzzy entry")
	}
	if !e.Flag.Has("fuzzy") {
		t.Fatal("Fuzzy() true but flag set lacks \"fuzzy\"")
	}
	if !e.MsgidPrevious().Valid || e.MsgidPrevious().Value != "old text" {
		t.Fatalf("msgid_previous = %+v, want \"old text\"", e.MsgidPrevious())
	}
}

func TestSetFuzzyFalseClearsPrevious(t *testing.T) {
	c := mustLoad(t, samplePO)
	e, _ := c.Find(NoOpt, "greeting")
	e.SetFuzzy(false)
	if e.Fuzzy() {
		t.Fatal("still fuzzy after SetFuzzy(false)")
	}
	if e.MsgidPrevious().Valid {
		t.Fatalf("msgid_previous still set: %+v", e.MsgidPrevious())
	}
	if e.MsgctxtPrevious().Valid || e.MsgidPluralPrevious().Valid {
		t.Fatal("other previous fields should also be cleared")
	}
}

func TestTranslatedUntranslatedExclusive(t *testing.T) {
	c := mustLoad(t, samplePO)
	for _, e := range c.Entries() {
		if e.Translated() && e.Untranslated() {
			t.Fatalf("entry %q is both translated and untranslated", e.Msgid())
		}
		if !e.Translated() && !e.Untranslated() && !e.Fuzzy() {
			t.Fatalf("entry %q is neither, but not fuzzy", e.Msgid())
		}
	}
	e, _ := c.Find(NoOpt, "hello")
	if !e.Translated() || e.Untranslated() {
		t.Fatal("'hello' should be translated only")
	}
}

func TestKeyIndexInvariant(t *testing.T) {
	c := mustLoad(t, samplePO)
	for i, e := range c.All() {
		if c.index[e.Key()] != i {
			t.Fatalf("index[%q] = %d, want %d", e.Key(), c.index[e.Key()], i)
		}
	}
}

func TestRoundTripIdempotent(t *testing.T) {
	c1 := mustLoad(t, samplePO)
	out1 := c1.Render(SyncOptions{})
	c2 := mustLoad(t, out1)
	out2 := c2.Render(SyncOptions{})
	if out1 != out2 {
		t.Fatalf("second render differs from first:\n--- first ---\n%s\n--- second ---\n%s", out1, out2)
	}
}

func TestObsoleteHoistOnSync(t *testing.T) {
	src := `msgid ""
msgstr ""

msgid "m1"
msgstr "one"

#~ msgid "m2"
#~ msgstr "two"

msgid "m3"
msgstr "three"
`
	c := mustLoad(t, src)
	out := c.Render(SyncOptions{})
	c2 := mustLoad(t, out)
	ids := make([]string, 0, len(c2.Entries()))
	for _, e := range c2.Entries() {
		ids = append(ids, e.Msgid())
	}
	want := []string{"m1", "m3", "m2"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestPluralFitOnSync(t *testing.T) {
	src := `msgid ""
msgstr ""
"Plural-Forms: nplurals=3; plural=n==1 ? 0 : 2;\n"

msgid "one file"
msgid_plural "%d files"
msgstr[0] ""
msgstr[1] ""
`
	c := mustLoad(t, src)
	e, ok := c.Find(NoOpt, "one file")
	if !ok {
		t.Fatal("entry not found")
	}
	if len(e.Msgstr.Items()) != 2 {
		t.Fatalf("initial msgstr len = %d, want 2", len(e.Msgstr.Items()))
	}
	_ = c.Render(SyncOptions{Fit: true})
	if got := len(e.Msgstr.Items()); got != 3 {
		t.Fatalf("after fit, msgstr len = %d, want 3", got)
	}
	for i, v := range e.Msgstr.Items() {
		if v != "" {
			t.Fatalf("msgstr[%d] = %q, want empty", i, v)
		}
	}
}

func TestUpdateHeaderLanguageRoundTrip(t *testing.T) {
	c := mustLoad(t, samplePO)
	// Warm the cache before mutating, to prove invalidation works.
	_ = c.Language()
	c.UpdateHeader(UpdateHeaderOptions{Langcode: "fr"})
	if got := c.Language(); !got.Valid || got.Value != "fr" {
		t.Fatalf("Language() = %+v, want fr", got)
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	src := `msgid ""
msgstr ""

msgid ""
msgstr "oops"
`
	if _, err := Load([]byte(src), "bad.po", LoadOptions{}); err == nil {
		t.Fatal("expected EmptyKey error for second entry with empty msgid and no msgctxt")
	}
}

func TestAddMoreReplaceKeepsPosition(t *testing.T) {
	c := mustLoad(t, samplePO)
	before := c.Len()
	replacement := NewEntry("hello")
	replacement.Msgstr.Set([]string{"salut"})
	results, err := c.AddMore([]AddRequest{{Msg: replacement}}, AddMoreOptions{})
	if err != nil {
		t.Fatalf("AddMore: %v", err)
	}
	if results[0].Position != -1 {
		t.Fatalf("Position = %d, want -1 (replace)", results[0].Position)
	}
	if c.Len() != before {
		t.Fatalf("Len changed on replace: %d vs %d", c.Len(), before)
	}
	e, _ := c.Find(NoOpt, "hello")
	if e.Msgstr.Items()[0] != "salut" {
		t.Fatalf("replacement not applied: %q", e.Msgstr.Items()[0])
	}
}
