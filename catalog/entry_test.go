package catalog

import "testing"

func TestMergeRejectsDifferentKeys(t *testing.T) {
	a := NewEntry("foo")
	b := NewEntry("bar")
	if _, err := a.Merge(b); err == nil {
		t.Fatal("expected error merging entries with different keys")
	}
}

func TestMergePluralOverridesNonPlural(t *testing.T) {
	self := NewEntry("item")
	self.Msgstr.Set([]string{""})

	other := NewEntry("item")
	other.SetMsgidPlural(Opt("items"))
	other.Msgstr.Set([]string{"article", "articles"})

	changed, err := self.Merge(other)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !changed {
		t.Fatal("expected Merge to report a change")
	}
	if !self.IsPlural() || self.MsgidPlural().Value != "items" {
		t.Fatalf("MsgidPlural() = %+v, want items", self.MsgidPlural())
	}
	if got := self.Msgstr.Items(); len(got) != 2 || got[0] != "article" || got[1] != "articles" {
		t.Fatalf("Msgstr = %v, want [article articles]", got)
	}
}

func TestMergeBothTranslatedKeepsOwnMsgstr(t *testing.T) {
	self := NewEntry("item")
	self.Msgstr.Set([]string{"mine"})

	other := NewEntry("item")
	other.Msgstr.Set([]string{"theirs"})

	if _, err := self.Merge(other); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got := self.Msgstr.Items()[0]; got != "mine" {
		t.Fatalf("Msgstr[0] = %q, want mine (both translated keeps self)", got)
	}
}

func TestMergeFuzzyIntoTranslatedClearsFuzzy(t *testing.T) {
	self := NewEntry("item")
	self.Msgstr.Set([]string{"draft"})
	self.SetFuzzy(true)
	self.SetMsgidPrevious(Opt("old item"))

	other := NewEntry("item")
	other.Msgstr.Set([]string{"final"})

	changed, err := self.Merge(other)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !changed {
		t.Fatal("expected Merge to report a change")
	}
	if self.Fuzzy() {
		t.Fatal("expected fuzzy cleared after merging in a translated message with matching plurality")
	}
	if got := self.Msgstr.Items()[0]; got != "final" {
		t.Fatalf("Msgstr[0] = %q, want final", got)
	}
}

func TestMergeUntranslatedAdoptsOtherTranslation(t *testing.T) {
	self := NewEntry("item")
	self.Msgstr.Set([]string{""})

	other := NewEntry("item")
	other.Msgstr.Set([]string{"translated"})

	changed, err := self.Merge(other)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !changed {
		t.Fatal("expected Merge to report a change")
	}
	if got := self.Msgstr.Items()[0]; got != "translated" {
		t.Fatalf("Msgstr[0] = %q, want translated", got)
	}
	if self.Fuzzy() {
		t.Fatal("expected non-fuzzy after adopting a translated message")
	}
}

func TestMergeObsoleteIsNoOp(t *testing.T) {
	self := NewEntry("item")
	self.SetObsolete(true)
	self.Msgstr.Set([]string{""})

	other := NewEntry("item")
	other.SetObsolete(true)
	other.Msgstr.Set([]string{"translated"})

	changed, err := self.Merge(other)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if changed {
		t.Fatal("expected no change merging two obsolete entries")
	}
	if self.Msgstr.Items()[0] != "" {
		t.Fatal("obsolete merge must not touch msgstr")
	}
}
