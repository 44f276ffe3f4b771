package catalog

import "testing"

// fiveEntryPO has a header plus four ordinary entries, so c.All() has
// exactly 5 elements (header at index 0), matching the negative-position
// arithmetic exercised below.
const fiveEntryPO = `msgid ""
msgstr ""
"Content-Type: text/plain; charset=UTF-8\n"

msgid "a"
msgstr "A"

msgid "b"
msgstr "B"

msgid "c"
msgstr "C"

msgid "d"
msgstr "D"
`

func TestAddMoreNegativePositionMatchesGroundTruth(t *testing.T) {
	c := mustLoad(t, fiveEntryPO)
	if got := len(c.All()); got != 5 {
		t.Fatalf("fixture has %d entries, want 5", got)
	}

	msg := NewEntry("new1")
	results, err := c.AddMore([]AddRequest{{Msg: msg, Position: -1}}, AddMoreOptions{})
	if err != nil {
		t.Fatalf("AddMore(-1): %v", err)
	}
	// pos = len(entries) + position = 5 + (-1) = 4, not 5 (the off-by-one
	// "+1" would have placed it after "d" instead of before it).
	if results[0].Position != 4 {
		t.Fatalf("Position = %d, want 4", results[0].Position)
	}
	if got := c.All()[4].Msgid(); got != "new1" {
		t.Fatalf("entries[4].Msgid() = %q, want new1", got)
	}
	if got := c.All()[5].Msgid(); got != "d" {
		t.Fatalf("entries[5].Msgid() = %q, want d (shifted back by the insert)", got)
	}
}

func TestAddMoreNegativePositionOutOfRange(t *testing.T) {
	c := mustLoad(t, fiveEntryPO)
	msg := NewEntry("new2")
	// pos = len(entries) + position = 5 + (-6) = -1, out of range.
	if _, err := c.AddMore([]AddRequest{{Msg: msg, Position: -6}}, AddMoreOptions{}); err == nil {
		t.Fatal("expected out-of-range error for Position: -6 on a 5-entry catalog")
	}
}
