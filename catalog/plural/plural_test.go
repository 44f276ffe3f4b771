package plural

import "testing"

func TestParseSimple(t *testing.T) {
	h, err := Parse("nplurals=2; plural=n != 1;")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if h.NPlurals != 2 {
		t.Fatalf("NPlurals = %d, want 2", h.NPlurals)
	}
	cases := map[int]int{0: 1, 1: 0, 2: 1, 100: 1}
	for n, want := range cases {
		if got := h.Index(n); got != want {
			t.Errorf("Index(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestParseNested(t *testing.T) {
	// Polish-style plural rule.
	h, err := Parse("nplurals=3; plural=n==1 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2;")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cases := map[int]int{1: 0, 2: 1, 5: 2, 22: 1, 12: 2}
	for n, want := range cases {
		if got := h.Index(n); got != want {
			t.Errorf("Index(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestParseDefaultsToOne(t *testing.T) {
	h, err := Parse("")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if h.NPlurals != 1 {
		t.Fatalf("NPlurals = %d, want 1", h.NPlurals)
	}
	if got := h.Index(5); got != 0 {
		t.Errorf("Index(5) = %d, want 0", got)
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse("nplurals=2 plural=n"); err == nil {
		t.Fatal("expected error for malformed header")
	}
}
