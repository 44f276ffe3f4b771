package text

import "testing"

func TestResolveEntitiesSimple(t *testing.T) {
	entities := map[string]string{"app": "Widgetizer"}
	out, resolved, unknown := ResolveEntities("Welcome to &app;.", entities, nil, false, 0, "")
	if out != "Welcome to Widgetizer." {
		t.Fatalf("out = %q", out)
	}
	if len(resolved) != 1 || resolved[0] != "app" {
		t.Fatalf("resolved = %v", resolved)
	}
	if len(unknown) != 0 {
		t.Fatalf("unknown = %v", unknown)
	}
}

func TestResolveEntitiesUnknown(t *testing.T) {
	_, _, unknown := ResolveEntities("See &missing; here.", map[string]string{}, nil, false, 0, "")
	if len(unknown) != 1 || unknown[0] != "missing" {
		t.Fatalf("unknown = %v", unknown)
	}
}

func TestResolveEntitiesRecursive(t *testing.T) {
	entities := map[string]string{
		"outer": "has &inner;",
		"inner": "value",
	}
	out, resolved, _ := ResolveEntities("X: &outer;", entities, nil, false, 0, "")
	if out != "X: has value" {
		t.Fatalf("out = %q", out)
	}
	if len(resolved) != 2 {
		t.Fatalf("resolved = %v, want 2 names", resolved)
	}
}

func TestResolveEntitiesIgnored(t *testing.T) {
	out, resolved, unknown := ResolveEntities("&amp; stays", map[string]string{"amp": "&"}, map[string]bool{"amp": true}, false, 0, "")
	if out != "&amp; stays" {
		t.Fatalf("out = %q, want unchanged", out)
	}
	if len(resolved) != 0 || len(unknown) != 0 {
		t.Fatalf("resolved=%v unknown=%v, want both empty", resolved, unknown)
	}
}

func TestResolveEntitiesFallbackCapitalization(t *testing.T) {
	out, resolved, _ := ResolveEntities("&App; is great", map[string]string{"app": "widgetizer"}, nil, true, 0, "")
	if out != "Widgetizer is great" {
		t.Fatalf("out = %q, want capitalized fallback", out)
	}
	if len(resolved) != 1 || resolved[0] != "app" {
		t.Fatalf("resolved = %v", resolved)
	}
}

func TestResolveAlternativesExample(t *testing.T) {
	out, n, malformed := ResolveAlternatives("I see a ~@/pink/white/ elephant.", 2, 2, "", nil, "")
	if malformed {
		t.Fatal("unexpectedly malformed")
	}
	if out != "I see a white elephant." {
		t.Fatalf("out = %q", out)
	}
	if n != 1 {
		t.Fatalf("nresolved = %d, want 1", n)
	}
}

func TestResolveAlternativesIdentityWithoutDirective(t *testing.T) {
	in := "plain text, no directives here"
	out, n, malformed := ResolveAlternatives(in, 1, 2, "", nil, "")
	if out != in || n != 0 || malformed {
		t.Fatalf("out=%q n=%d malformed=%v, want identity", out, n, malformed)
	}
}

func TestResolveAlternativesMalformedIsIdentity(t *testing.T) {
	in := "broken ~@/only-one/"
	out, n, malformed := ResolveAlternatives(in, 1, 2, "", nil, "")
	if !malformed {
		t.Fatal("expected malformed=true for truncated directive")
	}
	if out != in {
		t.Fatalf("out = %q, want original text unchanged", out)
	}
	if n != 0 {
		t.Fatalf("nresolved = %d, want 0", n)
	}
}

func TestRemoveAcceleratorTrailingParenGroup(t *testing.T) {
	if got := RemoveAccelerator("Foo Bar (&B)", nil, true); got != "Foo Bar" {
		t.Fatalf("got %q, want \"Foo Bar\"", got)
	}
}

func TestRemoveAcceleratorInlineAndParenGroupCombined(t *testing.T) {
	if got := RemoveAccelerator("Foo &Bar (&B)", nil, true); got != "Foo Bar" {
		t.Fatalf("got %q, want \"Foo Bar\"", got)
	}
}

func TestRemoveAcceleratorIgnoresStandaloneAmpersand(t *testing.T) {
	if got := RemoveAccelerator("Foo & Bar", nil, true); got != "Foo & Bar" {
		t.Fatalf("got %q, want unchanged", got)
	}
}

func TestRemoveAcceleratorNoneWithoutGreedy(t *testing.T) {
	if got := RemoveAccelerator("Foo &Bar", nil, false); got != "Foo &Bar" {
		t.Fatalf("got %q, want unchanged when accels=nil and not greedy", got)
	}
}

func TestRemoveFmtDirsC(t *testing.T) {
	out := RemoveFmtDirs("%d men on a %s man's chest.", "c", "")
	if out != " men on a  man's chest." {
		t.Fatalf("out = %q", out)
	}
}

func TestRemoveFmtDirsCPercentEscape(t *testing.T) {
	out := RemoveFmtDirs("100%% done: %d", "c", "")
	if out != "100% done: " {
		t.Fatalf("out = %q", out)
	}
}

func TestExpandVars(t *testing.T) {
	out, err := ExpandVars("Hello $NAME, welcome to ${PLACE}", map[string]string{"NAME": "Ann", "PLACE": "Go"}, "$")
	if err != nil {
		t.Fatalf("ExpandVars: %v", err)
	}
	if out != "Hello Ann, welcome to Go" {
		t.Fatalf("out = %q", out)
	}
}

func TestExpandVarsUnknownName(t *testing.T) {
	if _, err := ExpandVars("Hi $WHO", map[string]string{}, "$"); err == nil {
		t.Fatal("expected NameError for unknown variable")
	}
}
