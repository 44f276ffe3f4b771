package monitor

import "testing"

func TestScalarBumpsOnlyOnChange(t *testing.T) {
	s := NewScalar(1)
	if s.Mods() != 0 {
		t.Fatalf("Mods() = %d, want 0 after construction", s.Mods())
	}
	s.Set(1)
	if s.Mods() != 0 {
		t.Fatalf("Mods() = %d, want 0 after setting the same value", s.Mods())
	}
	s.Set(2)
	if s.Mods() != 1 {
		t.Fatalf("Mods() = %d, want 1", s.Mods())
	}
	if s.Get() != 2 {
		t.Fatalf("Get() = %d, want 2", s.Get())
	}
}

func TestScalarBumpPropagatesToParent(t *testing.T) {
	var parent Counter
	s := NewScalar("a")
	s.Bind(&parent)
	s.Set("b")
	if parent.Mods() != 1 {
		t.Fatalf("parent.Mods() = %d, want 1", parent.Mods())
	}
	s.Set("b")
	if parent.Mods() != 1 {
		t.Fatalf("parent.Mods() = %d, want 1 (no-op set should not bump)", parent.Mods())
	}
}

func TestListAppendAndClear(t *testing.T) {
	l := NewList([]string{"x"})
	l.Append("y")
	if l.Len() != 2 || l.Mods() != 1 {
		t.Fatalf("len=%d mods=%d, want 2/1", l.Len(), l.Mods())
	}
	l.Clear()
	if l.Len() != 0 || l.Mods() != 2 {
		t.Fatalf("len=%d mods=%d, want 0/2", l.Len(), l.Mods())
	}
	l.Clear()
	if l.Mods() != 2 {
		t.Fatalf("clearing an already-empty list should not bump: mods=%d", l.Mods())
	}
}

func TestSetAddRemove(t *testing.T) {
	s := NewSet("fuzzy")
	if !s.Has("fuzzy") {
		t.Fatal("expected fuzzy to be a member")
	}
	s.Add("fuzzy")
	if s.Mods() != 0 {
		t.Fatalf("re-adding an existing member should not bump: mods=%d", s.Mods())
	}
	s.Add("c-format")
	if s.Mods() != 1 || s.Len() != 2 {
		t.Fatalf("mods=%d len=%d, want 1/2", s.Mods(), s.Len())
	}
	s.Remove("fuzzy")
	if s.Has("fuzzy") || s.Mods() != 2 {
		t.Fatalf("after Remove: has=%v mods=%d", s.Has("fuzzy"), s.Mods())
	}
	s.Remove("fuzzy")
	if s.Mods() != 2 {
		t.Fatalf("removing an absent member should not bump: mods=%d", s.Mods())
	}
}

func TestPairSet(t *testing.T) {
	p := NewPair("src/a.c", 10)
	if p.Mods() != 0 {
		t.Fatalf("Mods() = %d, want 0 after construction", p.Mods())
	}
	p.Set("src/a.c", 10)
	if p.Mods() != 0 {
		t.Fatalf("setting identical pair should not bump: mods=%d", p.Mods())
	}
	p.Set("src/a.c", 12)
	if p.Mods() != 1 || p.Second != 12 {
		t.Fatalf("mods=%d second=%v, want 1/12", p.Mods(), p.Second)
	}
}
