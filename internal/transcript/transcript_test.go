package transcript

import "testing"

func TestAppendAndUnits(t *testing.T) {
	tr := &Transcript{}

	if !tr.Append(Unit{Start: 0, End: 1, Text: "  hello  "}) {
		t.Fatal("append rejected a valid unit")
	}
	if !tr.Append(Unit{Start: 1, End: 2, Text: "world"}) {
		t.Fatal("append rejected a valid unit")
	}

	units := tr.Units()
	if len(units) != 2 {
		t.Fatalf("got %d units, want 2", len(units))
	}
	if units[0].Text != "hello" {
		t.Errorf("text not trimmed: %q", units[0].Text)
	}
	if units[1].Text != "world" {
		t.Errorf("order not preserved: %q", units[1].Text)
	}
}

func TestAppendDropsEmptyText(t *testing.T) {
	tr := &Transcript{}

	if tr.Append(Unit{Start: 0, End: 1, Text: ""}) {
		t.Error("empty text accepted")
	}
	if tr.Append(Unit{Start: 0, End: 1, Text: "   \n\t "}) {
		t.Error("whitespace-only text accepted")
	}
	if tr.Len() != 0 {
		t.Errorf("transcript not empty: %d units", tr.Len())
	}
}

func TestFreeze(t *testing.T) {
	tr := &Transcript{}
	tr.Append(Unit{Start: 0, End: 1, Text: "before"})

	tr.Freeze()
	tr.Freeze() // idempotent

	if !tr.Frozen() {
		t.Fatal("transcript not frozen")
	}
	if tr.Append(Unit{Start: 1, End: 2, Text: "after"}) {
		t.Error("append accepted after freeze")
	}
	if tr.Len() != 1 {
		t.Errorf("frozen transcript mutated: %d units", tr.Len())
	}
}

func TestUnitsReturnsCopy(t *testing.T) {
	tr := &Transcript{}
	tr.Append(Unit{Start: 0, End: 1, Text: "original"})

	units := tr.Units()
	units[0].Text = "mutated"

	if tr.Units()[0].Text != "original" {
		t.Error("Units exposed internal state")
	}
}

func TestStore(t *testing.T) {
	s := NewStore()

	tr := s.Create("job-1")
	if tr == nil {
		t.Fatal("Create returned nil")
	}

	// Create is idempotent per job id.
	if again := s.Create("job-1"); again != tr {
		t.Error("Create returned a different transcript for the same id")
	}

	got, ok := s.Get("job-1")
	if !ok || got != tr {
		t.Error("Get did not return the created transcript")
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("Get found a transcript that was never created")
	}

	s.Evict("job-1")
	if _, ok := s.Get("job-1"); ok {
		t.Error("transcript survived eviction")
	}
	if s.Len() != 0 {
		t.Errorf("store not empty after eviction: %d", s.Len())
	}
}
