package cache

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "drafts.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("sess-1", "q-1", "draft one"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("sess-1", "q-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "draft one" {
		t.Errorf("Load = %q, want %q", got, "draft one")
	}
}

func TestLoadMissingReturnsEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Load("sess-1", "q-404")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "" {
		t.Errorf("Load = %q for a missing draft, want empty", got)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("sess-1", "q-1", "first"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save("sess-1", "q-1", "second"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("sess-1", "q-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "second" {
		t.Errorf("Load = %q after overwrite, want %q", got, "second")
	}

	ids, err := s.List("sess-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("List = %v, want a single entry after overwrite", ids)
	}
}

func TestDraftsAreKeyedPerSession(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("sess-1", "q-1", "session one"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("sess-2", "q-1", "session two"); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Load("sess-1", "q-1")
	if got != "session one" {
		t.Errorf("sess-1 draft = %q, want %q", got, "session one")
	}
	got, _ = s.Load("sess-2", "q-1")
	if got != "session two" {
		t.Errorf("sess-2 draft = %q, want %q", got, "session two")
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("sess-1", "q-1", "one"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("sess-1", "q-2", "two"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("sess-2", "q-1", "other"); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear("sess-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	ids, err := s.List("sess-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("List = %v after Clear, want empty", ids)
	}

	// The other session is untouched.
	got, _ := s.Load("sess-2", "q-1")
	if got != "other" {
		t.Errorf("sess-2 draft = %q after clearing sess-1, want %q", got, "other")
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("sess-1", "q-1", "one"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("sess-1", "q-2", "two"); err != nil {
		t.Fatal(err)
	}

	ids, err := s.List("sess-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("List = %v, want 2 entries", ids)
	}
}
