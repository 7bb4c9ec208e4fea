package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/harrison/pscan/internal/index"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sels := []index.Selection{
		{"run": "1", "temp": "300"},
		{"run": "2", "temp": "300"},
		{"run": "2", "temp": "350"},
	}
	for i, sel := range sels {
		path := "base/plot" + string(rune('0'+i)) + ".png"
		if err := s.Record(ctx, "snap-1", sel, path); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	recent, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Recent() = %d rows, want 3", len(recent))
	}

	// Newest first.
	if recent[0].Selection["temp"] != "350" {
		t.Errorf("newest selection = %v, want run=2 temp=350", recent[0].Selection)
	}
	if recent[0].SnapshotID != "snap-1" {
		t.Errorf("SnapshotID = %q, want snap-1", recent[0].SnapshotID)
	}
	if recent[0].ResolvedAt.IsZero() {
		t.Error("ResolvedAt not set")
	}
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		sel := index.Selection{"n": string(rune('0' + i))}
		if err := s.Record(ctx, "snap", sel, "p"); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	recent, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("Recent(2) = %d rows, want 2", len(recent))
	}
}

func TestRecentEmpty(t *testing.T) {
	s := openTestStore(t)

	recent, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("Recent() = %d rows, want 0", len(recent))
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, "snap", index.Selection{"a": "1"}, "p"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	recent, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("Recent() after Clear = %d rows, want 0", len(recent))
	}
}

func TestOpenInMemory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	defer s.Close()

	if err := s.Record(context.Background(), "snap", index.Selection{"a": "1"}, "p"); err != nil {
		t.Errorf("Record() error = %v", err)
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	s.Close()
}
