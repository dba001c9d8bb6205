package store

import (
	"context"
	"testing"
)

func TestVerify_Clean(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b"} {
		if _, err := s.Publish(ctx, createTestTable(t, name), ""); err != nil {
			t.Fatal(err)
		}
	}

	issues, err := s.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("Verify() = %v, want no issues", issues)
	}
}

func TestVerify_ReportsBrokenTable(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	good := createTestTable(t, "good")
	bad := createTestTable(t, "bad")

	if _, err := s.Publish(ctx, good, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Publish(ctx, bad, ""); err != nil {
		t.Fatal(err)
	}

	// Removing the change target breaks the exactly-one invariant.
	if _, err := s.db.Exec(`UPDATE objects SET change_target = 0 WHERE table_hash = ?`, bad.Hash()); err != nil {
		t.Fatal(err)
	}

	issues, err := s.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("Verify() = %v, want 1 issue", issues)
	}
	if issues[0].TableHash != bad.Hash() {
		t.Errorf("issue for %s, want %s", issues[0].TableHash, bad.Hash())
	}
}

func TestGetLastSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.GetLastSeq(ctx)
	if err != nil {
		t.Fatalf("GetLastSeq() failed: %v", err)
	}
	if seq != 0 {
		t.Errorf("GetLastSeq() on empty store = %d, want 0", seq)
	}

	for i := 0; i < 3; i++ {
		if _, err := s.Publish(ctx, createTestTable(t, "a"), ""); err != nil {
			t.Fatal(err)
		}
	}

	seq, err = s.GetLastSeq(ctx)
	if err != nil {
		t.Fatalf("GetLastSeq() failed: %v", err)
	}
	if seq != 3 {
		t.Errorf("GetLastSeq() = %d, want 3", seq)
	}
}
