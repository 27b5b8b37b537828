package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/thywilljoshua/pdf-summarizer/internal/ai"
	"github.com/thywilljoshua/pdf-summarizer/internal/orchestrator"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "history.db"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndListNewestFirst(t *testing.T) {
	s := openTemp(t)
	ids := []string{
		"0190a1b2-0000-7000-8000-000000000001",
		"0190a1b2-0000-7000-8000-000000000002",
		"0190a1b2-0000-7000-8000-000000000003",
	}
	for i, id := range ids {
		r := orchestrator.Result{
			ID:            id,
			Surface:       orchestrator.SurfaceText,
			Outcome:       orchestrator.OutcomeSuccess,
			Text:          "summary",
			Config:        ai.DefaultConfig(),
			StartedAt:     time.Date(2025, 1, 1, 0, 0, i, 0, time.UTC),
			ElapsedMillis: int64(100 * (i + 1)),
		}
		if err := s.Record(r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != ids[2] || got[1].ID != ids[1] {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Elapsed != 300*time.Millisecond {
		t.Fatalf("elapsed not restored: %v", got[0].Elapsed)
	}

	all, err := s.List(0)
	if err != nil || len(all) != 3 {
		t.Fatalf("List(0) = %d entries, err %v", len(all), err)
	}
}

func TestGet(t *testing.T) {
	s := openTemp(t)
	r := orchestrator.Result{ID: "0190a1b2-0000-7000-8000-00000000000a", Outcome: orchestrator.OutcomeFailure, Error: "Failed to summarize text. Please try again."}
	if err := s.Record(r); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Error != r.Error || got.Outcome != orchestrator.OutcomeFailure {
		t.Fatalf("got %+v", got)
	}
	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordRequiresID(t *testing.T) {
	s := openTemp(t)
	if err := s.Record(orchestrator.Result{}); err == nil {
		t.Fatal("expected error for empty id")
	}
}
