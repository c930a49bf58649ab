package lifecycle

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rvachev/tierwatch/internal/model"
	"github.com/rvachev/tierwatch/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewManager(st), st
}

func seedClaim(t *testing.T, st *store.Store, id string, status model.ClaimStatus, createdAt time.Time) {
	t.Helper()
	err := st.InsertClaim(&model.Claim{
		ID:          id,
		Source:      "fintwit_anon",
		Entity:      "JPM",
		Category:    "liquidity_rumor",
		Text:        "claim " + id,
		DedupKey:    "key-" + id,
		Status:      status,
		CreatedAt:   createdAt,
		EvaluatedAt: createdAt,
		Version:     1,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func mustGet(t *testing.T, st *store.Store, id string) *model.Claim {
	t.Helper()
	cl, err := st.GetClaim(id)
	if err != nil {
		t.Fatal(err)
	}
	if cl == nil {
		t.Fatalf("claim %s not found", id)
	}
	return cl
}

func TestAdvance_OneStepPerPass(t *testing.T) {
	m, st := newTestManager(t)
	cfg := model.DefaultConfig()
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	seedClaim(t, st, "cl-1", model.StatusNew, now)

	// First pass: new claims only reach triage, even with an actionable score.
	if err := m.Advance("cl-1", 80, cfg); err != nil {
		t.Fatal(err)
	}
	cl := mustGet(t, st, "cl-1")
	if cl.Status != model.StatusTriage {
		t.Fatalf("after first pass: status = %s, want triage", cl.Status)
	}
	if cl.Credibility != 80 {
		t.Errorf("credibility not persisted: %d", cl.Credibility)
	}

	// Second pass promotes to corroborating.
	if err := m.Advance("cl-1", 80, cfg); err != nil {
		t.Fatal(err)
	}
	if got := mustGet(t, st, "cl-1").Status; got != model.StatusCorroborating {
		t.Errorf("after second pass: status = %s, want corroborating", got)
	}

	// Further passes rescore without moving.
	if err := m.Advance("cl-1", 65, cfg); err != nil {
		t.Fatal(err)
	}
	cl = mustGet(t, st, "cl-1")
	if cl.Status != model.StatusCorroborating || cl.Credibility != 65 {
		t.Errorf("rescore pass: status=%s credibility=%d", cl.Status, cl.Credibility)
	}
}

func TestAdvance_BelowThresholdStaysInTriage(t *testing.T) {
	m, st := newTestManager(t)
	cfg := model.DefaultConfig()
	now := time.Now().UTC()
	m.now = func() time.Time { return now }

	seedClaim(t, st, "cl-1", model.StatusTriage, now)

	if err := m.Advance("cl-1", cfg.Credibility.ActionableScore-1, cfg); err != nil {
		t.Fatal(err)
	}
	if got := mustGet(t, st, "cl-1").Status; got != model.StatusTriage {
		t.Errorf("status = %s, want triage", got)
	}
}

func TestConfirm_IdempotentAndMonotonic(t *testing.T) {
	m, st := newTestManager(t)
	now := time.Now().UTC()
	m.now = func() time.Time { return now }

	seedClaim(t, st, "cl-1", model.StatusCorroborating, now)

	if err := m.Confirm("cl-1", "ev-1", 0.9); err != nil {
		t.Fatal(err)
	}
	cl := mustGet(t, st, "cl-1")
	if cl.Status != model.StatusConfirmed || cl.ConfirmedBy != "ev-1" {
		t.Fatalf("confirm: status=%s confirmed_by=%s", cl.Status, cl.ConfirmedBy)
	}
	if cl.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", cl.Confidence)
	}
	version := cl.Version

	// Re-confirming with the same event is a no-op.
	if err := m.Confirm("cl-1", "ev-1", 0.9); err != nil {
		t.Fatalf("repeat confirm must succeed: %v", err)
	}
	if got := mustGet(t, st, "cl-1").Version; got != version {
		t.Errorf("repeat confirm wrote a new version: %d -> %d", version, got)
	}

	// A confirmed claim never flips.
	if err := m.Debunk("cl-1", "ev-2"); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("debunk after confirm: got %v, want ErrInvalidTransition", err)
	}
	if err := m.Confirm("cl-1", "ev-3", 0.9); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("re-confirm with different event: got %v, want ErrInvalidTransition", err)
	}
	if got := mustGet(t, st, "cl-1").Status; got != model.StatusConfirmed {
		t.Errorf("status changed to %s after rejected transitions", got)
	}
}

func TestConfirm_ClampsConfidence(t *testing.T) {
	m, st := newTestManager(t)
	now := time.Now().UTC()
	m.now = func() time.Time { return now }

	seedClaim(t, st, "cl-1", model.StatusTriage, now)

	if err := m.Confirm("cl-1", "ev-1", 1.4); err != nil {
		t.Fatal(err)
	}
	if got := mustGet(t, st, "cl-1").Confidence; got != DefaultConfidence {
		t.Errorf("confidence = %v, want clamped to %v", got, DefaultConfidence)
	}
}

func TestDebunk_Terminal(t *testing.T) {
	m, st := newTestManager(t)
	now := time.Now().UTC()
	m.now = func() time.Time { return now }

	seedClaim(t, st, "cl-1", model.StatusTriage, now)

	if err := m.Debunk("cl-1", "ev-1"); err != nil {
		t.Fatal(err)
	}
	cl := mustGet(t, st, "cl-1")
	if cl.Status != model.StatusDebunked || cl.DebunkedBy != "ev-1" {
		t.Fatalf("debunk: status=%s debunked_by=%s", cl.Status, cl.DebunkedBy)
	}

	if err := m.Confirm("cl-1", "ev-2", 0.9); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("confirm after debunk: got %v, want ErrInvalidTransition", err)
	}
}

func TestSweep_DeadlineAndStaleness(t *testing.T) {
	m, st := newTestManager(t)
	cfg := model.DefaultConfig()
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	// Time-bound claim whose deadline passed without the predicted event.
	deadline := now.Add(-time.Hour)
	err := st.InsertClaim(&model.Claim{
		ID: "cl-deadline", Source: "fintwit_anon", Entity: "JPM",
		Category: "liquidity_rumor", Text: "by friday", DedupKey: "key-deadline",
		Status: model.StatusCorroborating, TimeSensitive: true, Deadline: &deadline,
		CreatedAt: now.Add(-48 * time.Hour), EvaluatedAt: now, Version: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Old unmatched claim past the staleness window.
	old := now.Add(-time.Duration(cfg.Rules.StalenessDays+3) * 24 * time.Hour)
	seedClaim(t, st, "cl-old", model.StatusTriage, old)

	// Time-sensitive claim with a future deadline: exempt from staleness.
	future := now.Add(24 * time.Hour)
	err = st.InsertClaim(&model.Claim{
		ID: "cl-pending", Source: "fintwit_anon", Entity: "JPM",
		Category: "liquidity_rumor", Text: "by next week", DedupKey: "key-pending",
		Status: model.StatusTriage, TimeSensitive: true, Deadline: &future,
		CreatedAt: old, EvaluatedAt: now, Version: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Fresh claim: untouched.
	seedClaim(t, st, "cl-fresh", model.StatusTriage, now.Add(-24*time.Hour))

	debunked, staled, err := m.Sweep(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if debunked != 1 || staled != 1 {
		t.Fatalf("sweep: debunked=%d staled=%d, want 1 and 1", debunked, staled)
	}

	checks := map[string]model.ClaimStatus{
		"cl-deadline": model.StatusDebunked,
		"cl-old":      model.StatusStale,
		"cl-pending":  model.StatusTriage,
		"cl-fresh":    model.StatusTriage,
	}
	for id, want := range checks {
		if got := mustGet(t, st, id).Status; got != want {
			t.Errorf("%s: status = %s, want %s", id, got, want)
		}
	}

	if got := mustGet(t, st, "cl-deadline").DebunkedBy; got != "" {
		t.Errorf("deadline debunk recorded event %q, want empty", got)
	}
}

func TestRescore_SkipsTerminal(t *testing.T) {
	m, st := newTestManager(t)
	now := time.Now().UTC()
	m.now = func() time.Time { return now }

	seedClaim(t, st, "cl-1", model.StatusConfirmed, now)

	if err := m.Rescore("cl-1", 10); err != nil {
		t.Fatalf("rescore on terminal claim must be a no-op: %v", err)
	}
	if got := mustGet(t, st, "cl-1").Credibility; got != 0 {
		t.Errorf("terminal claim rescored to %d", got)
	}
}
