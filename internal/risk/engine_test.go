package risk

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rvachev/tierwatch/internal/model"
	"github.com/rvachev/tierwatch/internal/store"
)

var asOf = time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

func day(d int) time.Time { return asOf.Add(time.Duration(d) * 24 * time.Hour) }

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewEngine(st), st
}

// flatConfig disables the tempo boost and pins saturation so a single
// weight-1.0 indicator reads as an exact sub-score.
func flatConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Risk.RecentBoost = 1.0
	cfg.Risk.Saturation = 2.0
	return cfg
}

func seedEvent(t *testing.T, st *store.Store, id, source, category string, observedAt time.Time) {
	t.Helper()
	err := st.InsertEvent(model.Event{
		ID:         id,
		Source:     source,
		Entity:     "JPM",
		Category:   category,
		Headline:   "event " + id,
		ObservedAt: observedAt,
		IngestedAt: observedAt,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCascade(t *testing.T) {
	cases := []struct {
		sub  [3]int
		want bool
	}{
		{[3]int{55, 72, 20}, true},
		{[3]int{50, 50, 0}, true},
		{[3]int{100, 100, 100}, true},
		{[3]int{72, 40, 40}, false},
		{[3]int{49, 49, 49}, false},
		{[3]int{0, 0, 0}, false},
	}
	for _, tc := range cases {
		if got := cascade(tc.sub); got != tc.want {
			t.Errorf("cascade(%v) = %v, want %v", tc.sub, got, tc.want)
		}
	}
}

func TestAmplified(t *testing.T) {
	cases := []struct {
		sub  [3]int
		want bool
	}{
		{[3]int{55, 72, 20}, true},
		{[3]int{70, 50, 0}, true},
		{[3]int{50, 50, 50}, false}, // Cascade without an amplifier
		{[3]int{90, 40, 40}, false}, // One hot dimension alone
		{[3]int{69, 69, 69}, false},
	}
	for _, tc := range cases {
		if got := amplified(tc.sub); got != tc.want {
			t.Errorf("amplified(%v) = %v, want %v", tc.sub, got, tc.want)
		}
	}
}

func TestLabelFor(t *testing.T) {
	cases := []struct {
		composite float64
		want      string
	}{
		{0, model.LabelStable},
		{1.49, model.LabelStable},
		{1.5, model.LabelMonitor},
		{2.49, model.LabelMonitor},
		{2.5, model.LabelWatch},
		{3.99, model.LabelWatch},
		{4, model.LabelWarning},
		{5.99, model.LabelWarning},
		{6, model.LabelDanger},
		{7.99, model.LabelDanger},
		{8, model.LabelCrisis},
		{10, model.LabelCrisis},
	}
	for _, tc := range cases {
		if got := LabelFor(tc.composite); got != tc.want {
			t.Errorf("LabelFor(%v) = %s, want %s", tc.composite, got, tc.want)
		}
	}
}

func TestComputeScores_EmptyLedger(t *testing.T) {
	e, _ := newTestEngine(t)
	cfg := flatConfig()

	sc, err := e.ComputeScores(asOf, cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i, v := range sc.SubScores() {
		if v != 40 {
			t.Errorf("sub-score %d = %d, want neutral 40", i, v)
		}
	}
	if !sc.Degraded {
		t.Error("empty ledger must flag the score as degraded")
	}
	if sc.Cascade {
		t.Error("empty ledger must never read as a cascade")
	}
}

func TestComputeScores_SingleDimension(t *testing.T) {
	e, st := newTestEngine(t)
	cfg := flatConfig()

	// One weight-1.0 enforcement event: 1.0/2.0 saturation = 50.
	seedEvent(t, st, "ev-1", "sec_edgar", "enforcement_action", day(-10))

	sc, err := e.ComputeScores(asOf, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if sc.EnforcementHeat != 50 {
		t.Errorf("enforcement heat = %d, want 50", sc.EnforcementHeat)
	}
	if sc.FundingStress != 40 || sc.DeliverabilityStress != 40 {
		t.Errorf("untouched dimensions = %d/%d, want neutral 40", sc.FundingStress, sc.DeliverabilityStress)
	}
	if !sc.Degraded {
		t.Error("dimensions with no data must mark the result degraded")
	}
	if sc.Cascade {
		t.Error("one scored dimension must not cascade")
	}
}

func TestComputeScores_RecentBoost(t *testing.T) {
	e, st := newTestEngine(t)
	cfg := flatConfig()
	cfg.Risk.RecentBoost = 1.5
	cfg.Risk.RecentDays = 7

	seedEvent(t, st, "ev-old", "sec_edgar", "enforcement_action", day(-20))

	base, err := e.ComputeScores(asOf, cfg)
	if err != nil {
		t.Fatal(err)
	}

	seedEvent(t, st, "ev-recent", "ofac", "enforcement_action", day(-2))

	boosted, err := e.ComputeScores(asOf, cfg)
	if err != nil {
		t.Fatal(err)
	}

	// Old event 1.0 + recent 1.5, two sources -> ×1.1: 2.75/2.0 capped at 100.
	if boosted.EnforcementHeat <= base.EnforcementHeat {
		t.Errorf("recent event did not raise the reading: %d -> %d", base.EnforcementHeat, boosted.EnforcementHeat)
	}
	if boosted.EnforcementHeat != 100 {
		t.Errorf("enforcement heat = %d, want saturated 100", boosted.EnforcementHeat)
	}
}

func TestComputeScores_ConfirmedClaimsOnly(t *testing.T) {
	e, st := newTestEngine(t)
	cfg := flatConfig()

	insert := func(id string, status model.ClaimStatus) {
		t.Helper()
		err := st.InsertClaim(&model.Claim{
			ID: id, Source: "fintwit_anon", Entity: "JPM",
			Category: "bank_run", Text: "claim " + id, DedupKey: "key-" + id,
			Status: status, CreatedAt: day(-5), EvaluatedAt: day(-5), Version: 1,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	insert("cl-open", model.StatusCorroborating)
	insert("cl-confirmed", model.StatusConfirmed)
	err := st.InsertCorroboration(model.Corroboration{
		ID: "co-1", ClaimID: "cl-confirmed", EventID: "ev-x",
		Relation: model.RelationConfirms, Confidence: 0.9, CreatedAt: day(-4),
	})
	if err != nil {
		t.Fatal(err)
	}

	sc, err := e.ComputeScores(asOf, cfg)
	if err != nil {
		t.Fatal(err)
	}

	// Only the confirmed claim counts: bank_run weight 1.5 × claim weight 0.5
	// = 0.75 points, /2.0 saturation = 38.
	if sc.FundingStress != 38 {
		t.Errorf("funding stress = %d, want 38 (confirmed claim only)", sc.FundingStress)
	}
}

func TestComputeScores_PointInTimeStable(t *testing.T) {
	e, st := newTestEngine(t)
	cfg := flatConfig()

	seedEvent(t, st, "ev-1", "sec_edgar", "emergency_liquidity", day(-3))

	first, err := e.ComputeScores(asOf, cfg)
	if err != nil {
		t.Fatal(err)
	}

	// Later arrivals: an event after asOf and a confirmation after asOf.
	seedEvent(t, st, "ev-2", "ofac", "emergency_liquidity", day(2))
	err = st.InsertClaim(&model.Claim{
		ID: "cl-late", Source: "fintwit_anon", Entity: "JPM",
		Category: "bank_run", Text: "late claim", DedupKey: "key-late",
		Status: model.StatusConfirmed, CreatedAt: day(-1), EvaluatedAt: day(3), Version: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = st.InsertCorroboration(model.Corroboration{
		ID: "co-late", ClaimID: "cl-late", EventID: "ev-2",
		Relation: model.RelationConfirms, Confidence: 0.9, CreatedAt: day(3),
	})
	if err != nil {
		t.Fatal(err)
	}

	second, err := e.ComputeScores(asOf, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if second.FundingStress != first.FundingStress ||
		second.EnforcementHeat != first.EnforcementHeat ||
		second.DeliverabilityStress != first.DeliverabilityStress ||
		second.Composite != first.Composite {
		t.Errorf("recomputation at the same asOf changed: %+v then %+v", first, second)
	}
}

func TestComputeEntityScores_ScopesToEntity(t *testing.T) {
	e, st := newTestEngine(t)
	cfg := flatConfig()

	seedEvent(t, st, "ev-1", "sec_edgar", "enforcement_action", day(-10))
	err := st.InsertEvent(model.Event{
		ID: "ev-2", Source: "ofac", Entity: "GS", Category: "enforcement_action",
		Headline: "event ev-2", ObservedAt: day(-10), IngestedAt: day(-10),
	})
	if err != nil {
		t.Fatal(err)
	}

	sc, err := e.ComputeEntityScores(asOf, "JPM", cfg)
	if err != nil {
		t.Fatal(err)
	}
	// Only JPM's event counts: 1.0/2.0 = 50, not boosted by the GS source.
	if sc.EnforcementHeat != 50 {
		t.Errorf("entity-scoped enforcement heat = %d, want 50", sc.EnforcementHeat)
	}

	market, err := e.ComputeScores(asOf, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if market.EnforcementHeat <= sc.EnforcementHeat {
		t.Errorf("market-wide reading %d must exceed single-entity %d", market.EnforcementHeat, sc.EnforcementHeat)
	}
}

func TestComputeScores_CompositeCapped(t *testing.T) {
	e, st := newTestEngine(t)
	cfg := flatConfig()
	cfg.Risk.Saturation = 0.5
	cfg.Risk.CascadeMultiplier = 5.0

	seedEvent(t, st, "ev-1", "sec_edgar", "emergency_liquidity", day(-10))
	seedEvent(t, st, "ev-2", "ofac", "enforcement_action", day(-10))
	seedEvent(t, st, "ev-3", "comex", "delivery_default", day(-10))

	sc, err := e.ComputeScores(asOf, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if sc.Composite != 10.0 {
		t.Errorf("composite = %v, must be capped at 10", sc.Composite)
	}
	if sc.Label != model.LabelCrisis {
		t.Errorf("label = %s, want CRISIS", sc.Label)
	}
	if !sc.Cascade {
		t.Error("all dimensions saturated must cascade")
	}
	if sc.Degraded {
		t.Error("all dimensions have data, must not be degraded")
	}
}

func TestComputeScores_AmplifierRaisesComposite(t *testing.T) {
	e, st := newTestEngine(t)
	cfg := flatConfig()

	// Funding at 100 (2.0/2.0), enforcement at 50 (1.0/2.0): amplified.
	seedEvent(t, st, "ev-1", "sec_edgar", "emergency_liquidity", day(-10))
	seedEvent(t, st, "ev-2", "ofac", "enforcement_action", day(-10))

	sc, err := e.ComputeScores(asOf, cfg)
	if err != nil {
		t.Fatal(err)
	}

	// Weighted: 0.40×100 + 0.35×50 + 0.25×40 = 67.5 -> 6.75, ×1.3 = 8.78.
	if sc.Composite != 8.78 {
		t.Errorf("composite = %v, want 8.78", sc.Composite)
	}
	if sc.Label != model.LabelCrisis {
		t.Errorf("label = %s, want CRISIS", sc.Label)
	}
}
