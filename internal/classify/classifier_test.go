package classify

import (
	"errors"
	"testing"
	"time"

	"github.com/rvachev/tierwatch/internal/model"
)

var testSources = []model.Source{
	{Name: "sec_edgar", Platform: "sec", Tier: model.TierOfficial},
	{Name: "ft", Platform: "press", Tier: model.TierPress},
	{Name: "fintwit_anon", Platform: "twitter", Tier: model.TierSocial},
}

func testItem(source string) model.RawItem {
	return model.RawItem{
		ID:         "item-1",
		Source:     source,
		Entity:     "JPM",
		Category:   "enforcement_action",
		Headline:   "SEC files enforcement action against JPM",
		ObservedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestClassify_Tier1_EventOnly(t *testing.T) {
	c := New(testSources)

	out, err := c.Classify(testItem("sec_edgar"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Event == nil {
		t.Fatal("tier 1 must produce an event")
	}
	if out.Claim != nil {
		t.Fatal("tier 1 must never produce a claim")
	}
	if out.Event.Entity != "JPM" || out.Event.Category != "enforcement_action" {
		t.Errorf("event fields not carried: %+v", out.Event)
	}
}

func TestClassify_Tier2_EventAndClaim(t *testing.T) {
	c := New(testSources)

	out, err := c.Classify(testItem("ft"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Event == nil || out.Claim == nil {
		t.Fatal("tier 2 must produce both an event and a claim")
	}
	if out.Event.Entity != out.Claim.Entity {
		t.Error("tier 2 event and claim must reference the same entity")
	}
	if out.Claim.Status != model.StatusNew {
		t.Errorf("new claim status = %s, want new", out.Claim.Status)
	}
	if out.Claim.Version != 1 {
		t.Errorf("new claim version = %d, want 1", out.Claim.Version)
	}
}

func TestClassify_Tier3_ClaimOnly(t *testing.T) {
	c := New(testSources)

	out, err := c.Classify(testItem("fintwit_anon"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Claim == nil {
		t.Fatal("tier 3 must produce a claim")
	}
	if out.Event != nil {
		t.Fatal("tier 3 must never produce an event")
	}
	if out.Claim.DedupKey == "" {
		t.Error("claim must carry a dedup key")
	}
}

func TestClassify_UnknownSource(t *testing.T) {
	c := New(testSources)

	_, err := c.Classify(testItem("random_blog"))
	if !errors.Is(err, model.ErrUnknownSource) {
		t.Errorf("expected ErrUnknownSource, got %v", err)
	}
}

func TestClassify_MalformedItem(t *testing.T) {
	c := New(testSources)

	cases := []func(*model.RawItem){
		func(it *model.RawItem) { it.ID = "" },
		func(it *model.RawItem) { it.Entity = "" },
		func(it *model.RawItem) { it.Category = "" },
		func(it *model.RawItem) { it.Headline = "" },
		func(it *model.RawItem) { it.ObservedAt = time.Time{} },
	}

	for i, mutate := range cases {
		item := testItem("sec_edgar")
		mutate(&item)
		if _, err := c.Classify(item); !errors.Is(err, model.ErrMalformedItem) {
			t.Errorf("case %d: expected ErrMalformedItem, got %v", i, err)
		}
	}
}

func TestClassify_DedupKeyMatchesAcrossSources(t *testing.T) {
	c := New(testSources)

	a := testItem("fintwit_anon")
	b := testItem("ft")
	b.ID = "item-2"

	outA, err := c.Classify(a)
	if err != nil {
		t.Fatal(err)
	}
	outB, err := c.Classify(b)
	if err != nil {
		t.Fatal(err)
	}

	if outA.Claim.DedupKey != outB.Claim.DedupKey {
		t.Error("materially identical claims from different sources must share a dedup key")
	}
	if outA.Claim.ID == outB.Claim.ID {
		t.Error("claim records must get distinct identifiers")
	}
}
