package model

import "testing"

func TestCanonicalClaimKey_Normalization(t *testing.T) {
	a := CanonicalClaimKey("JPM", "enforcement_action", map[string]string{"agency": "SEC"})
	b := CanonicalClaimKey("  jpm ", "Enforcement_Action", map[string]string{"agency": "sec"})

	if a != b {
		t.Errorf("expected normalized keys to match: %s != %s", a, b)
	}
}

func TestCanonicalClaimKey_PayloadOrder(t *testing.T) {
	a := CanonicalClaimKey("JPM", "enforcement_action", map[string]string{"agency": "SEC", "venue": "NY"})
	b := CanonicalClaimKey("JPM", "enforcement_action", map[string]string{"venue": "NY", "agency": "SEC"})

	if a != b {
		t.Errorf("expected key to be independent of payload map order")
	}
}

func TestCanonicalClaimKey_DistinctClaims(t *testing.T) {
	a := CanonicalClaimKey("JPM", "enforcement_action", nil)
	b := CanonicalClaimKey("JPM", "insolvency_rumor", nil)
	c := CanonicalClaimKey("GS", "enforcement_action", nil)

	if a == b || a == c {
		t.Error("expected distinct claims to produce distinct keys")
	}
}

func TestClaimStatus_Terminal(t *testing.T) {
	terminal := []ClaimStatus{StatusConfirmed, StatusDebunked, StatusStale}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
		if s.Open() {
			t.Errorf("expected %s not to be open", s)
		}
	}

	for _, s := range []ClaimStatus{StatusNew, StatusTriage, StatusCorroborating} {
		if s.Terminal() {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestClaim_DisplayStatus(t *testing.T) {
	cases := []struct {
		status ClaimStatus
		want   string
	}{
		{StatusNew, "UNVERIFIED"},
		{StatusTriage, "UNVERIFIED"},
		{StatusCorroborating, "UNVERIFIED"},
		{StatusStale, "UNVERIFIED"},
		{StatusConfirmed, "CONFIRMED"},
		{StatusDebunked, "DEBUNKED"},
	}

	for _, tc := range cases {
		cl := &Claim{Status: tc.status}
		if got := cl.DisplayStatus(); got != tc.want {
			t.Errorf("DisplayStatus(%s) = %s, want %s", tc.status, got, tc.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg.Risk.Weights.Funding = 0.9
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for weights not summing to 1.0")
	}

	cfg = DefaultConfig()
	cfg.Sources = []Source{{Name: "x", Tier: 5}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid tier")
	}

	cfg = DefaultConfig()
	cfg.Sources = []Source{{Name: "x", Tier: TierSocial}, {Name: "x", Tier: TierPress}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for duplicate source")
	}
}
