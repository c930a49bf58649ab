package model

import "time"

// SourceTier classifies how much a data origin is trusted
type SourceTier int

const (
	TierUnknown  SourceTier = 0 // Not configured
	TierOfficial SourceTier = 1 // Regulators, exchanges, official filings
	TierPress    SourceTier = 2 // Credible financial press
	TierSocial   SourceTier = 3 // Social media, unverified accounts
)

func (t SourceTier) String() string {
	switch t {
	case TierOfficial:
		return "official"
	case TierPress:
		return "press"
	case TierSocial:
		return "social"
	default:
		return "unknown"
	}
}

// Source is the configured identity of a data origin.
// Tier is static configuration, never inferred from content.
type Source struct {
	Name      string     `yaml:"name" json:"name"`
	Platform  string     `yaml:"platform,omitempty" json:"platform,omitempty"` // e.g. "sec_edgar", "twitter"
	Tier      SourceTier `yaml:"tier" json:"tier"`
	CreatedAt time.Time  `yaml:"created_at,omitempty" json:"created_at,omitempty"` // Account/feed creation date
}

// AgeDays returns the source account age in whole days at the given instant.
// Returns -1 when the creation date is unknown.
func (s Source) AgeDays(now time.Time) int {
	if s.CreatedAt.IsZero() {
		return -1
	}
	return int(now.Sub(s.CreatedAt).Hours() / 24)
}

// RawItem is an already-fetched unit of source data handed to the classifier.
// The fetcher collaborator is responsible for retries and for tagging the
// item with a resolvable source name.
type RawItem struct {
	ID            string            `json:"id"`
	Source        string            `json:"source"`
	Entity        string            `json:"entity"`   // Bank, regulator, exchange, metal, ...
	Category      string            `json:"category"` // e.g. "enforcement_action", "credit_spread"
	Headline      string            `json:"headline"`
	Body          string            `json:"body,omitempty"` // Raw text or HTML payload
	Payload       map[string]string `json:"payload,omitempty"`
	Engagement    int               `json:"engagement,omitempty"` // Likes/reposts/views for social items
	ArtifactRef   string            `json:"artifact_ref,omitempty"`
	References    []string          `json:"references,omitempty"`
	ObservedAt    time.Time         `json:"observed_at"`
	Deadline      *time.Time        `json:"deadline,omitempty"` // For time-bound predictions
	TimeSensitive bool              `json:"time_sensitive,omitempty"`
}
