package model

import "time"

// ClaimStatus is the lifecycle state of a claim. Transitions are monotonic:
// once a claim reaches a terminal status no further transition is applied.
type ClaimStatus string

const (
	StatusNew           ClaimStatus = "new"
	StatusTriage        ClaimStatus = "triage"
	StatusCorroborating ClaimStatus = "corroborating"
	StatusConfirmed     ClaimStatus = "confirmed"
	StatusDebunked      ClaimStatus = "debunked"
	StatusStale         ClaimStatus = "stale"
)

// Terminal reports whether the status absorbs all further transitions.
func (s ClaimStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusDebunked || s == StatusStale
}

// Open reports whether the claim is still eligible for corroboration.
func (s ClaimStatus) Open() bool {
	return s == StatusTriage || s == StatusCorroborating
}

// Claim is a mutable record of an unverified assertion. Status and score
// fields are mutated only by the lifecycle manager under single-writer
// discipline; Version implements optimistic concurrency for that.
type Claim struct {
	ID            string            `json:"id"`
	Source        string            `json:"source"`
	Entity        string            `json:"entity"`
	Category      string            `json:"category"`
	Text          string            `json:"text"`
	Payload       map[string]string `json:"payload,omitempty"`
	DedupKey      string            `json:"dedup_key"` // Canonical claim key: entity + category + normalized payload
	ArtifactRef   string            `json:"artifact_ref,omitempty"`
	References    []string          `json:"references,omitempty"`
	Engagement    int               `json:"engagement,omitempty"`
	Credibility   int               `json:"credibility"` // 0-100, recomputed on update
	Status        ClaimStatus       `json:"status"`
	ConfirmedBy   string            `json:"confirmed_by,omitempty"` // Event ID, set only when confirmed
	DebunkedBy    string            `json:"debunked_by,omitempty"`  // Event ID, set only when debunked
	Confidence    float64           `json:"confidence,omitempty"`   // Match confidence recorded at confirmation
	TimeSensitive bool              `json:"time_sensitive,omitempty"`
	Deadline      *time.Time        `json:"deadline,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	EvaluatedAt   time.Time         `json:"evaluated_at"`
	Version       int64             `json:"version"`
}

// DisplayStatus is the label consumers must render. Everything that is not
// confirmed or debunked is UNVERIFIED, so a caller can never present an
// unconfirmed claim as fact.
func (c *Claim) DisplayStatus() string {
	switch c.Status {
	case StatusConfirmed:
		return "CONFIRMED"
	case StatusDebunked:
		return "DEBUNKED"
	default:
		return "UNVERIFIED"
	}
}
