package model

import "time"

// Relation states how an event bears on a claim
type Relation string

const (
	RelationConfirms Relation = "confirms"
	RelationDebunks  Relation = "debunks"
)

// Corroboration links one claim to one event. Records are append-only and
// deduplicated by (claim, event, relation); they are created only by the
// corroboration engine.
type Corroboration struct {
	ID         string    `json:"id"`
	ClaimID    string    `json:"claim_id"`
	EventID    string    `json:"event_id"`
	Relation   Relation  `json:"relation"`
	Confidence float64   `json:"confidence"`
	Basis      string    `json:"basis"` // Match basis, e.g. "category_match" or "contradiction_pair"
	CreatedAt  time.Time `json:"created_at"`
}
