package model

import "time"

// Event is an immutable record of a verified fact. Events are append-only:
// the store never updates or deletes them, and they are the only data
// admissible as ground truth for corroboration and risk scoring.
type Event struct {
	ID         string            `json:"id"`
	Source     string            `json:"source"`
	Entity     string            `json:"entity"`
	Category   string            `json:"category"`
	Headline   string            `json:"headline"`
	Payload    map[string]string `json:"payload,omitempty"`
	ObservedAt time.Time         `json:"observed_at"`
	IngestedAt time.Time         `json:"ingested_at"`
}
