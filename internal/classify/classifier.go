// Package classify routes ingested items into events and claims by source
// trust tier.
package classify

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rvachev/tierwatch/internal/model"
)

// Outcome is the routing decision for one item. Tier 1 produces only an
// event, tier 3 only a claim, tier 2 both (same entity and content, so the
// item is tracked as provisional fact and independently corroborated).
type Outcome struct {
	Source model.Source
	Tier   model.SourceTier
	Event  *model.Event
	Claim  *model.Claim
}

// Classifier resolves source identities against the configured trust-tier
// table. The tier is static configuration; it is resolved once here and
// carried on the produced records, never re-derived downstream.
type Classifier struct {
	sources map[string]model.Source
	now     func() time.Time
}

// New builds a classifier from the configured source table.
func New(sources []model.Source) *Classifier {
	m := make(map[string]model.Source, len(sources))
	for _, src := range sources {
		m[src.Name] = src
	}
	return &Classifier{sources: m, now: time.Now}
}

// Resolve looks up a configured source by name.
func (c *Classifier) Resolve(name string) (model.Source, bool) {
	src, ok := c.sources[name]
	return src, ok
}

// Classify validates an item and produces its event and/or claim.
// Unknown sources fail with model.ErrUnknownSource; items missing required
// fields fail with model.ErrMalformedItem. Both are dropped by callers, not
// retried.
func (c *Classifier) Classify(item model.RawItem) (*Outcome, error) {
	src, ok := c.sources[item.Source]
	if !ok {
		return nil, fmt.Errorf("source %q for item %s: %w", item.Source, item.ID, model.ErrUnknownSource)
	}

	if err := validateItem(item); err != nil {
		return nil, err
	}

	now := c.now().UTC()
	out := &Outcome{Source: src, Tier: src.Tier}

	if src.Tier == model.TierOfficial || src.Tier == model.TierPress {
		out.Event = &model.Event{
			ID:         uuid.NewString(),
			Source:     src.Name,
			Entity:     item.Entity,
			Category:   item.Category,
			Headline:   item.Headline,
			Payload:    item.Payload,
			ObservedAt: item.ObservedAt.UTC(),
			IngestedAt: now,
		}
	}

	if src.Tier == model.TierPress || src.Tier == model.TierSocial {
		out.Claim = &model.Claim{
			ID:            uuid.NewString(),
			Source:        src.Name,
			Entity:        item.Entity,
			Category:      item.Category,
			Text:          item.Headline,
			Payload:       item.Payload,
			DedupKey:      model.CanonicalClaimKey(item.Entity, item.Category, item.Payload),
			ArtifactRef:   item.ArtifactRef,
			References:    item.References,
			Engagement:    item.Engagement,
			Status:        model.StatusNew,
			TimeSensitive: item.TimeSensitive,
			Deadline:      item.Deadline,
			CreatedAt:     item.ObservedAt.UTC(),
			EvaluatedAt:   now,
			Version:       1,
		}
	}

	return out, nil
}

func validateItem(item model.RawItem) error {
	switch {
	case item.ID == "":
		return fmt.Errorf("item missing id: %w", model.ErrMalformedItem)
	case item.Entity == "":
		return fmt.Errorf("item %s missing entity: %w", item.ID, model.ErrMalformedItem)
	case item.Category == "":
		return fmt.Errorf("item %s missing category: %w", item.ID, model.ErrMalformedItem)
	case item.Headline == "":
		return fmt.Errorf("item %s missing headline: %w", item.ID, model.ErrMalformedItem)
	case item.ObservedAt.IsZero():
		return fmt.Errorf("item %s missing observed_at: %w", item.ID, model.ErrMalformedItem)
	}
	return nil
}
