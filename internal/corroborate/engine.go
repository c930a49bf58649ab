// Package corroborate matches events against open claims to confirm or
// debunk them.
package corroborate

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rvachev/tierwatch/internal/lifecycle"
	"github.com/rvachev/tierwatch/internal/logging"
	"github.com/rvachev/tierwatch/internal/model"
	"github.com/rvachev/tierwatch/internal/store"
)

// Engine evaluates new events and claims for corroboration. Evaluation is
// idempotent: the store deduplicates links by (claim, event, relation), and
// lifecycle transitions absorb repeats.
type Engine struct {
	store     *store.Store
	lifecycle *lifecycle.Manager
	now       func() time.Time

	// window tracks which sources asserted each canonical claim recently,
	// feeding the cross-source credibility bonus without duplicating claim
	// records.
	window   *gocache.Cache
	windowMu sync.Mutex
}

// NewEngine creates a corroboration engine. The cross-source window TTL
// comes from the rules config.
func NewEngine(st *store.Store, mgr *lifecycle.Manager, cfg *model.Config) *Engine {
	ttl := time.Duration(cfg.Rules.CrossSourceWindowHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Engine{
		store:     st,
		lifecycle: mgr,
		now:       time.Now,
		window:    gocache.New(ttl, 10*time.Minute),
	}
}

// OnEvent scans open claims sharing the event's entity and applies
// claim-category match rules. Returns the corroborations recorded in this
// pass (duplicates from earlier passes are skipped silently).
func (e *Engine) OnEvent(ev model.Event, cfg *model.Config) ([]model.Corroboration, error) {
	claims, err := e.store.OpenClaimsByEntity(ev.Entity)
	if err != nil {
		return nil, fmt.Errorf("corroborate event %s: %w", ev.ID, err)
	}

	var applied []model.Corroboration
	for i := range claims {
		if co, ok := e.match(ev, &claims[i], cfg); ok {
			applied = append(applied, co)
		}
	}
	return applied, nil
}

// OnClaim is the fast path for claims arriving after the fact already
// happened: existing events for the entity are checked with the same rules.
func (e *Engine) OnClaim(cl *model.Claim, cfg *model.Config) ([]model.Corroboration, error) {
	window := time.Duration(cfg.Rules.MatchWindowDays) * 24 * time.Hour
	events, err := e.store.EventsByEntity(cl.Entity, cl.CreatedAt.Add(-window), cl.CreatedAt.Add(window))
	if err != nil {
		return nil, fmt.Errorf("corroborate claim %s: %w", cl.ID, err)
	}

	var applied []model.Corroboration
	for _, ev := range events {
		co, ok := e.match(ev, cl, cfg)
		if !ok {
			continue
		}
		applied = append(applied, co)
		if co.Relation == model.RelationConfirms {
			break // One confirming event is enough
		}
	}
	return applied, nil
}

// RegisterAssertion records that a source asserted the canonical claim and
// returns the number of distinct sources seen within the window.
func (e *Engine) RegisterAssertion(dedupKey, source string) int {
	e.windowMu.Lock()
	defer e.windowMu.Unlock()

	var sources map[string]bool
	if v, ok := e.window.Get(dedupKey); ok {
		sources = v.(map[string]bool)
	} else {
		sources = make(map[string]bool)
	}
	sources[source] = true
	e.window.SetDefault(dedupKey, sources)
	return len(sources)
}

// match applies the rules for one event/claim pair and, on a decision,
// records the corroboration and drives the lifecycle manager.
func (e *Engine) match(ev model.Event, cl *model.Claim, cfg *model.Config) (model.Corroboration, bool) {
	relation, basis, ok := decide(ev, cl, cfg)
	if !ok {
		return model.Corroboration{}, false
	}

	co := model.Corroboration{
		ID:         uuid.NewString(),
		ClaimID:    cl.ID,
		EventID:    ev.ID,
		Relation:   relation,
		Confidence: lifecycle.DefaultConfidence,
		Basis:      basis,
		CreatedAt:  e.now().UTC(),
	}

	if err := e.store.InsertCorroboration(co); err != nil {
		if errors.Is(err, model.ErrDuplicateCorroboration) {
			return model.Corroboration{}, false // Already evaluated this pair
		}
		logging.Error("record corroboration failed", "claim", cl.ID, "event", ev.ID, "error", err)
		return model.Corroboration{}, false
	}

	var err error
	switch relation {
	case model.RelationConfirms:
		err = e.lifecycle.Confirm(cl.ID, ev.ID, co.Confidence)
	case model.RelationDebunks:
		err = e.lifecycle.Debunk(cl.ID, ev.ID)
	}
	if err != nil {
		if errors.Is(err, model.ErrInvalidTransition) {
			// The claim reached a terminal state first; the link record
			// stays as audit evidence.
			logging.Warn("corroboration arrived after terminal state",
				"claim", cl.ID, "event", ev.ID, "relation", relation)
			return co, true
		}
		logging.Error("lifecycle transition failed", "claim", cl.ID, "event", ev.ID, "error", err)
		return model.Corroboration{}, false
	}

	logging.Info("claim "+string(relation), "claim", cl.ID, "event", ev.ID, "basis", basis)
	return co, true
}

// decide applies the match rules: same-source events never corroborate a
// source's own claim; the event must fall within the match window around the
// claim's creation; an exact category match confirms; a configured
// contradiction pair debunks.
func decide(ev model.Event, cl *model.Claim, cfg *model.Config) (model.Relation, string, bool) {
	if ev.Source == cl.Source {
		return "", "", false
	}

	window := time.Duration(cfg.Rules.MatchWindowDays) * 24 * time.Hour
	delta := ev.ObservedAt.Sub(cl.CreatedAt)
	if delta > window || delta < -window {
		return "", "", false
	}

	if ev.Category == cl.Category {
		return model.RelationConfirms, "category_match", true
	}
	for _, contra := range cfg.Rules.Contradictions[cl.Category] {
		if ev.Category == contra {
			return model.RelationDebunks, "contradiction_pair", true
		}
	}
	return "", "", false
}
