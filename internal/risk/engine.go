// Package risk aggregates events and confirmed claims into the three
// systemic stress sub-scores and the composite risk number.
package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/rvachev/tierwatch/internal/model"
	"github.com/rvachev/tierwatch/internal/store"
)

const (
	cascadeFloor     = 50 // Sub-score level counting toward cascade
	amplifierTrigger = 70 // One sub-score at this level plus another at the floor amplifies
	maxComposite     = 10.0

	// neutralScore is used when a dimension has no data at all. Kept below
	// the cascade floor so an empty ledger never reads as a cascade.
	neutralScore = 40
)

// Engine computes risk scores. It is read-only over the store: concurrent
// computations for different asOf values are independent.
type Engine struct {
	store *store.Store
}

// NewEngine creates a risk engine over the given store.
func NewEngine(st *store.Store) *Engine {
	return &Engine{store: st}
}

// dimension accumulates weighted indicator points for one stress dimension.
type dimension struct {
	points  float64
	sources map[string]bool
	samples int
}

func (d *dimension) add(source string, weight float64) {
	if d.sources == nil {
		d.sources = make(map[string]bool)
	}
	d.points += weight
	d.sources[source] = true
	d.samples++
}

// score converts accumulated points into a 0-100 reading. Coordination
// across distinct sources scales the points up before saturation.
func (d *dimension) score(saturation float64) (int, bool) {
	if d.samples == 0 {
		return neutralScore, false
	}

	points := d.points
	switch {
	case len(d.sources) >= 3:
		points *= 1.2
	case len(d.sources) >= 2:
		points *= 1.1
	}

	if saturation <= 0 {
		saturation = 1
	}
	v := int(math.Round(points / saturation * 100))
	if v > 100 {
		v = 100
	}
	return v, true
}

// ComputeScores derives the market-wide score tuple at asOf from events
// observed at or before asOf and claims whose confirmation existed at or
// before asOf. Unconfirmed claims never feed this computation. The result is
// a pure function of that history: recomputing a past asOf is unaffected by
// anything ingested later.
func (e *Engine) ComputeScores(asOf time.Time, cfg *model.Config) (model.RiskScore, error) {
	return e.compute(asOf, "", cfg)
}

// ComputeEntityScores scopes the same computation to a single entity's
// history.
func (e *Engine) ComputeEntityScores(asOf time.Time, entity string, cfg *model.Config) (model.RiskScore, error) {
	return e.compute(asOf, entity, cfg)
}

func (e *Engine) compute(asOf time.Time, entity string, cfg *model.Config) (model.RiskScore, error) {
	asOf = asOf.UTC()
	from := asOf.Add(-time.Duration(cfg.Risk.LookbackDays) * 24 * time.Hour)

	var events []model.Event
	var err error
	if entity != "" {
		events, err = e.store.EventsByEntity(entity, from, asOf)
	} else {
		events, err = e.store.EventsObservedBetween(from, asOf)
	}
	if err != nil {
		return model.RiskScore{}, fmt.Errorf("compute scores: %w", err)
	}
	confirmed, err := e.store.ConfirmedClaimsAsOf(asOf)
	if err != nil {
		return model.RiskScore{}, fmt.Errorf("compute scores: %w", err)
	}

	recent := time.Duration(cfg.Risk.RecentDays) * 24 * time.Hour
	dims := map[string]*dimension{
		"funding":        {},
		"enforcement":    {},
		"deliverability": {},
	}

	for _, ev := range events {
		ind, ok := cfg.Risk.Indicators[ev.Category]
		if !ok {
			continue
		}
		w := ind.Weight
		if asOf.Sub(ev.ObservedAt) <= recent {
			w *= cfg.Risk.RecentBoost // Tempo: recent activity weighs more
		}
		dims[ind.Dimension].add(ev.Source, w)
	}

	for _, cl := range confirmed {
		if entity != "" && cl.Entity != entity {
			continue
		}
		if cl.CreatedAt.Before(from) || cl.CreatedAt.After(asOf) {
			continue
		}
		ind, ok := cfg.Risk.Indicators[cl.Category]
		if !ok {
			continue
		}
		w := ind.Weight * cfg.Risk.ClaimWeight
		if asOf.Sub(cl.CreatedAt) <= recent {
			w *= cfg.Risk.RecentBoost
		}
		dims[ind.Dimension].add(cl.Source, w)
	}

	funding, fOK := dims["funding"].score(cfg.Risk.Saturation)
	enforcement, eOK := dims["enforcement"].score(cfg.Risk.Saturation)
	deliverability, dOK := dims["deliverability"].score(cfg.Risk.Saturation)

	sub := [3]int{funding, enforcement, deliverability}
	composite := (cfg.Risk.Weights.Funding*float64(funding) +
		cfg.Risk.Weights.Enforcement*float64(enforcement) +
		cfg.Risk.Weights.Deliverability*float64(deliverability)) / 10.0

	if amplified(sub) {
		composite *= cfg.Risk.CascadeMultiplier
	}
	if composite > maxComposite {
		composite = maxComposite
	}
	composite = math.Round(composite*100) / 100

	return model.RiskScore{
		AsOf:                 asOf,
		FundingStress:        funding,
		EnforcementHeat:      enforcement,
		DeliverabilityStress: deliverability,
		Composite:            composite,
		Label:                LabelFor(composite),
		Cascade:              cascade(sub),
		Degraded:             !fOK || !eOK || !dOK,
		ComputedAt:           time.Now().UTC(),
	}, nil
}

// cascade is true iff at least two of the three sub-scores are at or above
// the floor.
func cascade(sub [3]int) bool {
	n := 0
	for _, v := range sub {
		if v >= cascadeFloor {
			n++
		}
	}
	return n >= 2
}

// amplified is true when one sub-score is at or above the trigger and at
// least one other is at or above the floor.
func amplified(sub [3]int) bool {
	for i, v := range sub {
		if v < amplifierTrigger {
			continue
		}
		for j, w := range sub {
			if j != i && w >= cascadeFloor {
				return true
			}
		}
	}
	return false
}

// LabelFor maps a composite onto the closed, ordered label ladder.
func LabelFor(composite float64) string {
	switch {
	case composite < 1.5:
		return model.LabelStable
	case composite < 2.5:
		return model.LabelMonitor
	case composite < 4:
		return model.LabelWatch
	case composite < 6:
		return model.LabelWarning
	case composite < 8:
		return model.LabelDanger
	default:
		return model.LabelCrisis
	}
}
