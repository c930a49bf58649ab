// Package intake drives concurrent ingestion: classify, store, corroborate.
package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rvachev/tierwatch/internal/classify"
	"github.com/rvachev/tierwatch/internal/corroborate"
	"github.com/rvachev/tierwatch/internal/credibility"
	"github.com/rvachev/tierwatch/internal/extract"
	"github.com/rvachev/tierwatch/internal/lifecycle"
	"github.com/rvachev/tierwatch/internal/logging"
	"github.com/rvachev/tierwatch/internal/model"
	"github.com/rvachev/tierwatch/internal/store"
)

// Runner wires the full ingest path. Items from independent sources are
// processed concurrently; serialization per claim is the lifecycle
// manager's job.
type Runner struct {
	cfg        *model.Config
	classifier *classify.Classifier
	store      *store.Store
	manager    *lifecycle.Manager
	engine     *corroborate.Engine
	scorer     *credibility.Scorer
	limiter    *Limiter
	now        func() time.Time
}

// NewRunner assembles the ingest pipeline for a configuration snapshot.
func NewRunner(cfg *model.Config, st *store.Store) *Runner {
	manager := lifecycle.NewManager(st)
	return &Runner{
		cfg:        cfg,
		classifier: classify.New(cfg.Sources),
		store:      st,
		manager:    manager,
		engine:     corroborate.NewEngine(st, manager, cfg),
		scorer:     credibility.NewScorer(cfg.Credibility),
		limiter:    NewLimiter(cfg.Concurrency.SourceRatePerSec, cfg.Concurrency.SourceBurst),
		now:        time.Now,
	}
}

// Manager exposes the lifecycle manager sharing the runner's claim locks.
func (r *Runner) Manager() *lifecycle.Manager { return r.manager }

// Summary aggregates one ingest run.
type Summary struct {
	Items          int
	Events         int
	Claims         int
	Merged         int // Cross-source assertions folded into existing claims
	Corroborations int
	Dropped        int // Unknown-source or malformed items
	Failed         int
}

// itemResult is the outcome of ingesting one item.
type itemResult struct {
	item    model.RawItem
	events  int
	claims  int
	merged  int
	matches int
	dropped bool
	err     error
}

func (r *itemResult) GetError() error { return r.err }

type ingestJob struct {
	runner *Runner
	item   model.RawItem
}

func (j *ingestJob) Execute(ctx context.Context) Result {
	return j.runner.ingest(ctx, j.item)
}

// Run ingests a batch of items across the configured worker count.
func (r *Runner) Run(ctx context.Context, items []model.RawItem) Summary {
	summary := Summary{Items: len(items)}
	if len(items) == 0 {
		return summary
	}

	pool := NewPool(ctx, r.cfg.Concurrency.IngestWorkers)
	pool.Start()

	// Submit from a separate goroutine so result draining below keeps the
	// workers unblocked however large the batch is.
	go func() {
		for _, item := range items {
			pool.Submit(&ingestJob{runner: r, item: item})
		}
		pool.Close()
	}()

	for res := range pool.Results() {
		ir, ok := res.(*itemResult)
		if !ok {
			continue
		}
		summary.Events += ir.events
		summary.Claims += ir.claims
		summary.Merged += ir.merged
		summary.Corroborations += ir.matches
		if ir.dropped {
			summary.Dropped++
		}
		if ir.err != nil {
			summary.Failed++
			logging.Error("ingest failed", "item", ir.item.ID, "source", ir.item.Source, "error", ir.err)
		}
	}
	return summary
}

// ingest processes one item end to end.
func (r *Runner) ingest(ctx context.Context, item model.RawItem) *itemResult {
	res := &itemResult{item: item}

	if err := r.limiter.Wait(ctx, item.Source); err != nil {
		res.err = fmt.Errorf("rate limit wait: %w", err)
		return res
	}

	outcome, err := r.classifier.Classify(item)
	if err != nil {
		if errors.Is(err, model.ErrUnknownSource) || errors.Is(err, model.ErrMalformedItem) {
			logging.Warn("item dropped", "item", item.ID, "source", item.Source, "reason", err)
			res.dropped = true
			return res
		}
		res.err = err
		return res
	}

	if outcome.Event != nil {
		// Fail-fast: a failed append never proceeds to corroboration
		if err := r.store.InsertEvent(*outcome.Event); err != nil {
			res.err = err
			return res
		}
		res.events++

		matches, err := r.engine.OnEvent(*outcome.Event, r.cfg)
		if err != nil {
			res.err = err
			return res
		}
		res.matches += len(matches)
	}

	if outcome.Claim != nil {
		if err := r.ingestClaim(outcome, item, res); err != nil {
			res.err = err
			return res
		}
	}

	return res
}

func (r *Runner) ingestClaim(outcome *classify.Outcome, item model.RawItem, res *itemResult) error {
	cl := outcome.Claim
	if len(cl.References) == 0 && item.Body != "" {
		cl.References = extract.References(item.Body)
	}

	crossCount := 1
	if outcome.Tier == model.TierSocial {
		crossCount = r.engine.RegisterAssertion(cl.DedupKey, cl.Source)
	}
	scoreCtx := credibility.Context{
		SourceAgeDays:    outcome.Source.AgeDays(r.now()),
		CrossSourceCount: crossCount,
	}

	// Semantically identical tier-3 claims collapse onto the earliest open
	// record: the new assertion only feeds the cross-source bonus.
	if outcome.Tier == model.TierSocial {
		existing, err := r.store.FindOpenClaimByDedupKey(cl.DedupKey)
		if err != nil {
			return err
		}
		if existing != nil {
			// The record keeps its own source's age; only the cross-source
			// count varies with new asserters.
			existingCtx := scoreCtx
			existingCtx.SourceAgeDays = -1
			if src, ok := r.classifier.Resolve(existing.Source); ok {
				existingCtx.SourceAgeDays = src.AgeDays(r.now())
			}
			score, _ := r.scorer.Score(existing, existingCtx)
			if err := r.manager.Rescore(existing.ID, score); err != nil {
				return err
			}
			res.merged++
			return nil
		}
	}

	if err := r.store.InsertClaim(cl); err != nil {
		return err
	}
	res.claims++

	score, _ := r.scorer.Score(cl, scoreCtx)
	if err := r.manager.Advance(cl.ID, score, r.cfg); err != nil {
		return err
	}

	// Fast path: the fact may already be on record
	matches, err := r.engine.OnClaim(cl, r.cfg)
	if err != nil {
		return err
	}
	res.matches += len(matches)
	return nil
}
