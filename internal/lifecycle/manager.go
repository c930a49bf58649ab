// Package lifecycle owns claim state transitions. All mutations go through
// a per-claim lock plus the store's version check, so transitions stay
// serialized and monotonic even across processes.
package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rvachev/tierwatch/internal/logging"
	"github.com/rvachev/tierwatch/internal/model"
	"github.com/rvachev/tierwatch/internal/store"
)

// DefaultConfidence is recorded at confirmation unless the corroboration
// engine supplies a lower match confidence.
const DefaultConfidence = 0.95

// errNoChange signals that the transition is already applied; the claim is
// left untouched and the operation reports success.
var errNoChange = errors.New("no change")

// Manager applies lifecycle transitions to claims.
type Manager struct {
	store *store.Store
	now   func() time.Time

	mu    sync.RWMutex
	locks map[string]*sync.Mutex
}

// NewManager creates a lifecycle manager over the given store.
func NewManager(st *store.Store) *Manager {
	return &Manager{
		store: st,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// canTransition encodes the lifecycle graph. Terminal states absorb.
func canTransition(from, to model.ClaimStatus) bool {
	switch from {
	case model.StatusNew:
		return to == model.StatusTriage || to == model.StatusStale
	case model.StatusTriage:
		return to == model.StatusCorroborating || to == model.StatusConfirmed ||
			to == model.StatusDebunked || to == model.StatusStale
	case model.StatusCorroborating:
		return to == model.StatusConfirmed || to == model.StatusDebunked || to == model.StatusStale
	default:
		return false
	}
}

// Advance applies at most one forward step for an evaluation pass:
// new goes to triage, and a triaged claim whose score clears the actionable
// threshold moves to corroborating. The credibility score is persisted
// either way.
func (m *Manager) Advance(claimID string, score int, cfg *model.Config) error {
	return m.transition(claimID, func(cl *model.Claim) error {
		cl.Credibility = score

		switch cl.Status {
		case model.StatusNew:
			cl.Status = model.StatusTriage
		case model.StatusTriage:
			if score < cfg.Credibility.ActionableScore {
				return nil // Keep in triage, persist the score
			}
			if m.pastStaleness(cl, cfg) {
				return nil // Sweep will retire it
			}
			cl.Status = model.StatusCorroborating
		case model.StatusCorroborating:
			return nil // Rescore only
		default:
			return errNoChange // Terminal: score updates no longer apply
		}
		return nil
	})
}

// Rescore persists a recomputed credibility score without moving status.
// Terminal claims are left untouched.
func (m *Manager) Rescore(claimID string, score int) error {
	return m.transition(claimID, func(cl *model.Claim) error {
		if cl.Status.Terminal() {
			return errNoChange
		}
		cl.Credibility = score
		return nil
	})
}

// Confirm marks a claim confirmed by an event. Confirming with the same
// event twice is a no-op; any other transition out of a terminal state is
// rejected with model.ErrInvalidTransition.
func (m *Manager) Confirm(claimID, eventID string, confidence float64) error {
	if confidence <= 0 || confidence > DefaultConfidence {
		confidence = DefaultConfidence
	}

	return m.transition(claimID, func(cl *model.Claim) error {
		if cl.Status == model.StatusConfirmed && cl.ConfirmedBy == eventID {
			return errNoChange
		}
		if !canTransition(cl.Status, model.StatusConfirmed) {
			return fmt.Errorf("claim %s: %s -> confirmed: %w", claimID, cl.Status, model.ErrInvalidTransition)
		}
		cl.Status = model.StatusConfirmed
		cl.ConfirmedBy = eventID
		cl.DebunkedBy = ""
		cl.Confidence = confidence
		return nil
	})
}

// Debunk marks a claim debunked by a contradicting event. eventID may be
// empty for a time-bound claim whose deadline elapsed without the predicted
// event.
func (m *Manager) Debunk(claimID, eventID string) error {
	return m.transition(claimID, func(cl *model.Claim) error {
		if cl.Status == model.StatusDebunked && cl.DebunkedBy == eventID {
			return errNoChange
		}
		if !canTransition(cl.Status, model.StatusDebunked) {
			return fmt.Errorf("claim %s: %s -> debunked: %w", claimID, cl.Status, model.ErrInvalidTransition)
		}
		cl.Status = model.StatusDebunked
		cl.DebunkedBy = eventID
		cl.ConfirmedBy = ""
		return nil
	})
}

// Sweep retires claims by time: time-bound claims past their deadline are
// debunked, and claims past the staleness window with no match go stale.
// Returns counts of debunked and staled claims.
func (m *Manager) Sweep(cfg *model.Config) (debunked, staled int, err error) {
	claims, err := m.store.NonTerminalClaims()
	if err != nil {
		return 0, 0, fmt.Errorf("sweep: %w", err)
	}

	now := m.now().UTC()
	for i := range claims {
		cl := &claims[i]

		if cl.Deadline != nil && now.After(*cl.Deadline) {
			if dErr := m.Debunk(cl.ID, ""); dErr != nil {
				logging.Warn("sweep debunk failed", "claim", cl.ID, "error", dErr)
				continue
			}
			logging.Info("claim deadline elapsed", "claim", cl.ID, "entity", cl.Entity)
			debunked++
			continue
		}

		if cl.TimeSensitive {
			continue // Pending a deadline, exempt from staleness
		}
		if m.pastStaleness(cl, cfg) {
			if sErr := m.markStale(cl.ID); sErr != nil {
				logging.Warn("sweep stale failed", "claim", cl.ID, "error", sErr)
				continue
			}
			logging.Info("claim went stale", "claim", cl.ID, "entity", cl.Entity)
			staled++
		}
	}
	return debunked, staled, nil
}

func (m *Manager) markStale(claimID string) error {
	return m.transition(claimID, func(cl *model.Claim) error {
		if !canTransition(cl.Status, model.StatusStale) {
			return fmt.Errorf("claim %s: %s -> stale: %w", claimID, cl.Status, model.ErrInvalidTransition)
		}
		cl.Status = model.StatusStale
		return nil
	})
}

func (m *Manager) pastStaleness(cl *model.Claim, cfg *model.Config) bool {
	window := time.Duration(cfg.Rules.StalenessDays) * 24 * time.Hour
	return m.now().UTC().Sub(cl.CreatedAt) > window
}

// transition runs one guarded mutation on a claim: read fresh state under
// the per-claim lock, apply, write with the version check. A stale write is
// retried once with a fresh read, then surfaced to the caller.
func (m *Manager) transition(claimID string, apply func(*model.Claim) error) error {
	lk := m.lock(claimID)
	lk.Lock()
	defer lk.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		cl, err := m.store.GetClaim(claimID)
		if err != nil {
			return err
		}
		if cl == nil {
			return fmt.Errorf("claim %s not found", claimID)
		}

		if err := apply(cl); err != nil {
			if errors.Is(err, errNoChange) {
				return nil
			}
			if errors.Is(err, model.ErrInvalidTransition) {
				logging.Warn("transition rejected", "claim", claimID, "status", cl.Status)
			}
			return err
		}
		cl.EvaluatedAt = m.now().UTC()

		err = m.store.UpdateClaim(cl)
		if err == nil {
			return nil
		}
		if !errors.Is(err, model.ErrStaleWrite) || attempt > 0 {
			return err
		}
		// Lost a race with another writer; retry once with fresh state
	}
	return nil
}

func (m *Manager) lock(claimID string) *sync.Mutex {
	m.mu.RLock()
	lk, ok := m.locks[claimID]
	m.mu.RUnlock()
	if ok {
		return lk
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if lk, ok := m.locks[claimID]; ok {
		return lk
	}
	lk = &sync.Mutex{}
	m.locks[claimID] = lk
	return lk
}
