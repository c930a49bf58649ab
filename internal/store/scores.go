package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rvachev/tierwatch/internal/model"
)

// SaveScore persists a score snapshot. Last-write-wins keyed by as_of; the
// full tuple is written atomically in one statement.
func (s *Store) SaveScore(sc model.RiskScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO scores (
			as_of, funding_stress, enforcement_heat, deliverability_stress,
			composite, label, cascade, degraded, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sc.AsOf.UTC(), sc.FundingStress, sc.EnforcementHeat, sc.DeliverabilityStress,
		sc.Composite, sc.Label, boolInt(sc.Cascade), boolInt(sc.Degraded), sc.ComputedAt.UTC())
	if err != nil {
		return fmt.Errorf("save score at %s: %w", sc.AsOf, err)
	}
	return nil
}

// ScoreHistory returns saved snapshots, newest first, up to limit.
func (s *Store) ScoreHistory(limit int) ([]model.RiskScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 30
	}

	rows, err := s.db.Query(`
		SELECT as_of, funding_stress, enforcement_heat, deliverability_stress,
			composite, label, cascade, degraded, computed_at
		FROM scores ORDER BY as_of DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query score history: %w", err)
	}
	defer rows.Close()

	var out []model.RiskScore
	for rows.Next() {
		sc, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}
	return out, rows.Err()
}

// ScoreAt returns the saved snapshot for an exact as_of, or nil.
func (s *Store) ScoreAt(asOf time.Time) (*model.RiskScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT as_of, funding_stress, enforcement_heat, deliverability_stress,
			composite, label, cascade, degraded, computed_at
		FROM scores WHERE as_of = ?
	`, asOf.UTC())

	sc, err := scanScore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get score at %s: %w", asOf, err)
	}
	return sc, nil
}

func scanScore(row rowScanner) (*model.RiskScore, error) {
	var sc model.RiskScore
	var cascade, degraded int

	err := row.Scan(&sc.AsOf, &sc.FundingStress, &sc.EnforcementHeat, &sc.DeliverabilityStress,
		&sc.Composite, &sc.Label, &cascade, &degraded, &sc.ComputedAt)
	if err != nil {
		return nil, err
	}

	sc.Cascade = cascade != 0
	sc.Degraded = degraded != 0
	return &sc, nil
}
