package store

import (
	"fmt"

	"github.com/rvachev/tierwatch/internal/model"
)

// InsertCorroboration appends a corroboration link. Links are deduplicated
// by (claim, event, relation): re-running evaluation against the same pair
// returns model.ErrDuplicateCorroboration, which callers treat as a no-op.
func (s *Store) InsertCorroboration(co model.Corroboration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		INSERT INTO corroborations (id, claim_id, event_id, relation, confidence, basis, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(claim_id, event_id, relation) DO NOTHING
	`, co.ID, co.ClaimID, co.EventID, string(co.Relation), co.Confidence, co.Basis, co.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert corroboration %s/%s: %w", co.ClaimID, co.EventID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert corroboration %s/%s: %w", co.ClaimID, co.EventID, err)
	}
	if n == 0 {
		return fmt.Errorf("corroboration %s/%s/%s: %w", co.ClaimID, co.EventID, co.Relation, model.ErrDuplicateCorroboration)
	}
	return nil
}

// CorroborationsForClaim returns all links recorded for a claim.
func (s *Store) CorroborationsForClaim(claimID string) ([]model.Corroboration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, claim_id, event_id, relation, confidence, basis, created_at
		FROM corroborations WHERE claim_id = ? ORDER BY created_at
	`, claimID)
	if err != nil {
		return nil, fmt.Errorf("query corroborations for %s: %w", claimID, err)
	}
	defer rows.Close()

	var out []model.Corroboration
	for rows.Next() {
		var co model.Corroboration
		var relation string
		if err := rows.Scan(&co.ID, &co.ClaimID, &co.EventID, &relation, &co.Confidence, &co.Basis, &co.CreatedAt); err != nil {
			return nil, err
		}
		co.Relation = model.Relation(relation)
		out = append(out, co)
	}
	return out, rows.Err()
}
