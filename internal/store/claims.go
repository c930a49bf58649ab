package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rvachev/tierwatch/internal/model"
)

// InsertClaim creates a claim record. The caller sets status and version 1.
func (s *Store) InsertClaim(cl *model.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(cl.Payload)
	if err != nil {
		return fmt.Errorf("encode payload for claim %s: %w", cl.ID, err)
	}
	refs, err := json.Marshal(cl.References)
	if err != nil {
		return fmt.Errorf("encode references for claim %s: %w", cl.ID, err)
	}

	var deadline sql.NullTime
	if cl.Deadline != nil {
		deadline = sql.NullTime{Time: cl.Deadline.UTC(), Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT INTO claims (
			id, source, entity, category, text, payload, dedup_key,
			artifact_ref, refs, engagement, credibility, status,
			confirmed_by, debunked_by, confidence, time_sensitive, deadline,
			created_at, evaluated_at, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, cl.ID, cl.Source, cl.Entity, cl.Category, cl.Text, string(payload), cl.DedupKey,
		cl.ArtifactRef, string(refs), cl.Engagement, cl.Credibility, string(cl.Status),
		cl.ConfirmedBy, cl.DebunkedBy, cl.Confidence, boolInt(cl.TimeSensitive), deadline,
		cl.CreatedAt.UTC(), cl.EvaluatedAt.UTC(), cl.Version)
	if err != nil {
		return fmt.Errorf("insert claim %s (source %s): %w", cl.ID, cl.Source, err)
	}
	return nil
}

// UpdateClaim applies the claim's mutable fields using optimistic
// concurrency: the update only succeeds when the stored version still equals
// cl.Version. On success cl.Version is incremented; on conflict
// model.ErrStaleWrite is returned and the caller must re-read.
func (s *Store) UpdateClaim(cl *model.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE claims SET
			engagement = ?, credibility = ?, status = ?,
			confirmed_by = ?, debunked_by = ?, confidence = ?,
			evaluated_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`, cl.Engagement, cl.Credibility, string(cl.Status),
		cl.ConfirmedBy, cl.DebunkedBy, cl.Confidence,
		cl.EvaluatedAt.UTC(), cl.ID, cl.Version)
	if err != nil {
		return fmt.Errorf("update claim %s: %w", cl.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update claim %s: %w", cl.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("claim %s at version %d: %w", cl.ID, cl.Version, model.ErrStaleWrite)
	}

	cl.Version++
	return nil
}

// GetClaim returns a claim by ID, or nil when absent.
func (s *Store) GetClaim(id string) (*model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(claimSelect+` WHERE id = ?`, id)
	cl, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get claim %s: %w", id, err)
	}
	return cl, nil
}

// OpenClaimsByEntity returns triage/corroborating claims for an entity.
func (s *Store) OpenClaimsByEntity(entity string) ([]model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(claimSelect+`
		WHERE entity = ? AND status IN (?, ?)
		ORDER BY created_at
	`, entity, string(model.StatusTriage), string(model.StatusCorroborating))
	if err != nil {
		return nil, fmt.Errorf("query open claims for %s: %w", entity, err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// ClaimsByStatus returns claims in the given status, newest first.
func (s *Store) ClaimsByStatus(status model.ClaimStatus) ([]model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(claimSelect+`
		WHERE status = ? ORDER BY created_at DESC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("query claims by status %s: %w", status, err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// NonTerminalClaims returns every claim still in the lifecycle (new, triage
// or corroborating). Used by the staleness sweep.
func (s *Store) NonTerminalClaims() ([]model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(claimSelect+`
		WHERE status IN (?, ?, ?) ORDER BY created_at
	`, string(model.StatusNew), string(model.StatusTriage), string(model.StatusCorroborating))
	if err != nil {
		return nil, fmt.Errorf("query non-terminal claims: %w", err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// FindOpenClaimByDedupKey returns the open claim sharing the canonical claim
// key, or nil. Keeps semantically identical tier-3 claims from multiple
// sources collapsed onto one record.
func (s *Store) FindOpenClaimByDedupKey(key string) (*model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(claimSelect+`
		WHERE dedup_key = ? AND status IN (?, ?, ?)
		ORDER BY created_at LIMIT 1
	`, key, string(model.StatusNew), string(model.StatusTriage), string(model.StatusCorroborating))

	cl, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find claim by dedup key: %w", err)
	}
	return cl, nil
}

// ConfirmedClaimsAsOf returns claims whose confirming corroboration existed
// at or before asOf. Claims confirmed later do not leak into a past
// computation. Each claim is returned exactly once however many confirming
// links it accumulated.
func (s *Store) ConfirmedClaimsAsOf(asOf time.Time) ([]model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(claimSelect+`
		WHERE status = ? AND EXISTS (
			SELECT 1 FROM corroborations co
			WHERE co.claim_id = claims.id AND co.relation = ? AND co.created_at <= ?
		)
		ORDER BY created_at
	`, string(model.StatusConfirmed), string(model.RelationConfirms), asOf.UTC())
	if err != nil {
		return nil, fmt.Errorf("query confirmed claims as of %s: %w", asOf, err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

const claimSelect = `
	SELECT id, source, entity, category, text, payload, dedup_key,
		artifact_ref, refs, engagement, credibility, status,
		confirmed_by, debunked_by, confidence, time_sensitive, deadline,
		created_at, evaluated_at, version
	FROM claims`

func scanClaim(row rowScanner) (*model.Claim, error) {
	var cl model.Claim
	var payload, refs sql.NullString
	var status string
	var timeSensitive int
	var deadline sql.NullTime

	err := row.Scan(&cl.ID, &cl.Source, &cl.Entity, &cl.Category, &cl.Text, &payload, &cl.DedupKey,
		&cl.ArtifactRef, &refs, &cl.Engagement, &cl.Credibility, &status,
		&cl.ConfirmedBy, &cl.DebunkedBy, &cl.Confidence, &timeSensitive, &deadline,
		&cl.CreatedAt, &cl.EvaluatedAt, &cl.Version)
	if err != nil {
		return nil, err
	}

	cl.Status = model.ClaimStatus(status)
	cl.TimeSensitive = timeSensitive != 0
	if deadline.Valid {
		t := deadline.Time
		cl.Deadline = &t
	}
	if payload.Valid && payload.String != "" && payload.String != "null" {
		if err := json.Unmarshal([]byte(payload.String), &cl.Payload); err != nil {
			return nil, fmt.Errorf("decode payload for claim %s: %w", cl.ID, err)
		}
	}
	if refs.Valid && refs.String != "" && refs.String != "null" {
		if err := json.Unmarshal([]byte(refs.String), &cl.References); err != nil {
			return nil, fmt.Errorf("decode references for claim %s: %w", cl.ID, err)
		}
	}
	return &cl, nil
}

func scanClaims(rows *sql.Rows) ([]model.Claim, error) {
	var claims []model.Claim
	for rows.Next() {
		cl, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *cl)
	}
	return claims, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
