// Package audit provides PostgreSQL-backed storage for moderation
// decisions. Each record captures the submitting session, a hash of the
// content, the full verdict, and the structural metadata the pipeline
// derived, giving moderators a reviewable trail without retaining raw
// content.
package audit

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Decision is a single completed pipeline run to be persisted.
type Decision struct {
	SessionID    string
	SubmissionID string
	ContentHash  string // hex SHA-256 of the submitted content
	Severity     string
	Action       string
	Explanation  string
	Metadata     map[string]any
	CreatedAt    time.Time
}

// Store manages moderation decisions in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a decision store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// HashContent returns the hex SHA-256 digest stored in place of raw
// content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Record inserts a moderation decision. Metadata is marshalled to JSONB;
// a nil map is stored as SQL NULL.
func (s *Store) Record(ctx context.Context, d *Decision) error {
	var metadataJSON []byte
	if len(d.Metadata) > 0 {
		var err error
		metadataJSON, err = json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("audit: marshal metadata: %w", err)
		}
	}

	const query = `
		INSERT INTO moderation_decisions (session_id, submission_id, content_hash, severity, action, explanation, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		d.SessionID,
		d.SubmissionID,
		d.ContentHash,
		d.Severity,
		d.Action,
		d.Explanation,
		metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// CountRecent returns the number of decisions with the given action
// recorded for a session within the time window. Useful for reviewing how
// often a session has been escalated recently.
func (s *Store) CountRecent(ctx context.Context, sessionID, action string, window time.Duration) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM moderation_decisions
		WHERE session_id = $1
		  AND action = $2
		  AND created_at >= NOW() - $3::interval`

	var count int
	err := s.db.QueryRowContext(ctx, query, sessionID, action, window.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("audit: count recent: %w", err)
	}
	return count, nil
}

// ListBySession returns the most recent decisions for a session, newest
// first, capped at limit.
func (s *Store) ListBySession(ctx context.Context, sessionID string, limit int) ([]Decision, error) {
	const query = `
		SELECT session_id, submission_id, content_hash, severity, action, explanation, COALESCE(metadata, 'null'::jsonb), created_at
		FROM moderation_decisions
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: list: %w", err)
	}
	defer rows.Close()

	var decisions []Decision
	for rows.Next() {
		var (
			d            Decision
			metadataJSON []byte
		)
		if err := rows.Scan(&d.SessionID, &d.SubmissionID, &d.ContentHash,
			&d.Severity, &d.Action, &d.Explanation, &metadataJSON, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &d.Metadata); err != nil {
				return nil, fmt.Errorf("audit: unmarshal metadata: %w", err)
			}
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}
