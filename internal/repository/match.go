package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MatchRecord is one finished match as stored in the database.
type MatchRecord struct {
	MatchID    string
	WinnerIDs  []string
	Tie        bool
	Scores     map[string]int
	Turns      int
	Checksum   string
	FinishedAt time.Time
}

// MatchRepository stores finished match results.
type MatchRepository struct {
	db *DB
}

// NewMatchRepository creates the repository.
func NewMatchRepository(db *DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// EnsureSchema creates the results table when it does not exist yet.
func (r *MatchRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS match_results (
			match_id    TEXT PRIMARY KEY,
			winner_ids  TEXT[] NOT NULL,
			tie         BOOLEAN NOT NULL,
			scores      JSONB NOT NULL,
			turns       INTEGER NOT NULL,
			checksum    TEXT NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure match_results schema: %w", err)
	}
	return nil
}

// Save upserts one match result.
func (r *MatchRepository) Save(ctx context.Context, record MatchRecord) error {
	scores, err := json.Marshal(record.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	_, err = r.db.pool.Exec(ctx, `
		INSERT INTO match_results (match_id, winner_ids, tie, scores, turns, checksum, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (match_id) DO UPDATE SET
			winner_ids = EXCLUDED.winner_ids,
			tie = EXCLUDED.tie,
			scores = EXCLUDED.scores,
			turns = EXCLUDED.turns,
			checksum = EXCLUDED.checksum,
			finished_at = EXCLUDED.finished_at`,
		record.MatchID, record.WinnerIDs, record.Tie, scores,
		record.Turns, record.Checksum, record.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to save match result %s: %w", record.MatchID, err)
	}

	if r.db.logger != nil {
		r.db.logger.Info("match result saved",
			zap.String("match_id", record.MatchID),
			zap.Strings("winner_ids", record.WinnerIDs),
			zap.Int("turns", record.Turns),
		)
	}
	return nil
}

// Get loads one match result by id.
func (r *MatchRepository) Get(ctx context.Context, matchID string) (*MatchRecord, error) {
	var record MatchRecord
	var scores []byte
	err := r.db.pool.QueryRow(ctx, `
		SELECT match_id, winner_ids, tie, scores, turns, checksum, finished_at
		FROM match_results WHERE match_id = $1`, matchID).
		Scan(&record.MatchID, &record.WinnerIDs, &record.Tie, &scores,
			&record.Turns, &record.Checksum, &record.FinishedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load match result %s: %w", matchID, err)
	}
	if err := json.Unmarshal(scores, &record.Scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scores for %s: %w", matchID, err)
	}
	return &record, nil
}
