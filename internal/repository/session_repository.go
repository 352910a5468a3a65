package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepforge/mockexam-backend/internal/model"
)

// ErrSessionNotFound reports a session ID with no stored snapshot.
var ErrSessionNotFound = errors.New("test session not found")

// SessionRepository persists full test session snapshots. The session state
// machine lives in memory and Redis while an attempt is running; PostgreSQL
// holds the durable snapshot, one row per session.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Upsert stores a session snapshot, creating or replacing the row. Status,
// type and timestamps are promoted out of the snapshot for indexing.
func (r *SessionRepository) Upsert(ctx context.Context, ts *model.TestSession) error {
	snapshot, err := json.Marshal(ts)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO test_sessions (id, title, type, status, snapshot, created_at, finished_at, retest_of)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE
		 SET status = EXCLUDED.status,
		     snapshot = EXCLUDED.snapshot,
		     finished_at = EXCLUDED.finished_at,
		     updated_at = NOW()`,
		ts.ID, ts.Title, ts.Type, ts.Status, snapshot, ts.CreatedAt, ts.FinishedAt, ts.RetestOf,
	)
	return err
}

// GetByID loads a full session snapshot.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	var snapshot []byte
	err := r.pool.QueryRow(ctx,
		`SELECT snapshot FROM test_sessions WHERE id = $1`, id,
	).Scan(&snapshot)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	ts := &model.TestSession{}
	if err := json.Unmarshal(snapshot, ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// List returns session summaries newest first, derived from the stored
// snapshots so section and question counts come from the same source as
// everything else.
func (r *SessionRepository) List(ctx context.Context) ([]model.SessionSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT snapshot FROM test_sessions ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]model.SessionSummary, 0)
	for rows.Next() {
		var snapshot []byte
		if err := rows.Scan(&snapshot); err != nil {
			return nil, err
		}
		ts := &model.TestSession{}
		if err := json.Unmarshal(snapshot, ts); err != nil {
			return nil, err
		}
		summaries = append(summaries, ts.Summary())
	}
	return summaries, rows.Err()
}

// Delete removes a session snapshot.
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM test_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// UpsertBatch stores many snapshots in one round trip using UNNEST. Used by
// the snapshot worker; falls back to per-row Upsert on failure at the caller.
func (r *SessionRepository) UpsertBatch(ctx context.Context, sessions []*model.TestSession) error {
	n := len(sessions)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, n)
	titles := make([]string, 0, n)
	types := make([]string, 0, n)
	statuses := make([]string, 0, n)
	snapshots := make([][]byte, 0, n)
	createdAts := make([]time.Time, 0, n)
	finishedAts := make([]*time.Time, 0, n)
	retestOfs := make([]*uuid.UUID, 0, n)

	for _, ts := range sessions {
		snapshot, err := json.Marshal(ts)
		if err != nil {
			return err
		}
		ids = append(ids, ts.ID)
		titles = append(titles, ts.Title)
		types = append(types, string(ts.Type))
		statuses = append(statuses, string(ts.Status))
		snapshots = append(snapshots, snapshot)
		createdAts = append(createdAts, ts.CreatedAt)
		finishedAts = append(finishedAts, ts.FinishedAt)
		retestOfs = append(retestOfs, ts.RetestOf)
	}

	query := `
		INSERT INTO test_sessions (id, title, type, status, snapshot, created_at, finished_at, retest_of)
		SELECT u.id, u.title, u.type, u.status, u.snapshot, u.created_at, u.finished_at, u.retest_of
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::text[],
			$4::text[],
			$5::jsonb[],
			$6::timestamptz[],
			$7::timestamptz[],
			$8::uuid[]
		) AS u (id, title, type, status, snapshot, created_at, finished_at, retest_of)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    snapshot = EXCLUDED.snapshot,
		    finished_at = EXCLUDED.finished_at,
		    updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query, ids, titles, types, statuses, snapshots, createdAts, finishedAts, retestOfs)
	return err
}
