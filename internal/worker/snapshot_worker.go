package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepforge/mockexam-backend/internal/config"
	"github.com/prepforge/mockexam-backend/internal/model"
	"github.com/prepforge/mockexam-backend/internal/repository"
)

const (
	SnapshotBatchSize    = 50
	SnapshotBatchTimeout = 2 * time.Second
	SnapshotPollTimeout  = 1 * time.Second
)

// SnapshotWorker consumes persist_snapshots_queue and UPSERTs full session
// snapshots to PostgreSQL. Attempt mutations never wait on the database;
// they enqueue here and this worker absorbs the write load in batches.
type SnapshotWorker struct {
	repo *repository.SessionRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewSnapshotWorker creates a new SnapshotWorker.
func NewSnapshotWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *SnapshotWorker {
	return &SnapshotWorker{
		repo: repository.NewSessionRepository(pool),
		rdb:  rdb,
		log:  log.With().Str("component", "snapshot_worker").Logger(),
	}
}

// Start begins the worker loop with batching. Call in a goroutine; the loop
// drains the queue before returning when ctx is cancelled.
func (w *SnapshotWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SnapshotWorker started")

	batch := make([]*model.TestSession, 0, SnapshotBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= SnapshotBatchSize || time.Since(lastFlush) >= SnapshotBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			w.drain(context.Background())
			w.log.Info().Msg("SnapshotWorker stopped")
			return

		default:
			item, err := w.rdb.BLPop(ctx, SnapshotPollTimeout, config.WorkerKey.PersistSnapshotsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			ts := &model.TestSession{}
			if err := json.Unmarshal([]byte(item[1]), ts); err != nil {
				w.log.Error().Err(err).Msg("Invalid snapshot payload")
				continue
			}

			batch = append(batch, ts)
		}
	}
}

// flushSafe writes a batch with UNNEST; on failure it falls back to per-row
// upserts and requeues only the rows that still fail.
func (w *SnapshotWorker) flushSafe(ctx context.Context, batch []*model.TestSession) {
	if len(batch) == 0 {
		return
	}

	// Later queue entries supersede earlier ones for the same session;
	// collapse so the batch carries one row per session.
	batch = dedupeLatest(batch)

	err := w.repo.UpsertBatch(ctx, batch)
	if err == nil {
		return
	}
	w.log.Warn().Err(err).Msg("bulk snapshot upsert failed, using fallback")

	for _, ts := range batch {
		if err := w.repo.Upsert(ctx, ts); err != nil {
			w.log.Error().Err(err).
				Str("session_id", ts.ID.String()).
				Msg("single upsert failed — requeueing")
			raw, _ := json.Marshal(ts)
			w.rdb.RPush(ctx, config.WorkerKey.PersistSnapshotsQueue, raw)
		}
	}
}

// drain processes everything left in the queue before shutdown.
func (w *SnapshotWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.rdb.LPop(ctx, config.WorkerKey.PersistSnapshotsQueue).Result()
		if err != nil {
			break
		}

		ts := &model.TestSession{}
		if err := json.Unmarshal([]byte(raw), ts); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.repo.Upsert(ctx, ts); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistSnapshotsQueue, raw)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining snapshots")
	}
}

// dedupeLatest keeps the last occurrence of each session ID, preserving the
// relative order of the survivors.
func dedupeLatest(batch []*model.TestSession) []*model.TestSession {
	last := make(map[string]int, len(batch))
	for i, ts := range batch {
		last[ts.ID.String()] = i
	}

	out := batch[:0]
	for i, ts := range batch {
		if last[ts.ID.String()] == i {
			out = append(out, ts)
		}
	}
	return out
}
