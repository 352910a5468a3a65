package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepforge/mockexam-backend/internal/config"
	"github.com/prepforge/mockexam-backend/internal/exam"
	"github.com/prepforge/mockexam-backend/internal/model"
	"github.com/prepforge/mockexam-backend/internal/repository"
)

// hotStateTTL bounds how long abandoned attempt state lingers in Redis.
const hotStateTTL = 48 * time.Hour

// AttemptService owns the live attempt runtimes. Each running attempt has
// one controller, one tick loop and a set of event subscribers; everything
// else in the process talks to the attempt through this registry.
type AttemptService struct {
	cfg         *config.Config
	rdb         *redis.Client
	sessionRepo *repository.SessionRepository
	log         zerolog.Logger

	mu       sync.Mutex
	runtimes map[uuid.UUID]*attemptRuntime
}

// attemptRuntime is one live attempt: its controller plus subscriber fan-out.
type attemptRuntime struct {
	id  uuid.UUID
	ctl *exam.Controller

	subMu sync.Mutex
	subs  map[chan exam.Event]struct{}

	clockOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(cfg *config.Config, rdb *redis.Client, sessionRepo *repository.SessionRepository, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		cfg:         cfg,
		rdb:         rdb,
		sessionRepo: sessionRepo,
		log:         log.With().Str("component", "attempt_service").Logger(),
		runtimes:    make(map[uuid.UUID]*attemptRuntime),
	}
}

// redisSink pushes every snapshot into the hot state key and the persist
// queue. Marshaling happens on the caller's goroutine so the session pointer
// is never retained; the Redis round trips happen off it.
type redisSink struct {
	rdb *redis.Client
	id  uuid.UUID
	log zerolog.Logger
}

func (s *redisSink) SaveSnapshot(ts *model.TestSession) {
	payload, err := json.Marshal(ts)
	if err != nil {
		s.log.Error().Err(err).Msg("snapshot marshal failed")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		pipe := s.rdb.Pipeline()
		pipe.Set(ctx, config.CacheKey.SessionStateKey(s.id.String()), payload, hotStateTTL)
		pipe.RPush(ctx, config.WorkerKey.PersistSnapshotsQueue, payload)
		if _, err := pipe.Exec(ctx); err != nil {
			s.log.Error().Err(err).Str("session_id", s.id.String()).Msg("snapshot handoff failed")
		}
	}()
}

// Runtime returns the live runtime for a session, creating it on first use.
// State comes from the Redis hot copy when present, otherwise from the
// durable PostgreSQL snapshot, with the timer flush overlay applied so a
// process restart costs at most one flush interval of countdown.
func (s *AttemptService) Runtime(ctx context.Context, id uuid.UUID) (*attemptRuntime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rt, ok := s.runtimes[id]; ok {
		return rt, nil
	}

	ts, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	s.overlayTimers(ctx, ts)

	sink := &redisSink{rdb: s.rdb, id: id, log: s.log}
	rt := &attemptRuntime{
		id:   id,
		ctl:  exam.NewController(ts, sink),
		subs: make(map[chan exam.Event]struct{}),
		stop: make(chan struct{}),
	}
	rt.ctl.OnEvent(rt.fanOut)

	s.runtimes[id] = rt

	// A restart mid-attempt leaves the session IN_PROGRESS with no clock.
	if ts.Status == model.SessionStatusInProgress {
		rt.clockOnce.Do(func() { go s.runClock(rt) })
	}
	return rt, nil
}

func (s *AttemptService) loadSession(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.SessionStateKey(id.String())).Bytes()
	if err == nil {
		ts := &model.TestSession{}
		if err := json.Unmarshal(raw, ts); err == nil {
			return ts, nil
		}
		s.log.Warn().Str("session_id", id.String()).Msg("hot state unreadable, falling back to snapshot")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("hot state read failed, falling back to snapshot")
	}

	ts, err := s.sessionRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrTestNotFound
	}
	return ts, err
}

// overlayTimers applies the periodic timer flush on top of a loaded session.
// Snapshots are written on transitions only, so the flush is the fresher
// countdown source after a restart.
func (s *AttemptService) overlayTimers(ctx context.Context, ts *model.TestSession) {
	if ts.Status != model.SessionStatusInProgress {
		return
	}
	raw, err := s.rdb.Get(ctx, config.CacheKey.SessionTimersKey(ts.ID.String())).Bytes()
	if err != nil {
		return
	}
	var timers map[int]int
	if err := json.Unmarshal(raw, &timers); err != nil {
		return
	}
	for idx, remaining := range timers {
		if current, ok := ts.RemainingSeconds[idx]; ok && remaining < current {
			ts.RemainingSeconds[idx] = remaining
		}
	}
}

// Start begins (or resumes) an attempt and its tick loop.
func (s *AttemptService) Start(ctx context.Context, id uuid.UUID) (exam.View, error) {
	rt, err := s.Runtime(ctx, id)
	if err != nil {
		return exam.View{}, err
	}

	if err := rt.ctl.Start(); err != nil {
		return exam.View{}, err
	}
	rt.clockOnce.Do(func() { go s.runClock(rt) })

	return rt.ctl.State(), nil
}

// runClock drives one attempt's countdown: a tick every second and a timer
// flush to Redis every flush interval. It exits when the attempt completes
// or the service shuts down.
func (s *AttemptService) runClock(rt *attemptRuntime) {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	flush := time.NewTicker(s.cfg.TimerFlushInterval)
	defer flush.Stop()

	for {
		select {
		case <-rt.stop:
			return
		case <-tick.C:
			rt.ctl.Tick()
			if rt.ctl.Completed() {
				s.flushTimers(rt)
				s.release(rt)
				return
			}
		case <-flush.C:
			s.flushTimers(rt)
		}
	}
}

func (s *AttemptService) flushTimers(rt *attemptRuntime) {
	payload, err := json.Marshal(rt.ctl.RemainingSnapshot())
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.rdb.Set(ctx, config.CacheKey.SessionTimersKey(rt.id.String()), payload, hotStateTTL).Err(); err != nil {
		s.log.Error().Err(err).Str("session_id", rt.id.String()).Msg("timer flush failed")
	}
}

// release drops a finished runtime from the registry and closes subscribers.
func (s *AttemptService) release(rt *attemptRuntime) {
	s.mu.Lock()
	delete(s.runtimes, rt.id)
	s.mu.Unlock()

	rt.stopOnce.Do(func() { close(rt.stop) })

	rt.subMu.Lock()
	for ch := range rt.subs {
		close(ch)
		delete(rt.subs, ch)
	}
	rt.subMu.Unlock()
}

// Shutdown stops every clock loop and flushes timers so a restart resumes
// with current countdowns.
func (s *AttemptService) Shutdown() {
	s.mu.Lock()
	runtimes := make([]*attemptRuntime, 0, len(s.runtimes))
	for _, rt := range s.runtimes {
		runtimes = append(runtimes, rt)
	}
	s.mu.Unlock()

	for _, rt := range runtimes {
		s.flushTimers(rt)
		s.release(rt)
	}
}

// State returns the current view without mutating anything.
func (s *AttemptService) State(ctx context.Context, id uuid.UUID) (exam.View, error) {
	rt, err := s.Runtime(ctx, id)
	if err != nil {
		return exam.View{}, err
	}
	return rt.ctl.State(), nil
}

// Export returns the full session snapshot as indented JSON for download.
func (s *AttemptService) Export(ctx context.Context, id uuid.UUID) ([]byte, error) {
	rt, err := s.liveRuntime(id)
	if err == nil {
		view := rt.ctl.State()
		return json.MarshalIndent(view.Session, "", "  ")
	}

	ts, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(ts, "", "  ")
}

func (s *AttemptService) liveRuntime(id uuid.UUID) (*attemptRuntime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rt, ok := s.runtimes[id]; ok {
		return rt, nil
	}
	return nil, errors.New("no live runtime")
}

// Controller exposes the runtime's controller for action dispatch.
func (rt *attemptRuntime) Controller() *exam.Controller {
	return rt.ctl
}

// Subscribe registers a live event channel. The channel is buffered; slow
// subscribers lose events rather than stalling the controller.
func (rt *attemptRuntime) Subscribe() chan exam.Event {
	ch := make(chan exam.Event, 64)
	rt.subMu.Lock()
	rt.subs[ch] = struct{}{}
	rt.subMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (rt *attemptRuntime) Unsubscribe(ch chan exam.Event) {
	rt.subMu.Lock()
	if _, ok := rt.subs[ch]; ok {
		delete(rt.subs, ch)
		close(ch)
	}
	rt.subMu.Unlock()
}

func (rt *attemptRuntime) fanOut(ev exam.Event) {
	rt.subMu.Lock()
	defer rt.subMu.Unlock()
	for ch := range rt.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
