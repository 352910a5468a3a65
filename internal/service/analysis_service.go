package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prepforge/mockexam-backend/internal/llm"
	"github.com/prepforge/mockexam-backend/internal/model"
	"github.com/prepforge/mockexam-backend/internal/repository"
)

// Analysis service errors.
var (
	ErrAttemptNotScored = errors.New("analysis requires a submitted attempt")
	ErrAnalysisRunning  = errors.New("analysis already running for this test")
	ErrBadSection       = errors.New("section index out of range")
)

// questionAnalyzer is the slice of the AI client that analysis needs.
type questionAnalyzer interface {
	AnalyzeQuestions(ctx context.Context, questions []model.FlatQuestion) ([]model.QuestionAnalysis, error)
}

// AnalysisService produces post-exam AI explanations. Sections are analyzed
// concurrently and independently: one failed section is marked FAILED and
// can be retried while the others stay READY.
type AnalysisService struct {
	sessionRepo *repository.SessionRepository
	settings    *SettingService
	log         zerolog.Logger

	mu      sync.Mutex
	running map[uuid.UUID]bool

	// newClient is swappable for tests.
	newClient func(baseURL, apiKey, modelName string) questionAnalyzer
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(sessionRepo *repository.SessionRepository, settings *SettingService, log zerolog.Logger) *AnalysisService {
	s := &AnalysisService{
		sessionRepo: sessionRepo,
		settings:    settings,
		log:         log.With().Str("component", "analysis_service").Logger(),
		running:     make(map[uuid.UUID]bool),
	}
	s.newClient = func(baseURL, apiKey, modelName string) questionAnalyzer {
		return llm.New(baseURL, apiKey, modelName, s.log)
	}
	return s
}

// Analyze runs AI analysis and stores the result back into the session
// snapshot. With no filter it covers every section not already READY; with
// section indexes given it re-runs exactly those, READY or not. It blocks
// until all selected sections settle.
func (s *AnalysisService) Analyze(ctx context.Context, id uuid.UUID, sections ...int) (*model.TestSession, error) {
	s.mu.Lock()
	if s.running[id] {
		s.mu.Unlock()
		return nil, ErrAnalysisRunning
	}
	s.running[id] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.running, id)
		s.mu.Unlock()
	}()

	ts, err := s.sessionRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrTestNotFound
	}
	if err != nil {
		return nil, err
	}
	if ts.Status != model.SessionStatusCompleted {
		return nil, ErrAttemptNotScored
	}

	baseURL, apiKey, modelName, err := s.settings.AICredentials(ctx)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, ErrAINotConfigured
	}
	client := s.newClient(baseURL, apiKey, modelName)

	if ts.Analysis == nil {
		ts.Analysis = make(map[int]model.SectionAnalysis)
	}

	selected := make(map[int]bool, len(sections))
	for _, idx := range sections {
		if idx < 0 || idx >= len(ts.Sections) {
			return nil, ErrBadSection
		}
		selected[idx] = true
	}

	type result struct {
		section  int
		analysis model.SectionAnalysis
	}

	var wg sync.WaitGroup
	results := make(chan result, len(ts.Sections))

	for i := range ts.Sections {
		if len(selected) > 0 && !selected[i] {
			continue
		}
		if len(selected) == 0 && ts.Analysis[i].State == model.AnalysisReady {
			continue
		}
		ts.Analysis[i] = model.SectionAnalysis{State: model.AnalysisPending}

		wg.Add(1)
		go func(i int, section model.Section) {
			defer wg.Done()

			questions := section.Flatten()
			analyses, err := client.AnalyzeQuestions(ctx, questions)
			if err != nil {
				s.log.Error().Err(err).
					Str("session_id", id.String()).
					Int("section", i).
					Msg("section analysis failed")
				results <- result{i, model.SectionAnalysis{State: model.AnalysisFailed, Error: err.Error()}}
				return
			}
			results <- result{i, model.SectionAnalysis{State: model.AnalysisReady, Questions: analyses}}
		}(i, ts.Sections[i])
	}

	wg.Wait()
	close(results)
	for r := range results {
		ts.Analysis[r.section] = r.analysis
	}

	if err := s.sessionRepo.Upsert(ctx, ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// Get returns the stored analysis without triggering new AI calls.
func (s *AnalysisService) Get(ctx context.Context, id uuid.UUID) (map[int]model.SectionAnalysis, error) {
	ts, err := s.sessionRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrTestNotFound
	}
	if err != nil {
		return nil, err
	}
	if ts.Status != model.SessionStatusCompleted {
		return nil, ErrAttemptNotScored
	}
	return ts.Analysis, nil
}
