package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prepforge/mockexam-backend/internal/exam"
	"github.com/prepforge/mockexam-backend/internal/llm"
	"github.com/prepforge/mockexam-backend/internal/model"
	"github.com/prepforge/mockexam-backend/internal/repository"
)

// Exam service errors.
var (
	ErrAINotConfigured  = errors.New("no AI API key configured")
	ErrGenerationFailed = errors.New("test generation failed")
	ErrTestNotFound     = errors.New("test not found")
)

// ExamService creates and reads mock tests. Generation is all-or-nothing:
// sections are generated concurrently and the first failure discards
// everything, so a half-built test is never stored.
type ExamService struct {
	sessionRepo *repository.SessionRepository
	settings    *SettingService
	log         zerolog.Logger

	// newClient is swappable for tests.
	newClient func(baseURL, apiKey, modelName string) sectionGenerator
}

// sectionGenerator is the slice of the AI client that generation needs.
type sectionGenerator interface {
	GenerateSection(ctx context.Context, spec model.SectionSpec, sourceText string) (model.Section, error)
}

// NewExamService creates a new ExamService.
func NewExamService(sessionRepo *repository.SessionRepository, settings *SettingService, log zerolog.Logger) *ExamService {
	s := &ExamService{
		sessionRepo: sessionRepo,
		settings:    settings,
		log:         log.With().Str("component", "exam_service").Logger(),
	}
	s.newClient = func(baseURL, apiKey, modelName string) sectionGenerator {
		return llm.New(baseURL, apiKey, modelName, s.log)
	}
	return s
}

// Generate builds a full test from source material, one AI call per section
// running concurrently. On any failure no test is created.
func (s *ExamService) Generate(ctx context.Context, req *model.GenerateTestRequest) (*model.TestSession, error) {
	baseURL, apiKey, modelName, err := s.settings.AICredentials(ctx)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, ErrAINotConfigured
	}

	client := s.newClient(baseURL, apiKey, modelName)

	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sections := make([]model.Section, len(req.Sections))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for i, spec := range req.Sections {
		wg.Add(1)
		go func(i int, spec model.SectionSpec) {
			defer wg.Done()

			section, err := client.GenerateSection(genCtx, spec, req.SourceText)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
					cancel() // Abort the remaining sections.
				}
				return
			}
			sections[i] = section
		}(i, spec)
	}
	wg.Wait()

	if firstErr != nil {
		s.log.Error().Err(firstErr).Str("title", req.Title).Msg("generation failed, discarding test")
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, firstErr)
	}

	session := exam.NewSession(req.Title, req.Type, sections)
	if err := s.sessionRepo.Upsert(ctx, session); err != nil {
		return nil, fmt.Errorf("store test: %w", err)
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Int("sections", len(sections)).
		Msg("test generated")
	return session, nil
}

// List returns summaries of all stored tests, newest first.
func (s *ExamService) List(ctx context.Context) ([]model.SessionSummary, error) {
	return s.sessionRepo.List(ctx)
}

// Get loads a full test session snapshot.
func (s *ExamService) Get(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrTestNotFound
	}
	return session, err
}

// Retest creates a fresh attempt over an existing test's question set. The
// original attempt is left untouched.
func (s *ExamService) Retest(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	original, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	clone := exam.Reattempt(original)
	if err := s.sessionRepo.Upsert(ctx, clone); err != nil {
		return nil, fmt.Errorf("store retest: %w", err)
	}

	s.log.Info().
		Str("session_id", clone.ID.String()).
		Str("retest_of", id.String()).
		Msg("retest created")
	return clone, nil
}

// Delete removes a stored test.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.sessionRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return ErrTestNotFound
	}
	return err
}
