package exam

import (
	"time"

	"github.com/google/uuid"
	"github.com/prepforge/mockexam-backend/internal/model"
)

// NewSession creates a fresh NOT_STARTED attempt over a generated section
// bank: all answers absent, every timer seeded from its section's limit,
// no locks.
func NewSession(title string, typ model.TestType, sections []model.Section) *model.TestSession {
	remaining := make(map[int]int, len(sections))
	for i := range sections {
		remaining[i] = sections[i].TimeLimitMinutes * 60
	}
	return &model.TestSession{
		ID:               uuid.New(),
		Title:            title,
		Type:             typ,
		Sections:         sections,
		Answers:          SeedAnswers(sections),
		RemainingSeconds: remaining,
		ActiveSection:    0,
		LockedSections:   make(map[int]bool),
		Status:           model.SessionStatusNotStarted,
		CreatedAt:        time.Now(),
	}
}

// Reattempt builds a brand-new session over the original's question bank.
// The original is not touched; only the sections are shared.
func Reattempt(orig *model.TestSession) *model.TestSession {
	s := NewSession(orig.Title, orig.Type, orig.Sections)
	id := orig.ID
	s.RetestOf = &id
	return s
}
