package model

import (
	"time"

	"github.com/google/uuid"
)

// TestType distinguishes the two exam flavours. The penalty rule depends on it:
// full (combined multi-section) tests apply negative marking, sectional tests
// do not.
type TestType string

const (
	TestTypeFull      TestType = "FULL"
	TestTypeSectional TestType = "SECTIONAL"
)

// SessionStatus enumerates the one-way lifecycle of a test attempt.
type SessionStatus string

const (
	SessionStatusNotStarted SessionStatus = "NOT_STARTED"
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// AnswerStatus tracks a question's palette state independent of navigation.
type AnswerStatus string

const (
	AnswerStatusNotAnswered AnswerStatus = "NOT_ANSWERED"
	AnswerStatusAnswered    AnswerStatus = "ANSWERED"
	AnswerStatusMarked      AnswerStatus = "MARKED"
)

// Answer holds the recorded value and palette status for one question.
// An empty value with status NOT_ANSWERED means unattempted.
type Answer struct {
	Value  string       `json:"value,omitempty"`
	Status AnswerStatus `json:"status"`
}

// AnswerMap maps sectionIndex -> questionIndex -> Answer.
type AnswerMap map[int]map[int]Answer

// FinalScore is the scoring engine output stored on a completed session.
type FinalScore struct {
	TotalMarks     int `json:"total_marks"`
	CorrectCount   int `json:"correct_count"`
	IncorrectCount int `json:"incorrect_count"`
	AttemptedCount int `json:"attempted_count"`
}

// PendingKind names the dangerous action awaiting user confirmation.
type PendingKind string

const (
	PendingNone          PendingKind = ""
	PendingSwitchSection PendingKind = "SWITCH_SECTION"
	PendingSubmit        PendingKind = "SUBMIT"
)

// PendingAction models a blocking, cancelable confirmation step as explicit
// state instead of UI control flow.
type PendingAction struct {
	Kind   PendingKind `json:"kind"`
	Target int         `json:"target,omitempty"` // Section index for SWITCH_SECTION.
}

// AnalysisState tracks one section's asynchronous AI analysis independently,
// so a slow or failing section never blocks the others.
type AnalysisState string

const (
	AnalysisPending AnalysisState = "PENDING"
	AnalysisReady   AnalysisState = "READY"
	AnalysisFailed  AnalysisState = "FAILED"
)

// QuestionAnalysis is the AI explanation and difficulty for one question.
type QuestionAnalysis struct {
	Explanation string `json:"explanation"`
	Difficulty  string `json:"difficulty"`
}

// SectionAnalysis is the per-section analysis result with its load state.
type SectionAnalysis struct {
	State     AnalysisState      `json:"state"`
	Error     string             `json:"error,omitempty"`
	Questions []QuestionAnalysis `json:"questions,omitempty"`
}

// TestSession is the aggregate persisted entity for one attempt.
// Sections are fixed after generation; everything else mutates during the
// attempt and freezes once Status is COMPLETED.
type TestSession struct {
	ID               uuid.UUID               `json:"id"`
	Title            string                  `json:"title"`
	Type             TestType                `json:"type"`
	Sections         []Section               `json:"sections"`
	Answers          AnswerMap               `json:"answers"`
	RemainingSeconds map[int]int             `json:"remaining_seconds"`
	ActiveSection    int                     `json:"active_section"`
	LockedSections   map[int]bool            `json:"locked_sections"`
	Status           SessionStatus           `json:"status"`
	FinalScore       *FinalScore             `json:"final_score,omitempty"`
	Analysis         map[int]SectionAnalysis `json:"analysis,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	FinishedAt       *time.Time              `json:"finished_at,omitempty"`
	RetestOf         *uuid.UUID              `json:"retest_of,omitempty"`
}

// SessionSummary is the dashboard listing row.
type SessionSummary struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Type          TestType      `json:"type"`
	Status        SessionStatus `json:"status"`
	SectionCount  int           `json:"section_count"`
	QuestionCount int           `json:"question_count"`
	FinalScore    *FinalScore   `json:"final_score,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	FinishedAt    *time.Time    `json:"finished_at,omitempty"`
	RetestOf      *uuid.UUID    `json:"retest_of,omitempty"`
}

// Summary derives the listing row from a full session.
func (ts *TestSession) Summary() SessionSummary {
	total := 0
	for i := range ts.Sections {
		total += ts.Sections[i].QuestionCount()
	}
	return SessionSummary{
		ID:            ts.ID,
		Title:         ts.Title,
		Type:          ts.Type,
		Status:        ts.Status,
		SectionCount:  len(ts.Sections),
		QuestionCount: total,
		FinalScore:    ts.FinalScore,
		CreatedAt:     ts.CreatedAt,
		FinishedAt:    ts.FinishedAt,
		RetestOf:      ts.RetestOf,
	}
}
