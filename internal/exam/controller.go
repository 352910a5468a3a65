package exam

import (
	"errors"
	"sync"
	"time"

	"github.com/prepforge/mockexam-backend/internal/model"
)

// Errors returned by controller operations. All leave the session unchanged.
var (
	ErrNotInProgress = errors.New("session is not in progress")
	ErrCompleted     = errors.New("session is already completed")
	ErrSectionLocked = errors.New("section is locked")
	ErrSameSection   = errors.New("section is already active")
	ErrBadIndex      = errors.New("index out of range")
	ErrNoPending     = errors.New("no action awaiting confirmation")
)

// EventKind enumerates transitions pushed to live subscribers.
type EventKind string

const (
	EventTick            EventKind = "tick"
	EventSectionLocked   EventKind = "section_locked"
	EventSectionSwitched EventKind = "section_switched"
	EventCompleted       EventKind = "completed"
)

// Event describes one observable session transition.
type Event struct {
	Kind             EventKind         `json:"kind"`
	Section          int               `json:"section"`
	RemainingSeconds int               `json:"remaining_seconds,omitempty"`
	Score            *model.FinalScore `json:"score,omitempty"`
}

// SnapshotSink receives the session after every mutation. Implementations
// must not retain the pointer past the call and must never fail the caller:
// a persistence error is the sink's problem, the in-memory attempt continues.
type SnapshotSink interface {
	SaveSnapshot(s *model.TestSession)
}

// View is a read-only copy of the controller state for API responses.
type View struct {
	Session model.TestSession   `json:"session"`
	Cursor  int                 `json:"cursor"`
	Pending model.PendingAction `json:"pending"`
}

// Controller drives one attempt through its lifecycle: navigation, answer
// recording, section locking, timers and submission. All entry points take
// the controller lock, so a tick that crosses zero performs locking and
// section-advance (or auto-submit) as one atomic unit — no other operation
// can observe the intermediate state.
type Controller struct {
	// mu guards every field below. Entry points never block on IO while
	// holding it; the sink is expected to hand off, not to wait.
	mu      sync.Mutex
	s       *model.TestSession
	cursor  int
	pending model.PendingAction
	sink    SnapshotSink
	onEvent func(Event)
}

// NewController wraps an existing session (fresh or resumed from a snapshot).
func NewController(s *model.TestSession, sink SnapshotSink) *Controller {
	return &Controller{s: s, sink: sink}
}

// OnEvent registers a transition observer. Not synchronized: register it
// before the tick loop starts feeding the controller.
func (c *Controller) OnEvent(fn func(Event)) {
	c.onEvent = fn
}

// Start moves NOT_STARTED to IN_PROGRESS. Resuming an IN_PROGRESS session is
// a no-op; a completed session cannot be restarted.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.s.Status {
	case model.SessionStatusCompleted:
		return ErrCompleted
	case model.SessionStatusInProgress:
		return nil
	}
	c.s.Status = model.SessionStatusInProgress
	c.persist()
	return nil
}

// State returns a copy of the current session, cursor and pending action.
func (c *Controller) State() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{Session: c.s.Clone(), Cursor: c.cursor, Pending: c.pending}
}

// Completed reports whether the session has reached its terminal state.
func (c *Controller) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.Status == model.SessionStatusCompleted
}

// Navigate moves the cursor within the active section. It never touches
// locking or timers.
func (c *Controller) Navigate(question int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireInProgress(); err != nil {
		return err
	}
	if question < 0 || question >= c.activeCount() {
		return ErrBadIndex
	}
	c.cursor = question
	return nil
}

// SetAnswer records a value for the question under the cursor, applying the
// ledger's status transition rules.
func (c *Controller) SetAnswer(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireInProgress(); err != nil {
		return err
	}
	c.ledger().Set(c.s.ActiveSection, c.cursor, value)
	c.persist()
	return nil
}

// SaveAndNext promotes the current question to ANSWERED if it holds a value,
// then advances the cursor. At the last question of a section it is a no-op
// on the cursor: crossing into another section requires an explicit switch
// or submission.
func (c *Controller) SaveAndNext() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireInProgress(); err != nil {
		return err
	}
	c.ledger().Promote(c.s.ActiveSection, c.cursor)
	if c.cursor < c.activeCount()-1 {
		c.cursor++
	}
	c.persist()
	return nil
}

// MarkForReview marks the current question (preserving its value) and
// advances to the next question if one exists.
func (c *Controller) MarkForReview() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireInProgress(); err != nil {
		return err
	}
	c.ledger().Mark(c.s.ActiveSection, c.cursor)
	if c.cursor < c.activeCount()-1 {
		c.cursor++
	}
	c.persist()
	return nil
}

// ClearResponse resets the current question to absent / NOT_ANSWERED.
func (c *Controller) ClearResponse() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireInProgress(); err != nil {
		return err
	}
	c.ledger().Clear(c.s.ActiveSection, c.cursor)
	c.persist()
	return nil
}

// RequestSwitch asks to move to another section. Leaving a section is
// irreversible, so while the current section still has time on the clock the
// switch parks as a pending action awaiting confirmation. With the clock at
// zero the section is effectively expired and the switch happens immediately.
func (c *Controller) RequestSwitch(target int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireInProgress(); err != nil {
		return err
	}
	if target < 0 || target >= len(c.s.Sections) {
		return ErrBadIndex
	}
	if target == c.s.ActiveSection {
		return ErrSameSection
	}
	if c.s.LockedSections[target] {
		return ErrSectionLocked
	}

	if c.s.RemainingSeconds[c.s.ActiveSection] > 0 {
		c.pending = model.PendingAction{Kind: model.PendingSwitchSection, Target: target}
		return nil
	}
	c.switchTo(target)
	return nil
}

// RequestSubmit parks a manual submission behind its own confirmation step.
func (c *Controller) RequestSubmit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireInProgress(); err != nil {
		return err
	}
	c.pending = model.PendingAction{Kind: model.PendingSubmit}
	return nil
}

// Confirm resolves the pending action. A confirmation that raced a timeout
// finds the session completed (or the pending action discarded) and reports
// that instead of double-submitting.
func (c *Controller) Confirm() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.s.Status == model.SessionStatusCompleted {
		return ErrCompleted
	}
	switch c.pending.Kind {
	case model.PendingSwitchSection:
		target := c.pending.Target
		c.pending = model.PendingAction{}
		if c.s.LockedSections[target] {
			return ErrSectionLocked
		}
		c.switchTo(target)
		return nil
	case model.PendingSubmit:
		c.pending = model.PendingAction{}
		c.finalize()
		return nil
	default:
		return ErrNoPending
	}
}

// Cancel discards the pending action with no side effects.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = model.PendingAction{}
}

// switchTo locks the active section and activates target. Caller holds mu.
func (c *Controller) switchTo(target int) {
	c.s.LockedSections[c.s.ActiveSection] = true
	c.emit(Event{Kind: EventSectionLocked, Section: c.s.ActiveSection})
	c.s.ActiveSection = target
	c.cursor = 0
	c.emit(Event{Kind: EventSectionSwitched, Section: target})
	c.persist()
}

// finalize scores the ledger, locks every section and completes the session.
// Caller holds mu. Shared by manual and automatic submission.
func (c *Controller) finalize() {
	score := Score(c.s.Sections, c.s.Answers, c.s.Type)
	c.s.FinalScore = &score
	for i := range c.s.Sections {
		c.s.LockedSections[i] = true
	}
	c.s.Status = model.SessionStatusCompleted
	now := time.Now()
	c.s.FinishedAt = &now
	c.pending = model.PendingAction{}
	c.persist()
	c.emit(Event{Kind: EventCompleted, Section: c.s.ActiveSection, Score: &score})
}

func (c *Controller) requireInProgress() error {
	if c.s.Status == model.SessionStatusCompleted {
		return ErrCompleted
	}
	if c.s.Status != model.SessionStatusInProgress {
		return ErrNotInProgress
	}
	return nil
}

func (c *Controller) ledger() Ledger {
	return LedgerFor(c.s.Answers)
}

func (c *Controller) activeCount() int {
	return c.s.Sections[c.s.ActiveSection].QuestionCount()
}

func (c *Controller) persist() {
	if c.sink != nil {
		c.sink.SaveSnapshot(c.s)
	}
}

func (c *Controller) emit(ev Event) {
	if c.onEvent != nil {
		c.onEvent(ev)
	}
}
