package exam

import (
	"testing"

	"github.com/prepforge/mockexam-backend/internal/model"
)

// memSink counts snapshot handoffs.
type memSink struct {
	saves int
	last  model.TestSession
}

func (m *memSink) SaveSnapshot(s *model.TestSession) {
	m.saves++
	m.last = s.Clone()
}

func twoSectionSession(minutes ...int) *model.TestSession {
	sections := make([]model.Section, len(minutes))
	for i, min := range minutes {
		sections[i] = model.Section{
			Name:             "S" + string(rune('A'+i)),
			TimeLimitMinutes: min,
			Items:            []model.SectionItem{mcq("q1", "A"), mcq("q2", "B")},
		}
	}
	return NewSession("mock", model.TestTypeFull, sections)
}

func startedController(t *testing.T, s *model.TestSession) (*Controller, *memSink) {
	t.Helper()
	sink := &memSink{}
	c := NewController(s, sink)
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return c, sink
}

func TestNewSessionSeeding(t *testing.T) {
	s := twoSectionSession(2, 3)

	if s.Status != model.SessionStatusNotStarted {
		t.Errorf("expected NOT_STARTED, got %v", s.Status)
	}
	if s.RemainingSeconds[0] != 120 || s.RemainingSeconds[1] != 180 {
		t.Errorf("timers not seeded from section limits: %v", s.RemainingSeconds)
	}
	if len(s.LockedSections) != 0 {
		t.Errorf("expected no locks, got %v", s.LockedSections)
	}
	if len(s.Answers) != 2 || len(s.Answers[0]) != 2 {
		t.Errorf("answers not seeded per section: %v", s.Answers)
	}
}

func TestTickDecrementsOnlyActiveSection(t *testing.T) {
	c, _ := startedController(t, twoSectionSession(2, 2))

	for i := 0; i < 5; i++ {
		c.Tick()
	}

	v := c.State()
	if got := v.Session.RemainingSeconds[0]; got != 115 {
		t.Errorf("active section: expected 115s, got %d", got)
	}
	if got := v.Session.RemainingSeconds[1]; got != 120 {
		t.Errorf("inactive section must stay frozen, got %d", got)
	}
}

func TestExpiryLocksOnceAndAdvances(t *testing.T) {
	c, _ := startedController(t, twoSectionSession(1, 1))

	lockEvents := 0
	c.OnEvent(func(ev Event) {
		if ev.Kind == EventSectionLocked && ev.Section == 0 {
			lockEvents++
		}
	})

	for i := 0; i < 60; i++ {
		c.Tick()
	}

	v := c.State()
	if !v.Session.LockedSections[0] {
		t.Fatal("expired section not locked")
	}
	if lockEvents != 1 {
		t.Errorf("section locked %d times, want exactly once", lockEvents)
	}
	if v.Session.ActiveSection != 1 {
		t.Errorf("expected advance to section 1, got %d", v.Session.ActiveSection)
	}
	if v.Cursor != 0 {
		t.Errorf("cursor should reset to first question, got %d", v.Cursor)
	}
	if v.Session.Status != model.SessionStatusInProgress {
		t.Errorf("session should still be in progress, got %v", v.Session.Status)
	}

	// Extra ticks only drain the new active section.
	c.Tick()
	v = c.State()
	if v.Session.RemainingSeconds[0] != 0 || v.Session.RemainingSeconds[1] != 59 {
		t.Errorf("unexpected timers after advance: %v", v.Session.RemainingSeconds)
	}
}

func TestSingleSectionTimeoutAutoSubmits(t *testing.T) {
	// One section, 1 minute, no user action: after 60 ticks the attempt
	// completes on its own with nothing attempted.
	c, _ := startedController(t, twoSectionSession(1))

	for i := 0; i < 60; i++ {
		c.Tick()
	}

	v := c.State()
	if v.Session.Status != model.SessionStatusCompleted {
		t.Fatalf("expected COMPLETED, got %v", v.Session.Status)
	}
	if v.Session.FinalScore == nil {
		t.Fatal("final score missing")
	}
	if v.Session.FinalScore.AttemptedCount != 0 {
		t.Errorf("expected 0 attempted, got %d", v.Session.FinalScore.AttemptedCount)
	}
	if !v.Session.LockedSections[0] {
		t.Error("completed session must have every section locked")
	}

	// Ticks after completion change nothing.
	c.Tick()
	if got := c.State().Session.RemainingSeconds[0]; got != 0 {
		t.Errorf("timer moved after completion: %d", got)
	}
}

func TestAnswerFlow(t *testing.T) {
	c, _ := startedController(t, twoSectionSession(2, 2))

	if err := c.SetAnswer("A"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := c.SaveAndNext(); err != nil {
		t.Fatalf("SaveAndNext: %v", err)
	}

	v := c.State()
	if v.Cursor != 1 {
		t.Errorf("expected cursor 1, got %d", v.Cursor)
	}
	if a := v.Session.Answers[0][0]; a.Value != "A" || a.Status != model.AnswerStatusAnswered {
		t.Errorf("unexpected answer: %+v", a)
	}

	// Save & Next at the last question keeps the cursor put: crossing a
	// section boundary needs an explicit switch.
	if err := c.SaveAndNext(); err != nil {
		t.Fatalf("SaveAndNext: %v", err)
	}
	if v := c.State(); v.Cursor != 1 || v.Session.ActiveSection != 0 {
		t.Errorf("save&next must not cross sections: cursor=%d active=%d", v.Cursor, v.Session.ActiveSection)
	}
}

func TestMarkForReviewAdvances(t *testing.T) {
	c, _ := startedController(t, twoSectionSession(2, 2))

	if err := c.SetAnswer("C"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := c.MarkForReview(); err != nil {
		t.Fatalf("MarkForReview: %v", err)
	}

	v := c.State()
	if v.Cursor != 1 {
		t.Errorf("mark should advance cursor, got %d", v.Cursor)
	}
	if a := v.Session.Answers[0][0]; a.Status != model.AnswerStatusMarked || a.Value != "C" {
		t.Errorf("expected MARKED/C, got %+v", a)
	}
}

func TestNavigateBounds(t *testing.T) {
	c, _ := startedController(t, twoSectionSession(2, 2))

	if err := c.Navigate(1); err != nil {
		t.Fatalf("Navigate(1): %v", err)
	}
	if err := c.Navigate(2); err != ErrBadIndex {
		t.Errorf("expected ErrBadIndex, got %v", err)
	}
	if err := c.Navigate(-1); err != ErrBadIndex {
		t.Errorf("expected ErrBadIndex, got %v", err)
	}
}

func TestVoluntarySwitchConfirmAndCancel(t *testing.T) {
	c, _ := startedController(t, twoSectionSession(2, 2))

	// Switch with time on the clock parks behind a confirmation.
	if err := c.RequestSwitch(1); err != nil {
		t.Fatalf("RequestSwitch: %v", err)
	}
	if v := c.State(); v.Pending.Kind != model.PendingSwitchSection || v.Pending.Target != 1 {
		t.Fatalf("expected pending switch, got %+v", v.Pending)
	}

	// Cancel has no side effects.
	c.Cancel()
	v := c.State()
	if v.Pending.Kind != model.PendingNone || v.Session.ActiveSection != 0 || len(v.Session.LockedSections) != 0 {
		t.Fatalf("cancel must be side-effect free: %+v", v)
	}

	// Confirmed switch locks the exited section irreversibly.
	if err := c.RequestSwitch(1); err != nil {
		t.Fatalf("RequestSwitch: %v", err)
	}
	if err := c.Confirm(); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	v = c.State()
	if v.Session.ActiveSection != 1 || !v.Session.LockedSections[0] || v.Cursor != 0 {
		t.Fatalf("unexpected state after switch: %+v", v)
	}

	// The exited section can never be revisited.
	if err := c.RequestSwitch(0); err != ErrSectionLocked {
		t.Errorf("expected ErrSectionLocked, got %v", err)
	}
	if err := c.RequestSwitch(1); err != ErrSameSection {
		t.Errorf("expected ErrSameSection, got %v", err)
	}
}

func TestConfirmWithoutPending(t *testing.T) {
	c, _ := startedController(t, twoSectionSession(2, 2))
	if err := c.Confirm(); err != ErrNoPending {
		t.Errorf("expected ErrNoPending, got %v", err)
	}
}

func TestManualSubmitRequiresConfirmation(t *testing.T) {
	c, _ := startedController(t, twoSectionSession(2, 2))

	_ = c.SetAnswer("A")
	if err := c.RequestSubmit(); err != nil {
		t.Fatalf("RequestSubmit: %v", err)
	}
	if v := c.State(); v.Session.Status != model.SessionStatusInProgress {
		t.Fatal("submit must not happen before confirmation")
	}

	if err := c.Confirm(); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	v := c.State()
	if v.Session.Status != model.SessionStatusCompleted || v.Session.FinalScore == nil {
		t.Fatalf("expected completed with score, got %+v", v.Session.Status)
	}
	for i := range v.Session.Sections {
		if !v.Session.LockedSections[i] {
			t.Errorf("section %d not locked after submission", i)
		}
	}
	if v.Session.FinishedAt == nil {
		t.Error("FinishedAt not set")
	}

	// Terminal state rejects further mutation.
	if err := c.SetAnswer("B"); err != ErrCompleted {
		t.Errorf("expected ErrCompleted, got %v", err)
	}
	if err := c.Start(); err != ErrCompleted {
		t.Errorf("restart must fail, got %v", err)
	}
}

func TestSubmitConfirmationRacesTimeout(t *testing.T) {
	// The user is staring at the submit dialog while the last section's
	// clock runs out: the auto-submit wins and the stale confirmation
	// must not double-submit.
	c, _ := startedController(t, twoSectionSession(1))

	_ = c.SetAnswer("A")
	if err := c.RequestSubmit(); err != nil {
		t.Fatalf("RequestSubmit: %v", err)
	}
	for i := 0; i < 60; i++ {
		c.Tick()
	}

	v := c.State()
	if v.Session.Status != model.SessionStatusCompleted {
		t.Fatal("timeout should have auto-submitted")
	}
	want := *v.Session.FinalScore

	if err := c.Confirm(); err != ErrCompleted {
		t.Errorf("stale confirm: expected ErrCompleted, got %v", err)
	}
	if got := *c.State().Session.FinalScore; got != want {
		t.Errorf("score changed after stale confirm: %+v vs %+v", got, want)
	}
}

func TestExpiryDiscardsPendingSwitch(t *testing.T) {
	c, _ := startedController(t, twoSectionSession(1, 1))

	if err := c.RequestSwitch(1); err != nil {
		t.Fatalf("RequestSwitch: %v", err)
	}
	for i := 0; i < 60; i++ {
		c.Tick()
	}

	v := c.State()
	if v.Pending.Kind != model.PendingNone {
		t.Errorf("expiry must discard a stale confirmation, got %+v", v.Pending)
	}
	if v.Session.ActiveSection != 1 {
		t.Errorf("expected section 1 active, got %d", v.Session.ActiveSection)
	}
	// Confirming the stale dialog now is a no-op error, not a jump.
	if err := c.Confirm(); err != ErrNoPending {
		t.Errorf("expected ErrNoPending, got %v", err)
	}
}

func TestLockedSectionsMonotonic(t *testing.T) {
	c, _ := startedController(t, twoSectionSession(1, 1, 1))

	seen := make(map[int]bool)
	check := func() {
		t.Helper()
		locked := c.State().Session.LockedSections
		for i := range seen {
			if !locked[i] {
				t.Fatalf("section %d left the lock set", i)
			}
		}
		for i := range locked {
			seen[i] = true
		}
	}

	_ = c.RequestSwitch(2)
	_ = c.Confirm()
	check()
	for i := 0; i < 60; i++ {
		c.Tick()
		check()
	}
	// Section 2 expired; next eligible after 2 does not exist, so the
	// attempt completes even though section 1 was never entered.
	if got := c.State().Session.Status; got != model.SessionStatusCompleted {
		t.Fatalf("expected COMPLETED, got %v", got)
	}
	check()
}

func TestSwitchWithExpiredClockSkipsConfirmation(t *testing.T) {
	// A zero-minute section is already expired; leaving it needs no
	// confirmation step.
	s := twoSectionSession(0, 2)
	c, _ := startedController(t, s)

	if err := c.RequestSwitch(1); err != nil {
		t.Fatalf("RequestSwitch: %v", err)
	}
	v := c.State()
	if v.Pending.Kind != model.PendingNone {
		t.Fatalf("no confirmation expected, got %+v", v.Pending)
	}
	if v.Session.ActiveSection != 1 || !v.Session.LockedSections[0] {
		t.Fatalf("switch did not happen: %+v", v)
	}
}

func TestSnapshotSinkBoundaries(t *testing.T) {
	c, sink := startedController(t, twoSectionSession(1, 1))

	base := sink.saves
	c.Tick()
	if sink.saves != base {
		t.Error("a plain tick must not hit the persistence boundary")
	}
	_ = c.SetAnswer("A")
	if sink.saves != base+1 {
		t.Error("answer mutation must persist")
	}

	for i := 0; i < 59; i++ {
		c.Tick()
	}
	// Expiry transition persists immediately.
	if sink.saves != base+2 {
		t.Errorf("expected persist on section transition, saves=%d base=%d", sink.saves, base)
	}
}

func TestReattempt(t *testing.T) {
	c, _ := startedController(t, twoSectionSession(1, 1))
	_ = c.SetAnswer("A")
	_ = c.RequestSubmit()
	_ = c.Confirm()

	orig := c.State().Session
	fresh := Reattempt(&orig)

	if fresh.ID == orig.ID {
		t.Error("retest must be a new session")
	}
	if fresh.RetestOf == nil || *fresh.RetestOf != orig.ID {
		t.Error("retest should reference the original attempt")
	}
	if fresh.Status != model.SessionStatusNotStarted {
		t.Errorf("expected NOT_STARTED, got %v", fresh.Status)
	}
	if len(fresh.LockedSections) != 0 {
		t.Errorf("expected no locks, got %v", fresh.LockedSections)
	}
	if len(fresh.Sections) != len(orig.Sections) || fresh.Sections[0].Name != orig.Sections[0].Name {
		t.Error("retest must share the original question bank")
	}
	for si, m := range fresh.Answers {
		for qi, a := range m {
			if a.Value != "" || a.Status != model.AnswerStatusNotAnswered {
				t.Errorf("answer %d/%d not reset: %+v", si, qi, a)
			}
		}
	}
	if fresh.RemainingSeconds[0] != 60 {
		t.Errorf("timers not reseeded: %v", fresh.RemainingSeconds)
	}

	// The original stays untouched.
	if orig.Status != model.SessionStatusCompleted || orig.Answers[0][0].Value != "A" {
		t.Error("retest mutated the original session")
	}
}
