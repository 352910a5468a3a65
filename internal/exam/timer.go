package exam

import "github.com/prepforge/mockexam-backend/internal/model"

// Tick advances the active section's countdown by one second. Only the
// active section runs; every other section stays frozen at its last recorded
// value. When the clock crosses zero the section is locked, and either the
// next eligible section takes over (cursor reset to its first question) or —
// with no section left — the attempt is submitted automatically with the
// ledger as it stands, no confirmation involved.
//
// Decrement, lock and advance/auto-submit happen under one lock acquisition:
// a subsequent tick can never observe the expired section unlocked.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.s.Status != model.SessionStatusInProgress {
		return
	}
	active := c.s.ActiveSection
	if c.s.LockedSections[active] {
		return
	}

	rem := c.s.RemainingSeconds[active]
	if rem > 0 {
		rem--
		c.s.RemainingSeconds[active] = rem
		c.emit(Event{Kind: EventTick, Section: active, RemainingSeconds: rem})
	}
	if rem > 0 {
		return
	}

	// Expiry. A stale confirmation prompt must not outlive the section it
	// was asked about.
	c.s.LockedSections[active] = true
	c.pending = model.PendingAction{}
	c.emit(Event{Kind: EventSectionLocked, Section: active})

	next, ok := NextEligible(c.s.LockedSections, active, len(c.s.Sections))
	if !ok {
		c.finalize()
		return
	}
	c.s.ActiveSection = next
	c.cursor = 0
	c.emit(Event{Kind: EventSectionSwitched, Section: next})
	c.persist()
}

// RemainingSnapshot copies the timer map for the periodic flush, which runs
// on its own cadence decoupled from the 1-second tick.
func (c *Controller) RemainingSnapshot() map[int]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[int]int, len(c.s.RemainingSeconds))
	for i, v := range c.s.RemainingSeconds {
		out[i] = v
	}
	return out
}
