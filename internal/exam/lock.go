package exam

// NextEligible returns the lowest section index greater than after that is
// not locked, and whether one exists. Locked sections are never revisited;
// the lock set only grows.
func NextEligible(locked map[int]bool, after, total int) (int, bool) {
	for i := after + 1; i < total; i++ {
		if !locked[i] {
			return i, true
		}
	}
	return 0, false
}
