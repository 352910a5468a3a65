package exam

import "testing"

func TestNextEligible(t *testing.T) {
	tests := []struct {
		name   string
		locked map[int]bool
		after  int
		total  int
		want   int
		ok     bool
	}{
		{"first of three", map[int]bool{0: true}, 0, 3, 1, true},
		{"skips locked", map[int]bool{0: true, 1: true}, 0, 3, 2, true},
		{"none left", map[int]bool{0: true, 1: true, 2: true}, 0, 3, 0, false},
		{"single section", map[int]bool{0: true}, 0, 1, 0, false},
		{"ignores earlier unlocked", map[int]bool{2: true}, 2, 3, 0, false},
		{"middle gap", map[int]bool{0: true, 2: true}, 0, 4, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextEligible(tt.locked, tt.after, tt.total)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("NextEligible(%v, %d, %d) = (%d, %v), want (%d, %v)",
					tt.locked, tt.after, tt.total, got, ok, tt.want, tt.ok)
			}
		})
	}
}
