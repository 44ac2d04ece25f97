package warmer

import "testing"

func TestRestoreThrottleClearsApplied(t *testing.T) {
	state := &ThrottleState{niceness: 3, ioClass: idleClass, ioPrio: 7, applied: true}
	RestoreThrottle(state)
	if state.applied {
		t.Fatalf("expected RestoreThrottle to clear applied")
	}
}

func TestRestoreThrottleNilOrUnappliedIsNoop(t *testing.T) {
	RestoreThrottle(nil)
	RestoreThrottle(&ThrottleState{applied: false})
}

func TestComputeThrottle(t *testing.T) {
	cases := []struct {
		name         string
		level        int
		start        int
		wantNiceness int
		wantClass    int
		wantLevel    int
		wantElevate  bool
	}{
		{"level 0 no change", 0, 5, 5, bestEffortClass, defaultIOPrioLevel, false},
		{"scenario 6: level 3 from niceness 5", 3, 5, 13, bestEffortClass, 6, true},
		{"level 1 best-effort level 4", 1, 0, 11, bestEffortClass, 4, true},
		{"level 4 goes idle", 4, 0, 14, idleClass, 0, true},
		{"level 7 goes idle", 7, 0, 17, idleClass, 0, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			nice, class, level, elevate := computeThrottle(c.level, c.start)
			if nice != c.wantNiceness || class != c.wantClass || level != c.wantLevel || elevate != c.wantElevate {
				t.Fatalf("computeThrottle(%d, %d) = (%d, %d, %d, %v), want (%d, %d, %d, %v)",
					c.level, c.start, nice, class, level, elevate,
					c.wantNiceness, c.wantClass, c.wantLevel, c.wantElevate)
			}
		})
	}
}
