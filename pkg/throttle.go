package warmer

// ThrottleState holds the process scheduling values observed before a
// run's priorities were lowered, so ApplyThrottle's effects can be
// undone on every exit path, including early returns (spec §4.7, §8
// scenario 6). It captures whatever I/O priority was already in effect
// at entry (e.g. a parent process's ionice setting) so RestoreThrottle
// puts it back exactly rather than assuming a default.
type ThrottleState struct {
	niceness        int
	ioClass, ioPrio int
	applied         bool
}

// ApplyThrottle lowers process niceness and, on Linux, I/O priority
// according to level L in 0..7. Level 0 leaves priorities untouched but
// still records the original niceness and I/O priority so
// RestoreThrottle is always meaningful to call.
func ApplyThrottle(level int) (*ThrottleState, error) {
	nice, err := getNiceness()
	if err != nil {
		return nil, err
	}
	ioClass, ioPrio, err := getIOPrio()
	if err != nil {
		Logger.Warnf("reading starting I/O priority: %v", err)
	}
	state := &ThrottleState{niceness: nice, ioClass: ioClass, ioPrio: ioPrio}

	newNice, class, prio, elevate := computeThrottle(level, nice)
	if !elevate {
		return state, nil
	}
	if err := setNiceness(newNice); err != nil {
		return nil, err
	}
	state.applied = true

	if err := setIOPrio(class, prio); err != nil {
		Logger.Warnf("setting I/O priority: %v", err)
	}

	return state, nil
}

// computeThrottle applies the level-0..7 rule from spec §4.7: level 0
// leaves priorities alone, level L in 1..7 sets niceness to 10+L, and
// (Linux only, but computed uniformly here) sets I/O priority to
// best-effort level min(L+3, 7) for L<4 or idle for L>=4.
func computeThrottle(level, currentNiceness int) (newNiceness, ioClass, ioLevel int, elevate bool) {
	if level <= 0 {
		return currentNiceness, bestEffortClass, defaultIOPrioLevel, false
	}
	ioClass, ioLevel = bestEffortClass, min(level+3, 7)
	if level >= 4 {
		ioClass, ioLevel = idleClass, 0
	}
	return 10 + level, ioClass, ioLevel, true
}

// RestoreThrottle undoes ApplyThrottle. Safe to call on a nil state or a
// state that was never actually elevated.
func RestoreThrottle(state *ThrottleState) {
	if state == nil || !state.applied {
		return
	}
	if err := setNiceness(state.niceness); err != nil {
		Logger.Warnf("restoring niceness: %v", err)
	}
	if err := setIOPrio(state.ioClass, state.ioPrio); err != nil {
		Logger.Warnf("restoring I/O priority: %v", err)
	}
	state.applied = false
}
