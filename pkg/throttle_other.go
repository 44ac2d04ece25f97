//go:build !linux

package warmer

const (
	bestEffortClass    = 0
	idleClass          = 0
	defaultIOPrioLevel = 0
)

// getNiceness/setNiceness/getIOPrio/setIOPrio have no portable equivalent
// outside Linux; the orchestrator still calls them so the save/restore
// sequence stays identical across platforms, but they are no-ops here.
func getNiceness() (int, error) { return 0, nil }

func setNiceness(nice int) error { return nil }

func getIOPrio() (class, level int, err error) { return 0, 0, nil }

func setIOPrio(class, level int) error { return nil }
