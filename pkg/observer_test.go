package warmer

import "testing"

func TestNewObserverAssignsRunID(t *testing.T) {
	o := NewObserver(true, false)
	if o.RunID() == "" {
		t.Fatalf("expected a non-empty run ID")
	}
}

func TestObserverProgressSilentDoesNotPanic(t *testing.T) {
	o := NewObserver(true, false)
	o.Progress(0, 0)
	o.Progress(5, 10)
	o.ReadIssued(4096)
	o.Warning("test warning %d", 1)
	o.Debugf("test debug %d", 1)
	o.Finish(StateDone, Result{FilesVisited: 1})
}
