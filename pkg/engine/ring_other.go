//go:build !linux

package engine

import "context"

// ringEngine has no io_uring equivalent outside Linux. newRingEngine
// always fails so Open falls through to aio, then sync.
type ringEngine struct{}

func newRingEngine(queueDepth, slotSize int, allowPoll bool) (*ringEngine, error) {
	return nil, errUnsupported
}

func (e *ringEngine) Start(ctx context.Context) error { return errUnsupported }

func (e *ringEngine) Submit(fd int, offset int64, length int, tag SlotTag) error {
	return errUnsupported
}

func (e *ringEngine) Reap(ctx context.Context) ([]Completion, error) { return nil, errUnsupported }

func (e *ringEngine) Backend() Backend { return BackendRing }

func (e *ringEngine) Stop() error { return nil }
