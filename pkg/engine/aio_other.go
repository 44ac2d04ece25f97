//go:build !linux

package engine

import (
	"context"
	"errors"
)

// aioEngine has no legacy-AIO equivalent outside Linux. newAIOEngine
// always fails so Open falls through to the next backend in the chain;
// the stub methods exist only so the zero value still satisfies
// SubmissionEngine.
type aioEngine struct{}

func newAIOEngine(queueDepth, slotSize int) (*aioEngine, error) {
	return nil, errors.New("legacy AIO unavailable on this platform")
}

func (e *aioEngine) Start(ctx context.Context) error { return errUnsupported }

func (e *aioEngine) Submit(fd int, offset int64, length int, tag SlotTag) error {
	return errUnsupported
}

func (e *aioEngine) Reap(ctx context.Context) ([]Completion, error) { return nil, errUnsupported }

func (e *aioEngine) Backend() Backend { return BackendAIO }

func (e *aioEngine) Stop() error { return nil }

var errUnsupported = errors.New("engine backend unsupported on this platform")
