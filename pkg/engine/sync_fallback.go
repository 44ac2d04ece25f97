package engine

import (
	"context"
	"io"

	"golang.org/x/sys/unix"
)

// syncEngine issues reads with a plain blocking pread as each Submit is
// called, queuing the resulting Completion for the next Reap. It has no
// real in-flight concurrency, but honors the same interface so callers
// never need to special-case the no-async-backend-available path.
type syncEngine struct {
	pool        *slotPool
	completions chan Completion
}

func newSyncEngine(slotSize int) *syncEngine {
	return &syncEngine{
		pool:        newSlotPool(1, slotSize),
		completions: make(chan Completion, 64),
	}
}

func (e *syncEngine) Start(ctx context.Context) error { return nil }

func (e *syncEngine) Submit(fd int, offset int64, length int, tag SlotTag) error {
	buf := e.pool.get()
	defer e.pool.put(buf)

	// unix.Pread rather than wrapping fd in an *os.File: os.NewFile
	// installs a finalizer that closes the descriptor on GC, which would
	// race with the caller's own ownership of fd across repeated calls.
	n, err := unix.Pread(fd, buf[:length], offset)
	// A short read (including io.EOF-equivalent 0 < n < length) is
	// forward progress, not a failure.
	if err != nil && err != io.EOF && n == 0 {
		e.completions <- Completion{Tag: tag, N: 0, Err: err}
		return nil
	}
	e.completions <- Completion{Tag: tag, N: n}
	return nil
}

func (e *syncEngine) Reap(ctx context.Context) ([]Completion, error) {
	select {
	case c := <-e.completions:
		out := []Completion{c}
		for {
			select {
			case c := <-e.completions:
				out = append(out, c)
			default:
				return out, nil
			}
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *syncEngine) Backend() Backend { return BackendSync }

func (e *syncEngine) Stop() error { return nil }
