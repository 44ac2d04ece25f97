// Package engine implements the pluggable async I/O submission engines
// that both binaries drive: io_uring, legacy Linux AIO, and a
// synchronous pread fallback. It intentionally has no dependency on the
// parent warmer package so that package can depend on it instead.
package engine

import "context"

// SlotTag identifies which Job and file offset an in-flight read belongs
// to, so a completion always resolves back to the right caller state
// instead of relying on a single shared cursor (the per-slot
// (file_index, offset) tracking fix).
type SlotTag struct {
	FileIndex int
	Offset    int64
}

// Completion reports the outcome of one previously submitted read.
type Completion struct {
	Tag SlotTag
	N   int
	Err error
}

// Backend identifies which concrete engine implementation is active.
type Backend string

const (
	BackendRing Backend = "ring"
	BackendAIO  Backend = "aio"
	BackendSync Backend = "sync"
)

// SubmissionEngine issues asynchronous reads against an open file
// descriptor and reaps their completions. The engine does not itself
// bound how many reads are in flight; callers keep that at or below the
// queue depth the engine was opened with (the parent package's ioRunner
// does so with a semaphore).
type SubmissionEngine interface {
	// Start prepares the engine (allocating rings, queues, or buffers).
	Start(ctx context.Context) error

	// Submit enqueues a read of length bytes at offset from fd, tagged
	// with tag. It does not wait for queue space.
	Submit(fd int, offset int64, length int, tag SlotTag) error

	// Reap gathers available completions, possibly zero. How long it
	// waits depends on the backend: ring returns at once, aio waits up to
	// 200ms for at least one, and sync waits until one is queued or ctx
	// is done. Callers poll it in a loop.
	Reap(ctx context.Context) ([]Completion, error)

	// Backend reports which concrete implementation is active.
	Backend() Backend

	// Stop releases all engine resources. Safe to call once, after all
	// submissions have been reaped.
	Stop() error
}

// Open selects and starts the best available engine for the requested
// preference, following the ring -> aio -> sync fallback chain. pref
// "sync" always yields the synchronous engine regardless of platform.
func Open(ctx context.Context, pref string, queueDepth, slotSize int) (SubmissionEngine, error) {
	if pref == "aio" {
		if e, err := newAIOEngine(queueDepth, slotSize); err == nil {
			if startErr := e.Start(ctx); startErr == nil {
				return e, nil
			}
		}
		return newSyncEngine(slotSize), nil
	}
	if pref == "sync" {
		return newSyncEngine(slotSize), nil
	}

	// auto and ring both try ring first, with one no-poll retry, then
	// fall back through aio to sync (spec's documented fallback chain).
	if e, err := newRingEngine(queueDepth, slotSize, true); err == nil {
		if startErr := e.Start(ctx); startErr == nil {
			return e, nil
		}
	}
	if e, err := newRingEngine(queueDepth, slotSize, false); err == nil {
		if startErr := e.Start(ctx); startErr == nil {
			return e, nil
		}
	}
	if e, err := newAIOEngine(queueDepth, slotSize); err == nil {
		if startErr := e.Start(ctx); startErr == nil {
			return e, nil
		}
	}
	return newSyncEngine(slotSize), nil
}
