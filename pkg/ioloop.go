package warmer

import (
	"context"
	"sync"
	"time"

	"github.com/beam-cloud/diskwarm/pkg/engine"
)

// reapPollInterval bounds how long the reap loop sleeps between polls when
// a backend's Reap returns no completions without blocking for one (the
// ring backend, which can't have a blocking wait interrupted by ctx).
const reapPollInterval = 2 * time.Millisecond

// ioRunner bounds in-flight submissions to the configured queue depth and
// drains completions in the background, the Q-bounded submit/reap loop
// both cores' algorithms describe. Callers call Submit for every read
// and Wait once all submissions are issued.
type ioRunner struct {
	eng   engine.SubmissionEngine
	sem   chan struct{}
	onErr func(error)
	onOk  func(engine.Completion)

	wg     sync.WaitGroup
	reapErr error
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func newIoRunner(eng engine.SubmissionEngine, queueDepth int, onOk func(engine.Completion), onErr func(error)) *ioRunner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &ioRunner{
		eng:    eng,
		sem:    make(chan struct{}, queueDepth),
		onOk:   onOk,
		onErr:  onErr,
		ctx:    ctx,
		cancel: cancel,
	}
	r.wg.Add(1)
	go r.reapLoop()
	return r
}

func (r *ioRunner) reapLoop() {
	defer r.wg.Done()
	for {
		if r.ctx.Err() != nil {
			return
		}
		completions, err := r.eng.Reap(r.ctx)
		if err != nil {
			if r.ctx.Err() != nil {
				return // Wait() canceled us once draining completed
			}
			r.mu.Lock()
			if r.reapErr == nil {
				r.reapErr = err
			}
			r.mu.Unlock()
			return
		}
		if len(completions) == 0 {
			select {
			case <-r.ctx.Done():
			case <-time.After(reapPollInterval):
			}
			continue
		}
		for _, c := range completions {
			if c.Err != nil && r.onErr != nil {
				r.onErr(c.Err)
			} else if r.onOk != nil {
				r.onOk(c)
			}
			<-r.sem
		}
	}
}

// Submit blocks until a queue slot is free, then issues the read.
func (r *ioRunner) Submit(fd int, offset int64, length int, tag engine.SlotTag) error {
	r.sem <- struct{}{}
	if err := r.eng.Submit(fd, offset, length, tag); err != nil {
		<-r.sem
		return err
	}
	return nil
}

// Wait blocks until every submitted read has been reaped, then stops the
// background reap loop. Acquiring every semaphore slot is only possible
// once all genuinely in-flight reads have released theirs, which is how
// this detects the queue has fully drained before canceling the reaper.
func (r *ioRunner) Wait() error {
	for i := 0; i < cap(r.sem); i++ {
		r.sem <- struct{}{}
	}
	r.cancel()
	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reapErr
}
