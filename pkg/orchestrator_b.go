package warmer

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beam-cloud/diskwarm/pkg/engine"
)

// OrchestratorB drives the file cache-warmer: walk target directories
// and, per visited file, apply whichever WarmStrategy spec §4.6 selects
// for its size — an OS-native residency hint, async read batches
// through the submission engine, sparse sampling, or an outright skip.
type OrchestratorB struct {
	cfg *Config
}

func NewOrchestratorB(cfg *Config) *OrchestratorB {
	return &OrchestratorB{cfg: cfg}
}

func (o *OrchestratorB) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	obs := NewObserver(o.cfg.Silent, o.cfg.Debug)
	result := Result{State: StateInit}

	throttle, err := ApplyThrottle(o.cfg.Throttle)
	if err != nil {
		result.State = StateAborted
		return result, err
	}
	defer RestoreThrottle(throttle)

	readSize := o.cfg.ReadSizeBytes()

	eng, err := engine.Open(ctx, string(o.cfg.Backend), o.cfg.QueueDepth, int(readSize))
	if err != nil {
		result.State = StateAborted
		return result, fmt.Errorf("%w: %v", ErrEngineUnstartable, err)
	}
	defer eng.Stop()
	result.BackendInUse = string(eng.Backend())
	result.State = StateOrdered

	var filesMu sync.Mutex
	openFiles := make(map[int]*fileSubmission)
	var nextIndex int64

	runner := newIoRunner(eng, o.cfg.QueueDepth, func(c engine.Completion) {
		atomic.AddInt64(&result.ReadsIssued, 1)
		atomic.AddInt64(&result.BytesCovered, int64(c.N))
		obs.ReadIssued(int64(c.N))
		closeIfDone(&filesMu, openFiles, c.Tag.FileIndex)
	}, func(err error) {
		atomic.AddInt64(&result.Warnings, 1)
		obs.Warning("read completion error: %v", err)
	})

	result.State = StatePhase1Running

	jobs := make(chan Job, 64)
	walker := NewWalker(o.cfg)
	walkErrCh := make(chan error, 1)
	go func() {
		walkErrCh <- walker.Walk(ctx, o.cfg.Directories, jobs)
	}()

	sparseInterval := o.cfg.SparseLargeFiles
	if sparseInterval < SparseSampleBytes {
		sparseInterval = SparseSampleBytes
	}

	// Any explicit backend preference (anything but auto) counts as the
	// user requesting async submission outright, bypassing step 3 of the
	// WarmStrategy rule even for files small enough to just hint.
	asyncRequested := o.cfg.Backend != IoBackendAuto

	for job := range jobs {
		result.FilesVisited++
		strategy := SelectStrategy(job.Size, o.cfg.MaxFileSize, o.cfg.SparseLargeFiles, true, asyncRequested)

		switch strategy {
		case StrategySkip:
			obs.Warning("skipping %s: exceeds max-file-size", job.Path)
		case StrategyHint:
			if err := warmByHint(job.Path, job.Size); err != nil {
				atomic.AddInt64(&result.Warnings, 1)
				obs.Warning("hint warming %s: %v", job.Path, err)
			}
		case StrategyFull:
			o.submitFile(runner, job, readSize, readSize, &filesMu, openFiles, &nextIndex, &result, obs)
		case StrategySparse:
			o.submitFile(runner, job, readSize, sparseInterval, &filesMu, openFiles, &nextIndex, &result, obs)
		}
	}

	if err := <-walkErrCh; err != nil {
		atomic.AddInt64(&result.Warnings, 1)
		obs.Warning("walk error: %v", err)
	}
	if err := runner.Wait(); err != nil {
		obs.Warning("drain error: %v", err)
	}

	result.State = StatePhase1Done
	result.State = StateDone
	result.Elapsed = time.Since(start)
	obs.Finish(result.State, result)
	return result, nil
}

// fileSubmission tracks one open file's outstanding async reads so its
// descriptor closes exactly once the last completion for it arrives.
type fileSubmission struct {
	f       *os.File
	pending int64
}

func (o *OrchestratorB) submitFile(runner *ioRunner, job Job, readSize, step int64, mu *sync.Mutex, open map[int]*fileSubmission, nextIndex *int64, result *Result, obs *Observer) {
	f, err := os.Open(job.Path)
	if err != nil {
		atomic.AddInt64(&result.Warnings, 1)
		obs.Warning("opening %s: %v", job.Path, err)
		return
	}

	index := int(atomic.AddInt64(nextIndex, 1))
	// pending starts at 1: the submit loop's own reference, dropped after
	// the loop, so early completions can't close f mid-submission.
	sub := &fileSubmission{f: f, pending: 1}
	mu.Lock()
	open[index] = sub
	mu.Unlock()

	fd := int(f.Fd())
	limit := job.Size
	if o.cfg.MaxFileSize > 0 && limit > o.cfg.MaxFileSize {
		limit = o.cfg.MaxFileSize
	}

	for off := int64(0); off < limit; off += step {
		length := readSize
		if remain := limit - off; remain < length {
			length = remain
		}
		if length <= 0 {
			break
		}
		atomic.AddInt64(&sub.pending, 1)
		if err := runner.Submit(fd, off, int(length), engine.SlotTag{FileIndex: index, Offset: off}); err != nil {
			atomic.AddInt64(&sub.pending, -1)
			atomic.AddInt64(&result.Warnings, 1)
			obs.Warning("submit failed for %s at offset %d: %v", job.Path, off, err)
			continue
		}
	}

	closeIfDone(mu, open, index)
}

func closeIfDone(mu *sync.Mutex, open map[int]*fileSubmission, index int) {
	mu.Lock()
	sub, ok := open[index]
	if !ok {
		mu.Unlock()
		return
	}
	remaining := atomic.AddInt64(&sub.pending, -1)
	if remaining == 0 {
		delete(open, index)
	}
	mu.Unlock()
	if remaining == 0 {
		sub.f.Close()
	}
}

// warmByHint opens a file, advises the kernel to populate page-cache
// residency for its full range, and closes it — the synchronous hint
// path, never followed by FADV_DONTNEED (spec §4.4 supplemented item 4).
func warmByHint(path string, size int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fadviseWillneed(f.Fd(), 0, size)
}
