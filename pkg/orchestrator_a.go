package warmer

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/beam-cloud/diskwarm/pkg/engine"
	"github.com/beam-cloud/diskwarm/pkg/filesystem"
)

// OrchestratorA drives the block-device warmer: walk target directories
// to discover files, map their extents onto the backing device, sort
// and optionally merge them, then issue strided async reads across the
// device in extent order (phase 1) and, if requested, across whatever
// of the device phase 1 left untouched (phase 2).
type OrchestratorA struct {
	cfg *Config
}

func NewOrchestratorA(cfg *Config) *OrchestratorA {
	return &OrchestratorA{cfg: cfg}
}

// Run executes the full sequence from spec §4.7: freeze priorities, walk
// and map extents, run phase 1, optionally run phase 2, restore
// priorities, flush the observer, and return the aggregate Result.
func (o *OrchestratorA) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	obs := NewObserver(o.cfg.Silent, o.cfg.Debug)
	result := Result{State: StateInit}

	throttle, err := ApplyThrottle(o.cfg.Throttle)
	if err != nil {
		result.State = StateAborted
		return result, err
	}
	defer RestoreThrottle(throttle)

	if o.cfg.DevicePath == "" {
		result.State = StateAborted
		return result, ErrNoDevice
	}

	var devFile *os.File
	directIO := false
	if o.cfg.DirectIO {
		devFile, directIO, err = filesystem.OpenDevice(o.cfg.DevicePath)
	} else {
		devFile, err = os.Open(o.cfg.DevicePath)
	}
	if err != nil {
		result.State = StateAborted
		return result, fmt.Errorf("%w: %v", ErrDeviceUnstattable, err)
	}
	defer devFile.Close()

	info, err := filesystem.GetDeviceInfo(devFile, directIO)
	if err != nil {
		result.State = StateAborted
		return result, fmt.Errorf("%w: %v", ErrDeviceUnstattable, err)
	}
	result.State = StateProbed

	readSize := o.cfg.ReadSizeBytes()
	stride := o.cfg.StrideBytes()
	filesystem.AlignIOParams(info, directIO, &readSize, &stride)

	extents, err := o.collectExtents(ctx, obs, &result)
	if err != nil {
		result.State = StateAborted
		return result, err
	}
	result.State = StateWalked

	extents.Sort()
	if o.cfg.MergeExtents {
		extents.Merge(MergeDefaultBytes)
	}
	result.State = StateOrdered

	eng, err := engine.Open(ctx, string(o.cfg.Backend), o.cfg.QueueDepth, int(readSize))
	if err != nil {
		result.State = StateAborted
		return result, fmt.Errorf("%w: %v", ErrEngineUnstartable, err)
	}
	defer eng.Stop()
	result.BackendInUse = string(eng.Backend())

	bitmap := filesystem.NewWarmedBitmap(info.Size, stride)
	fd := int(devFile.Fd())

	total := extents.TotalStrides(stride)
	var done uint64

	// Phase 1 walks sorted, merged extents in ascending device order, so
	// hint the kernel's own readahead accordingly; phase 2 (if it runs)
	// sweeps whatever phase 1 left untouched, which is scattered by
	// construction.
	if err := fadviseSequential(devFile.Fd()); err != nil {
		obs.Debugf("fadvise sequential on device: %v", err)
	}

	result.State = StatePhase1Running
	runner := newIoRunner(eng, o.cfg.QueueDepth, func(c engine.Completion) {
		atomic.AddInt64(&result.ReadsIssued, 1)
		atomic.AddInt64(&result.BytesCovered, int64(c.N))
		done++
		obs.Progress(done, total)
		obs.ReadIssued(int64(c.N))
	}, func(err error) {
		atomic.AddInt64(&result.Warnings, 1)
		obs.Warning("read completion error: %v", err)
	})

	for _, ext := range extents.All() {
		for off := ext.PhysicalOffset; off < ext.PhysicalOffset+ext.Length; off += stride {
			length := readSize
			if remain := ext.PhysicalOffset + ext.Length - off; remain < length {
				length = remain
			}
			if err := runner.Submit(fd, off, int(length), engine.SlotTag{Offset: off}); err != nil {
				atomic.AddInt64(&result.Warnings, 1)
				obs.Warning("submit failed at offset %d: %v", off, err)
				continue
			}
			bitmap.MarkRange(off, length)
		}
		if ctx.Err() != nil {
			break
		}
	}
	if err := runner.Wait(); err != nil {
		obs.Warning("phase 1 drain error: %v", err)
	}
	result.State = StatePhase1Done

	if ctx.Err() != nil {
		result.State = StateAborted
		result.Elapsed = time.Since(start)
		return result, ctx.Err()
	}

	if o.cfg.FullDisk {
		if err := fadviseRandom(devFile.Fd()); err != nil {
			obs.Debugf("fadvise random on device: %v", err)
		}
		result.State = StatePhase2Running
		runner2 := newIoRunner(eng, o.cfg.QueueDepth, func(c engine.Completion) {
			atomic.AddInt64(&result.ReadsIssued, 1)
			atomic.AddInt64(&result.BytesCovered, int64(c.N))
			obs.ReadIssued(int64(c.N))
		}, func(err error) {
			atomic.AddInt64(&result.Warnings, 1)
			obs.Warning("phase 2 read error: %v", err)
		})

		for off := int64(0); off < info.Size; off += stride {
			if bitmap.Test(off) {
				continue
			}
			length := readSize
			if remain := info.Size - off; remain < length {
				length = remain
			}
			if err := runner2.Submit(fd, off, int(length), engine.SlotTag{Offset: off}); err != nil {
				atomic.AddInt64(&result.Warnings, 1)
				obs.Warning("phase 2 submit failed at offset %d: %v", off, err)
				continue
			}
		}
		if err := runner2.Wait(); err != nil {
			obs.Warning("phase 2 drain error: %v", err)
		}
		result.State = StatePhase2Done
	}

	result.State = StateDone
	result.Elapsed = time.Since(start)
	obs.Finish(result.State, result)
	return result, nil
}

// collectExtents walks every configured directory and maps each visited
// file's logical extents onto the backing device, accumulating them
// into a single ExtentMap ready for device-order sorting.
func (o *OrchestratorA) collectExtents(ctx context.Context, obs *Observer, result *Result) (*filesystem.ExtentMap, error) {
	jobs := make(chan Job, 64)
	walker := NewWalker(o.cfg)
	walkErrCh := make(chan error, 1)
	go func() {
		walkErrCh <- walker.Walk(ctx, o.cfg.Directories, jobs)
	}()

	extents := filesystem.NewExtentMap()
	for job := range jobs {
		result.FilesVisited++
		if err := extractFileExtents(job.Path, job.Size, extents); err != nil {
			obs.Warning("extracting extents for %s: %v", job.Path, err)
		}
	}
	return extents, <-walkErrCh
}

func extractFileExtents(path string, size int64, dst *filesystem.ExtentMap) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return filesystem.ExtractExtents(f, size, dst)
}
