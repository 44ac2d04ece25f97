//go:build linux

package engine

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Legacy Linux AIO syscall numbers (x86_64). x/sys/unix does not name
// these; they come directly from the kernel's syscall table and the
// iocb/io_event ABI in linux/aio_abi.h.
const (
	sysIoSetup   = 206
	sysIoDestroy = 207
	sysIoSubmit  = 209
	sysIoGetevts = 208

	iocbCmdPread = 0

	iocbSize    = 64
	ioEventSize = 32
)

// aioContext is the opaque handle io_setup returns; the kernel treats
// it as an untyped unsigned long.
type aioContext uintptr

func ioSetup(nrEvents uint32) (aioContext, error) {
	var ctx aioContext
	_, _, errno := unix.Syscall(sysIoSetup, uintptr(nrEvents), uintptr(unsafe.Pointer(&ctx)), 0)
	if errno != 0 {
		return 0, errno
	}
	return ctx, nil
}

func ioDestroy(ctx aioContext) error {
	_, _, errno := unix.Syscall(sysIoDestroy, uintptr(ctx), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// packIocb packs one struct iocb (64 bytes on x86_64). Field offsets
// follow linux/aio_abi.h: aio_data(0), aio_key/aio_rw_flags(8,12),
// aio_lio_opcode(16), aio_reqprio(18), aio_fildes(20), aio_buf(24),
// aio_nbytes(32), aio_offset(40), aio_reserved2(48), aio_flags(56),
// aio_resfd(60).
func packIocb(fd int, buf []byte, offset int64, data uint64) []byte {
	b := make([]byte, iocbSize)
	binary.LittleEndian.PutUint64(b[0:8], data)
	binary.LittleEndian.PutUint16(b[16:18], iocbCmdPread)
	binary.LittleEndian.PutUint32(b[20:24], uint32(fd))
	binary.LittleEndian.PutUint64(b[24:32], uint64(uintptr(unsafe.Pointer(&buf[0]))))
	binary.LittleEndian.PutUint64(b[32:40], uint64(len(buf)))
	binary.LittleEndian.PutUint64(b[40:48], uint64(offset))
	return b
}

func ioSubmit(ctx aioContext, iocbs []*byte) (int, error) {
	n, _, errno := unix.Syscall(sysIoSubmit, uintptr(ctx), uintptr(len(iocbs)), uintptr(unsafe.Pointer(&iocbs[0])))
	if errno != 0 {
		return 0, errno
	}
	return int(n), nil
}

// ioEvent unpacks one struct io_event (32 bytes).
type ioEvent struct {
	data uint64
	res  int64
}

func ioGetEvents(ctx aioContext, minNr, maxNr int, events []byte, timeoutNs int64) (int, error) {
	var ts [2]int64
	ts[0] = timeoutNs / 1_000_000_000
	ts[1] = timeoutNs % 1_000_000_000
	n, _, errno := unix.Syscall6(sysIoGetevts, uintptr(ctx), uintptr(minNr), uintptr(maxNr),
		uintptr(unsafe.Pointer(&events[0])), uintptr(unsafe.Pointer(&ts[0])), 0)
	if errno != 0 {
		return 0, errno
	}
	return int(n), nil
}

// aioEngine drives the legacy io_setup/io_submit/io_getevents/io_destroy
// cycle, matching the C originals' fallback path when io_uring setup
// fails (older kernels, restricted containers).
type aioEngine struct {
	ctx   aioContext
	pool  *slotPool
	depth int

	mu      sync.Mutex
	inFlightTags map[uint64]SlotTag
	nextID  uint64
	iocbBuf map[uint64][]byte
}

func newAIOEngine(queueDepth, slotSize int) (*aioEngine, error) {
	return &aioEngine{
		pool:         newSlotPool(queueDepth, slotSize),
		depth:        queueDepth,
		inFlightTags: make(map[uint64]SlotTag),
		iocbBuf:      make(map[uint64][]byte),
	}, nil
}

func (e *aioEngine) Start(ctx context.Context) error {
	aioCtx, err := ioSetup(uint32(e.depth))
	if err != nil {
		return fmt.Errorf("io_setup: %w", err)
	}
	e.ctx = aioCtx
	return nil
}

func (e *aioEngine) Submit(fd int, offset int64, length int, tag SlotTag) error {
	buf := e.pool.get()

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.inFlightTags[id] = tag
	iocb := packIocb(fd, buf[:length], offset, id)
	e.iocbBuf[id] = buf
	e.mu.Unlock()

	n, err := ioSubmit(e.ctx, []*byte{&iocb[0]})
	if err != nil || n != 1 {
		e.mu.Lock()
		delete(e.inFlightTags, id)
		delete(e.iocbBuf, id)
		e.mu.Unlock()
		e.pool.put(buf)
		if err == nil {
			err = fmt.Errorf("io_submit: submitted %d of 1", n)
		}
		return err
	}
	return nil
}

func (e *aioEngine) Reap(ctx context.Context) ([]Completion, error) {
	events := make([]byte, ioEventSize*e.depth)
	n, err := ioGetEvents(e.ctx, 1, e.depth, events, int64(200*1_000_000))
	if err != nil {
		return nil, err
	}

	out := make([]Completion, 0, n)
	for i := 0; i < n; i++ {
		base := i * ioEventSize
		id := binary.LittleEndian.Uint64(events[base : base+8])
		res := int64(binary.LittleEndian.Uint64(events[base+16 : base+24]))

		e.mu.Lock()
		tag, ok := e.inFlightTags[id]
		buf := e.iocbBuf[id]
		delete(e.inFlightTags, id)
		delete(e.iocbBuf, id)
		e.mu.Unlock()
		if !ok {
			continue
		}
		e.pool.put(buf)

		c := Completion{Tag: tag}
		if res < 0 {
			c.Err = fmt.Errorf("aio completion error: %d", res)
		} else {
			c.N = int(res)
		}
		out = append(out, c)
	}
	return out, nil
}

func (e *aioEngine) Backend() Backend { return BackendAIO }

func (e *aioEngine) Stop() error {
	return ioDestroy(e.ctx)
}
