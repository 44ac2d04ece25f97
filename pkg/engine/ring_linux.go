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

// io_uring setup/enter/register syscall numbers (x86_64), not wrapped by
// name in x/sys/unix.
const (
	sysIoUringSetup   = 425
	sysIoUringEnter   = 426
	sysIoUringRegister = 427

	ioUringEnterGetevents = 1 << 0

	ioSqringOffsetsSize = 40
	ioCqringOffsetsSize = 40
	ioUringParamsSize   = ioSqringOffsetsSize + ioCqringOffsetsSize + 40

	sqeSize = 64
	cqeSize = 16

	ioUringOpRead = 22 // IORING_OP_READ
)

// ringEngine drives an io_uring submission/completion queue pair,
// mirroring io_operations.c's setup-with-SQPOLL-then-retry-without
// pattern. noPoll disables IORING_SETUP_SQPOLL on this attempt.
type ringEngine struct {
	fd       int
	entries  uint32
	noPoll   bool
	pool     *slotPool

	sqRing  []byte
	cqRing  []byte
	sqes    []byte

	sqHead, sqTail, sqMask, sqArray *uint32
	cqHead, cqTail, cqMask          *uint32
	cqesOff                         uint32

	mu      sync.Mutex
	tags    map[uint32]SlotTag
	bufs    map[uint32][]byte
	nextIdx uint32
}

func newRingEngine(queueDepth, slotSize int, allowPoll bool) (*ringEngine, error) {
	return &ringEngine{
		entries: uint32(queueDepth),
		noPoll:  !allowPoll,
		pool:    newSlotPool(queueDepth, slotSize),
		tags:    make(map[uint32]SlotTag),
		bufs:    make(map[uint32][]byte),
	}, nil
}

func (e *ringEngine) Start(ctx context.Context) error {
	params := make([]byte, ioUringParamsSize)
	if !e.noPoll {
		binary.LittleEndian.PutUint32(params[8:12], 1<<1) // IORING_SETUP_SQPOLL
	}

	fd, _, errno := unix.Syscall(sysIoUringSetup, uintptr(e.entries), uintptr(unsafe.Pointer(&params[0])), 0)
	if errno != 0 {
		return fmt.Errorf("io_uring_setup: %w", errno)
	}
	e.fd = int(fd)

	sqEntries := binary.LittleEndian.Uint32(params[0:4])
	cqEntries := binary.LittleEndian.Uint32(params[4:8])

	// struct io_uring_params is 7 u32 fields (sq_entries, cq_entries,
	// flags, sq_thread_cpu, sq_thread_idle, features, wq_fd; 28 bytes)
	// then resv[3] (12 bytes) before sq_off starts at byte 40, cq_off at
	// byte 80.
	const paramsHeaderSize = 40
	sqOff := params[paramsHeaderSize : paramsHeaderSize+ioSqringOffsetsSize]
	cqOff := params[paramsHeaderSize+ioSqringOffsetsSize : paramsHeaderSize+ioSqringOffsetsSize+ioCqringOffsetsSize]

	sqRingSize := binary.LittleEndian.Uint32(sqOff[24:28]) // array offset
	sqRingSize += sqEntries * 4
	cqRingArrayOff := binary.LittleEndian.Uint32(cqOff[20:24]) // cqes offset
	cqRingSize := cqRingArrayOff + cqEntries*cqeSize

	sqRing, err := unix.Mmap(e.fd, 0x0, int(sqRingSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		unix.Close(e.fd)
		return fmt.Errorf("mmap sq ring: %w", err)
	}
	cqRing, err := unix.Mmap(e.fd, 0x8000000, int(cqRingSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		unix.Munmap(sqRing)
		unix.Close(e.fd)
		return fmt.Errorf("mmap cq ring: %w", err)
	}
	sqes, err := unix.Mmap(e.fd, 0x10000000, int(e.entries)*sqeSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		unix.Munmap(sqRing)
		unix.Munmap(cqRing)
		unix.Close(e.fd)
		return fmt.Errorf("mmap sqes: %w", err)
	}

	e.sqRing, e.cqRing, e.sqes = sqRing, cqRing, sqes

	e.sqHead = offsetPtr32(sqRing, binary.LittleEndian.Uint32(sqOff[0:4]))
	e.sqTail = offsetPtr32(sqRing, binary.LittleEndian.Uint32(sqOff[4:8]))
	e.sqMask = offsetPtr32(sqRing, binary.LittleEndian.Uint32(sqOff[8:12]))
	e.sqArray = offsetPtr32(sqRing, binary.LittleEndian.Uint32(sqOff[24:28]))

	e.cqHead = offsetPtr32(cqRing, binary.LittleEndian.Uint32(cqOff[0:4]))
	e.cqTail = offsetPtr32(cqRing, binary.LittleEndian.Uint32(cqOff[4:8]))
	e.cqMask = offsetPtr32(cqRing, binary.LittleEndian.Uint32(cqOff[8:12]))
	e.cqesOff = cqRingArrayOff

	return nil
}

func offsetPtr32(ring []byte, off uint32) *uint32 {
	return (*uint32)(unsafe.Pointer(&ring[off]))
}

func (e *ringEngine) Submit(fd int, offset int64, length int, tag SlotTag) error {
	buf := e.pool.get()

	e.mu.Lock()
	idx := e.nextIdx
	e.nextIdx++
	slot := idx % e.entries
	e.tags[slot] = tag
	e.bufs[slot] = buf

	sqeOff := int(slot) * sqeSize
	sqe := e.sqes[sqeOff : sqeOff+sqeSize]
	for i := range sqe {
		sqe[i] = 0
	}
	sqe[0] = ioUringOpRead
	binary.LittleEndian.PutUint32(sqe[4:8], uint32(fd))
	binary.LittleEndian.PutUint64(sqe[8:16], uint64(offset))
	binary.LittleEndian.PutUint64(sqe[16:24], uint64(uintptr(unsafe.Pointer(&buf[0]))))
	binary.LittleEndian.PutUint32(sqe[24:28], uint32(length))
	binary.LittleEndian.PutUint64(sqe[32:40], uint64(slot)) // user_data

	tail := *e.sqTail
	arrayIdx := tail & *e.sqMask
	arrayBase := unsafe.Pointer(e.sqArray)
	*(*uint32)(unsafe.Add(arrayBase, uintptr(arrayIdx)*4)) = slot
	*e.sqTail = tail + 1
	e.mu.Unlock()

	_, _, errno := unix.Syscall6(sysIoUringEnter, uintptr(e.fd), 1, 0, 0, 0, 0)
	if errno != 0 {
		e.mu.Lock()
		delete(e.tags, slot)
		delete(e.bufs, slot)
		e.mu.Unlock()
		e.pool.put(buf)
		return fmt.Errorf("io_uring_enter submit: %w", errno)
	}
	return nil
}

// Reap asks for whatever completions are already queued rather than
// blocking for min_complete entries: a blocking wait can't be interrupted
// by ctx once it's inside the syscall, and nothing would ever wake it
// once the caller stops submitting. The caller is expected to poll.
func (e *ringEngine) Reap(ctx context.Context) ([]Completion, error) {
	_, _, errno := unix.Syscall6(sysIoUringEnter, uintptr(e.fd), 0, 0, ioUringEnterGetevents, 0, 0)
	if errno != 0 && errno != unix.EINTR {
		return nil, fmt.Errorf("io_uring_enter wait: %w", errno)
	}

	var out []Completion
	head := *e.cqHead
	tail := *e.cqTail
	for ; head != tail; head++ {
		idx := head & *e.cqMask
		off := e.cqesOff + idx*cqeSize
		cqe := e.cqRing[off : off+cqeSize]
		slot := uint32(binary.LittleEndian.Uint64(cqe[0:8]))
		res := int32(binary.LittleEndian.Uint32(cqe[8:12]))

		e.mu.Lock()
		tag, ok := e.tags[slot]
		buf := e.bufs[slot]
		delete(e.tags, slot)
		delete(e.bufs, slot)
		e.mu.Unlock()
		if !ok {
			continue
		}
		e.pool.put(buf)

		c := Completion{Tag: tag}
		if res < 0 {
			c.Err = fmt.Errorf("ring completion error: %d", res)
		} else {
			c.N = int(res)
		}
		out = append(out, c)
	}
	*e.cqHead = head
	return out, nil
}

func (e *ringEngine) Backend() Backend { return BackendRing }

func (e *ringEngine) Stop() error {
	unix.Munmap(e.sqes)
	unix.Munmap(e.cqRing)
	unix.Munmap(e.sqRing)
	return unix.Close(e.fd)
}
