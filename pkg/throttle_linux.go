//go:build linux

package warmer

import "golang.org/x/sys/unix"

const (
	bestEffortClass    = 2 // IOPRIO_CLASS_BE
	idleClass          = 3 // IOPRIO_CLASS_IDLE
	defaultIOPrioLevel = 4 // the kernel's default best-effort level

	ioprioWhoProcess = 1 // IOPRIO_WHO_PROCESS
	ioprioClassShift = 13
)

func getNiceness() (int, error) {
	return unix.Getpriority(unix.PRIO_PROCESS, 0)
}

// getIOPrio issues ioprio_get for the current process, the save half of
// the save-on-enter/restore-on-exit requirement for I/O priority.
// x/sys/unix does not wrap it by name either, so it's the same raw
// Syscall approach as setIOPrio.
func getIOPrio() (class, level int, err error) {
	pid := unix.Getpid()
	ioprio, _, errno := unix.Syscall(sysIoprioGet, uintptr(ioprioWhoProcess), uintptr(pid), 0)
	if errno != 0 {
		return 0, 0, errno
	}
	class = int(ioprio>>ioprioClassShift) & 0x7
	level = int(ioprio) & ((1 << ioprioClassShift) - 1)
	return class, level, nil
}

func setNiceness(nice int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, nice)
}

// setIOPrio issues ioprio_set directly since x/sys/unix does not wrap it
// by name. The syscall number is the x86_64 one; other architectures
// would need their own (documented in DESIGN.md).
func setIOPrio(class, level int) error {
	pid := unix.Getpid()
	ioprio := uintptr(class)<<ioprioClassShift | uintptr(level)
	_, _, errno := unix.Syscall(sysIoprioSet, uintptr(ioprioWhoProcess), uintptr(pid), ioprio)
	if errno != 0 {
		return errno
	}
	return nil
}

const (
	sysIoprioSet = 251
	sysIoprioGet = 252
)
