//go:build linux

package filesystem

import (
	"os"

	"golang.org/x/sys/unix"
)

// openDirect opens path with O_DIRECT so reads bypass the page cache,
// matching the C originals' preference for raw device access. Callers
// fall back to a buffered open when this fails (non-block-aligned
// filesystem, permission denied, or an FS that rejects O_DIRECT).
func openDirect(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECT, 0)
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

// querySectorSizes reads logical and physical sector size via BLKSSZGET
// and BLKPBSZGET. Either ioctl failing (e.g. the target is a regular
// file, not a block device) yields a zero, and the caller substitutes
// the 512-byte default.
func querySectorSizes(f *os.File) (logical, physical int) {
	fd := int(f.Fd())

	if v, err := unix.IoctlGetInt(fd, unix.BLKSSZGET); err == nil {
		logical = v
	}
	if v, err := unix.IoctlGetInt(fd, blkpbszget); err == nil {
		physical = v
	}
	return logical, physical
}

// blkpbszget is BLKPBSZGET, the physical block size ioctl. x/sys/unix
// does not name it on every architecture, so it's defined directly from
// the kernel's linux/fs.h value (0x127b, matching BLKSSZGET's encoding).
const blkpbszget = 0x127b
