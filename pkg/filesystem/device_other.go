//go:build !linux

package filesystem

import (
	"errors"
	"os"
)

// openDirect is unavailable outside Linux; OpenDevice always falls back
// to a buffered open.
func openDirect(path string) (*os.File, error) {
	return nil, errors.New("direct I/O unsupported on this platform")
}

// querySectorSizes has no portable ioctl equivalent here; GetDeviceInfo
// falls back to the 512-byte default for both values.
func querySectorSizes(f *os.File) (logical, physical int) {
	return 0, 0
}
