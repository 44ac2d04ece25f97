package filesystem

import "os"

// DeviceInfo describes a block device's size and alignment geometry.
type DeviceInfo struct {
	Size                int64
	LogicalSectorSize   int
	PhysicalSectorSize  int
	SupportsDirectIO    bool
}

const defaultSectorSize = 512

// OpenDevice attempts a direct-I/O-capable open first, falling back to a
// buffered open on failure. The returned bool reports whether direct I/O
// is actually active.
func OpenDevice(path string) (*os.File, bool, error) {
	if f, err := openDirect(path); err == nil {
		return f, true, nil
	}
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, false, err
	}
	return f, false, nil
}

// GetDeviceInfo returns size and sector geometry for an opened device.
// Size comes from seeking to the end, after which the offset is rewound
// to the start; sector sizes fall back to 512B when the
// platform-specific ioctls are unavailable or fail.
func GetDeviceInfo(f *os.File, directIO bool) (DeviceInfo, error) {
	size, err := deviceSize(f)
	if err != nil {
		return DeviceInfo{}, err
	}

	logical, physical := querySectorSizes(f)
	if logical <= 0 {
		logical = defaultSectorSize
	}
	if physical <= 0 {
		physical = defaultSectorSize
	}

	return DeviceInfo{
		Size:               size,
		LogicalSectorSize:  logical,
		PhysicalSectorSize: physical,
		SupportsDirectIO:   directIO,
	}, nil
}

// AlignIOParams rounds readSize and stride up to the device's physical
// sector size when direct I/O is active. Buffered I/O needs no alignment.
func AlignIOParams(info DeviceInfo, directIO bool, readSize, stride *int64) {
	if !directIO {
		return
	}
	align := int64(info.PhysicalSectorSize)
	if align <= 0 {
		align = defaultSectorSize
	}
	*readSize = roundUp(*readSize, align)
	*stride = roundUp(*stride, align)
}

func roundUp(v, align int64) int64 {
	if align <= 0 {
		return v
	}
	return ((v + align - 1) / align) * align
}

func deviceSize(f *os.File) (int64, error) {
	size, err := f.Seek(0, os.SEEK_END)
	if err != nil {
		return 0, err
	}
	if _, err := f.Seek(0, os.SEEK_SET); err != nil {
		return 0, err
	}
	return size, nil
}
