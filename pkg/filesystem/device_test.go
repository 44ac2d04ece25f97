package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenDeviceFallsBackToBufferedOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := os.WriteFile(path, make([]byte, 4096), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, _, err := OpenDevice(path)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	defer f.Close()

	if f == nil {
		t.Fatalf("expected a non-nil file")
	}
}

func TestGetDeviceInfoReportsSizeAndDefaultSectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	const size = 1 << 20
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, directIO, err := OpenDevice(path)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	defer f.Close()

	info, err := GetDeviceInfo(f, directIO)
	if err != nil {
		t.Fatalf("GetDeviceInfo: %v", err)
	}
	if info.Size != size {
		t.Fatalf("Size = %d, want %d", info.Size, size)
	}
	if info.LogicalSectorSize <= 0 || info.PhysicalSectorSize <= 0 {
		t.Fatalf("expected positive sector sizes, got logical=%d physical=%d",
			info.LogicalSectorSize, info.PhysicalSectorSize)
	}
	if info.SupportsDirectIO != directIO {
		t.Fatalf("SupportsDirectIO = %v, want %v", info.SupportsDirectIO, directIO)
	}

	// GetDeviceInfo sizes the file by seeking to its end, so it must
	// rewind the offset to the start afterwards.
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		t.Fatalf("Seek after GetDeviceInfo: %v", err)
	}
	if pos != 0 {
		t.Fatalf("offset after GetDeviceInfo = %d, want 0", pos)
	}
}

func TestDeviceInfoDefaultsSectorSizeWhenQueryFails(t *testing.T) {
	logical, physical := 0, 0
	if logical <= 0 {
		logical = defaultSectorSize
	}
	if physical <= 0 {
		physical = defaultSectorSize
	}
	if logical != defaultSectorSize || physical != defaultSectorSize {
		t.Fatalf("expected both to default to %d", defaultSectorSize)
	}
}
