package warmer

import (
	"errors"
	"testing"
)

func TestConfigValidateClampsThreads(t *testing.T) {
	cfg := DefaultCoreBConfig()
	cfg.Directories = []string{"/tmp"}
	cfg.Threads = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Threads != 1 {
		t.Fatalf("Threads = %d, want clamped to 1", cfg.Threads)
	}

	cfg.Threads = 100
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Threads != MaxThreads {
		t.Fatalf("Threads = %d, want clamped to %d", cfg.Threads, MaxThreads)
	}
}

func TestConfigValidateRejectsNoDirectories(t *testing.T) {
	cfg := DefaultCoreBConfig()
	err := cfg.Validate()
	if !errors.Is(err, ErrNoRoots) {
		t.Fatalf("Validate() error = %v, want ErrNoRoots", err)
	}
}

func TestConfigValidateRejectsBadThrottle(t *testing.T) {
	cfg := DefaultCoreBConfig()
	cfg.Directories = []string{"/tmp"}
	cfg.Throttle = 8
	if !errors.Is(cfg.Validate(), ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for throttle=8")
	}
}

func TestConfigValidateRejectsBadBackend(t *testing.T) {
	cfg := DefaultCoreBConfig()
	cfg.Directories = []string{"/tmp"}
	cfg.Backend = IoBackend("quic")
	if !errors.Is(cfg.Validate(), ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for an unknown backend")
	}
}

func TestReadSizeAndStrideBytes(t *testing.T) {
	cfg := DefaultCoreAConfig()
	cfg.ReadSizeKB = 4
	cfg.StrideKB = 512
	if cfg.ReadSizeBytes() != 4*1024 {
		t.Fatalf("ReadSizeBytes() = %d, want %d", cfg.ReadSizeBytes(), 4*1024)
	}
	if cfg.StrideBytes() != 512*1024 {
		t.Fatalf("StrideBytes() = %d, want %d", cfg.StrideBytes(), 512*1024)
	}
}
