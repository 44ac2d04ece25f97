package warmer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOrchestratorBWarmsFilesWithSyncBackend(t *testing.T) {
	dir := t.TempDir()
	content := make([]byte, 300*1024)
	for i := range content {
		content[i] = byte(i % 255)
	}
	if err := os.WriteFile(filepath.Join(dir, "data.bin"), content, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cfg := DefaultCoreBConfig()
	cfg.Directories = []string{dir}
	cfg.Backend = IoBackend("sync") // force the deterministic fallback engine
	cfg.ReadSizeKB = 64
	cfg.MaxDepth = -1

	orch := NewOrchestratorB(&cfg)
	result, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.FilesVisited != 1 {
		t.Fatalf("FilesVisited = %d, want 1", result.FilesVisited)
	}
	if result.BytesCovered == 0 {
		t.Fatalf("expected nonzero bytes covered")
	}
	if result.State != StateDone {
		t.Fatalf("State = %v, want done", result.State)
	}
	if result.BackendInUse != "sync" {
		t.Fatalf("BackendInUse = %s, want sync", result.BackendInUse)
	}
}
