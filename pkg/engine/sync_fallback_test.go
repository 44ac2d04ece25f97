package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSyncEngineReadsRequestedRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	content := make([]byte, 8192)
	for i := range content {
		content[i] = byte(i % 251)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	e := newSyncEngine(4096)
	tag := SlotTag{FileIndex: 0, Offset: 1024}
	if err := e.Submit(int(f.Fd()), 1024, 4096, tag); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	completions, err := e.Reap(context.Background())
	if err != nil {
		t.Fatalf("Reap: %v", err)
	}
	if len(completions) != 1 {
		t.Fatalf("completions = %d, want 1", len(completions))
	}
	got := completions[0]
	if got.Tag != tag {
		t.Fatalf("tag = %+v, want %+v", got.Tag, tag)
	}
	if got.N != 4096 {
		t.Fatalf("N = %d, want 4096", got.N)
	}
	if got.Err != nil {
		t.Fatalf("unexpected error: %v", got.Err)
	}
	if e.Backend() != BackendSync {
		t.Fatalf("Backend() = %v, want sync", e.Backend())
	}
}
