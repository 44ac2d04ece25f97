package warmer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func sparseFile(t *testing.T, path string, size int64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate %s: %v", path, err)
	}
}

func TestWalkerFiltersByMaxFileSize(t *testing.T) {
	dir := t.TempDir()
	sparseFile(t, filepath.Join(dir, "small.bin"), 1_000)
	sparseFile(t, filepath.Join(dir, "huge.bin"), 2*1024*1024*1024)
	sparseFile(t, filepath.Join(dir, "medium.bin"), 200*1024*1024)

	cfg := DefaultCoreBConfig()
	cfg.MaxFileSize = 1_000_000_000
	cfg.Threads = 2
	cfg.MaxDepth = -1

	w := NewWalker(&cfg)
	out := make(chan Job, 16)

	if err := w.Walk(context.Background(), []string{dir}, out); err != nil {
		t.Fatalf("Walk: %v", err)
	}

	var got []Job
	for job := range out {
		got = append(got, job)
	}

	if len(got) != 2 {
		t.Fatalf("jobs emitted = %d, want 2 (%+v)", len(got), got)
	}
}

func TestWalkerIgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	sparseFile(t, filepath.Join(dir, ".hidden"), 10)
	sparseFile(t, filepath.Join(dir, "visible"), 10)

	cfg := DefaultCoreBConfig()
	cfg.IgnoreHidden = true
	cfg.MaxDepth = -1

	w := NewWalker(&cfg)
	out := make(chan Job, 16)

	if err := w.Walk(context.Background(), []string{dir}, out); err != nil {
		t.Fatalf("Walk: %v", err)
	}

	var got []Job
	for job := range out {
		got = append(got, job)
	}

	if len(got) != 1 || filepath.Base(got[0].Path) != "visible" {
		t.Fatalf("expected only the visible file, got %+v", got)
	}
}

func TestWalkerRespectsMaxDepth(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	sparseFile(t, filepath.Join(dir, "root.bin"), 10)
	sparseFile(t, filepath.Join(dir, "a", "one.bin"), 10)
	sparseFile(t, filepath.Join(nested, "two.bin"), 10)

	cfg := DefaultCoreBConfig()
	cfg.MaxDepth = 1

	w := NewWalker(&cfg)
	out := make(chan Job, 16)

	if err := w.Walk(context.Background(), []string{dir}, out); err != nil {
		t.Fatalf("Walk: %v", err)
	}

	var got []Job
	for job := range out {
		got = append(got, job)
	}

	if len(got) != 2 {
		t.Fatalf("jobs emitted = %d, want 2 (depth-1 cap excludes two.bin): %+v", len(got), got)
	}
}

func TestIgnoreRulesMatch(t *testing.T) {
	dir := t.TempDir()
	ignoreFile := filepath.Join(dir, ignoreFileName)
	if err := os.WriteFile(ignoreFile, []byte("*.tmp\n# comment\n\nskip.bin\n"), 0o644); err != nil {
		t.Fatalf("write ignore file: %v", err)
	}

	rules := loadIgnoreRules(dir)
	if rules == nil {
		t.Fatalf("expected ignore rules to load")
	}
	if !rules.matches("cache.tmp") {
		t.Fatalf("expected *.tmp to match cache.tmp")
	}
	if !rules.matches("skip.bin") {
		t.Fatalf("expected skip.bin to match literally")
	}
	if rules.matches("keep.bin") {
		t.Fatalf("keep.bin should not match")
	}
}
