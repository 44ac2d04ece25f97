package warmer

import "testing"

func TestSelectStrategy(t *testing.T) {
	cases := []struct {
		name             string
		size             int64
		maxFileSize      int64
		sparseLargeFiles int64
		hintAvailable    bool
		asyncRequested   bool
		want             WarmStrategyKind
	}{
		{"over max size skips", 2_000_000, 1_000_000, 0, true, false, StrategySkip},
		{"at sparse threshold goes sparse", 1_000_000, 0, 1_000_000, true, false, StrategySparse},
		{"above sparse threshold goes sparse", 5_000_000, 0, 1_000_000, true, false, StrategySparse},
		{"max size wins over sparse", 5_000_000, 1_000_000, 2_000_000, true, false, StrategySkip},
		{"hint when available and not async", 1_000, 0, 0, true, false, StrategyHint},
		{"full when async requested despite hint", 1_000, 0, 0, true, true, StrategyFull},
		{"full when no hint available", 1_000, 0, 0, false, false, StrategyFull},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := SelectStrategy(c.size, c.maxFileSize, c.sparseLargeFiles, c.hintAvailable, c.asyncRequested)
			if got != c.want {
				t.Fatalf("SelectStrategy(...) = %v, want %v", got, c.want)
			}
		})
	}
}
