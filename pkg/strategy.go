package warmer

// SelectStrategy applies the four-step priority rule from spec §4.6 to a
// single file's size, deciding how Core B will warm it. hintAvailable
// reports whether an OS-native residency hint exists on this platform
// (fadvise does, on Linux); asyncRequested reports whether the caller
// asked for submission-engine reads regardless of hint availability.
func SelectStrategy(size, maxFileSize, sparseLargeFiles int64, hintAvailable, asyncRequested bool) WarmStrategyKind {
	if maxFileSize > 0 && size > maxFileSize {
		return StrategySkip
	}
	if sparseLargeFiles > 0 && size >= sparseLargeFiles {
		return StrategySparse
	}
	if hintAvailable && !asyncRequested {
		return StrategyHint
	}
	return StrategyFull
}
