package filesystem

import "github.com/bits-and-blooms/bitset"

// WarmedBitmap tracks, one bit per stride-aligned region, whether phase 1
// has already issued a read covering that region of the device. Phase 2
// consults it to skip regions phase 1 already warmed (spec §4.3/§8.3).
type WarmedBitmap struct {
	bits       *bitset.BitSet
	stride     int64
	deviceSize int64
}

// NewWarmedBitmap allocates a zeroed bitmap sized for a device of
// deviceSize bytes, keyed by offset/stride.
func NewWarmedBitmap(deviceSize, stride int64) *WarmedBitmap {
	if stride <= 0 {
		stride = 1
	}
	numBits := uint((deviceSize + stride - 1) / stride)
	return &WarmedBitmap{
		bits:       bitset.New(numBits),
		stride:     stride,
		deviceSize: deviceSize,
	}
}

// MarkRange sets every bit covering [start, start+length).
func (b *WarmedBitmap) MarkRange(start, length int64) {
	if length <= 0 {
		return
	}
	first := uint(start / b.stride)
	last := uint((start + length - 1) / b.stride)
	for bit := first; bit <= last; bit++ {
		b.bits.Set(bit)
	}
}

// Test reports whether the stride-aligned region containing offset has
// already been warmed.
func (b *WarmedBitmap) Test(offset int64) bool {
	return b.bits.Test(uint(offset / b.stride))
}

// Stride returns the bitmap's bit granularity in bytes.
func (b *WarmedBitmap) Stride() int64 { return b.stride }
