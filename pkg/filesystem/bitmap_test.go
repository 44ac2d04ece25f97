package filesystem

import "testing"

func TestWarmedBitmapSkipsPhase1Regions(t *testing.T) {
	const stride = int64(4096)
	const deviceSize = 10 * stride

	bm := NewWarmedBitmap(deviceSize, stride)
	bm.MarkRange(0, stride)
	bm.MarkRange(stride, stride)
	bm.MarkRange(2*stride, stride)

	var phase2Reads int64
	for region := int64(0); region < 10; region++ {
		offset := region * stride
		if bm.Test(offset) {
			continue
		}
		phase2Reads++
	}

	if phase2Reads != 7 {
		t.Fatalf("phase 2 reads = %d, want 7", phase2Reads)
	}
}

func TestWarmedBitmapMarkRangeSpansMultipleStrides(t *testing.T) {
	const stride = int64(100)
	bm := NewWarmedBitmap(1000, stride)

	bm.MarkRange(50, 180) // covers strides 0,1,2

	if !bm.Test(0) || !bm.Test(150) || !bm.Test(220) {
		t.Fatalf("expected strides 0,1,2 all marked")
	}
	if bm.Test(300) {
		t.Fatalf("stride 3 should be unmarked")
	}
}

func TestWarmedBitmapZeroLengthRangeIsNoop(t *testing.T) {
	bm := NewWarmedBitmap(1000, 100)
	bm.MarkRange(50, 0)
	if bm.Test(0) {
		t.Fatalf("zero-length MarkRange should not mark anything")
	}
}
