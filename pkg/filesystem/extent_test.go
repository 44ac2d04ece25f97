package filesystem

import "testing"

func TestExtentMapSortAndMerge(t *testing.T) {
	m := NewExtentMap()
	m.Append(200, 100)
	m.Append(0, 100)
	m.Append(100, 100)
	m.Append(400, 50)

	m.Sort()
	m.Merge(1_000_000)

	want := []Extent{
		{PhysicalOffset: 0, Length: 300},
		{PhysicalOffset: 400, Length: 50},
	}
	assertExtents(t, m, want)
}

func TestExtentMapMergeRespectsCap(t *testing.T) {
	const tenMB = 10 * 1024 * 1024
	m := NewExtentMap()
	m.Append(0, tenMB)
	m.Append(tenMB, tenMB)

	m.Sort()
	m.Merge(16_777_216)

	want := []Extent{
		{PhysicalOffset: 0, Length: tenMB},
		{PhysicalOffset: tenMB, Length: tenMB},
	}
	assertExtents(t, m, want)
}

func TestExtentMapMergeDisabled(t *testing.T) {
	m := NewExtentMap()
	m.Append(0, 100)
	m.Append(100, 100)
	m.Sort()
	m.Merge(0)

	if m.Len() != 2 {
		t.Fatalf("Merge(0) should be a no-op, got %d extents", m.Len())
	}
}

func TestAlignIOParams(t *testing.T) {
	info := DeviceInfo{PhysicalSectorSize: 4096}
	read := int64(4000)
	stride := int64(500)

	AlignIOParams(info, true, &read, &stride)

	if read != 4096 {
		t.Fatalf("read size not aligned: got %d, want 4096", read)
	}
	if stride != 4096 {
		t.Fatalf("stride not aligned: got %d, want 4096", stride)
	}
}

func TestAlignIOParamsSkippedWithoutDirectIO(t *testing.T) {
	info := DeviceInfo{PhysicalSectorSize: 4096}
	read := int64(4000)
	stride := int64(500)

	AlignIOParams(info, false, &read, &stride)

	if read != 4000 || stride != 500 {
		t.Fatalf("buffered I/O should skip alignment, got read=%d stride=%d", read, stride)
	}
}

func assertExtents(t *testing.T, m *ExtentMap, want []Extent) {
	t.Helper()
	if m.Len() != len(want) {
		t.Fatalf("extent count = %d, want %d (%+v)", m.Len(), len(want), m.All())
	}
	for i, w := range want {
		if got := m.At(i); got != w {
			t.Fatalf("extent[%d] = %+v, want %+v", i, got, w)
		}
	}
}
