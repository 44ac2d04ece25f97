// Package filesystem queries a file's physical layout on its backing
// block device and probes that device's geometry, mirroring the C
// originals' filesystem.c and the FIEMAP/ioctl plumbing they wrap.
package filesystem

import "sort"

// Extent is one contiguous run of physical bytes backing part of a file.
type Extent struct {
	PhysicalOffset int64
	Length         int64
}

// ExtentMap is the ordered, growable sequence of extents discovered for
// a set of files. It is mutex-free: callers append concurrently under
// their own lock during the walk, then call Sort/Merge single-threaded.
type ExtentMap struct {
	extents []Extent
}

// NewExtentMap returns an empty map with capacity preallocated.
func NewExtentMap() *ExtentMap {
	return &ExtentMap{extents: make([]Extent, 0, 16)}
}

// Append adds one extent. Zero-length extents are dropped.
func (m *ExtentMap) Append(physicalOffset, length int64) {
	if length <= 0 {
		return
	}
	m.extents = append(m.extents, Extent{PhysicalOffset: physicalOffset, Length: length})
}

// Len reports the number of extents currently held.
func (m *ExtentMap) Len() int { return len(m.extents) }

// At returns the extent at index i.
func (m *ExtentMap) At(i int) Extent { return m.extents[i] }

// All returns the underlying slice. Callers must not mutate it directly.
func (m *ExtentMap) All() []Extent { return m.extents }

// Sort orders extents ascending by physical offset, stable on ties.
func (m *ExtentMap) Sort() {
	sort.SliceStable(m.extents, func(i, j int) bool {
		return m.extents[i].PhysicalOffset < m.extents[j].PhysicalOffset
	})
}

// Merge coalesces consecutive extents that are physically adjacent and
// whose combined length does not exceed maxBytes. maxBytes == 0 disables
// merging entirely. Call Sort first; Merge assumes ascending order.
func (m *ExtentMap) Merge(maxBytes int64) {
	if maxBytes == 0 || len(m.extents) <= 1 {
		return
	}

	write := 0
	for read := 0; read < len(m.extents); read++ {
		m.extents[write] = m.extents[read]

		for read+1 < len(m.extents) {
			current := &m.extents[write]
			next := m.extents[read+1]

			if current.PhysicalOffset+current.Length != next.PhysicalOffset {
				break
			}
			if current.Length+next.Length > maxBytes {
				break
			}

			current.Length += next.Length
			read++
		}
		write++
	}
	m.extents = m.extents[:write]
}

// TotalStrides returns Σ⌈extent.Length / stride⌉ across all extents,
// the denominator the progress observer reports against during phase 1.
func (m *ExtentMap) TotalStrides(stride int64) uint64 {
	var total uint64
	for _, e := range m.extents {
		total += uint64((e.Length + stride - 1) / stride)
	}
	return total
}
