package collections

// indexThreshold is the entry count above which a SmallMap builds a hash
// index over its bucket sequence.
const indexThreshold = 32

const indexEmpty = -1

// mapIndex is the large-map backend: an open-addressed table of positions
// into the bucket sequence. It stores positions rather than entries, so a
// probe compares the referenced bucket's stored hash before touching the
// key. Capacity is a power of two; probing is linear.
//
// The index never carries tombstones: any mutation that invalidates bucket
// positions (removal, pop, clear, sort) discards the whole index, and the
// owning map rebuilds it lazily.
type mapIndex struct {
	slots []int32
	mask  uint32
	used  int
	// growAt is the occupancy at which the owner must rebuild with more
	// capacity before the next insert.
	growAt int
}

// newMapIndex sizes an index for n entries with room to grow.
func newMapIndex(n int) *mapIndex {
	capacity := 16
	for capacity < n*2 {
		capacity *= 2
	}
	slots := make([]int32, capacity)
	for i := range slots {
		slots[i] = indexEmpty
	}
	return &mapIndex{
		slots:  slots,
		mask:   uint32(capacity - 1),
		growAt: capacity * 7 / 8,
	}
}

// find probes for a bucket position whose entry satisfies matchAt, which
// must compare the stored hash before the key. Probing stops at the first
// empty slot, which is sound because the index has no tombstones.
func (ix *mapIndex) find(hash HashValue, matchAt func(pos int32) bool) int32 {
	for i := uint32(hash) & ix.mask; ; i = (i + 1) & ix.mask {
		pos := ix.slots[i]
		if pos == indexEmpty {
			return -1
		}
		if matchAt(pos) {
			return pos
		}
	}
}

// insert records a bucket position for hash. The caller must have verified
// the key is absent and that used < growAt.
func (ix *mapIndex) insert(hash HashValue, pos int32) {
	for i := uint32(hash) & ix.mask; ; i = (i + 1) & ix.mask {
		if ix.slots[i] == indexEmpty {
			ix.slots[i] = pos
			ix.used++
			return
		}
	}
}
