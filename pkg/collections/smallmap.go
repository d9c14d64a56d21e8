package collections

// SmallMap is a deterministic key-to-value mapping: iteration always
// yields entries in insertion order, whichever backend currently serves
// lookups.
//
// Below indexThreshold entries lookups are linear scans over the bucket
// sequence. Past the threshold the map builds a hash index over the same
// sequence and keeps extending it on insert. The upgrade is one-way; mass
// removal never downgrades the representation, which avoids thrashing.
//
// Key hashing and equality are supplied at construction, in the usual
// contract: eq(a, b) implies hash(a) == hash(b).
//
// SmallMap is not safe for concurrent mutation. A map published as part of
// a compiled chunk is immutable by convention and may be read freely.
type SmallMap[K, V any] struct {
	entries vecMap[K, V]
	index   *mapIndex // nil while the linear backend is in use
	hash    func(K) HashValue
	eq      func(a, b K) bool
}

// NewSmallMap creates an empty map with the given canonical hash and
// equality functions for K.
func NewSmallMap[K, V any](hash func(K) HashValue, eq func(a, b K) bool) *SmallMap[K, V] {
	return &SmallMap[K, V]{hash: hash, eq: eq}
}

// NewStringMap creates an empty map with string keys.
func NewStringMap[V any]() *SmallMap[string, V] {
	return NewSmallMap[string, V](HashString, func(a, b string) bool { return a == b })
}

// Hashed wraps a key with its canonical hash for this map, so callers
// performing repeated operations with the same key hash it once.
func (m *SmallMap[K, V]) Hashed(key K) Hashed[K] {
	return NewHashed(key, m.hash)
}

// Len returns the number of entries.
func (m *SmallMap[K, V]) Len() int { return m.entries.len() }

// IsEmpty reports whether the map has no entries.
func (m *SmallMap[K, V]) IsEmpty() bool { return m.entries.len() == 0 }

// indexOf returns the bucket position for the probe, or -1. It routes
// through the hash index when one exists, rebuilding a discarded index
// first if the map is past the threshold.
func (m *SmallMap[K, V]) indexOf(hash HashValue, match func(K) bool) int {
	if m.index == nil && m.entries.len() > indexThreshold {
		m.buildIndex()
	}
	if ix := m.index; ix != nil {
		pos := ix.find(hash, func(pos int32) bool {
			b := m.entries.at(int(pos))
			return b.hash == hash && match(b.key)
		})
		return int(pos)
	}
	return m.entries.getFull(hash, match)
}

func (m *SmallMap[K, V]) buildIndex() {
	ix := newMapIndex(m.entries.len())
	for i := range m.entries.buckets {
		ix.insert(m.entries.buckets[i].hash, int32(i))
	}
	m.index = ix
}

// Get returns the value stored for key.
func (m *SmallMap[K, V]) Get(key K) (V, bool) {
	return m.GetHashed(m.Hashed(key))
}

// GetHashed is Get with a prevalidated hash, avoiding recomputation.
func (m *SmallMap[K, V]) GetHashed(key Hashed[K]) (V, bool) {
	return m.GetEquiv(key.hash, func(k K) bool { return m.eq(k, key.key) })
}

// GetEquiv looks up by an equivalent borrowed view of a key: match must
// accept exactly the stored keys that compare equal to the probe, and hash
// must be the probe's canonical hash. This allows lookup by a view type
// ([]byte against string keys, say) without building an owned key.
func (m *SmallMap[K, V]) GetEquiv(hash HashValue, match func(K) bool) (V, bool) {
	if i := m.indexOf(hash, match); i >= 0 {
		return m.entries.at(i).value, true
	}
	var zero V
	return zero, false
}

// GetFull returns the entry's position in insertion order along with the
// stored key and value.
func (m *SmallMap[K, V]) GetFull(key K) (int, K, V, bool) {
	h := m.Hashed(key)
	if i := m.indexOf(h.hash, func(k K) bool { return m.eq(k, h.key) }); i >= 0 {
		b := m.entries.at(i)
		return i, b.key, b.value, true
	}
	var zeroK K
	var zeroV V
	return -1, zeroK, zeroV, false
}

// Contains reports whether key is present.
func (m *SmallMap[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Insert stores value under key, returning the previous value if the key
// was already present.
func (m *SmallMap[K, V]) Insert(key K, value V) (V, bool) {
	return m.InsertHashed(m.Hashed(key), value)
}

// InsertHashed is Insert with a prevalidated hash.
func (m *SmallMap[K, V]) InsertHashed(key Hashed[K], value V) (V, bool) {
	if i := m.indexOf(key.hash, func(k K) bool { return m.eq(k, key.key) }); i >= 0 {
		b := m.entries.at(i)
		old := b.value
		b.value = value
		return old, true
	}
	m.InsertUniqueUnchecked(key, value)
	var zero V
	return zero, false
}

// InsertUniqueUnchecked appends an entry without checking for presence.
// The caller must have established the key is absent.
func (m *SmallMap[K, V]) InsertUniqueUnchecked(key Hashed[K], value V) {
	m.entries.insertUniqueUnchecked(key, value)
	n := m.entries.len()
	if m.index != nil {
		if m.index.used >= m.index.growAt {
			m.buildIndex()
		} else {
			m.index.insert(key.hash, int32(n-1))
		}
		return
	}
	if n > indexThreshold {
		m.buildIndex()
	}
}

// Remove deletes key's entry, returning its value. Removing an absent key
// is a no-op. Remaining entries keep their order; the hash index, whose
// positions the shift invalidated, is discarded and rebuilt lazily.
func (m *SmallMap[K, V]) Remove(key K) (V, bool) {
	return m.RemoveHashed(m.Hashed(key))
}

// RemoveHashed is Remove with a prevalidated hash.
func (m *SmallMap[K, V]) RemoveHashed(key Hashed[K]) (V, bool) {
	i := m.indexOf(key.hash, func(k K) bool { return m.eq(k, key.key) })
	if i < 0 {
		var zero V
		return zero, false
	}
	_, v := m.entries.remove(i)
	m.index = nil
	return v, true
}

// Pop removes and returns the most recently inserted entry.
func (m *SmallMap[K, V]) Pop() (K, V, bool) {
	hk, v, ok := m.entries.pop()
	if !ok {
		var zeroK K
		return zeroK, v, false
	}
	// The popped entry's slot would dangle past the bucket slice.
	m.index = nil
	return hk.key, v, true
}

// Clear removes all entries.
func (m *SmallMap[K, V]) Clear() {
	m.entries.clear()
	m.index = nil
}

// All calls yield for each entry in insertion order until yield returns
// false.
func (m *SmallMap[K, V]) All(yield func(K, V) bool) {
	for i := range m.entries.buckets {
		b := &m.entries.buckets[i]
		if !yield(b.key, b.value) {
			return
		}
	}
}

// Keys returns the keys in insertion order.
func (m *SmallMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.entries.len())
	for i := range m.entries.buckets {
		keys = append(keys, m.entries.buckets[i].key)
	}
	return keys
}

// Values returns the values in insertion order.
func (m *SmallMap[K, V]) Values() []V {
	values := make([]V, 0, m.entries.len())
	for i := range m.entries.buckets {
		values = append(values, m.entries.buckets[i].value)
	}
	return values
}

// GetIndex returns the entry at position i in insertion order.
func (m *SmallMap[K, V]) GetIndex(i int) (K, V, bool) {
	if i < 0 || i >= m.entries.len() {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}
	b := m.entries.at(i)
	return b.key, b.value, true
}

// SortKeys reorders all entries by key order, replacing insertion order as
// the map's iteration order from here on.
func (m *SmallMap[K, V]) SortKeys(less func(a, b K) bool) {
	m.entries.sortKeys(less)
	m.index = nil
}

// EqOrdered reports whether both maps hold equal entries position for
// position. Use when map identity is defined by content and insertion
// order together.
func (m *SmallMap[K, V]) EqOrdered(other *SmallMap[K, V], valueEq func(a, b V) bool) bool {
	return m.entries.eqOrdered(&other.entries, m.eq, valueEq)
}

// HashOrdered hashes entries in iteration order, folding each bucket's
// stored key hash rather than re-hashing the key.
func (m *SmallMap[K, V]) HashOrdered(valueHash func(V) HashValue) HashValue {
	return m.entries.hashOrdered(valueHash)
}
