package collections

import "sort"

// bucket is one (hash, key, value) record in the map's backing sequence.
// Buckets are exclusively owned by the store holding them.
type bucket[K, V any] struct {
	hash  HashValue
	key   K
	value V
}

// vecMap is the small-map backend: insertion-ordered buckets searched
// linearly. For a few dozen entries this beats a hash index, which pays
// for itself in memory overhead and cache-unfriendly indirection.
type vecMap[K, V any] struct {
	buckets []bucket[K, V]
}

// getFull scans for the first bucket whose stored hash matches and whose
// key satisfies match. The integer hash compare runs before the key
// compare so that non-matching buckets are skipped cheaply.
func (m *vecMap[K, V]) getFull(hash HashValue, match func(K) bool) int {
	for i := range m.buckets {
		b := &m.buckets[i]
		if b.hash == hash && match(b.key) {
			return i
		}
	}
	return -1
}

// at returns the bucket at position i. Caller guarantees i is in range.
func (m *vecMap[K, V]) at(i int) *bucket[K, V] {
	return &m.buckets[i]
}

// insertUniqueUnchecked appends a new bucket. The caller must have
// established that the key is not present; violating that produces
// duplicate keys, a logic error rather than a crash.
func (m *vecMap[K, V]) insertUniqueUnchecked(key Hashed[K], value V) {
	m.buckets = append(m.buckets, bucket[K, V]{hash: key.hash, key: key.key, value: value})
}

// remove deletes and returns the bucket at position i, preserving the
// order of the remaining entries.
func (m *vecMap[K, V]) remove(i int) (Hashed[K], V) {
	b := m.buckets[i]
	m.buckets = append(m.buckets[:i], m.buckets[i+1:]...)
	return newHashedUnchecked(b.hash, b.key), b.value
}

// pop removes and returns the last bucket.
func (m *vecMap[K, V]) pop() (Hashed[K], V, bool) {
	n := len(m.buckets)
	if n == 0 {
		var zero V
		return Hashed[K]{}, zero, false
	}
	b := m.buckets[n-1]
	m.buckets = m.buckets[:n-1]
	return newHashedUnchecked(b.hash, b.key), b.value, true
}

func (m *vecMap[K, V]) clear() {
	m.buckets = m.buckets[:0]
}

func (m *vecMap[K, V]) len() int {
	return len(m.buckets)
}

// sortKeys reorders all buckets by key order, abandoning insertion order.
func (m *vecMap[K, V]) sortKeys(less func(a, b K) bool) {
	sort.SliceStable(m.buckets, func(i, j int) bool {
		return less(m.buckets[i].key, m.buckets[j].key)
	})
}

// eqOrdered reports whether both stores hold equal entries position for
// position. Stored hashes are not compared; they are derived from keys.
func (m *vecMap[K, V]) eqOrdered(other *vecMap[K, V], keyEq func(a, b K) bool, valueEq func(a, b V) bool) bool {
	if len(m.buckets) != len(other.buckets) {
		return false
	}
	for i := range m.buckets {
		a, b := &m.buckets[i], &other.buckets[i]
		if !keyEq(a.key, b.key) || !valueEq(a.value, b.value) {
			return false
		}
	}
	return true
}

// hashOrdered hashes entries in iteration order. Keys are not re-hashed;
// each bucket's stored hash is folded in instead.
func (m *vecMap[K, V]) hashOrdered(valueHash func(V) HashValue) HashValue {
	h := HashValue(fnvOffset32)
	for i := range m.buckets {
		b := &m.buckets[i]
		h = h.Mix(b.hash).Mix(valueHash(b.value))
	}
	return h
}
