package collections

// Hashed pairs a key with its precomputed hash so that repeated lookups
// against the same key do not re-hash it.
type Hashed[K any] struct {
	hash HashValue
	key  K
}

// NewHashed computes the key's hash with the given canonical hash function
// and caches it.
func NewHashed[K any](key K, hash func(K) HashValue) Hashed[K] {
	return Hashed[K]{hash: hash(key), key: key}
}

// newHashedUnchecked wraps a key with an already-computed hash, skipping
// recomputation. The caller guarantees the hash is what the canonical hash
// function would produce; the only legitimate source is a bucket's own
// stored hash.
func newHashedUnchecked[K any](hash HashValue, key K) Hashed[K] {
	return Hashed[K]{hash: hash, key: key}
}

// Hash returns the cached hash value.
func (h Hashed[K]) Hash() HashValue { return h.hash }

// Key returns the wrapped key.
func (h Hashed[K]) Key() K { return h.key }
