package collections

// HashValue is the canonical 32-bit hash of a map key.
//
// A HashValue is a pure function of the key's bytes, with no per-process
// seeding, so hashes stored in compiled chunks stay valid across runs and a
// hash read back from a bucket can be trusted without recomputation.
type HashValue uint32

const (
	fnvOffset32 = 2166136261
	fnvPrime32  = 16777619
)

// HashString returns the canonical hash of a string key (FNV-1a).
func HashString(s string) HashValue {
	h := uint32(fnvOffset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime32
	}
	return HashValue(h)
}

// HashBytes returns the canonical hash of a byte-slice key. A []byte view
// of a string hashes identically to the string itself, which is what makes
// borrowed-view lookups possible.
func HashBytes(b []byte) HashValue {
	h := uint32(fnvOffset32)
	for _, c := range b {
		h ^= uint32(c)
		h *= fnvPrime32
	}
	return HashValue(h)
}

// HashInt64 returns the canonical hash of an integer key.
func HashInt64(v int64) HashValue {
	u := uint64(v)
	h := uint32(fnvOffset32)
	for i := 0; i < 8; i++ {
		h ^= uint32(u >> (8 * i) & 0xff)
		h *= fnvPrime32
	}
	return HashValue(h)
}

// Mix folds another hash into h. Derived hashes (bucket hashes, ordered
// map hashes) fold stored key hashes instead of re-hashing keys.
func (h HashValue) Mix(other HashValue) HashValue {
	return HashValue((uint32(h) ^ uint32(other)) * fnvPrime32)
}
