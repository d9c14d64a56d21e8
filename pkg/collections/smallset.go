package collections

// SmallSet is the value-less companion of SmallMap: the same deterministic
// ordered container restricted to keys.
type SmallSet[K any] struct {
	m SmallMap[K, struct{}]
}

// NewSmallSet creates an empty set with the given canonical hash and
// equality functions for K.
func NewSmallSet[K any](hash func(K) HashValue, eq func(a, b K) bool) *SmallSet[K] {
	return &SmallSet[K]{m: SmallMap[K, struct{}]{hash: hash, eq: eq}}
}

// NewStringSet creates an empty set of strings.
func NewStringSet() *SmallSet[string] {
	return NewSmallSet[string](HashString, func(a, b string) bool { return a == b })
}

// Len returns the number of elements.
func (s *SmallSet[K]) Len() int { return s.m.Len() }

// IsEmpty reports whether the set has no elements.
func (s *SmallSet[K]) IsEmpty() bool { return s.m.IsEmpty() }

// Hashed wraps a key with its canonical hash for this set.
func (s *SmallSet[K]) Hashed(key K) Hashed[K] { return s.m.Hashed(key) }

// Add inserts key, reporting whether it was absent.
func (s *SmallSet[K]) Add(key K) bool {
	_, present := s.m.Insert(key, struct{}{})
	return !present
}

// AddHashed is Add with a prevalidated hash.
func (s *SmallSet[K]) AddHashed(key Hashed[K]) bool {
	_, present := s.m.InsertHashed(key, struct{}{})
	return !present
}

// Has reports whether key is an element.
func (s *SmallSet[K]) Has(key K) bool { return s.m.Contains(key) }

// HasHashed is Has with a prevalidated hash.
func (s *SmallSet[K]) HasHashed(key Hashed[K]) bool {
	_, ok := s.m.GetHashed(key)
	return ok
}

// HasEquiv tests membership by an equivalent borrowed view of a key.
func (s *SmallSet[K]) HasEquiv(hash HashValue, match func(K) bool) bool {
	_, ok := s.m.GetEquiv(hash, match)
	return ok
}

// Remove deletes key, reporting whether it was present.
func (s *SmallSet[K]) Remove(key K) bool {
	_, ok := s.m.Remove(key)
	return ok
}

// Clear removes all elements.
func (s *SmallSet[K]) Clear() { s.m.Clear() }

// All calls yield for each element in insertion order until yield returns
// false.
func (s *SmallSet[K]) All(yield func(K) bool) {
	s.m.All(func(k K, _ struct{}) bool { return yield(k) })
}

// Elems returns the elements in insertion order.
func (s *SmallSet[K]) Elems() []K { return s.m.Keys() }
