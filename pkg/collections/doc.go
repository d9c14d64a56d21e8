// Package collections provides the deterministic associative containers
// used throughout the Starling VM for symbol tables, variable slots, and
// literal mapping constants embedded in compiled chunks.
//
// The central type is SmallMap, an insertion-ordered map that adapts its
// internal representation to its population: small maps (the overwhelming
// majority in practice) are a cache-friendly linear bucket sequence, large
// maps add an open-addressed hash index over the same sequence. Iteration
// order is insertion order regardless of backend, so compiled output is
// reproducible.
//
// Hashed wraps a key with its precomputed canonical hash, letting repeated
// lookups skip re-hashing. Hashes are unseeded and stable across runs.
package collections
