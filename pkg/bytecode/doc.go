// Package bytecode defines the compiled instruction format for Starling
// programs: opcodes with fixed stack effects, typed instruction
// arguments that render themselves for disassembly and report their own
// stack contribution, chunks with constant pools and source spans, a
// path-sensitive stack-balance verifier, and a canonical CBOR wire
// encoding whose bytes are stable across runs.
package bytecode
