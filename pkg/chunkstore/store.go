// Package chunkstore persists compiled chunks in a local SQLite
// database, keyed by their content hash.
package chunkstore

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/chazu/starling/pkg/bytecode"
)

// ErrNotFound indicates no chunk with the requested hash is stored.
var ErrNotFound = errors.New("chunk not found")

// Store is a content-addressed chunk store. A chunk's key is the SHA-256
// of its canonical serialization, so storing the same chunk twice is a
// no-op and a retrieved chunk can always be verified against its key.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if necessary) a chunk store at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS chunks (
		hash BLOB PRIMARY KEY,
		name TEXT NOT NULL,
		data BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db}, nil
}

// Put serializes and stores a chunk, returning its content hash.
func (s *Store) Put(c *bytecode.Chunk) ([32]byte, error) {
	data, err := bytecode.MarshalChunk(c)
	if err != nil {
		return [32]byte{}, fmt.Errorf("marshaling chunk: %w", err)
	}
	hash, err := bytecode.ChunkHash(c)
	if err != nil {
		return [32]byte{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO chunks (hash, name, data) VALUES (?, ?, ?)",
		hash[:], c.Name, data,
	)
	if err != nil {
		return [32]byte{}, fmt.Errorf("storing chunk: %w", err)
	}
	return hash, nil
}

// Get retrieves and deserializes the chunk with the given hash.
func (s *Store) Get(hash [32]byte) (*bytecode.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	err := s.db.QueryRow("SELECT data FROM chunks WHERE hash = ?", hash[:]).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading chunk: %w", err)
	}
	return bytecode.UnmarshalChunk(data)
}

// Has reports whether a chunk with the given hash is stored.
func (s *Store) Has(hash [32]byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var one int
	err := s.db.QueryRow("SELECT 1 FROM chunks WHERE hash = ?", hash[:]).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking chunk: %w", err)
	}
	return true, nil
}

// List returns the name and hash of every stored chunk.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT hash, name FROM chunks ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var raw []byte
		var e Entry
		if err := rows.Scan(&raw, &e.Name); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		if len(raw) != len(e.Hash) {
			return nil, fmt.Errorf("corrupt hash of length %d for chunk %q", len(raw), e.Name)
		}
		copy(e.Hash[:], raw)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Entry identifies one stored chunk.
type Entry struct {
	Hash [32]byte
	Name string
}

// Delete removes the chunk with the given hash. Deleting an absent chunk
// is not an error.
func (s *Store) Delete(hash [32]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM chunks WHERE hash = ?", hash[:]); err != nil {
		return fmt.Errorf("deleting chunk: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
