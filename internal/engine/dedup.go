package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sync"
)

// HashSet records content hashes of accepted candidates. It only grows and
// is safe for concurrent use.
type HashSet struct {
	mu     sync.Mutex
	hashes map[string]struct{}
}

// NewHashSet returns an empty set.
func NewHashSet() *HashSet {
	return &HashSet{hashes: map[string]struct{}{}}
}

// Add inserts hash and reports whether it was new.
func (s *HashSet) Add(hash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hashes[hash]; ok {
		return false
	}
	s.hashes[hash] = struct{}{}
	return true
}

// Contains reports whether hash has been seen.
func (s *HashSet) Contains(hash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.hashes[hash]
	return ok
}

// Len returns the number of distinct hashes recorded.
func (s *HashSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hashes)
}

// Seen hashes the file at path and reports whether identical content was
// already recorded. New hashes are inserted before Seen returns.
func (s *HashSet) Seen(path string) (string, bool, error) {
	hash, err := FileSHA256(path)
	if err != nil {
		return "", false, err
	}
	return hash, !s.Add(hash), nil
}

// FileSHA256 returns the hex SHA-256 digest of the file's full content.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
