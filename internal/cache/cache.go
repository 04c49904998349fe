package cache

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/steghunt/steghunt/internal/types"
)

// DefaultDir is where resume caches live when no directory is configured:
// ~/.steghunt/cache. Scanned trees are never written to.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".steghunt", "cache")
}

// PathFor returns the cache file for scanned root inside dir. Each root gets
// its own file named after the xxhash of its absolute path.
func PathFor(dir, root string) string {
	if dir == "" {
		dir = DefaultDir()
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return filepath.Join(dir, Hex64(xxhash.Sum64String(root))+".json")
}

// Entry is what a previous run learned about one candidate.
type Entry struct {
	Hash    string     `json:"hash"`
	Mode    types.Mode `json:"mode"`
	Found   bool       `json:"found,omitempty"`
	Cracked bool       `json:"cracked,omitempty"`
}

type DB struct {
	// Root is the scanned directory the entries belong to.
	Root string `json:"root,omitempty"`
	// Candidate path -> last processed state
	Entries map[string]Entry `json:"entries"`
}

func Load(path string) (DB, error) {
	var db DB
	f, err := os.ReadFile(path)
	if err != nil {
		return DB{Entries: map[string]Entry{}}, err
	}
	if err := json.Unmarshal(f, &db); err != nil {
		return DB{Entries: map[string]Entry{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]Entry{}
	}
	return db, nil
}

func Save(path string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Fresh reports whether key was already processed in mode with unchanged
// content.
func (db DB) Fresh(key string, mode types.Mode, hash string) bool {
	e, ok := db.Entries[key]
	return ok && e.Mode == mode && e.Hash == hash && hash != ""
}

// Fingerprint returns the xxhash64 of the file's content as 16 hex digits.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return "", err
	}
	return Hex64(d.Sum64()), nil
}

// Hex64 renders sum as fixed-width lowercase hex.
func Hex64(sum uint64) string {
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
