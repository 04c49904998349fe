// Package resultlog writes the plain-text list of candidates the seed check
// flagged, one path per line.
package resultlog

import (
	"fmt"
	"os"
	"sync"
)

// DefaultPath is the log created in the working directory.
const DefaultPath = "steghunt_log"

// Log is an open result log. It is safe for concurrent use.
type Log struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// Create truncates or creates the log at path.
func Create(path string) (*Log, error) {
	if path == "" {
		path = DefaultPath
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open result log: %w", err)
	}
	return &Log{path: path, f: f}, nil
}

// Path returns the file the log writes to.
func (l *Log) Path() string { return l.path }

// Record appends candidatePath and a newline. Each line reaches the file
// before Record returns.
func (l *Log) Record(candidatePath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return os.ErrClosed
	}
	if _, err := l.f.WriteString(candidatePath + "\n"); err != nil {
		return fmt.Errorf("failed to write result log: %w", err)
	}
	return nil
}

func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
