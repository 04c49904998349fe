package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/steghunt/steghunt/internal/types"
)

// DiscoverOptions controls candidate discovery.
type DiscoverOptions struct {
	Root      string
	MinSize   int64
	Dedup     bool
	Recursive bool
	Include   string
	Exclude   string
	Logger    *zap.Logger

	// Visit, when set, is called for every accepted candidate in order.
	Visit func(types.Candidate)
}

// DiscoveryError reports a directory that could not be enumerated.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("read directory %s: %v", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// dirFrame is one pending directory on the walk stack together with the
// position of the next entry to visit.
type dirFrame struct {
	path    string
	entries []fs.DirEntry
	next    int
}

// Discover walks opts.Root and returns the accepted candidates. Entries are
// visited in the order the filesystem enumerates them, and a sub-directory's
// candidates appear at the position of the sub-directory itself. When
// hashes is nil and Dedup is set, a fresh set is used.
func Discover(ctx context.Context, opts DiscoverOptions, hashes *HashSet) ([]types.Candidate, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Dedup && hashes == nil {
		hashes = NewHashSet()
	}
	filter := newPathFilter(opts.Include, opts.Exclude)

	root, err := readDirFrame(opts.Root)
	if err != nil {
		return nil, err
	}
	stack := []*dirFrame{root}
	var out []types.Candidate

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		top := stack[len(stack)-1]
		if top.next >= len(top.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		d := top.entries[top.next]
		top.next++
		p := filepath.Join(top.path, d.Name())

		switch {
		case d.IsDir():
			if !opts.Recursive {
				continue
			}
			sub, err := readDirFrame(p)
			if err != nil {
				return out, err
			}
			stack = append(stack, sub)
		case d.Type().IsRegular():
			c, ok := acceptFile(p, d, opts, filter, hashes, log)
			if !ok {
				continue
			}
			out = append(out, c)
			if opts.Visit != nil {
				opts.Visit(c)
			}
		}
	}
	log.Debug("discovery finished", zap.String("root", opts.Root), zap.Int("candidates", len(out)))
	return out, nil
}

func readDirFrame(dir string) (*dirFrame, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, &DiscoveryError{Path: dir, Err: err}
	}
	defer f.Close()
	// File.ReadDir keeps the filesystem's order; os.ReadDir would sort.
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, &DiscoveryError{Path: dir, Err: err}
	}
	return &dirFrame{path: dir, entries: entries}, nil
}

func acceptFile(p string, d fs.DirEntry, opts DiscoverOptions, filter pathFilter, hashes *HashSet, log *zap.Logger) (types.Candidate, bool) {
	rel, err := filepath.Rel(opts.Root, p)
	if err != nil {
		rel = p
	}
	if !filter.allowed(rel) {
		return types.Candidate{}, false
	}
	info, err := d.Info()
	if err != nil {
		log.Debug("skipping file", zap.String("path", p), zap.Error(err))
		return types.Candidate{}, false
	}
	c, ok := classifyFile(p, info.Size(), opts.MinSize)
	if !ok {
		return types.Candidate{}, false
	}
	c.Rel = filepath.ToSlash(rel)
	if opts.Dedup {
		hash, dup, err := hashes.Seen(p)
		if err != nil {
			log.Debug("skipping unhashable file", zap.String("path", p), zap.Error(err))
			return types.Candidate{}, false
		}
		if dup {
			log.Debug("skipping duplicate", zap.String("path", p), zap.String("sha256", hash))
			return types.Candidate{}, false
		}
		c.Hash = hash
	}
	return c, true
}
