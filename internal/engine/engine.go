package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/steghunt/steghunt/internal/cache"
	"github.com/steghunt/steghunt/internal/types"
)

// Invoker runs the two stegseek sub-operations for one candidate.
type Invoker interface {
	Seed(ctx context.Context, c types.Candidate) (types.Outcome, error)
	Crack(ctx context.Context, c types.Candidate, wordlist, outFile string) (types.Outcome, error)
}

// Recorder receives the path of every candidate the seed check flagged.
type Recorder interface {
	Record(path string) error
}

// Config controls discovery scope, the mode and the worker pool.
type Config struct {
	Root      string
	OutputDir string
	Wordlist  string
	Mode      types.Mode
	MinSize   int64
	Recursive bool
	Dedup     bool
	Include   string
	Exclude   string
	Threads   int
	FailFast  bool
	Resume    bool
	// CacheDir holds resume caches; empty means cache.DefaultDir().
	CacheDir string

	Recorder Recorder
	Logger   *zap.Logger

	// Discovered is called for every accepted candidate while the tree is
	// walked. Progress is called after every completed candidate. Both are
	// called from a single goroutine.
	Discovered func(types.Candidate)
	Progress   func(types.Progress)
}

// State is the lifecycle position of a Batch.
type State int32

const (
	Idle State = iota
	Running
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// CandidateError is an invocation failure tied to the candidate it hit.
type CandidateError struct {
	Path string
	Err  error
}

func (e *CandidateError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *CandidateError) Unwrap() error { return e.Err }

// Result summarizes a finished batch.
type Result struct {
	RunID    string
	Mode     types.Mode
	Counters types.Counters
	Duration time.Duration
	Errors   []CandidateError
}

// NoResults reports whether the run neither found nor cracked anything.
func (r Result) NoResults() bool {
	return r.Counters.Found == 0 && r.Counters.Cracked == 0
}

// Batch is one run over a directory tree. It moves from Idle through
// Running to Done and cannot be restarted.
type Batch struct {
	cfg   Config
	inv   Invoker
	log   *zap.Logger
	state atomic.Int32

	candidates   []types.Candidate
	outFiles     []string
	fingerprints []string
	skipped      int
	db           cache.DB
	cachePath    string
}

// NewBatch returns an Idle batch.
func NewBatch(cfg Config, inv Invoker) *Batch {
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Batch{cfg: cfg, inv: inv, log: log}
}

// State returns the batch's current state.
func (b *Batch) State() State { return State(b.state.Load()) }

// Candidates returns the candidates that will be processed. It is only
// meaningful after Prepare.
func (b *Batch) Candidates() []types.Candidate { return b.candidates }

// Total returns the number of candidates Process will run.
func (b *Batch) Total() int { return len(b.candidates) }

// Prepare discovers candidates, assigns output files and applies the resume
// cache. It fixes Total.
func (b *Batch) Prepare(ctx context.Context) error {
	if b.State() != Idle {
		return errors.New("batch already started")
	}
	found, err := Discover(ctx, DiscoverOptions{
		Root:      b.cfg.Root,
		MinSize:   b.cfg.MinSize,
		Dedup:     b.cfg.Dedup,
		Recursive: b.cfg.Recursive,
		Include:   b.cfg.Include,
		Exclude:   b.cfg.Exclude,
		Logger:    b.log,
		Visit:     b.cfg.Discovered,
	}, nil)
	if err != nil {
		return err
	}

	var names []string
	if b.cfg.Mode.Cracks() {
		names = outputNames(b.cfg.OutputDir, found)
	}
	if !b.cfg.Resume {
		b.candidates, b.outFiles = found, names
		b.fingerprints = make([]string, len(found))
		return nil
	}

	b.db = b.loadCache()
	for i, c := range found {
		fp, err := cache.Fingerprint(c.Path)
		if err != nil {
			b.log.Debug("fingerprint", zap.String("path", c.Path), zap.Error(err))
		}
		if b.db.Fresh(c.Rel, b.cfg.Mode, fp) {
			b.skipped++
			continue
		}
		b.candidates = append(b.candidates, c)
		b.fingerprints = append(b.fingerprints, fp)
		if names != nil {
			b.outFiles = append(b.outFiles, names[i])
		}
	}
	b.log.Debug("resume cache applied", zap.Int("skipped", b.skipped), zap.Int("remaining", len(b.candidates)))
	return nil
}

func (b *Batch) loadCache() cache.DB {
	b.cachePath = cache.PathFor(b.cfg.CacheDir, b.cfg.Root)
	db, err := cache.Load(b.cachePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		b.log.Warn("ignoring unreadable resume cache", zap.String("cache", b.cachePath), zap.Error(err))
	}
	db.Root = b.cfg.Root
	return db
}

// outputNames assigns each candidate its extraction file. The first
// candidate with a given base name gets <base>.out; later ones get an infix
// derived from their relative path.
func outputNames(outDir string, cands []types.Candidate) []string {
	names := make([]string, len(cands))
	used := make(map[string]bool, len(cands))
	for i, c := range cands {
		base := filepath.Base(c.Path)
		name := base + ".out"
		if used[base] {
			name = base + "." + cache.Hex64(xxhash.Sum64String(c.Rel)) + ".out"
		}
		used[base] = true
		names[i] = filepath.Join(outDir, name)
	}
	return names
}

type msgKind int

const (
	msgFound msgKind = iota
	msgDone
)

// message carries one worker event to the collector.
type message struct {
	kind     msgKind
	index    int
	found    bool
	cracked  bool
	err      error
	canceled bool
}

// Process runs every prepared candidate through the Invoker. Counters, the
// recorder and progress callbacks are driven by one collector goroutine so
// the counters equal the outcome counts for any number of workers.
func (b *Batch) Process(ctx context.Context) (Result, error) {
	if !b.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return Result{}, errors.New("batch already started")
	}
	defer b.state.Store(int32(Done))

	res := Result{RunID: uuid.NewString(), Mode: b.cfg.Mode}
	res.Counters.Total = len(b.candidates)
	res.Counters.Skipped = b.skipped
	start := time.Now()

	msgs := make(chan message, b.cfg.Threads)
	collected := make(chan error, 1)
	go func() { collected <- b.collect(msgs, &res, start) }()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Threads)
	for i := range b.candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error { return b.process(gctx, i, msgs) })
	}
	runErr := g.Wait()
	close(msgs)
	recErr := <-collected
	res.Duration = time.Since(start)

	if b.cfg.Resume {
		if err := cache.Save(b.cachePath, b.db); err != nil {
			b.log.Warn("could not save resume cache", zap.Error(err))
		}
	}

	switch {
	case runErr != nil:
		return res, runErr
	case ctx.Err() != nil:
		return res, ctx.Err()
	case recErr != nil:
		return res, fmt.Errorf("write result log: %w", recErr)
	}
	return res, nil
}

// process runs the mode's sub-operations for candidate i. It only returns an
// error to abort the whole batch.
func (b *Batch) process(ctx context.Context, i int, msgs chan<- message) error {
	c := b.candidates[i]
	done := message{kind: msgDone, index: i}

	if b.cfg.Mode.Detects() {
		out, err := b.inv.Seed(ctx, c)
		if err != nil {
			return b.fail(ctx, done, err, msgs)
		}
		if !out.Success() {
			msgs <- done
			return nil
		}
		done.found = true
		msgs <- message{kind: msgFound, index: i}
	}

	if b.cfg.Mode.Cracks() {
		out, err := b.inv.Crack(ctx, c, b.cfg.Wordlist, b.outFiles[i])
		if err != nil {
			return b.fail(ctx, done, err, msgs)
		}
		done.cracked = out.Success()
	}
	msgs <- done
	return nil
}

func (b *Batch) fail(ctx context.Context, done message, err error, msgs chan<- message) error {
	if ctx.Err() != nil {
		done.canceled = true
		msgs <- done
		return nil
	}
	done.err = err
	msgs <- done
	if b.cfg.FailFast {
		return &CandidateError{Path: b.candidates[done.index].Path, Err: err}
	}
	return nil
}

// collect consumes worker messages until msgs is closed and returns the first
// recorder error.
func (b *Batch) collect(msgs <-chan message, res *Result, start time.Time) error {
	var recErr error
	for m := range msgs {
		c := b.candidates[m.index]
		if m.kind == msgFound {
			if b.cfg.Recorder != nil {
				if err := b.cfg.Recorder.Record(c.Path); err != nil && recErr == nil {
					recErr = err
				}
			}
			continue
		}
		// A candidate interrupted after its seed check succeeded is already in
		// the result log, so it counts as processed and found. It is kept out
		// of the resume cache so the crack runs again next time.
		if m.canceled && !m.found {
			continue
		}

		res.Counters.Processed++
		if m.found {
			res.Counters.Found++
		}
		if m.cracked {
			res.Counters.Cracked++
		}
		if m.err != nil {
			res.Counters.Failed++
			res.Errors = append(res.Errors, CandidateError{Path: c.Path, Err: m.err})
			b.log.Debug("candidate failed", zap.String("path", c.Path), zap.Error(m.err))
		} else if b.cfg.Resume && !m.canceled {
			b.db.Entries[c.Rel] = cache.Entry{
				Hash:    b.fingerprints[m.index],
				Mode:    b.cfg.Mode,
				Found:   m.found,
				Cracked: m.cracked,
			}
		}

		if b.cfg.Progress != nil {
			b.cfg.Progress(types.Progress{
				Elapsed:   time.Since(start),
				Counters:  res.Counters,
				Mode:      b.cfg.Mode,
				Candidate: c,
			})
		}
	}
	return recErr
}

// Run discovers candidates under cfg.Root and processes them with inv.
func Run(ctx context.Context, cfg Config, inv Invoker) (Result, error) {
	b := NewBatch(cfg, inv)
	if err := b.Prepare(ctx); err != nil {
		return Result{Mode: cfg.Mode}, err
	}
	return b.Process(ctx)
}
