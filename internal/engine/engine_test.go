package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/steghunt/steghunt/internal/cache"
	"github.com/steghunt/steghunt/internal/testutil"
	"github.com/steghunt/steghunt/internal/types"
)

var errSpawn = errors.New("exec: no such file")

// fakeInvoker keys outcomes on the candidate's base name the same way the
// fake stegseek script does: "hit" seeds and cracks, "seedonly" only seeds,
// "boom" fails to spawn.
type fakeInvoker struct {
	mu       sync.Mutex
	seeds    []string
	cracks   []string
	outFiles map[string]string
	delay    time.Duration
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{outFiles: map[string]string{}}
}

func (f *fakeInvoker) Seed(ctx context.Context, c types.Candidate) (types.Outcome, error) {
	f.mu.Lock()
	f.seeds = append(f.seeds, c.Path)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	base := filepath.Base(c.Path)
	switch {
	case strings.Contains(base, "boom"):
		return types.NotFound, errSpawn
	case strings.Contains(base, "hit"), strings.Contains(base, "seedonly"):
		return types.Found, nil
	}
	return types.NotFound, nil
}

func (f *fakeInvoker) Crack(ctx context.Context, c types.Candidate, wordlist, outFile string) (types.Outcome, error) {
	f.mu.Lock()
	f.cracks = append(f.cracks, c.Path)
	f.outFiles[c.Path] = outFile
	f.mu.Unlock()
	base := filepath.Base(c.Path)
	switch {
	case strings.Contains(base, "boom"):
		return types.NotCracked, errSpawn
	case strings.Contains(base, "hit"):
		return types.Cracked, nil
	}
	return types.NotCracked, nil
}

type memRecorder struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (r *memRecorder) Record(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return r.err
}

func tree(t *testing.T, names ...string) string {
	t.Helper()
	root := t.TempDir()
	for i, n := range names {
		testutil.WriteFile(t, root, n, testutil.Carrier(testutil.HeaderJPEG, 64, byte(i)))
	}
	return root
}

func TestRun_SeedMode(t *testing.T) {
	defer goleak.VerifyNone(t)
	root := tree(t, "hit.jpg", "plain.jpg", "seedonly.jpg")
	inv := newFakeInvoker()
	rec := &memRecorder{}

	res, err := Run(context.Background(), Config{Root: root, Mode: types.ModeSeed, Recorder: rec}, inv)
	require.NoError(t, err)
	assert.Equal(t, types.Counters{Processed: 3, Total: 3, Found: 2}, res.Counters)
	assert.Empty(t, inv.cracks)
	assert.ElementsMatch(t, []string{filepath.Join(root, "hit.jpg"), filepath.Join(root, "seedonly.jpg")}, rec.paths)
	assert.False(t, res.NoResults())
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, types.ModeSeed, res.Mode)
}

func TestRun_CrackMode(t *testing.T) {
	defer goleak.VerifyNone(t)
	root := tree(t, "hit.jpg", "plain.jpg", "seedonly.jpg")
	out := t.TempDir()
	inv := newFakeInvoker()
	rec := &memRecorder{}

	res, err := Run(context.Background(), Config{
		Root: root, Mode: types.ModeCrack, OutputDir: out, Wordlist: "wl", Recorder: rec,
	}, inv)
	require.NoError(t, err)
	assert.Equal(t, types.Counters{Processed: 3, Total: 3, Cracked: 1}, res.Counters)
	assert.Empty(t, inv.seeds)
	assert.Empty(t, rec.paths, "crack mode never writes the result log")
	assert.Equal(t, filepath.Join(out, "hit.jpg.out"), inv.outFiles[filepath.Join(root, "hit.jpg")])
}

func TestRun_SeedCrackOnlyCracksFound(t *testing.T) {
	defer goleak.VerifyNone(t)
	root := tree(t, "hit.jpg", "plain.jpg", "seedonly.jpg")
	inv := newFakeInvoker()
	rec := &memRecorder{}

	res, err := Run(context.Background(), Config{
		Root: root, Mode: types.ModeSeedCrack, OutputDir: t.TempDir(), Wordlist: "wl", Recorder: rec,
	}, inv)
	require.NoError(t, err)
	assert.Equal(t, types.Counters{Processed: 3, Total: 3, Found: 2, Cracked: 1}, res.Counters)
	assert.Len(t, inv.seeds, 3)
	assert.ElementsMatch(t, []string{filepath.Join(root, "hit.jpg"), filepath.Join(root, "seedonly.jpg")}, inv.cracks)
	assert.Len(t, rec.paths, 2)
}

func TestRun_NoResults(t *testing.T) {
	root := tree(t, "a.jpg", "b.jpg")
	res, err := Run(context.Background(), Config{Root: root, Mode: types.ModeSeed}, newFakeInvoker())
	require.NoError(t, err)
	assert.True(t, res.NoResults())
	assert.Equal(t, 2, res.Counters.Processed)
}

func TestRun_EmptyTree(t *testing.T) {
	var events int
	res, err := Run(context.Background(), Config{
		Root: t.TempDir(), Mode: types.ModeSeed, Progress: func(types.Progress) { events++ },
	}, newFakeInvoker())
	require.NoError(t, err)
	assert.Zero(t, res.Counters.Total)
	assert.Zero(t, events)
	assert.True(t, res.NoResults())
}

func TestRun_ProgressInvariants(t *testing.T) {
	defer goleak.VerifyNone(t)
	var names []string
	for i := 0; i < 30; i++ {
		switch i % 3 {
		case 0:
			names = append(names, fmt.Sprintf("hit%02d.jpg", i))
		case 1:
			names = append(names, fmt.Sprintf("seedonly%02d.jpg", i))
		default:
			names = append(names, fmt.Sprintf("plain%02d.jpg", i))
		}
	}
	root := tree(t, names...)

	var events []types.Progress
	res, err := Run(context.Background(), Config{
		Root: root, Mode: types.ModeSeedCrack, OutputDir: t.TempDir(), Wordlist: "wl", Threads: 6,
		Progress: func(p types.Progress) { events = append(events, p) },
	}, newFakeInvoker())
	require.NoError(t, err)

	require.Len(t, events, 30)
	for i, ev := range events {
		c := ev.Counters
		assert.Equal(t, i+1, c.Processed)
		assert.Equal(t, 30, c.Total)
		assert.LessOrEqual(t, c.Found, c.Processed)
		assert.LessOrEqual(t, c.Cracked, c.Found)
		assert.Equal(t, types.ModeSeedCrack, ev.Mode)
	}
	assert.Equal(t, res.Counters, events[len(events)-1].Counters)
	assert.Equal(t, 20, res.Counters.Found)
	assert.Equal(t, 10, res.Counters.Cracked)
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	defer goleak.VerifyNone(t)
	var names []string
	for i := 0; i < 40; i++ {
		prefix := "plain"
		if i%4 == 0 {
			prefix = "hit"
		} else if i%5 == 0 {
			prefix = "seedonly"
		}
		names = append(names, fmt.Sprintf("d%d/%s%02d.jpg", i%3, prefix, i))
	}
	root := tree(t, names...)

	run := func(threads int) Result {
		inv := newFakeInvoker()
		inv.delay = time.Millisecond
		res, err := Run(context.Background(), Config{
			Root: root, Recursive: true, Mode: types.ModeSeedCrack,
			OutputDir: t.TempDir(), Wordlist: "wl", Threads: threads,
		}, inv)
		require.NoError(t, err)
		return res
	}
	seq := run(1)
	par := run(8)
	assert.Equal(t, seq.Counters, par.Counters)
	assert.Equal(t, 40, seq.Counters.Processed)
}

func TestRun_ErrorsContinueByDefault(t *testing.T) {
	defer goleak.VerifyNone(t)
	root := tree(t, "boom.jpg", "hit.jpg", "plain.jpg")

	res, err := Run(context.Background(), Config{Root: root, Mode: types.ModeSeed}, newFakeInvoker())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Counters.Processed)
	assert.Equal(t, 1, res.Counters.Failed)
	assert.Equal(t, 1, res.Counters.Found)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, filepath.Join(root, "boom.jpg"), res.Errors[0].Path)
	assert.ErrorIs(t, &res.Errors[0], errSpawn)
}

func TestRun_FailFast(t *testing.T) {
	defer goleak.VerifyNone(t)
	root := tree(t, "boom.jpg")

	_, err := Run(context.Background(), Config{Root: root, Mode: types.ModeSeed, FailFast: true}, newFakeInvoker())
	require.Error(t, err)
	var ce *CandidateError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, filepath.Join(root, "boom.jpg"), ce.Path)
	assert.ErrorIs(t, err, errSpawn)
}

func TestRun_Canceled(t *testing.T) {
	defer goleak.VerifyNone(t)
	root := tree(t, "a.jpg", "b.jpg")
	b := NewBatch(Config{Root: root, Mode: types.ModeSeed}, newFakeInvoker())
	require.NoError(t, b.Prepare(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := b.Process(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Counters.Processed)
	assert.Equal(t, 2, res.Counters.Total)
}

func TestRun_RecorderError(t *testing.T) {
	root := tree(t, "hit.jpg")
	rec := &memRecorder{err: errors.New("disk full")}
	res, err := Run(context.Background(), Config{Root: root, Mode: types.ModeSeed, Recorder: rec}, newFakeInvoker())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, res.Counters.Found)
}

func TestRun_DiscoveryError(t *testing.T) {
	_, err := Run(context.Background(), Config{Root: filepath.Join(t.TempDir(), "missing"), Mode: types.ModeSeed}, newFakeInvoker())
	var de *DiscoveryError
	assert.True(t, errors.As(err, &de))
}

func TestBatch_States(t *testing.T) {
	b := NewBatch(Config{Root: tree(t, "a.jpg"), Mode: types.ModeSeed}, newFakeInvoker())
	assert.Equal(t, Idle, b.State())
	require.NoError(t, b.Prepare(context.Background()))
	assert.Equal(t, 1, b.Total())
	assert.Equal(t, Idle, b.State())

	_, err := b.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Done, b.State())
	assert.Equal(t, "done", b.State().String())

	_, err = b.Process(context.Background())
	assert.Error(t, err)
	assert.Error(t, b.Prepare(context.Background()))
}

func TestOutputNames_Collisions(t *testing.T) {
	cands := []types.Candidate{
		{Path: "/in/a/x.jpg", Rel: "a/x.jpg"},
		{Path: "/in/b/x.jpg", Rel: "b/x.jpg"},
		{Path: "/in/y.jpg", Rel: "y.jpg"},
	}
	names := outputNames("/out", cands)
	assert.Equal(t, filepath.Join("/out", "x.jpg.out"), names[0])
	assert.NotEqual(t, names[0], names[1])
	assert.True(t, strings.HasPrefix(filepath.Base(names[1]), "x.jpg."))
	assert.True(t, strings.HasSuffix(names[1], ".out"))
	assert.Equal(t, filepath.Join("/out", "y.jpg.out"), names[2])
}

func TestRun_Resume(t *testing.T) {
	root := tree(t, "hit.jpg", "plain.jpg")
	cacheDir := t.TempDir()
	cfg := Config{Root: root, Mode: types.ModeSeed, Resume: true, CacheDir: cacheDir}

	res, err := Run(context.Background(), cfg, newFakeInvoker())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Counters.Processed)
	assert.FileExists(t, cache.PathFor(cfg.CacheDir, root))
	assert.NoFileExists(t, filepath.Join(root, ".steghuntcache.json"))

	inv := newFakeInvoker()
	res, err = Run(context.Background(), cfg, inv)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Counters.Skipped)
	assert.Zero(t, res.Counters.Total)
	assert.Empty(t, inv.seeds)

	testutil.WriteFile(t, root, "plain.jpg", testutil.Carrier(testutil.HeaderJPEG, 128, 9))
	inv = newFakeInvoker()
	res, err = Run(context.Background(), cfg, inv)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Counters.Skipped)
	assert.Equal(t, 1, res.Counters.Total)
	assert.Equal(t, []string{filepath.Join(root, "plain.jpg")}, inv.seeds)

	// A different mode never reuses entries.
	inv = newFakeInvoker()
	res, err = Run(context.Background(), Config{Root: root, Mode: types.ModeCrack, Resume: true, CacheDir: cacheDir, OutputDir: t.TempDir()}, inv)
	require.NoError(t, err)
	assert.Zero(t, res.Counters.Skipped)
	assert.Len(t, inv.cracks, 2)
}

// blockingCracker finds every seed and blocks in Crack until canceled.
type blockingCracker struct {
	cracking chan struct{}
}

func (b *blockingCracker) Crack(ctx context.Context, c types.Candidate, wordlist, outFile string) (types.Outcome, error) {
	close(b.cracking)
	<-ctx.Done()
	return types.NotCracked, ctx.Err()
}

func (b *blockingCracker) Seed(ctx context.Context, c types.Candidate) (types.Outcome, error) {
	return types.Found, nil
}

func TestRun_CanceledDuringCrackKeepsFound(t *testing.T) {
	defer goleak.VerifyNone(t)
	root := tree(t, "a.jpg")
	inv := &blockingCracker{cracking: make(chan struct{})}
	rec := &memRecorder{}
	cacheDir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-inv.cracking
		cancel()
	}()
	res, err := Run(ctx, Config{
		Root: root, Mode: types.ModeSeedCrack, OutputDir: t.TempDir(), Wordlist: "wl",
		Recorder: rec, Resume: true, CacheDir: cacheDir,
	}, inv)
	require.ErrorIs(t, err, context.Canceled)

	assert.Len(t, rec.paths, 1)
	assert.Equal(t, len(rec.paths), res.Counters.Found, "result log and Found agree")
	assert.Equal(t, 1, res.Counters.Processed)
	assert.Zero(t, res.Counters.Cracked)
	assert.Zero(t, res.Counters.Failed)

	db, err := cache.Load(cache.PathFor(cacheDir, root))
	require.NoError(t, err)
	assert.Empty(t, db.Entries, "interrupted candidates are retried on resume")
}
