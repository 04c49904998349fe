package stegseek

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/steghunt/steghunt/internal/config"
	"github.com/steghunt/steghunt/internal/types"
)

// waitDelay bounds how long Wait keeps the stderr pipe open after the child
// was killed, in case a grandchild inherited it.
const waitDelay = 2 * time.Second

// Runner invokes stegseek for single candidates.
type Runner struct {
	binaryPath string
	version    string
	marker     *Marker
	timeout    time.Duration
	logger     *zap.Logger
}

// NewRunner locates stegseek and prepares a Runner from configuration. A
// missing binary is reported before any candidate is touched.
func NewRunner(cfg config.StegseekConfig, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bm := NewBinaryManager(cfg.GetBinaryPath())
	binaryPath, err := bm.Find()
	if err != nil {
		return nil, fmt.Errorf("%w\n\n"+
			"To fix this:\n"+
			"  1. Install StegSeek:\n"+
			"     Debian/Ubuntu: download the .deb from https://github.com/RickdeJager/stegseek/releases\n"+
			"     Other:         build from source or use the Docker image\n"+
			"  2. Or specify explicit path in config:\n"+
			"     stegseek:\n"+
			"       binary: /path/to/stegseek", err)
	}

	marker, err := NewMarker(cfg.GetErrorMarker())
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, err
	}

	version, err := bm.Version(binaryPath)
	if err != nil {
		logger.Warn("could not determine stegseek version", zap.String("binary", binaryPath), zap.Error(err))
		version = "unknown"
	} else if err := CheckVersion(version, cfg.GetMinVersion()); err != nil {
		logger.Warn("stegseek may not support the flags steghunt uses", zap.Error(err))
	}

	return &Runner{
		binaryPath: binaryPath,
		version:    version,
		marker:     marker,
		timeout:    timeout,
		logger:     logger.Named("stegseek"),
	}, nil
}

// BinaryPath returns the located executable.
func (r *Runner) BinaryPath() string { return r.binaryPath }

// Version returns the detected stegseek version or "unknown".
func (r *Runner) Version() string { return r.version }

// SeedArgs builds the seed sub-operation arguments.
func SeedArgs(candidatePath string) []string {
	return []string{"--seed", "-a", "-q", "-sf", candidatePath}
}

// CrackArgs builds the crack sub-operation arguments.
func CrackArgs(wordlist, candidatePath, outFile string) []string {
	return []string{"--crack", "-a", "-f", "-q", "-wl", wordlist, "-sf", candidatePath, "-xf", outFile}
}

// Seed checks whether the candidate was embedded with a guessable seed.
func (r *Runner) Seed(ctx context.Context, c types.Candidate) (types.Outcome, error) {
	ok, err := r.run(ctx, types.OpSeed, c.Path, SeedArgs(c.Path))
	if err != nil {
		return types.NotFound, err
	}
	return types.OutcomeFor(types.OpSeed, ok), nil
}

// Crack tries every passphrase in wordlist and extracts the payload into
// outFile on success.
func (r *Runner) Crack(ctx context.Context, c types.Candidate, wordlist, outFile string) (types.Outcome, error) {
	ok, err := r.run(ctx, types.OpCrack, c.Path, CrackArgs(wordlist, c.Path, outFile))
	if err != nil {
		return types.NotCracked, err
	}
	return types.OutcomeFor(types.OpCrack, ok), nil
}

// run spawns stegseek, drains its stderr while it runs, reaps it and
// reports whether no diagnostic line carried the error marker.
func (r *Runner) run(ctx context.Context, op types.Op, path string, args []string) (bool, error) {
	parent := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.binaryPath, args...)
	configureProcess(cmd)
	cmd.WaitDelay = waitDelay
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return false, &SpawnError{Op: op, Path: path, Err: err}
	}

	r.logger.Debug("invoking", zap.String("op", string(op)), zap.Strings("args", args))
	if err := cmd.Start(); err != nil {
		if perr := parent.Err(); perr != nil {
			return false, perr
		}
		return false, &SpawnError{Op: op, Path: path, Err: err}
	}

	diag, readErr := ScanDiagnostics(stderr, r.marker)
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		if perr := parent.Err(); perr != nil {
			return false, perr
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return false, &TimeoutError{Op: op, Path: path, After: r.timeout}
		}
	}
	if readErr != nil {
		r.logger.Debug("stderr read ended early", zap.String("path", path), zap.Error(readErr))
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		r.logger.Debug("wait", zap.String("path", path), zap.Error(waitErr))
	}

	r.logger.Debug("classified",
		zap.String("op", string(op)),
		zap.String("path", path),
		zap.Bool("failed", diag.Failed),
		zap.String("marker_line", diag.Line),
		zap.Int("lines", diag.Lines))
	return !diag.Failed, nil
}
