package stegseek

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"

	semver "github.com/blang/semver/v4"
)

// BinaryName is the executable looked up on $PATH.
const BinaryName = "stegseek"

// errVersionTooOld marks a located binary older than the configured minimum.
var errVersionTooOld = errors.New("stegseek version too old")

var versionRE = regexp.MustCompile(`\d+(?:\.\d+){0,2}`)

// BinaryManager handles detection of the stegseek binary.
type BinaryManager struct {
	customPath string
	cachePath  string
}

// NewBinaryManager creates a new binary manager.
// customPath: optional explicit path to the stegseek binary
// The fallback directory is ~/.steghunt/bin.
func NewBinaryManager(customPath string) *BinaryManager {
	homeDir, _ := os.UserHomeDir()
	return &BinaryManager{
		customPath: customPath,
		cachePath:  filepath.Join(homeDir, ".steghunt", "bin"),
	}
}

// Find locates the stegseek binary using the following search order:
// 1. Custom path (if provided)
// 2. $PATH lookup
// 3. ~/.steghunt/bin/stegseek
func (bm *BinaryManager) Find() (string, error) {
	if bm.customPath != "" {
		if _, err := os.Stat(bm.customPath); err == nil {
			return bm.customPath, nil
		}
		return "", fmt.Errorf("%w: custom path %s does not exist", ErrBinaryNotFound, bm.customPath)
	}

	if path, err := exec.LookPath(BinaryName); err == nil {
		return path, nil
	}

	cachedPath := filepath.Join(bm.cachePath, BinaryName)
	if runtime.GOOS == "windows" {
		cachedPath += ".exe"
	}
	if _, err := os.Stat(cachedPath); err == nil {
		return cachedPath, nil
	}

	return "", fmt.Errorf("%w in PATH or %s", ErrBinaryNotFound, bm.cachePath)
}

// Version runs stegseek --version and extracts the version number, e.g.
// "0.6" from "StegSeek 0.6 - https://github.com/RickdeJager/StegSeek".
func (bm *BinaryManager) Version(binaryPath string) (string, error) {
	out, err := exec.Command(binaryPath, "--version").CombinedOutput()
	if err != nil && len(out) == 0 {
		return "", fmt.Errorf("failed to get stegseek version: %w", err)
	}
	v := versionRE.FindString(string(out))
	if v == "" {
		return "", fmt.Errorf("failed to get stegseek version: unrecognised output %q", string(out))
	}
	return v, nil
}

// CheckVersion compares a located version against a minimum. Both are
// parsed tolerantly, so "0.6" and "v0.6.0" are equal.
func CheckVersion(found, minimum string) error {
	have, err := semver.ParseTolerant(found)
	if err != nil {
		return fmt.Errorf("parse stegseek version %q: %w", found, err)
	}
	want, err := semver.ParseTolerant(minimum)
	if err != nil {
		return fmt.Errorf("parse minimum version %q: %w", minimum, err)
	}
	if have.LT(want) {
		return fmt.Errorf("%w: have %s, want >= %s", errVersionTooOld, have, want)
	}
	return nil
}
