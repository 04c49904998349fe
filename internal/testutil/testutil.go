// Package testutil holds fixtures shared by package tests: carrier files with
// known headers and a shell stand-in for the stegseek binary.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Carrier headers.
var (
	HeaderBMP  = []byte{0x42, 0x4D, 0x36, 0x00}
	HeaderJPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0}
	HeaderAU   = []byte{0x2E, 0x73, 0x6E, 0x64}
	HeaderWAV  = []byte{0x52, 0x49, 0x46, 0x46}
)

// Carrier returns size bytes starting with header and filled with fill.
func Carrier(header []byte, size int, fill byte) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = fill
	}
	copy(b, header)
	return b
}

// WriteFile writes data to dir/rel, creating parent directories.
func WriteFile(t testing.TB, dir, rel string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// fakeStegseek mimics stegseek's stderr conventions. Behaviour is keyed on
// the carrier's file name:
//
//	*hit*      seed and crack succeed
//	*seedonly* seed succeeds, crack fails
//	*hang*     sleeps until killed
//	*noisy*    floods stdout before failing
//	otherwise  both fail with an "error:" line
//
// Successful runs exit 5 to show that exit codes are ignored. Every
// invocation's arguments are appended to $FAKE_STEGSEEK_LOG when set.
const fakeStegseek = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "StegSeek 0.6 - https://github.com/RickdeJager/StegSeek"
  exit 0
fi
if [ -n "$FAKE_STEGSEEK_LOG" ]; then
  printf '%s\n' "$*" >> "$FAKE_STEGSEEK_LOG"
fi
op="$1"
sf=""
xf=""
while [ $# -gt 0 ]; do
  case "$1" in
    -sf) sf="$2"; shift ;;
    -xf) xf="$2"; shift ;;
  esac
  shift
done
base=$(basename "$sf")
case "$base" in
  *hang*) sleep 30 ;;
  *noisy*)
    i=0
    while [ $i -lt 5000 ]; do echo "noise line $i"; i=$((i+1)); done
    ;;
esac
case "$op" in
  --seed)
    case "$base" in
      *hit*|*seedonly*)
        echo "[i] Found (possible) seed: \"5f3b1c2a\"" >&2
        exit 5 ;;
    esac
    echo "error: Could not find a valid seed." >&2
    exit 1 ;;
  --crack)
    case "$base" in
      *hit*)
        printf 'payload of %s\n' "$base" > "$xf"
        echo "[i] Found passphrase: \"hunter2\"" >&2
        exit 5 ;;
    esac
    echo "error: Could not find a valid passphrase." >&2
    exit 1 ;;
esac
echo "error: unknown operation" >&2
exit 2
`

// WriteFakeStegseek writes the fake binary as dir/stegseek and returns its
// path. Tests are skipped where /bin/sh scripts cannot run.
func WriteFakeStegseek(t testing.TB, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake stegseek needs /bin/sh")
	}
	p := filepath.Join(dir, "stegseek")
	if err := os.WriteFile(p, []byte(fakeStegseek), 0o755); err != nil {
		t.Fatalf("write fake stegseek: %v", err)
	}
	return p
}
