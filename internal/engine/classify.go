package engine

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/h2non/filetype"
	"github.com/steghunt/steghunt/internal/types"
)

// headerLen is how much of a file is read for classification. Only the first
// four bytes decide acceptance; the rest feeds the MIME label.
const headerLen = 262

type signature struct {
	magic  []byte
	format types.Format
	mime   string
}

// Bitmap and JPEG match on two bytes; au and RIFF need all four.
var signatures = []signature{
	{magic: []byte{0x42, 0x4D}, format: types.FormatBMP, mime: "image/bmp"},
	{magic: []byte{0xFF, 0xD8}, format: types.FormatJPEG, mime: "image/jpeg"},
	{magic: []byte{0x2E, 0x73, 0x6E, 0x64}, format: types.FormatAU, mime: "audio/basic"},
	{magic: []byte{0x52, 0x49, 0x46, 0x46}, format: types.FormatWAV, mime: "audio/x-wav"},
}

// MatchSignature reports the carrier format identified by header. Headers
// shorter than four bytes never match.
func MatchSignature(header []byte) (types.Format, bool) {
	sig, ok := matchSignature(header)
	return sig.format, ok
}

func matchSignature(header []byte) (signature, bool) {
	if len(header) < 4 {
		return signature{}, false
	}
	for _, s := range signatures {
		if bytes.HasPrefix(header, s.magic) {
			return s, true
		}
	}
	return signature{}, false
}

// Classify stats path and reports whether it is a plausible carrier of at
// least minSize bytes. Unreadable files are rejected, never reported.
func Classify(path string, minSize int64) (types.Format, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	c, ok := classifyFile(path, info.Size(), minSize)
	return c.Format, ok
}

// classifyFile applies the size gate and the magic-number test to a regular
// file whose size is already known.
func classifyFile(path string, size, minSize int64) (types.Candidate, bool) {
	if size < minSize {
		return types.Candidate{}, false
	}
	header, err := readHeader(path)
	if err != nil {
		return types.Candidate{}, false
	}
	sig, ok := matchSignature(header)
	if !ok {
		return types.Candidate{}, false
	}
	return types.Candidate{
		Path:   path,
		Size:   size,
		Format: sig.format,
		MIME:   mimeLabel(header, sig),
	}, true
}

func readHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, headerLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

// mimeLabel prefers the filetype matcher's answer and falls back to the
// signature table when the header is too short or unusual for it.
func mimeLabel(header []byte, sig signature) string {
	if kind, err := filetype.Match(header); err == nil && kind != filetype.Unknown && kind.MIME.Value != "" {
		return kind.MIME.Value
	}
	return sig.mime
}
