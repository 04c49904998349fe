package stegseek

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// DefaultErrorMarker is the substring stegseek prints on every failed seed
// or crack attempt, e.g. "error: Could not find a valid seed.". Matching is
// case-sensitive.
const DefaultErrorMarker = "error:"

// Marker decides whether a diagnostic line signals failure.
type Marker struct {
	literal string
	re      *regexp.Regexp
}

// NewMarker compiles pattern as a regular expression. An empty pattern
// selects the literal DefaultErrorMarker.
func NewMarker(pattern string) (*Marker, error) {
	if pattern == "" {
		return &Marker{literal: DefaultErrorMarker}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid error marker %q: %w", pattern, err)
	}
	return &Marker{re: re}, nil
}

// Match reports whether line carries the failure marker.
func (m *Marker) Match(line string) bool {
	if m.re != nil {
		return m.re.MatchString(line)
	}
	return strings.Contains(line, m.literal)
}

func (m *Marker) String() string {
	if m.re != nil {
		return m.re.String()
	}
	return m.literal
}

// Diagnostics summarizes a scanned stderr stream.
type Diagnostics struct {
	Failed bool
	// Line is the first line that matched the marker.
	Line  string
	Lines int
}

// ScanDiagnostics reads r line by line until EOF and reports whether any line
// matched m. The stream is always drained so the writer never blocks.
func ScanDiagnostics(r io.Reader, m *Marker) (Diagnostics, error) {
	var d Diagnostics
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			d.Lines++
			line = strings.TrimRight(line, "\r\n")
			if !d.Failed && m.Match(line) {
				d.Failed = true
				d.Line = line
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return d, nil
			}
			return d, err
		}
	}
}
