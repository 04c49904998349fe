package types

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects which stegseek sub-operations run for every candidate.
type Mode string

const (
	ModeSeed      Mode = "seed"
	ModeCrack     Mode = "crack"
	ModeSeedCrack Mode = "seedcrack"
)

// Modes lists the accepted modes in display order.
func Modes() []Mode { return []Mode{ModeSeed, ModeCrack, ModeSeedCrack} }

// ParseMode maps a textual mode name onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSeed, ModeCrack, ModeSeedCrack:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want seed, crack or seedcrack)", s)
}

// Detects reports whether the mode runs the seed sub-operation.
func (m Mode) Detects() bool { return m == ModeSeed || m == ModeSeedCrack }

// Cracks reports whether the mode runs the crack sub-operation.
func (m Mode) Cracks() bool { return m == ModeCrack || m == ModeSeedCrack }

func (m Mode) String() string { return string(m) }

// Format is the carrier format recognised from a file's leading bytes.
type Format string

const (
	FormatBMP  Format = "bmp"
	FormatJPEG Format = "jpeg"
	FormatAU   Format = "au"
	FormatWAV  Format = "wav"
)

// Candidate is a file accepted by size and magic-number screening.
// Hash is the hex SHA-256 of the content and is only set when duplicate
// skipping is enabled.
type Candidate struct {
	Path   string `json:"path"`
	Rel    string `json:"rel"`
	Size   int64  `json:"size"`
	Format Format `json:"format"`
	MIME   string `json:"mime,omitempty"`
	Hash   string `json:"hash,omitempty"`
}

// Op is a single stegseek sub-operation.
type Op string

const (
	OpSeed  Op = "seed"
	OpCrack Op = "crack"
)

// Outcome is the classified result of one sub-operation.
type Outcome string

const (
	Found      Outcome = "found"
	NotFound   Outcome = "not_found"
	Cracked    Outcome = "cracked"
	NotCracked Outcome = "not_cracked"
)

// OutcomeFor returns the outcome for op given whether it succeeded.
func OutcomeFor(op Op, success bool) Outcome {
	switch {
	case op == OpSeed && success:
		return Found
	case op == OpSeed:
		return NotFound
	case success:
		return Cracked
	default:
		return NotCracked
	}
}

// Success reports whether the outcome is a positive one.
func (o Outcome) Success() bool { return o == Found || o == Cracked }

// Counters tracks a run's progress. Total is fixed once discovery is done;
// the others grow by at most one per processed candidate.
type Counters struct {
	Processed int `json:"files_processed"`
	Total     int `json:"files_total"`
	Found     int `json:"files_found"`
	Cracked   int `json:"files_cracked"`
	Failed    int `json:"files_failed"`
	Skipped   int `json:"files_skipped"`
}

// Progress is emitted after every completed candidate.
type Progress struct {
	Elapsed   time.Duration
	Counters  Counters
	Mode      Mode
	Candidate Candidate
}
