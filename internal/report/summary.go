package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/steghunt/steghunt/internal/engine"
	"github.com/steghunt/steghunt/internal/types"
)

// ClosingMessage is printed when a run neither found nor cracked anything.
const ClosingMessage = "Encryption can break your heart sometimes."

type SummaryOptions struct {
	NoColor bool
	// LogPath is mentioned when something was found.
	LogPath   string
	OutputDir string
}

// PrintSummary writes the end-of-run table and the per-candidate failures.
func PrintSummary(w io.Writer, res engine.Result, opts SummaryOptions) error {
	c := res.Counters
	table := tablewriter.NewWriter(w)
	table.Header("RUN", "MODE", "PROCESSED", "FOUND", "CRACKED", "FAILED", "SKIPPED", "DURATION")
	found, cracked := "-", "-"
	if res.Mode.Detects() {
		found = strconv.Itoa(c.Found)
	}
	if res.Mode.Cracks() {
		cracked = strconv.Itoa(c.Cracked)
	}
	if err := table.Append([]string{
		shortID(res.RunID),
		res.Mode.String(),
		fmt.Sprintf("%d/%d", c.Processed, c.Total),
		found,
		cracked,
		strconv.Itoa(c.Failed),
		strconv.Itoa(c.Skipped),
		FormatDuration(res.Duration),
	}); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if c.Found > 0 && opts.LogPath != "" {
		fmt.Fprintf(w, "Found candidates listed in %s\n", opts.LogPath)
	}
	if c.Cracked > 0 && opts.OutputDir != "" {
		fmt.Fprintf(w, "Extracted payloads written to %s\n", opts.OutputDir)
	}
	if len(res.Errors) > 0 {
		head := fmt.Sprintf("Failed candidates: %d", len(res.Errors))
		if !opts.NoColor {
			head = errStyle.Render(head)
		}
		fmt.Fprintln(w, head)
		for _, e := range res.Errors {
			fmt.Fprintf(w, "  %s: %v\n", e.Path, e.Err)
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Summary is the JSON shape of a finished run.
type Summary struct {
	RunID     string         `json:"run_id"`
	Mode      types.Mode     `json:"mode"`
	Counters  types.Counters `json:"counters"`
	Duration  string         `json:"duration"`
	Seconds   float64        `json:"duration_seconds"`
	NoResults bool           `json:"no_results"`
	Errors    []ErrorEntry   `json:"errors,omitempty"`
	Finished  time.Time      `json:"finished"`
}

type ErrorEntry struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// NewSummary converts res into its JSON shape.
func NewSummary(res engine.Result) Summary {
	s := Summary{
		RunID:     res.RunID,
		Mode:      res.Mode,
		Counters:  res.Counters,
		Duration:  FormatDuration(res.Duration),
		Seconds:   res.Duration.Seconds(),
		NoResults: res.NoResults(),
		Finished:  time.Now().UTC(),
	}
	for _, e := range res.Errors {
		s.Errors = append(s.Errors, ErrorEntry{Path: e.Path, Error: e.Err.Error()})
	}
	return s
}

// WriteJSON writes res as an indented JSON document.
func WriteJSON(w io.Writer, res engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewSummary(res))
}
