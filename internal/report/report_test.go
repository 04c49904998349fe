package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steghunt/steghunt/internal/engine"
	"github.com/steghunt/steghunt/internal/types"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatDuration(0))
	assert.Equal(t, "00:00:07", FormatDuration(7900*time.Millisecond))
	assert.Equal(t, "01:01:01", FormatDuration(3661*time.Second))
	assert.Equal(t, "27:46:40", FormatDuration(100000*time.Second))
	assert.Equal(t, "00:00:00", FormatDuration(-time.Second))
}

func TestFormatStats(t *testing.T) {
	c := types.Counters{Processed: 3, Total: 10, Found: 1, Cracked: 0}
	want := "\n" + divider + "\n" +
		"files processed: 3 out of 10 (30.0%)\n" +
		"duration: 00:00:07\n" +
		"(possible) stegfiles detected: 1\n" +
		"stegfiles cracked: 0\n" +
		divider + "\n\n"
	assert.Equal(t, want, FormatStats(c, types.ModeSeedCrack, 7*time.Second))

	seed := FormatStats(c, types.ModeSeed, 0)
	assert.Contains(t, seed, "detected: 1")
	assert.NotContains(t, seed, "cracked")

	crack := FormatStats(c, types.ModeCrack, 0)
	assert.NotContains(t, crack, "detected")
	assert.Contains(t, crack, "stegfiles cracked: 0")
}

func TestFormatStats_Percentage(t *testing.T) {
	out := FormatStats(types.Counters{Processed: 1, Total: 3}, types.ModeSeed, 0)
	assert.Contains(t, out, "(33.0%)", "percentage is floored")

	out = FormatStats(types.Counters{}, types.ModeSeed, 0)
	assert.Contains(t, out, "files processed: 0 out of 0 (n/a)")
}

func TestPrinter_Appends(t *testing.T) {
	var buf bytes.Buffer
	off := false
	p := NewPrinter(&buf, PrinterOptions{Mode: types.ModeSeed, NoColor: true, Redraw: &off})
	p.Initializing()
	p.Progress(types.Progress{Counters: types.Counters{Processed: 1, Total: 2}, Mode: types.ModeSeed})
	p.Progress(types.Progress{Counters: types.Counters{Processed: 2, Total: 2}, Mode: types.ModeSeed})
	p.Finish(true)

	out := buf.String()
	assert.Contains(t, out, "Initializing ...")
	assert.Equal(t, 2, strings.Count(out, "files processed:"))
	assert.Contains(t, out, ClosingMessage)
	assert.NotContains(t, out, "\x1b")
}

func TestPrinter_Redraw(t *testing.T) {
	var buf bytes.Buffer
	on := true
	p := NewPrinter(&buf, PrinterOptions{Mode: types.ModeCrack, NoColor: true, Redraw: &on})
	p.Initializing()
	p.Progress(types.Progress{Counters: types.Counters{Processed: 1, Total: 1, Cracked: 1}, Mode: types.ModeCrack})
	p.Finish(false)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, savePosition+hideCursor))
	assert.Contains(t, out, restorePosition+clearBelow)
	assert.True(t, strings.HasSuffix(out, showCursor))
	assert.NotContains(t, out, ClosingMessage)
}

func TestPrinter_Quiet(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, PrinterOptions{Mode: types.ModeSeed, Quiet: true})
	p.Initializing()
	p.Progress(types.Progress{Mode: types.ModeSeed})
	p.Finish(true)
	assert.Empty(t, buf.String())
}

func sampleResult() engine.Result {
	return engine.Result{
		RunID:    "0b6f3c1e-5d2a-4f7e-9a41-8c2d7e6f1a30",
		Mode:     types.ModeSeedCrack,
		Counters: types.Counters{Processed: 4, Total: 4, Found: 2, Cracked: 1, Failed: 1},
		Duration: 65 * time.Second,
		Errors:   []engine.CandidateError{{Path: "/in/bad.jpg", Err: errors.New("timed out")}},
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintSummary(&buf, sampleResult(), SummaryOptions{NoColor: true, LogPath: "steghunt_log", OutputDir: "out"}))
	out := buf.String()
	assert.Contains(t, out, "PROCESSED")
	assert.Contains(t, out, "0b6f3c1e")
	assert.Contains(t, out, "4/4")
	assert.Contains(t, out, "00:01:05")
	assert.Contains(t, out, "steghunt_log")
	assert.Contains(t, out, "Extracted payloads written to out")
	assert.Contains(t, out, "Failed candidates: 1")
	assert.Contains(t, out, "/in/bad.jpg: timed out")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	var s Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &s))
	assert.Equal(t, "0b6f3c1e-5d2a-4f7e-9a41-8c2d7e6f1a30", s.RunID)
	assert.Equal(t, types.ModeSeedCrack, s.Mode)
	assert.Equal(t, 2, s.Counters.Found)
	assert.Equal(t, "00:01:05", s.Duration)
	assert.False(t, s.NoResults)
	require.Len(t, s.Errors, 1)
	assert.Equal(t, "timed out", s.Errors[0].Error)
	assert.Contains(t, buf.String(), `"files_processed": 4`)
}
