package core

import (
	"encoding/json"
	"io"

	"github.com/steghunt/steghunt/internal/report"
)

// Summary is the JSON document MarshalResult writes.
type Summary = report.Summary

// MarshalResult pretty-prints res as JSON for humans or pipelines.
func MarshalResult(w io.Writer, res Result) error {
	return report.WriteJSON(w, res)
}

// UnmarshalSummary decodes a document written by MarshalResult.
func UnmarshalSummary(r io.Reader) (Summary, error) {
	var s Summary
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Summary{}, err
	}
	return s, nil
}
