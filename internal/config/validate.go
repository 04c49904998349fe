package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/steghunt/steghunt/internal/types"
)

// ValidationError describes one invalid run setting.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Run is the resolved set of settings checked before any work begins.
type Run struct {
	Mode     types.Mode
	Input    string
	Output   string
	Wordlist string
	MinSize  int64
	Threads  int
}

// Validate returns every problem found, joined, or nil.
func (r Run) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)})
	}

	if _, err := types.ParseMode(string(r.Mode)); err != nil {
		add("mode", "%v", err)
	}
	switch st, err := os.Stat(r.Input); {
	case r.Input == "":
		add("input", "an input directory is required")
	case err != nil:
		add("input", "%v", err)
	case !st.IsDir():
		add("input", "%s is not a directory", r.Input)
	}
	if r.MinSize < 0 {
		add("minsize", "must not be negative")
	}
	if r.Threads < 0 {
		add("threads", "must not be negative")
	}
	if r.Mode.Cracks() {
		if r.Output == "" {
			add("output", "an output directory is required for %s mode", r.Mode)
		} else if st, err := os.Stat(r.Output); err == nil && !st.IsDir() {
			add("output", "%s exists and is not a directory", r.Output)
		}
		switch st, err := os.Stat(r.Wordlist); {
		case r.Wordlist == "":
			add("wordlist", "a wordlist is required for %s mode", r.Mode)
		case err != nil:
			add("wordlist", "%v", err)
		case st.IsDir():
			add("wordlist", "%s is a directory", r.Wordlist)
		}
	}
	return errors.Join(errs...)
}
