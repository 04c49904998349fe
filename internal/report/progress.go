package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/steghunt/steghunt/internal/types"
)

// Terminal control sequences used for in-place redraws.
const (
	savePosition    = "\x1b7"
	restorePosition = "\x1b8"
	clearBelow      = "\x1b[J"
	hideCursor      = "\x1b[?25l"
	showCursor      = "\x1b[?25h"
)

var divider = strings.Repeat("-", 42)

var (
	labelStyle = lipgloss.NewStyle().Faint(true)
	foundStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	crackStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// PrinterOptions configures a Printer. Quiet suppresses every block.
type PrinterOptions struct {
	Mode    types.Mode
	Quiet   bool
	NoColor bool
	// Redraw forces in-place updates on or off. Nil detects a terminal.
	Redraw *bool
}

// Printer renders the progress block after every processed candidate. On a
// terminal the block is redrawn in place; otherwise blocks are appended.
type Printer struct {
	mu      sync.Mutex
	w       io.Writer
	mode    types.Mode
	quiet   bool
	noColor bool
	redraw  bool
	hidden  bool
}

// NewPrinter returns a Printer writing to w. In-place redraw is enabled when
// w is a terminal unless opts.Redraw says otherwise.
func NewPrinter(w io.Writer, opts PrinterOptions) *Printer {
	redraw := isTerminal(w)
	if opts.Redraw != nil {
		redraw = *opts.Redraw
	}
	return &Printer{w: w, mode: opts.Mode, quiet: opts.Quiet, noColor: opts.NoColor, redraw: redraw}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Initializing announces discovery and marks where later blocks are drawn.
func (p *Printer) Initializing() {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.redraw {
		fmt.Fprint(p.w, savePosition+hideCursor)
		p.hidden = true
	}
	fmt.Fprintln(p.w, "\nInitializing ...")
}

// Progress draws the block for ev.
func (p *Printer) Progress(ev types.Progress) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.redraw {
		fmt.Fprint(p.w, restorePosition+clearBelow)
	}
	fmt.Fprint(p.w, p.style(FormatStats(ev.Counters, ev.Mode, ev.Elapsed)))
}

// Finish prints the closing message when nothing turned up and restores the
// cursor.
func (p *Printer) Finish(noResults bool) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if noResults {
		fmt.Fprintln(p.w, ClosingMessage)
	}
	if p.hidden {
		fmt.Fprint(p.w, showCursor)
		p.hidden = false
	}
}

func (p *Printer) style(block string) string {
	if p.noColor {
		return block
	}
	lines := strings.Split(block, "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "(possible) stegfiles detected:"):
			lines[i] = foundStyle.Render(l)
		case strings.HasPrefix(l, "stegfiles cracked:"):
			lines[i] = crackStyle.Render(l)
		case l == divider:
			lines[i] = labelStyle.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

// FormatStats renders one progress block. The percentage is the floor of
// processed/total and reads n/a for an empty run.
func FormatStats(c types.Counters, mode types.Mode, elapsed time.Duration) string {
	var b strings.Builder
	b.WriteString("\n" + divider + "\n")
	pct := "n/a"
	if c.Total > 0 {
		pct = fmt.Sprintf("%.1f%%", float64(100*c.Processed/c.Total))
	}
	fmt.Fprintf(&b, "files processed: %d out of %d (%s)\n", c.Processed, c.Total, pct)
	fmt.Fprintf(&b, "duration: %s\n", FormatDuration(elapsed))
	if mode.Detects() {
		fmt.Fprintf(&b, "(possible) stegfiles detected: %d\n", c.Found)
	}
	if mode.Cracks() {
		fmt.Fprintf(&b, "stegfiles cracked: %d\n", c.Cracked)
	}
	b.WriteString(divider + "\n\n")
	return b.String()
}

// FormatDuration renders whole seconds as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	t := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", t/3600, t%3600/60, t%60)
}
