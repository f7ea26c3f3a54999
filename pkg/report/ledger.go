// Package report accumulates per-episode download failures and renders the
// grouped end-of-run summary.
package report

import (
	"fmt"
	"sync"

	"podarchive/pkg/models"
)

// Ledger groups failure context lines by outcome code. Codes render in
// first-seen order; lines within a code keep insertion order. Safe for
// concurrent use by batch workers.
type Ledger struct {
	mu    sync.Mutex
	order []string
	lines map[string][]string
}

// NewLedger creates an empty failure ledger
func NewLedger() *Ledger {
	return &Ledger{lines: make(map[string][]string)}
}

// Record adds a failure context line under the given outcome code
func (l *Ledger) Record(code, line string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, seen := l.lines[code]; !seen {
		l.order = append(l.order, code)
	}
	l.lines[code] = append(l.lines[code], line)
}

// Count returns the total number of recorded failures
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, lines := range l.lines {
		total += len(lines)
	}
	return total
}

// Render produces the human-readable report: a header plus per-code counts
// and indented context lines, or a single success line when nothing failed.
func (l *Ledger) Render() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.order) == 0 {
		return []string{"All downloads completed successfully."}
	}

	out := []string{"Failed downloads, grouped by cause:"}
	for _, code := range l.order {
		label := code
		if code == models.CodeTransport {
			label = code + " (no HTTP response)"
		}
		out = append(out, fmt.Sprintf("%s - %d failure(s):", label, len(l.lines[code])))
		for _, line := range l.lines[code] {
			out = append(out, "  "+line)
		}
	}
	return out
}
