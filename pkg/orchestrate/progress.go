package orchestrate

import (
	"fmt"
	"io"
	"sync"

	"menu-scraper/pkg/models"
)

// ProgressPrinter writes one human-readable line per completed restaurant
// to stdout (or any writer), serialized so concurrent workers never
// interleave lines. Diagnostic logging goes to logrus separately; this is
// the user-facing progress channel.
type ProgressPrinter struct {
	mu    sync.Mutex
	out   io.Writer
	total int
	done  int
}

// NewProgressPrinter creates a printer expecting total completions.
func NewProgressPrinter(out io.Writer, total int) *ProgressPrinter {
	return &ProgressPrinter{out: out, total: total}
}

// Line records one completion and prints "[n/total] Name (STATUS)".
func (p *ProgressPrinter) Line(name string, status models.ResultStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	fmt.Fprintf(p.out, "[%d/%d] %s (%s)\n", p.done, p.total, name, status)
}
