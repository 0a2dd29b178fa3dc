package importer

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressReporter receives the number of finished conversations as an import runs.
type ProgressReporter interface {
	Start(total int)
	Increment()
	Finish()
}

// ProgressTracker writes a single updating progress line.
type ProgressTracker struct {
	writer         io.Writer
	total          int
	current        int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

var _ ProgressReporter = (*ProgressTracker)(nil)

// NewProgressTracker creates a progress tracker that reports every
// reportInterval conversations (minimum 1) to writer.
func NewProgressTracker(writer io.Writer, reportInterval int) *ProgressTracker {
	return &ProgressTracker{
		writer:         writer,
		reportInterval: max(reportInterval, 1),
	}
}

// Start begins tracking an import of total conversations.
func (p *ProgressTracker) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.startTime = time.Now()
	p.started = true
	p.current = 0
	p.lastReported = 0
}

// Increment records one finished conversation.
func (p *ProgressTracker) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.current >= p.total {
		return
	}

	p.current++
	if p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

// Finish prints the final progress line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.report()
	fmt.Fprintln(p.writer)
	p.started = false
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := float64(p.current) / elapsed.Seconds()

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rImported: %d/%d (%.1f%%) - %.1f conversations/s",
		p.current, p.total, percentage, rate)
}

type noopProgress struct{}

func (noopProgress) Start(int)  {}
func (noopProgress) Increment() {}
func (noopProgress) Finish()    {}
