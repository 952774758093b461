package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// RunTracker keeps per-outcome counters for one album run
type RunTracker struct {
	total      int
	downloaded int
	skipped    int
	failed     int
	startTime  time.Time
	mu         sync.Mutex
}

// NewRunTracker creates a tracker for an album of the given size
func NewRunTracker(total int) *RunTracker {
	return &RunTracker{
		total:     total,
		startTime: time.Now(),
	}
}

// RecordDownloaded counts a completed transfer
func (rt *RunTracker) RecordDownloaded() {
	rt.mu.Lock()
	rt.downloaded++
	rt.mu.Unlock()
}

// RecordSkipped counts a file that was already present
func (rt *RunTracker) RecordSkipped() {
	rt.mu.Lock()
	rt.skipped++
	rt.mu.Unlock()
}

// RecordFailed counts a failed transfer
func (rt *RunTracker) RecordFailed() {
	rt.mu.Lock()
	rt.failed++
	rt.mu.Unlock()
}

// Counts returns the downloaded, skipped, and failed totals
func (rt *RunTracker) Counts() (downloaded, skipped, failed int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.downloaded, rt.skipped, rt.failed
}

// GetElapsedTime returns the elapsed time since the run started
func (rt *RunTracker) GetElapsedTime() time.Duration {
	return time.Since(rt.startTime)
}

// progressBar renders a fixed-width bar for done out of total items
func progressBar(done, total int) string {
	const width = 20
	if total <= 0 {
		total = 1
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, done, total)
}

// PrintProgress prints the current progress line, overwriting the previous one
func (rt *RunTracker) PrintProgress() {
	if quiet {
		return
	}

	rt.mu.Lock()
	done := rt.downloaded + rt.skipped + rt.failed
	total := rt.total
	rt.mu.Unlock()

	fmt.Printf("\r%s %s", Green("[ALBUM]"), progressBar(done, total))
}

// PrintSummary prints the final per-outcome counts for the run
func (rt *RunTracker) PrintSummary() {
	rt.mu.Lock()
	downloaded, skipped, failed := rt.downloaded, rt.skipped, rt.failed
	rt.mu.Unlock()

	if !quiet {
		fmt.Println()
	}
	printInfo("Downloaded", fmt.Sprintf("%d", downloaded))
	printInfo("Skipped", fmt.Sprintf("%d", skipped))
	if failed > 0 {
		PrintError(fmt.Sprintf("Failed: %d", failed))
	}
	printInfo("Elapsed", rt.GetElapsedTime().Round(time.Millisecond).String())
}
