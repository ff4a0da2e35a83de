package ui

import (
	"fmt"
	"sync"
	"time"
)

// PageTracker prints one progress line per scraped page
type PageTracker struct {
	mu        sync.Mutex
	Pages     int
	TotalRows int
}

// NewPageTracker creates a new page tracker
func NewPageTracker() *PageTracker {
	return &PageTracker{}
}

// PageScraped records a finished page and prints "page N: M rows (total T)".
func (pt *PageTracker) PageScraped(page, rows, total int) {
	pt.mu.Lock()
	pt.Pages = page
	pt.TotalRows = total
	pt.mu.Unlock()

	fmt.Fprintf(writer(false), "%s page %d: %d rows (total %d)\n",
		Green("[EXTRACTED]"), page, rows, total)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
