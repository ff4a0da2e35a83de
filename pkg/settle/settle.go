// Package settle isolates the wait that lets client-side rendering finish
// after a page mutation. The pagination driver and the page extractor share
// one Settler, so a fixed delay can be swapped for a readiness poll without
// touching either of them.
package settle

import (
	"context"
	"time"

	"nuforcscraper/pkg/retry"
)

// Settler blocks until the current page is assumed to be rendered.
type Settler interface {
	Settle(ctx context.Context) error
}

// Delay waits a fixed duration.
type Delay time.Duration

// Settle waits for the delay or until ctx is done.
func (d Delay) Settle(ctx context.Context) error {
	return retry.Wait(ctx, time.Duration(d))
}

// None does not wait.
var None Settler = Delay(0)

// Counter wraps a Settler and counts calls. Tests use it to observe settles.
type Counter struct {
	Next  Settler
	Calls int
}

func (c *Counter) Settle(ctx context.Context) error {
	c.Calls++
	if c.Next == nil {
		return nil
	}
	return c.Next.Settle(ctx)
}
