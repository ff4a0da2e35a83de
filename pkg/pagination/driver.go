// Package pagination drives the renderer session from the start page through
// successive table pages until the next-page control disappears or stops
// working.
package pagination

import (
	"context"
	"time"

	errs "nuforcscraper/pkg/errors"
	"nuforcscraper/pkg/logger"
	"nuforcscraper/pkg/retry"
	"nuforcscraper/pkg/session"
	"nuforcscraper/pkg/settle"
)

// DefaultNextSelector matches an enabled DataTables next button.
const DefaultNextSelector = ".paginate_button.next:not(.disabled)"

// State is the position of the Driver in its lifecycle.
type State int

const (
	Navigating State = iota
	Ready
	Extracting
	Advancing
	Done
)

func (s State) String() string {
	switch s {
	case Navigating:
		return "NAVIGATING"
	case Ready:
		return "READY"
	case Extracting:
		return "EXTRACTING"
	case Advancing:
		return "ADVANCING"
	case Done:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// StopReason explains why a traversal ended.
type StopReason string

const (
	StopLastPage       StopReason = "last_page"
	StopPageLimit      StopReason = "page_limit"
	StopPagination     StopReason = "pagination_error"
	StopNavigation     StopReason = "navigation_failed"
	StopTableNotFound  StopReason = "table_not_found"
	StopTableStructure StopReason = "table_structure"
	StopCancelled      StopReason = "cancelled"
)

// Options configures a Driver. ClickAttempts is the number of tries for
// locating and clicking the next control; values below 1 mean one try.
type Options struct {
	TableSelector   string
	NextSelector    string
	TableTimeout    time.Duration
	ClickAttempts   int
	ClickRetryDelay time.Duration
	Settler         settle.Settler
	Logger          logger.Logger
}

// Driver owns the page position of a Session.
type Driver struct {
	sess       session.Session
	opts       Options
	log        logger.Logger
	state      State
	stopReason StopReason
}

// NewDriver creates a Driver for sess.
func NewDriver(sess session.Session, opts Options) *Driver {
	if opts.NextSelector == "" {
		opts.NextSelector = DefaultNextSelector
	}
	if opts.Settler == nil {
		opts.Settler = settle.None
	}
	if opts.ClickAttempts < 1 {
		opts.ClickAttempts = 1
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Driver{
		sess:  sess,
		opts:  opts,
		log:   log.WithField("component", "pagination"),
		state: Navigating,
	}
}

// State returns the current state.
func (d *Driver) State() State {
	return d.state
}

// StopReason returns why the driver finished, or "" while it is still active.
func (d *Driver) StopReason() StopReason {
	return d.stopReason
}

// Start loads url and waits for the data table to appear. Both failures are
// fatal for the run and leave the driver in Done.
func (d *Driver) Start(ctx context.Context, url string) error {
	d.state = Navigating

	if err := d.sess.Navigate(ctx, url); err != nil {
		if ctx.Err() != nil {
			d.finish(StopCancelled)
			return ctx.Err()
		}
		d.finish(StopNavigation)
		return errs.Navigation(err, url)
	}

	found, err := d.sess.WaitForElement(ctx, d.opts.TableSelector, d.opts.TableTimeout)
	if ctx.Err() != nil {
		d.finish(StopCancelled)
		return ctx.Err()
	}
	if err != nil || !found {
		d.finish(StopTableNotFound)
		return errs.TableNotFound(err, d.opts.TableSelector)
	}

	d.state = Ready
	d.log.DebugWithFields("Start page ready", map[string]interface{}{
		"url": url,
	})
	return nil
}

// BeginPage marks the current page as being extracted.
func (d *Driver) BeginPage() {
	if d.state == Done {
		return
	}
	d.state = Extracting
}

// Finish moves the driver to Done without touching the session.
func (d *Driver) Finish(reason StopReason) {
	if d.state == Done {
		return
	}
	d.finish(reason)
}

// Advance moves the session to the next page. It returns false when there is
// no enabled next control or when locating, clicking or settling fails; the
// driver is then Done and every later call returns false.
func (d *Driver) Advance(ctx context.Context) bool {
	if d.state == Done {
		return false
	}
	d.state = Advancing

	var last bool
	cfg := retry.Attempts(d.opts.ClickAttempts, d.opts.ClickRetryDelay, d.log)
	err := retry.Do(ctx, func(ctx context.Context) error {
		el, err := d.sess.FindElement(ctx, d.opts.NextSelector)
		if err != nil {
			return errs.Pagination(err, "cannot locate next control")
		}
		if el == nil {
			last = true
			return nil
		}
		if err := d.sess.Click(ctx, el); err != nil {
			return errs.Pagination(err, "cannot click next control")
		}
		return nil
	}, cfg)

	if err != nil {
		d.stop(ctx, err, "Pagination stopped")
		return false
	}
	if last {
		d.log.Info("No more pages available")
		d.finish(StopLastPage)
		return false
	}

	if err := d.opts.Settler.Settle(ctx); err != nil {
		d.stop(ctx, err, "Pagination stopped while settling")
		return false
	}

	d.state = Ready
	return true
}

// stop ends the traversal after a failed advance. A done ctx wins over the
// error it caused.
func (d *Driver) stop(ctx context.Context, err error, msg string) {
	if ctx.Err() != nil {
		d.log.WithError(err).Info("Pagination cancelled")
		d.finish(StopCancelled)
		return
	}
	d.log.WithError(err).Warn(msg)
	d.finish(StopPagination)
}

func (d *Driver) finish(reason StopReason) {
	d.state = Done
	d.stopReason = reason
}
