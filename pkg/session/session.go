// Package session defines the Renderer Session contract: a single stateful
// browser-like page that renders client-side scripts and exposes its DOM.
//
// A Session is not safe for concurrent use. Every operation mutates or reads
// the one current page, so callers issue them strictly one at a time.
package session

import (
	"context"
	"time"
)

// Element is a handle to an interactive node found on the current page.
// Handles are only valid until the page state changes.
type Element struct {
	// Selector is the query that located the element.
	Selector string
	// Handle is the implementation-specific node reference.
	Handle interface{}
}

// Session is a rendered page the exporter can navigate, read and click.
type Session interface {
	// Navigate directs the session to url.
	Navigate(ctx context.Context, url string) error
	// WaitForElement polls until selector is present or timeout elapses.
	// A timeout is reported as (false, nil).
	WaitForElement(ctx context.Context, selector string, timeout time.Duration) (bool, error)
	// Snapshot returns the current rendered markup.
	Snapshot(ctx context.Context) (string, error)
	// FindElement returns the first element matching selector, or nil if absent.
	FindElement(ctx context.Context, selector string) (*Element, error)
	// Click invokes el.
	Click(ctx context.Context, el *Element) error
	// Quit releases the session. It is safe to call more than once.
	Quit() error
}

// Opener acquires a new Session.
type Opener func(ctx context.Context) (Session, error)
