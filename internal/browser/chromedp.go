// Package browser implements session.Session on a local Chrome driven over
// the DevTools protocol.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"nuforcscraper/pkg/config"
	"nuforcscraper/pkg/logger"
	"nuforcscraper/pkg/session"
)

// Options controls how Chrome is launched
type Options struct {
	Headless          bool
	NoSandbox         bool
	DisableGPU        bool
	DisableDevShm     bool
	ExecPath          string
	UserAgent         string
	NavigationTimeout time.Duration
}

// OptionsFromConfig maps the browser and scrape settings onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Headless:          cfg.Browser.Headless,
		NoSandbox:         cfg.Browser.NoSandbox,
		DisableGPU:        cfg.Browser.DisableGPU,
		DisableDevShm:     cfg.Browser.DisableDevShm,
		ExecPath:          cfg.Browser.ExecPath,
		UserAgent:         cfg.Browser.UserAgent,
		NavigationTimeout: cfg.Scrape.NavigationTimeout,
	}
}

func (o Options) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
	)
	if o.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if o.DisableGPU {
		opts = append(opts, chromedp.DisableGPU)
	}
	if o.DisableDevShm {
		opts = append(opts, chromedp.Flag("disable-dev-shm-usage", true))
	}
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	if o.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(o.UserAgent))
	}
	return opts
}

// Session is a single Chrome tab
type Session struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     Options
	log      logger.Logger
	quitOnce sync.Once
}

var _ session.Session = (*Session)(nil)

// New launches Chrome and opens a tab. The browser lives until Quit, not
// until ctx is done.
func New(ctx context.Context, opts Options, log logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.WithField("component", "browser")

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts.allocatorOptions()...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			log.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			log.Warn(fmt.Sprintf(format, args...))
		}),
	)

	var once sync.Once
	s := &Session{
		ctx: tabCtx,
		cancel: func() {
			once.Do(func() {
				cancelTab()
				cancelAlloc()
			})
		},
		opts: opts,
		log:  log,
	}

	if err := ctx.Err(); err != nil {
		s.cancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	// Chrome lives as long as the context given to the first Run, so that
	// Run gets the tab context itself. ctx only bounds the launch.
	stop := context.AfterFunc(ctx, s.cancel)
	err := startBrowser(tabCtx)
	if !stop() && err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.cancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.InfoWithFields("Browser started", map[string]interface{}{
		"headless": opts.Headless,
	})
	return s, nil
}

// startBrowser launches Chrome on the tab context.
var startBrowser = func(tabCtx context.Context) error {
	return chromedp.Run(tabCtx)
}

// Opener returns a session.Opener launching a new browser per run.
func Opener(opts Options, log logger.Logger) session.Opener {
	return func(ctx context.Context) (session.Session, error) {
		return New(ctx, opts, log)
	}
}

// run executes actions on the tab. Cancelling ctx or hitting timeout aborts
// the actions but keeps the tab open.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	s.log.DebugWithFields("Navigating", map[string]interface{}{"url": url})
	return s.run(ctx, s.opts.NavigationTimeout, chromedp.Navigate(url))
}

// WaitForElement reports false with a nil error when timeout elapses first.
func (s *Session) WaitForElement(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	err := s.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return false, nil
	default:
		return false, err
	}
}

func (s *Session) Snapshot(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, 0, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (s *Session) FindElement(ctx context.Context, selector string) (*session.Element, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, 0, chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return &session.Element{Selector: selector, Handle: nodes[0]}, nil
}

func (s *Session) Click(ctx context.Context, el *session.Element) error {
	if el == nil {
		return errors.New("nil element")
	}
	node, ok := el.Handle.(*cdp.Node)
	if !ok {
		return fmt.Errorf("element %q does not belong to this browser", el.Selector)
	}
	return s.run(ctx, 0, chromedp.MouseClickNode(node))
}

// Quit closes the tab and the browser. Later calls do nothing.
func (s *Session) Quit() error {
	s.quitOnce.Do(func() {
		s.cancel()
		s.log.Debug("Browser closed")
	})
	return nil
}
