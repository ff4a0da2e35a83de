package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrQuit is returned by a Fake used after Quit.
var ErrQuit = errors.New("session: quit")

// FakePage is one rendered state of a Fake session.
type FakePage struct {
	Markup string
	// Next is the index of the page a click on any found element leads to.
	// nil means the following page in the list.
	Next *int
}

// Fake is a deterministic in-memory Session for tests. Selector queries are
// evaluated with goquery over the current page's markup.
type Fake struct {
	mu    sync.Mutex
	pages []FakePage
	url   string
	index int
	open  bool

	// Error injection for testing
	NavigateError error
	SnapshotError error
	FindError     error
	// ClickErrors are returned by successive Click calls, nil entries succeed.
	ClickErrors []error

	Navigations []string
	Clicks      int
	Finds       int
	QuitCalls   int
}

// NewFake creates a Fake serving pages in order once Navigate is called.
func NewFake(pages ...FakePage) *Fake {
	return &Fake{pages: pages, index: -1, open: true}
}

// NewFakeFromMarkup is NewFake with linear pagination.
func NewFakeFromMarkup(markup ...string) *Fake {
	pages := make([]FakePage, len(markup))
	for i, m := range markup {
		pages[i] = FakePage{Markup: m}
	}
	return NewFake(pages...)
}

// Goto returns a Next value pointing at page i.
func Goto(i int) *int {
	return &i
}

// Opener returns an Opener handing out f.
func (f *Fake) Opener() Opener {
	return func(ctx context.Context) (Session, error) {
		return f, nil
	}
}

func (f *Fake) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return ErrQuit
	}
	f.Navigations = append(f.Navigations, url)
	if f.NavigateError != nil {
		return f.NavigateError
	}
	if len(f.pages) == 0 {
		return fmt.Errorf("no pages at %s", url)
	}
	f.url = url
	f.index = 0
	return nil
}

func (f *Fake) WaitForElement(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return false, ErrQuit
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	doc, err := f.document()
	if err != nil {
		return false, err
	}
	return doc.Find(selector).Length() > 0, nil
}

func (f *Fake) Snapshot(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return "", ErrQuit
	}
	if f.SnapshotError != nil {
		return "", f.SnapshotError
	}
	if f.index < 0 {
		return "", errors.New("no page loaded")
	}
	return f.pages[f.index].Markup, nil
}

func (f *Fake) FindElement(ctx context.Context, selector string) (*Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return nil, ErrQuit
	}
	f.Finds++
	if f.FindError != nil {
		return nil, f.FindError
	}
	doc, err := f.document()
	if err != nil {
		return nil, err
	}
	if doc.Find(selector).Length() == 0 {
		return nil, nil
	}
	return &Element{Selector: selector, Handle: f.index}, nil
}

func (f *Fake) Click(ctx context.Context, el *Element) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return ErrQuit
	}
	call := f.Clicks
	f.Clicks++
	if call < len(f.ClickErrors) && f.ClickErrors[call] != nil {
		return f.ClickErrors[call]
	}
	if el == nil {
		return errors.New("nil element")
	}
	if from, ok := el.Handle.(int); !ok || from != f.index {
		return errors.New("stale element")
	}

	next := f.index + 1
	if p := f.pages[f.index].Next; p != nil {
		next = *p
	}
	if next < 0 || next >= len(f.pages) {
		return fmt.Errorf("click leads to missing page %d", next)
	}
	f.index = next
	return nil
}

func (f *Fake) Quit() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.QuitCalls++
	f.open = false
	return nil
}

// Current returns the index of the page being shown, -1 before Navigate.
func (f *Fake) Current() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index
}

func (f *Fake) document() (*goquery.Document, error) {
	if f.index < 0 {
		return nil, errors.New("no page loaded")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(f.pages[f.index].Markup))
}
