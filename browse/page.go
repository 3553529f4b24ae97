// Package browse abstracts the browser automation engine behind a
// small set of page primitives. The extractor only ever talks to
// these interfaces, so any engine that can navigate, query the DOM,
// click and scroll can drive a crawl.
package browse

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("browse: element not found")

type Page interface {
	Navigate(ctx context.Context, url string) error

	// WaitFor blocks until at least one element matching selector is
	// present, or the timeout elapses (ErrNotFound).
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error

	Query(selector string) ([]Element, error)

	// ScrollBy scrolls the viewport down by the given number of
	// pixels and reports the resulting scroll position. A position
	// equal to the previous call means the page has stopped growing.
	ScrollBy(ctx context.Context, pixels int) (int, error)

	PressKey(ctx context.Context, key string) error
}

type Element interface {
	Text() string
	Attr(name string) string
	Click(ctx context.Context) error
	Query(selector string) ([]Element, error)

	// ScrollToEnd forces the element's internal scroll region to its
	// end so lazily-rendered content materializes.
	ScrollToEnd(ctx context.Context) error
}
