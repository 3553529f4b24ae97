package browse

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// StaticPage is a Page over a single fetched HTML document. It covers
// server-rendered galleries without a browser engine: clicks and key
// presses are accepted but do nothing, and scrolling never advances,
// so the extractor's reveal loop terminates after one pass and detail
// extraction degrades to the cheap-pass fields.
type StaticPage struct {
	http *resty.Client
	doc  *goquery.Document
}

func NewStaticPage(userAgent string) *StaticPage {
	client := resty.New()
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	return &StaticPage{http: client}
}

func (p *StaticPage) Navigate(ctx context.Context, url string) error {
	res, err := p.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("browse: GET %s: %s", url, res.Status())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return err
	}
	p.doc = doc
	return nil
}

func (p *StaticPage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if p.doc == nil {
		return ErrNotFound
	}
	// A static document never changes; there is nothing to wait on.
	if p.doc.Find(selector).Length() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *StaticPage) Query(selector string) ([]Element, error) {
	if p.doc == nil {
		return nil, ErrNotFound
	}
	var out []Element
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &staticElement{sel: s})
	})
	return out, nil
}

func (p *StaticPage) ScrollBy(ctx context.Context, pixels int) (int, error) {
	return 0, nil
}

func (p *StaticPage) PressKey(ctx context.Context, key string) error {
	return nil
}

type staticElement struct {
	sel *goquery.Selection
}

func (e *staticElement) Text() string {
	return e.sel.Text()
}

func (e *staticElement) Attr(name string) string {
	v, _ := e.sel.Attr(name)
	return v
}

func (e *staticElement) Click(ctx context.Context) error {
	return nil
}

func (e *staticElement) Query(selector string) ([]Element, error) {
	var out []Element
	e.sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &staticElement{sel: s})
	})
	return out, nil
}

func (e *staticElement) ScrollToEnd(ctx context.Context) error {
	return nil
}
