package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mimirprompt/gallery-crawler/browse"
	"github.com/mimirprompt/gallery-crawler/gallery"
	"github.com/mimirprompt/gallery-crawler/logger"
)

var ErrPageLoadTimeout = errors.New("crawler: item list never appeared")

const segmentSeparator = "\n\n---\n\n"

// Extractor scrapes structured records out of a loaded gallery page.
// Items are processed strictly sequentially: every interaction
// mutates shared page state, so there is exactly one logical worker.
type Extractor struct {
	page browse.Page
	sel  Selectors

	listTimeout   time.Duration
	detailTimeout time.Duration
	scrollStep    int
	maxScrolls    int

	// OnTotal fires once after the cheap pass with the item count;
	// OnRecord fires after every finished record, complete or
	// degraded. Both are optional.
	OnTotal  func(total int)
	OnRecord func(rec gallery.Record)
}

func NewExtractor(page browse.Page, sel Selectors) *Extractor {
	return &Extractor{
		page:          page,
		sel:           sel,
		listTimeout:   60 * time.Second,
		detailTimeout: 5 * time.Second,
		scrollStep:    500,
		maxScrolls:    100,
	}
}

func (e *Extractor) SetTimeouts(list, detail time.Duration) {
	e.listTimeout = list
	e.detailTimeout = detail
}

func (e *Extractor) SetScroll(step, maxIterations int) {
	e.scrollStep = step
	e.maxScrolls = maxIterations
}

type cardData struct {
	title     string
	thumbnail string
}

// Extract walks every item on the page and returns exactly one record
// per item. A single item failing never aborts the run; the item
// yields a degraded record carrying the error instead. On context
// cancellation the records finished so far are returned alongside the
// context error so callers can flush them.
func (e *Extractor) Extract(ctx context.Context) ([]gallery.Record, error) {
	if err := e.page.WaitFor(ctx, e.sel.Item, e.listTimeout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoadTimeout, err)
	}

	e.revealAll(ctx)

	cards, err := e.cheapPass()
	if err != nil {
		return nil, err
	}
	if e.OnTotal != nil {
		e.OnTotal(len(cards))
	}

	records := make([]gallery.Record, 0, len(cards))
	for i, card := range cards {
		select {
		case <-ctx.Done():
			return records, ctx.Err()
		default:
		}

		rec := gallery.Record{
			Index:     i,
			Title:     card.title,
			Thumbnail: card.thumbnail,
		}
		e.extractDetail(ctx, i, card, &rec)
		e.closeDetail(ctx)

		records = append(records, rec)
		if e.OnRecord != nil {
			e.OnRecord(rec)
		}
	}

	return records, nil
}

// revealAll scrolls the viewport down in fixed increments until the
// scroll position stops advancing or the iteration cap is hit, so
// lazy-loaded items materialize before the cheap pass.
func (e *Extractor) revealAll(ctx context.Context) {
	prev := -1
	for i := 0; i < e.maxScrolls; i++ {
		pos, err := e.page.ScrollBy(ctx, e.scrollStep)
		if err != nil || pos == prev {
			return
		}
		prev = pos
	}
}

// cheapPass snapshots title and thumbnail for every item in one
// side-effect-free sweep, before any interaction mutates page state.
func (e *Extractor) cheapPass() ([]cardData, error) {
	items, err := e.page.Query(e.sel.Item)
	if err != nil {
		return nil, fmt.Errorf("crawler: querying items: %w", err)
	}

	cards := make([]cardData, 0, len(items))
	for i, item := range items {
		card := cardData{title: fmt.Sprintf("Prompt %d", i+1)}
		if headings, err := item.Query(e.sel.ItemHeading); err == nil && len(headings) > 0 {
			if t := strings.TrimSpace(headings[0].Text()); t != "" {
				card.title = t
			}
		}
		if imgs, err := item.Query("img"); err == nil && len(imgs) > 0 {
			card.thumbnail = imgs[0].Attr("src")
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (e *Extractor) extractDetail(ctx context.Context, index int, card cardData, rec *gallery.Record) {
	// Items must be re-queried before each click; earlier detail
	// views may have rebuilt the list.
	items, err := e.page.Query(e.sel.Item)
	if err != nil || index >= len(items) {
		rec.Images = thumbnailOnly(card)
		rec.Error = "item no longer present"
		return
	}

	if err := items[index].Click(ctx); err != nil {
		rec.Images = thumbnailOnly(card)
		rec.Error = fmt.Sprintf("open detail: %v", err)
		return
	}

	if err := e.page.WaitFor(ctx, e.sel.Detail, e.detailTimeout); err != nil {
		rec.Images = thumbnailOnly(card)
		rec.Error = "DetailNotFound"
		return
	}

	details, err := e.page.Query(e.sel.Detail)
	if err != nil || len(details) == 0 {
		rec.Images = thumbnailOnly(card)
		rec.Error = "DetailNotFound"
		return
	}
	detail := details[0]

	// Reveal lazily-rendered detail text before reading it.
	if err := detail.ScrollToEnd(ctx); err != nil {
		logger.Logger.Printf("[WARN] item %d: detail scroll failed: %v", index, err)
	}

	if headings, err := detail.Query(e.sel.Heading); err == nil && len(headings) > 0 {
		if t := strings.TrimSpace(headings[0].Text()); t != "" {
			rec.Title = t
		}
	}

	rec.SourceURL = firstExternalLink(detail)
	rec.Images = detailImages(detail)

	text := detail.Text()
	blocks := blockTexts(detail)
	segments := extractSegments(text, blocks, e.sel)
	rec.PromptText = strings.Join(segments, segmentSeparator)
	rec.PromptCount = len(segments)

	rec.Tags = detailTags(detail, e.sel)
}

// closeDetail dismisses the detail view through two independent
// best-effort mechanisms; neither failing aborts the run, so both
// results are intentionally discarded.
func (e *Extractor) closeDetail(ctx context.Context) {
	if buttons, err := e.page.Query(e.sel.CloseButton); err == nil && len(buttons) > 0 {
		_ = buttons[0].Click(ctx)
	}
	_ = e.page.PressKey(ctx, e.sel.CancelKey)
}

func thumbnailOnly(card cardData) []string {
	if card.thumbnail == "" {
		return nil
	}
	return []string{card.thumbnail}
}

func firstExternalLink(detail browse.Element) string {
	anchors, err := detail.Query("a")
	if err != nil {
		return ""
	}
	for _, a := range anchors {
		href := a.Attr("href")
		if strings.HasPrefix(href, "http") {
			return href
		}
	}
	return ""
}

func detailImages(detail browse.Element) []string {
	imgs, err := detail.Query("img")
	if err != nil {
		return nil
	}
	seen := make(map[string]struct{}, len(imgs))
	var out []string
	for _, img := range imgs {
		src := img.Attr("src")
		if src == "" || strings.HasPrefix(src, "data:") {
			continue
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
}

func detailTags(detail browse.Element, sel Selectors) []string {
	spans, err := detail.Query("span")
	if err != nil {
		return nil
	}
	raw := make([]string, 0, len(spans))
	for _, span := range spans {
		raw = append(raw, span.Text())
	}
	return gallery.FilterTags(raw, sel.MarkerToken, sel.CopyToken)
}

// blockTexts collects the text of block-level children for the prose
// fallback strategy.
func blockTexts(detail browse.Element) []string {
	divs, err := detail.Query("div")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(divs))
	for _, div := range divs {
		out = append(out, div.Text())
	}
	return out
}
