package crawler

import (
	"context"
	"fmt"

	"github.com/mimirprompt/gallery-crawler/browse"
	"github.com/mimirprompt/gallery-crawler/gallery"
	"github.com/mimirprompt/gallery-crawler/logger"
)

// Crawler drives one full scrape run: navigate, extract, and flush
// the snapshot incrementally so a crash loses at most FlushEvery
// items of progress.
type Crawler struct {
	page       browse.Page
	extractor  *Extractor
	writer     *SnapshotWriter
	sourceURL  string
	flushEvery int
}

type RunStats struct {
	TotalFound   int
	CrawledCount int
	WithPrompts  int
}

func New(page browse.Page, extractor *Extractor, writer *SnapshotWriter, sourceURL string, flushEvery int) *Crawler {
	if flushEvery <= 0 {
		flushEvery = 50
	}
	return &Crawler{
		page:       page,
		extractor:  extractor,
		writer:     writer,
		sourceURL:  sourceURL,
		flushEvery: flushEvery,
	}
}

// Run blocks until the whole gallery is processed or ctx is
// cancelled. Progress is never silently discarded: interruption still
// flushes everything accumulated before returning.
func (c *Crawler) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats

	if err := c.page.Navigate(ctx, c.sourceURL); err != nil {
		return stats, fmt.Errorf("crawler: navigate %s: %w", c.sourceURL, err)
	}

	var accumulated []gallery.Record

	c.extractor.OnTotal = func(total int) {
		stats.TotalFound = total
		logger.Logger.Printf("[INFO] Found %d items on page", total)
	}
	c.extractor.OnRecord = func(rec gallery.Record) {
		accumulated = append(accumulated, rec)
		if rec.PromptText != "" {
			stats.WithPrompts++
		}
		if len(accumulated)%c.flushEvery == 0 {
			if err := c.writer.Flush(accumulated, stats.TotalFound); err != nil {
				logger.Logger.Printf("[ERROR] Intermediate flush failed: %v", err)
			}
		}
	}

	_, err := c.extractor.Extract(ctx)
	stats.CrawledCount = len(accumulated)

	// Final flush covers both clean completion and interruption.
	if len(accumulated) > 0 {
		if ferr := c.writer.Flush(accumulated, stats.TotalFound); ferr != nil {
			logger.Logger.Printf("[ERROR] Final flush failed: %v", ferr)
			if err == nil {
				err = ferr
			}
		}
	}

	return stats, err
}
