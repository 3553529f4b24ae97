package crawler

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mimirprompt/gallery-crawler/gallery"
	"github.com/mimirprompt/gallery-crawler/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = log.New(io.Discard, "", 0)
	os.Exit(m.Run())
}

func newTestExtractor(page *fakePage) *Extractor {
	e := NewExtractor(page, DefaultSelectors())
	e.SetTimeouts(time.Second, 100*time.Millisecond)
	e.SetScroll(500, 10)
	return e
}

func TestExtractEveryItemYieldsOneRecord(t *testing.T) {
	page := newGalleryPage(nil)
	e := newTestExtractor(page)

	records, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3, "output length must equal item count")

	for i, rec := range records {
		require.Equal(t, i, rec.Index)
		require.NotEmpty(t, rec.Title)
		require.NotEmpty(t, rec.Thumbnail)
	}
}

func TestExtractDetailFields(t *testing.T) {
	page := newGalleryPage(nil)
	e := newTestExtractor(page)

	records, err := e.Extract(context.Background())
	require.NoError(t, err)

	first := records[0]
	require.Equal(t, "案例 1：水晶之城", first.Title)
	require.Equal(t, "https://x.com/artist1/status/111", first.SourceURL)
	require.Equal(t, []string{"https://cdn.example.com/thumb1.jpg"}, first.Images,
		"inline-encoded and duplicate sources are excluded")
	require.Equal(t, 2, first.PromptCount)
	require.Contains(t, first.PromptText, "crystal city")
	require.Contains(t, first.PromptText, "underwater library")
	require.Contains(t, first.PromptText, segmentSeparator)
	require.NotContains(t, first.PromptText, "提示词")
	require.NotContains(t, first.PromptText, "复制")
	require.Equal(t, []string{"fantasy", "cityscape"}, first.Tags)
	require.Empty(t, first.Error)
}

func TestExtractDegradedRecordOnMissingDetail(t *testing.T) {
	page := newGalleryPage(map[int]bool{1: true})
	e := newTestExtractor(page)

	records, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	degraded := records[1]
	require.Equal(t, "DetailNotFound", degraded.Error)
	require.Equal(t, "案例 2：破碎的模态框", degraded.Title)
	require.Equal(t, []string{"https://cdn.example.com/thumb2.jpg"}, degraded.Images)
	require.Empty(t, degraded.PromptText)
	require.Zero(t, degraded.PromptCount)

	require.Empty(t, records[0].Error)
	require.Empty(t, records[2].Error)
	require.NotEmpty(t, records[0].PromptText)
	require.NotEmpty(t, records[2].PromptText)
}

func TestExtractPageLoadTimeout(t *testing.T) {
	page := &fakePage{} // no cards at all
	e := newTestExtractor(page)

	_, err := e.Extract(context.Background())
	require.ErrorIs(t, err, ErrPageLoadTimeout)
}

func TestExtractClosesDetailBothWays(t *testing.T) {
	page := newGalleryPage(nil)
	e := newTestExtractor(page)

	_, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Nil(t, page.modal, "detail view left open after run")
	require.Contains(t, page.keys, "Escape")
}

func TestExtractCancellationReturnsPartial(t *testing.T) {
	page := newGalleryPage(nil)
	e := newTestExtractor(page)

	ctx, cancel := context.WithCancel(context.Background())
	e.OnRecord = func(_ gallery.Record) { cancel() }

	records, err := e.Extract(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, records, 1, "records finished before cancellation are returned")
}
