package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mimirprompt/gallery-crawler/config"
	"github.com/mimirprompt/gallery-crawler/logger"
)

// Item is one (url, destination) pair in a download plan.
type Item struct {
	URL      string
	DestPath string
}

type DownloadError struct {
	URL     string
	Message string
}

type Result struct {
	Downloaded int
	Skipped    int
	Failed     int
	Bytes      int64
	Errors     []DownloadError
}

// Downloader fetches plan items in fixed-size concurrent batches:
// each batch runs fully in parallel, batches run sequentially. An
// already-present destination file short-circuits without a network
// call, so a rerun against the same directory is free.
type Downloader struct {
	client      *http.Client
	limiter     *rate.Limiter
	userAgent   string
	concurrency int
	attempts    int
	retryDelay  time.Duration

	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func NewDownloader(cfg *config.Config) *Downloader {
	client := &http.Client{
		Timeout: cfg.DownloadTimeout(),
		// Redirects are followed manually, one per attempt, so the
		// retry budget survives a relocated URL.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &Downloader{
		client:      client,
		limiter:     rate.NewLimiter(rate.Every(200*time.Millisecond), cfg.Download.Concurrency),
		userAgent:   cfg.Source.UserAgent,
		concurrency: cfg.Download.Concurrency,
		attempts:    cfg.Download.RetryAttempts,
		retryDelay:  cfg.RetryDelay(),
	}
}

func (d *Downloader) DownloadAll(ctx context.Context, items []Item) Result {
	var result Result
	var mu sync.Mutex

	d.bar = progressbar.NewOptions(len(items),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("[green]Downloading[reset]"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	)

	for start := 0; start < len(items); start += d.concurrency {
		end := start + d.concurrency
		if end > len(items) {
			end = len(items)
		}

		var g errgroup.Group
		for _, item := range items[start:end] {
			item := item
			g.Go(func() error {
				defer d.bar.Add(1)

				written, skipped, err := d.downloadFile(ctx, item.URL, item.DestPath)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err != nil:
					result.Failed++
					result.Errors = append(result.Errors, DownloadError{URL: item.URL, Message: err.Error()})
					logger.Logger.Printf("[ERROR] Failed %s: %v", item.URL, err)
				case skipped:
					result.Skipped++
				default:
					result.Downloaded++
					result.Bytes += written
				}
				// a dead context is the only thing that stops the run
				return ctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			break
		}
	}

	d.bar.Finish()
	d.bar.Clear()
	logger.Logger.Printf("[INFO] Download summary: %d downloaded (%s), %d skipped, %d failed",
		result.Downloaded, humanize.Bytes(uint64(result.Bytes)), result.Skipped, result.Failed)
	return result
}

// downloadFile fetches one URL with the full retry budget. A partial
// destination file from a failed stream is removed before the failure
// surfaces; no truncated files are left behind.
func (d *Downloader) downloadFile(ctx context.Context, url, destPath string) (int64, bool, error) {
	if _, err := os.Stat(destPath); err == nil {
		return 0, true, nil
	}

	var lastErr error
	for attempt := 0; attempt < d.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(d.retryDelay):
			case <-ctx.Done():
				return 0, false, ctx.Err()
			}
		}

		if err := d.limiter.Wait(ctx); err != nil {
			return 0, false, err
		}

		resp, err := d.fetchOnce(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			continue
		}

		written, err := writeBody(destPath, resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return written, false, nil
	}

	return 0, false, lastErr
}

// fetchOnce issues one request, following at most a single redirect
// by re-issuing at the Location target.
func (d *Downloader) fetchOnce(ctx context.Context, url string) (*http.Response, error) {
	resp, err := d.doGet(ctx, url)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusMovedPermanently || resp.StatusCode == http.StatusFound {
		location := resp.Header.Get("Location")
		resp.Body.Close()
		if location == "" {
			return nil, fmt.Errorf("HTTP %d without Location for %s", resp.StatusCode, url)
		}
		return d.doGet(ctx, location)
	}

	return resp, nil
}

func (d *Downloader) doGet(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	return d.client.Do(req)
}

func writeBody(destPath string, body io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return 0, err
	}

	out, err := os.Create(destPath)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(out, body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(destPath)
		return 0, err
	}
	return written, nil
}
