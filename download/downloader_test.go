package download

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mimirprompt/gallery-crawler/config"
	"github.com/mimirprompt/gallery-crawler/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = log.New(io.Discard, "", 0)
	os.Exit(m.Run())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.CreateDefaultConfig()
	cfg.Download.Concurrency = 2
	cfg.Download.RetryAttempts = 3
	cfg.Download.RetryDelaySec = 1
	cfg.Download.TimeoutSec = 5
	return cfg
}

func fastDownloader(cfg *config.Config) *Downloader {
	d := NewDownloader(cfg)
	d.retryDelay = 0
	return d
}

func TestDownloadAllFetchesAndSkips(t *testing.T) {
	var requests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	items := []Item{
		{URL: srv.URL + "/a.jpg", DestPath: filepath.Join(dir, "a.jpg")},
		{URL: srv.URL + "/b.jpg", DestPath: filepath.Join(dir, "b.jpg")},
		{URL: srv.URL + "/c.jpg", DestPath: filepath.Join(dir, "c.jpg")},
	}

	d := fastDownloader(testConfig(t))
	result := d.DownloadAll(context.Background(), items)
	require.Equal(t, 3, result.Downloaded)
	require.Zero(t, result.Skipped)
	require.Zero(t, result.Failed)
	require.EqualValues(t, 3, atomic.LoadInt64(&requests))

	// Second run: everything resolves to skipped without touching the
	// network.
	result = d.DownloadAll(context.Background(), items)
	require.Equal(t, 3, result.Skipped)
	require.Zero(t, result.Downloaded)
	require.EqualValues(t, 3, atomic.LoadInt64(&requests), "no network calls on rerun")
}

func TestDownloadFollowsSingleRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/final.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/moved.jpg", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/final.jpg", http.StatusFound)
	})

	dest := filepath.Join(t.TempDir(), "out.jpg")
	d := fastDownloader(testConfig(t))
	result := d.DownloadAll(context.Background(), []Item{{URL: srv.URL + "/moved.jpg", DestPath: dest}})

	require.Equal(t, 1, result.Downloaded, "redirect then 200 counts as downloaded")
	require.Zero(t, result.Failed)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))
}

func TestDownloadRetriesThenFails(t *testing.T) {
	var attempts int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "broken.jpg")
	d := fastDownloader(testConfig(t))
	result := d.DownloadAll(context.Background(), []Item{{URL: srv.URL + "/broken.jpg", DestPath: dest}})

	require.Equal(t, 1, result.Failed)
	require.EqualValues(t, 3, atomic.LoadInt64(&attempts), "full retry budget consumed")
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0].Message, "HTTP 500")

	_, err := os.Stat(dest)
	require.True(t, os.IsNotExist(err), "no partial file left behind")

	logPath := filepath.Join(dir, "download_errors.log")
	require.NoError(t, WriteErrorLog(logPath, result.Errors))
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), srv.URL+"/broken.jpg")
	require.Contains(t, string(data), "Error: HTTP 500")
}

func TestDownloadFailureDoesNotAbortBatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/bad.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	d := fastDownloader(testConfig(t))
	result := d.DownloadAll(context.Background(), []Item{
		{URL: srv.URL + "/bad.jpg", DestPath: filepath.Join(dir, "bad.jpg")},
		{URL: srv.URL + "/ok.jpg", DestPath: filepath.Join(dir, "ok.jpg")},
	})

	require.Equal(t, 1, result.Downloaded)
	require.Equal(t, 1, result.Failed)
}

func TestDownloadAllStopsWhenContextDead(t *testing.T) {
	var requests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	items := []Item{
		{URL: srv.URL + "/a.jpg", DestPath: filepath.Join(dir, "a.jpg")},
		{URL: srv.URL + "/b.jpg", DestPath: filepath.Join(dir, "b.jpg")},
		{URL: srv.URL + "/c.jpg", DestPath: filepath.Join(dir, "c.jpg")},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(t)
	cfg.Download.Concurrency = 1
	d := fastDownloader(cfg)
	result := d.DownloadAll(ctx, items)

	// only the first batch ran; no requests ever left the process
	require.Zero(t, atomic.LoadInt64(&requests))
	require.Zero(t, result.Downloaded)
	require.Equal(t, 1, result.Failed)
}

func TestWriteErrorLogEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "download_errors.log")
	require.NoError(t, WriteErrorLog(path, nil))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
