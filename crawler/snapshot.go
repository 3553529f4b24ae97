package crawler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mimirprompt/gallery-crawler/gallery"
)

// SnapshotWriter owns the snapshot file: every flush rewrites the
// whole accumulated set, never appends. The write goes through a temp
// file in the same directory followed by a rename, so a reader only
// ever observes the previous or the new complete snapshot.
type SnapshotWriter struct {
	path   string
	source string
}

func NewSnapshotWriter(path, source string) *SnapshotWriter {
	return &SnapshotWriter{path: path, source: source}
}

func (w *SnapshotWriter) Flush(records []gallery.Record, totalFound int) error {
	snap := gallery.Snapshot{
		Source:       w.source,
		CrawledAt:    time.Now().UTC(),
		TotalFound:   totalFound,
		CrawledCount: len(records),
		Prompts:      records,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, w.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// LoadSnapshot reads a snapshot file. Partial runs (CrawledCount <
// TotalFound) load fine; downstream components decide what to do
// with the gap.
func LoadSnapshot(path string) (*gallery.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap gallery.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("snapshot: parse %s: %w", path, err)
	}
	return &snap, nil
}
