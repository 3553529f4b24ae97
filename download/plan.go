package download

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mimirprompt/gallery-crawler/config"
	"github.com/mimirprompt/gallery-crawler/gallery"
	"github.com/mimirprompt/gallery-crawler/utils"
)

const fallbackExtension = "jpg"

// PlanFromSnapshot turns snapshot records into download items. Per
// record: thumbnail first, then the remaining detail images,
// deduplicated; names derive from the sanitized title with a
// positional suffix for the 2nd and later images. The importer
// reconstructs these exact names, so naming lives entirely in
// SanitizeFilename plus ImageFilename.
func PlanFromSnapshot(snap *gallery.Snapshot, imagesDir string) []Item {
	var items []Item
	for _, rec := range snap.Prompts {
		for i, imageURL := range uniqueImages(rec) {
			items = append(items, Item{
				URL:      imageURL,
				DestPath: filepath.Join(imagesDir, ImageFilename(rec.Title, imageURL, i)),
			})
		}
	}
	return items
}

// ImageFilename builds the deterministic local name for the i-th
// image of a record.
func ImageFilename(title, imageURL string, index int) string {
	base := config.SanitizeFilename(title)
	ext := utils.ExtFromURL(imageURL)
	if ext == "" {
		ext = fallbackExtension
	}
	if index == 0 {
		return base + "." + ext
	}
	return base + "_" + strconv.Itoa(index+1) + "." + ext
}

func uniqueImages(rec gallery.Record) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(u string) {
		if !strings.HasPrefix(u, "http") {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	add(rec.Thumbnail)
	for _, img := range rec.Images {
		add(img)
	}
	return out
}
