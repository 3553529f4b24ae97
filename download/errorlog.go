package download

import (
	"os"
	"strings"
)

// WriteErrorLog writes one entry per failed download, blank-line
// separated. No file is written when there were no failures.
func WriteErrorLog(path string, errs []DownloadError) error {
	if len(errs) == 0 {
		return nil
	}

	entries := make([]string, 0, len(errs))
	for _, e := range errs {
		entries = append(entries, e.URL+"\n  Error: "+e.Message)
	}
	return os.WriteFile(path, []byte(strings.Join(entries, "\n\n")), 0644)
}
