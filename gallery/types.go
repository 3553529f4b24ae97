package gallery

import "time"

// Record is one scraped gallery item. Index is only stable within a
// single crawl run; the durable identity across runs is the case
// number embedded in the title.
type Record struct {
	Index       int      `json:"index"`
	Title       string   `json:"title"`
	Thumbnail   string   `json:"thumbnail"`
	SourceURL   string   `json:"sourceUrl"`
	Images      []string `json:"images"`
	Tags        []string `json:"tags"`
	PromptText  string   `json:"promptText"`
	PromptCount int      `json:"promptCount"`
	Error       string   `json:"error,omitempty"`
}

// Snapshot is the fully-replaced JSON file holding everything
// accumulated so far in one crawl run. CrawledCount may be smaller
// than TotalFound when a run was interrupted; readers must tolerate
// that.
type Snapshot struct {
	Source       string    `json:"source"`
	CrawledAt    time.Time `json:"crawledAt"`
	TotalFound   int       `json:"totalFound"`
	CrawledCount int       `json:"crawledCount"`
	Prompts      []Record  `json:"prompts"`
}
