package crawler

// Selectors holds the DOM anchors and heuristics the extractor works
// against. The defaults match the prompt gallery the crawler was
// built for; all of them can be overridden for layout changes without
// touching extraction logic.
type Selectors struct {
	Item        string
	ItemHeading string
	Detail      string
	Heading     string
	CloseButton string
	CancelKey   string

	// MarkerToken is the section label ("提示词") a detail body
	// repeats before each prompt segment; CopyToken is the copy
	// affordance text stripped from segments.
	MarkerToken string
	CopyToken   string

	MinSegmentLen int
	MinProseLen   int
}

func DefaultSelectors() Selectors {
	return Selectors{
		Item:          "article.prompt-card",
		ItemHeading:   "h3",
		Detail:        "div.modal-content",
		Heading:       "h1, h2, h3",
		CloseButton:   "button#modalClose",
		CancelKey:     "Escape",
		MarkerToken:   "提示词",
		CopyToken:     "复制",
		MinSegmentLen: 20,
		MinProseLen:   100,
	}
}
