package crawler

import (
	"regexp"
	"strings"
)

// Body extraction is a chain of strategies: each is a pure function
// over the detail container's text, tried in order, first non-empty
// result wins. The fragile heuristics stay isolated here so they can
// be tested without a page.

type segmentStrategy func(text string, blocks []string, sel Selectors) []string

func extractSegments(text string, blocks []string, sel Selectors) []string {
	strategies := []segmentStrategy{markerSegments, proseFallback}
	for _, strategy := range strategies {
		if segments := strategy(text, blocks, sel); len(segments) > 0 {
			return segments
		}
	}
	return nil
}

// markerSegments splits the detail text on repeated "<marker> N"
// section labels, stripping the labels and any copy affordance text,
// and keeps segments above the minimum length.
func markerSegments(text string, _ []string, sel Selectors) []string {
	if sel.MarkerToken == "" {
		return nil
	}
	markerRe := regexp.MustCompile(regexp.QuoteMeta(sel.MarkerToken) + `\s*\d*`)

	starts := markerRe.FindAllStringIndex(text, -1)
	if starts == nil {
		return nil
	}

	var segments []string
	for i, loc := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		segment := text[loc[0]:end]
		segment = markerRe.ReplaceAllString(segment, "")
		if sel.CopyToken != "" {
			segment = strings.ReplaceAll(segment, sel.CopyToken, "")
		}
		segment = strings.TrimSpace(segment)

		if len([]rune(segment)) > sel.MinSegmentLen {
			segments = append(segments, segment)
		}
	}
	return segments
}

// proseFallback scans block-level children for the first sufficiently
// long text that looks like prose rather than a UI label. Used only
// when the marker strategy finds nothing.
func proseFallback(_ string, blocks []string, sel Selectors) []string {
	for _, block := range blocks {
		text := strings.TrimSpace(block)
		if len([]rune(text)) <= sel.MinProseLen {
			continue
		}
		if !strings.Contains(text, "[") &&
			!strings.Contains(text, "a ") &&
			!strings.Contains(text, "an ") {
			continue
		}
		if sel.MarkerToken != "" && strings.Contains(text, sel.MarkerToken) {
			continue
		}
		if sel.CopyToken != "" && strings.Contains(text, sel.CopyToken) {
			continue
		}
		return []string{text}
	}
	return nil
}
