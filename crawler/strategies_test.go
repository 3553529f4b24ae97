package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkerSegmentsSplitsOnLabels(t *testing.T) {
	sel := DefaultSelectors()
	text := "提示词 1\nA vast desert city carved into red sandstone cliffs at golden hour\n复制\n" +
		"提示词 2\nA lighthouse keeper reading by candlelight during a storm at sea\n复制"

	segments := markerSegments(text, nil, sel)
	require.Len(t, segments, 2)
	require.Contains(t, segments[0], "desert city")
	require.Contains(t, segments[1], "lighthouse keeper")
	for _, s := range segments {
		require.NotContains(t, s, "提示词")
		require.NotContains(t, s, "复制")
	}
}

func TestMarkerSegmentsDropsShortSegments(t *testing.T) {
	sel := DefaultSelectors()
	text := "提示词 1\nshort\n复制\n提示词 2\nA proper full length prompt segment that clears the minimum\n复制"

	segments := markerSegments(text, nil, sel)
	require.Len(t, segments, 1)
}

func TestMarkerSegmentsNoMarkers(t *testing.T) {
	require.Nil(t, markerSegments("plain text without any labels", nil, DefaultSelectors()))
}

func TestProseFallbackPicksFirstLongBlock(t *testing.T) {
	sel := DefaultSelectors()
	blocks := []string{
		"Short UI label",
		"A sprawling night market street scene with paper lanterns, rain slicked pavement reflecting neon signs, and a cat watching from an awning above the noodle stall",
		"Another equally long block that should not be reached because the scan stops at the first prose-looking candidate it finds in document order",
	}

	segments := proseFallback("", blocks, sel)
	require.Len(t, segments, 1)
	require.Contains(t, segments[0], "night market")
}

func TestProseFallbackSkipsLabelBlocks(t *testing.T) {
	sel := DefaultSelectors()
	blocks := []string{
		"提示词 this block is long enough to pass the length gate but it carries the section marker so it is a container not a prompt body and must be skipped here",
	}
	require.Nil(t, proseFallback("", blocks, sel))
}

func TestExtractSegmentsPrefersMarkers(t *testing.T) {
	sel := DefaultSelectors()
	text := "提示词 1\nA fox made of autumn leaves running through a birch forest clearing\n复制"
	blocks := []string{"A totally different long prose block that would match the fallback heuristics if it were ever consulted by the chain"}

	segments := extractSegments(text, blocks, sel)
	require.Len(t, segments, 1)
	require.Contains(t, segments[0], "autumn leaves")
}
