package config

import (
	"regexp"
	"strings"
)

// Filename sanitization is shared between the downloader (writing
// files) and the importer (reconstructing paths). Both sides must
// produce byte-identical names, so all of it lives here.

const maxFilenameLength = 50

var (
	casePrefixRe   = regexp.MustCompile(`(?:Case|案例)\s*\d+[：:]\s*`)
	caseNumberRe   = regexp.MustCompile(`(?:Case|案例)\s*(\d+)`)
	invalidCharsRe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	multiScoreRe   = regexp.MustCompile(`_{2,}`)
)

// SanitizeFilename turns a record title into a filesystem-safe base
// name: the case number (if any) becomes a prefix, the rest is
// stripped of characters illegal on common filesystems, whitespace
// collapses to single underscores and the result is capped at 50
// characters.
func SanitizeFilename(name string) string {
	if name == "" {
		return "untitled"
	}

	var caseNum string
	if m := caseNumberRe.FindStringSubmatch(name); m != nil {
		caseNum = m[1]
	}

	cleaned := casePrefixRe.ReplaceAllString(name, "")
	cleaned = invalidCharsRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, "_")
	cleaned = multiScoreRe.ReplaceAllString(cleaned, "_")
	cleaned = strings.TrimSpace(cleaned)

	if runes := []rune(cleaned); len(runes) > maxFilenameLength {
		cleaned = string(runes[:maxFilenameLength])
	}

	if caseNum != "" {
		return caseNum + "_" + cleaned
	}
	return cleaned
}
