package gallery

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	caseNumberRe = regexp.MustCompile(`(?:Case|案例)\s*(\d+)`)
	permalinkRe  = regexp.MustCompile(`(?:twitter\.com|x\.com)/([^/]+)/status`)
)

// ParseCaseNumber extracts the integer business key embedded in a
// title as "Case N" or the localized "案例 N". Returns 0 when the
// title carries no case number.
func ParseCaseNumber(title string) int {
	m := caseNumberRe.FindStringSubmatch(title)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// AuthorRef is an author inferred from a record's attribution link.
type AuthorRef struct {
	Name       string
	Username   string
	Platform   string
	ProfileURL string
}

// AuthorFromURL derives an author from a social-platform status
// permalink. Only the twitter.com / x.com permalink shape is
// recognized; anything else yields no author.
func AuthorFromURL(sourceURL string) (AuthorRef, bool) {
	if sourceURL == "" {
		return AuthorRef{}, false
	}
	m := permalinkRe.FindStringSubmatch(sourceURL)
	if m == nil {
		return AuthorRef{}, false
	}
	username := m[1]
	return AuthorRef{
		Name:       username,
		Username:   username,
		Platform:   "twitter",
		ProfileURL: fmt.Sprintf("https://x.com/%s", username),
	}, true
}

// ContainsCJK reports whether text has any Han characters, which is
// what decides whether a row still needs the translation pass.
func ContainsCJK(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// FilterTags drops noise tokens and duplicates while preserving the
// first-seen order. Tags outside the 2..29 rune window or containing
// any of the noise labels are discarded.
func FilterTags(tags []string, noise ...string) []string {
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		n := len([]rune(tag))
		if n <= 1 || n >= 30 {
			continue
		}
		noisy := false
		for _, label := range noise {
			if label != "" && strings.Contains(tag, label) {
				noisy = true
				break
			}
		}
		if noisy {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
