package gallery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCaseNumber(t *testing.T) {
	require.Equal(t, 857, ParseCaseNumber("案例 857：水晶球里的城市"))
	require.Equal(t, 12, ParseCaseNumber("Case 12: Tiny Desk Robot"))
	require.Equal(t, 0, ParseCaseNumber("no key here"))
	require.Equal(t, 0, ParseCaseNumber(""))
}

func TestAuthorFromURL(t *testing.T) {
	ref, ok := AuthorFromURL("https://x.com/someartist/status/1234567890")
	require.True(t, ok)
	require.Equal(t, "someartist", ref.Username)
	require.Equal(t, "twitter", ref.Platform)
	require.Equal(t, "https://x.com/someartist", ref.ProfileURL)

	ref, ok = AuthorFromURL("https://twitter.com/other/status/99")
	require.True(t, ok)
	require.Equal(t, "other", ref.Username)

	_, ok = AuthorFromURL("https://x.com/someartist")
	require.False(t, ok, "profile link without status is not a permalink")

	_, ok = AuthorFromURL("https://example.com/page")
	require.False(t, ok)

	_, ok = AuthorFromURL("")
	require.False(t, ok)
}

func TestContainsCJK(t *testing.T) {
	require.True(t, ContainsCJK("案例 1"))
	require.True(t, ContainsCJK("mixed 提示 text"))
	require.False(t, ContainsCJK("plain english"))
	require.False(t, ContainsCJK(""))
}

func TestFilterTags(t *testing.T) {
	in := []string{
		"portrait", "portrait", "x",
		"a-tag-name-that-is-way-too-long-to-be-a-real-tag",
		"复制", "提示词 1", "3d render",
	}
	got := FilterTags(in, "提示词", "复制")
	require.Equal(t, []string{"portrait", "3d render"}, got)
}
