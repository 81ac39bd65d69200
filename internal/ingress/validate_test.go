package ingress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeTrimsValidInput(t *testing.T) {
	got, err := Sanitize("  こんにちは  ")
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", got)
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{"hello", "  spaced out  ", "こんにちは、元気ですか？", "multi\nline\ntext"}
	for _, input := range inputs {
		once, err := Sanitize(input)
		require.NoError(t, err, input)
		twice, err := Sanitize(once)
		require.NoError(t, err, input)
		assert.Equal(t, once, twice, input)
	}
}

func TestSanitizeEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t  \n"} {
		_, err := Sanitize(input)
		assert.ErrorIs(t, err, ErrEmpty, "input %q", input)
	}
}

func TestSanitizeTooLong(t *testing.T) {
	_, err := Sanitize(strings.Repeat("a", 2001))
	assert.ErrorIs(t, err, ErrTooLong)

	got, err := Sanitize(strings.Repeat("a", 2000))
	require.NoError(t, err)
	assert.Len(t, got, 2000)
}

func TestSanitizeLengthCountsRunesNotBytes(t *testing.T) {
	// 2000 иероглифов — это 6000 байт, но лимит не превышен
	got, err := Sanitize(strings.Repeat("あ", 2000))
	require.NoError(t, err)
	assert.Equal(t, 2000, len([]rune(got)))

	_, err = Sanitize(strings.Repeat("あ", 2001))
	assert.ErrorIs(t, err, ErrTooLong)

	got, err = Sanitize(strings.Repeat("あ", 700))
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestSanitizeDangerousContent(t *testing.T) {
	cases := []string{
		"<script>alert(1)</script>",
		"<SCRIPT src='x'>alert(1)</SCRIPT>",
		"<script>\nalert(1)\n</script>",
		"click javascript:alert(1)",
		"JAVASCRIPT:void(0)",
		"vbscript:msgbox",
		"data:text/html;base64,xxx",
	}
	for _, input := range cases {
		_, err := Sanitize(input)
		assert.ErrorIs(t, err, ErrDangerousContent, "input %q", input)
	}
}

func TestSanitizeAllowsPlainMarkupMention(t *testing.T) {
	// упоминание тега без исполняемого содержимого не блокируется
	got, err := Sanitize("scriptという単語を含む文章")
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}
