package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestField(t *testing.T) {
	assert.Equal(t, "Jane Doe", Field("  <b>Jane</b>\n\t Doe "))
	assert.Equal(t, "", Field("<script></script>"))
	assert.Equal(t, "a & b", Field("a &amp; b"))
}

func TestTextKeepsLineBreaks(t *testing.T) {
	assert.Equal(t, "line one\nline two", Text("<p>line one\nline two</p>"))
}

func TestTextPtr(t *testing.T) {
	assert.Nil(t, TextPtr(nil))

	blank := "  <br/> "
	assert.Nil(t, TextPtr(&blank))

	note := "call <i>after</i> lunch"
	got := TextPtr(&note)
	if assert.NotNil(t, got) {
		assert.Equal(t, "call after lunch", *got)
	}
}

func TestEncodedTagsAndControlChars(t *testing.T) {
	assert.Equal(t, "hi", Field("&lt;b&gt;hi&lt;/b&gt;"))
	assert.Equal(t, "ab", Field("a\x00b"))
	assert.Equal(t, "O'Brien", Field("O&#39;Brien"))
}
