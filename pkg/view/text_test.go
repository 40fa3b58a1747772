package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToText(t *testing.T) {
	t.Run("paragraphs become lines", func(t *testing.T) {
		out := HTMLToText("<p>first</p><p>second</p>")
		assert.Equal(t, "first\nsecond", out)
	})

	t.Run("inline markup stripped", func(t *testing.T) {
		out := HTMLToText("<p>use <b>context</b> with <code>errgroup</code></p>")
		assert.Equal(t, "use context with errgroup", out)
	})

	t.Run("script content dropped by sanitizer", func(t *testing.T) {
		out := HTMLToText(`<p>safe</p><script>alert("x")</script>`)
		assert.Equal(t, "safe", out)
	})

	t.Run("empty content", func(t *testing.T) {
		assert.Empty(t, HTMLToText(""))
	})

	t.Run("plain text passes through", func(t *testing.T) {
		assert.Equal(t, "just text", HTMLToText("just text"))
	})

	t.Run("blank line runs collapsed", func(t *testing.T) {
		out := HTMLToText("<p>a</p><br><br><br><p>b</p>")
		assert.Equal(t, "a\n\nb", out)
	})
}
