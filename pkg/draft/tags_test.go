package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/floe-dev/floectl/pkg/domain"
)

func TestDraft_AddTag(t *testing.T) {
	d := New(domain.RecordFloe)

	assert.True(t, d.AddTag("go"))
	assert.Equal(t, []string{"GO"}, d.Tags, "tags stored in canonical upper case")

	// selecting the same suggestion twice leaves one occurrence
	assert.False(t, d.AddTag("go"))
	assert.False(t, d.AddTag("GO"))
	assert.False(t, d.AddTag("  gO "))
	assert.Equal(t, []string{"GO"}, d.Tags)

	assert.True(t, d.AddTag("react"))
	assert.Equal(t, []string{"GO", "REACT"}, d.Tags, "insertion order kept")

	assert.False(t, d.AddTag(""))
	assert.False(t, d.AddTag("   "))
}

func TestDraft_RemoveTag(t *testing.T) {
	d := New(domain.RecordFloe)
	d.AddTag("go")
	d.AddTag("rust")

	d.RemoveTag("Go")
	assert.Equal(t, []string{"RUST"}, d.Tags)

	d.RemoveTag("missing") // no-op
	assert.Equal(t, []string{"RUST"}, d.Tags)
}

func TestVocabulary_Suggest(t *testing.T) {
	vocab := Vocabulary{"GO", "GOLANG", "DJANGO", "JAVA", "JAVASCRIPT"}

	t.Run("prefix matches first", func(t *testing.T) {
		got := vocab.Suggest("go")
		assert.Equal(t, []string{"GO", "GOLANG", "DJANGO"}, got)
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, vocab.Suggest("JAVA"), vocab.Suggest("java"))
	})

	t.Run("empty input suggests nothing", func(t *testing.T) {
		assert.Empty(t, vocab.Suggest(""))
		assert.Empty(t, vocab.Suggest("  "))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, vocab.Suggest("cobol"))
	})
}
