package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "intro-to-go", Slugify("  Intro to Go! ", 0))
	assert.Equal(t, "creme-brulee-101", Slugify("Crème Brûlée -- 101", 0))
	assert.Equal(t, "item", Slugify("!!!", 0))
	assert.Equal(t, "abc", Slugify("abc-def", 4))
}

func TestIsValidSlug(t *testing.T) {
	assert.True(t, IsValidSlug("go-basics-2"))
	assert.False(t, IsValidSlug("Go Basics"))
	assert.False(t, IsValidSlug("-leading"))
	assert.False(t, IsValidSlug("double--hyphen"))
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"go": true, "go-2": true}
	slug, err := UniqueSlug("go", func(s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.Equal(t, "go-3", slug)

	slug, err = UniqueSlug("free", func(s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.Equal(t, "free", slug)
}
