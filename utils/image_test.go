package utils

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeThumbnail(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "wide.png")
	require.NoError(t, imaging.Save(imaging.New(1600, 900, color.NRGBA{R: 200, A: 255}), src))

	out, err := ResizeThumbnail(&StoredFile{Name: "wide.png", URL: "/uploads/thumbnails/wide.png", DiskPath: src}, 800)
	require.NoError(t, err)
	assert.Equal(t, src, out.DiskPath)

	img, err := imaging.Open(out.DiskPath)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 450, img.Bounds().Dy())
	assert.Positive(t, out.Size)
}

func TestResizeThumbnailKeepsSmallImages(t *testing.T) {
	src := filepath.Join(t.TempDir(), "small.jpg")
	require.NoError(t, imaging.Save(imaging.New(320, 200, color.NRGBA{B: 200, A: 255}), src))

	out, err := ResizeThumbnail(&StoredFile{URL: "/uploads/thumbnails/small.jpg", DiskPath: src}, 800)
	require.NoError(t, err)

	img, err := imaging.Open(out.DiskPath)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
}
