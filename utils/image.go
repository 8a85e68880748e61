package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ResizeThumbnail scales the stored image down to width pixels wide, keeping
// the aspect ratio. Narrower images are only re-encoded. WebP sources are
// written back as JPEG since there is no WebP encoder; the returned file
// reflects the new location.
func ResizeThumbnail(f *StoredFile, width int) (*StoredFile, error) {
	img, err := imaging.Open(f.DiskPath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail: %w", err)
	}
	if width > 0 && img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	out := *f
	if strings.EqualFold(filepath.Ext(f.DiskPath), ".webp") || !hasImageExt(f.DiskPath) {
		out.DiskPath = strings.TrimSuffix(f.DiskPath, filepath.Ext(f.DiskPath)) + ".jpg"
		out.URL = strings.TrimSuffix(f.URL, filepath.Ext(f.URL)) + ".jpg"
		out.MIME = "image/jpeg"
	}

	if err := imaging.Save(img, out.DiskPath, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("save thumbnail: %w", err)
	}
	if out.DiskPath != f.DiskPath {
		_ = os.Remove(f.DiskPath)
	}
	if info, err := os.Stat(out.DiskPath); err == nil {
		out.Size = info.Size()
	}
	return &out, nil
}

func hasImageExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
