package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"coursehub/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const uploadURLPrefix = "/uploads/"

var (
	ErrFileTooLarge = errors.New("file is too large")
	ErrFileType     = errors.New("file type is not allowed")

	reUnsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
)

// UploadKind describes where a class of upload is stored and what it may contain.
type UploadKind struct {
	Dir      string
	MaxBytes int64
	Allowed  []string
	Label    string // human readable list for error messages
}

func ThumbnailUpload() UploadKind {
	return UploadKind{
		Dir:      "thumbnails",
		MaxBytes: int64(config.Current().MaxThumbnailMB) << 20,
		Allowed:  []string{"image/jpeg", "image/png", "image/webp"},
		Label:    "JPEG, PNG or WebP",
	}
}

func VideoUpload() UploadKind {
	return UploadKind{
		Dir:      "videos",
		MaxBytes: int64(config.Current().MaxVideoMB) << 20,
		Allowed:  []string{"video/mp4", "video/webm", "video/quicktime"},
		Label:    "MP4, WebM or MOV",
	}
}

func MaterialUpload() UploadKind {
	return UploadKind{
		Dir:      "materials",
		MaxBytes: int64(config.Current().MaxMaterialMB) << 20,
		Allowed: []string{
			"application/pdf",
			"application/zip",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.openxmlformats-officedocument.presentationml.presentation",
			"text/plain",
		},
		Label: "PDF, ZIP, DOCX, PPTX or TXT",
	}
}

// StoredFile is an upload that was written to disk.
type StoredFile struct {
	Name     string
	URL      string
	DiskPath string
	Size     int64
	MIME     string
}

// CheckUpload sniffs the file's content type and checks it against kind.
// It returns the detected MIME type.
func CheckUpload(file *multipart.FileHeader, kind UploadKind) (string, error) {
	if file.Size > kind.MaxBytes {
		return "", fmt.Errorf("%w: max %d MB", ErrFileTooLarge, kind.MaxBytes>>20)
	}
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", err
	}
	if !mimeAllowed(mtype, kind.Allowed) {
		return "", fmt.Errorf("%w: %s, expected %s", ErrFileType, mtype.String(), kind.Label)
	}
	return mtype.String(), nil
}

func mimeAllowed(m *mimetype.MIME, allowed []string) bool {
	for ; m != nil; m = m.Parent() {
		for _, a := range allowed {
			if m.Is(a) {
				return true
			}
		}
	}
	return false
}

// UploadErrorMessage turns a CheckUpload error into a form message.
func UploadErrorMessage(field string, kind UploadKind, err error) string {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return fmt.Sprintf("The %s may not be greater than %d MB!", field, kind.MaxBytes>>20)
	case errors.Is(err, ErrFileType):
		return fmt.Sprintf("The %s must be a %s file!", field, kind.Label)
	default:
		return fmt.Sprintf("The %s could not be read!", field)
	}
}

// SaveUploadedFile validates file against kind and stores it under a unique
// name inside the kind's upload directory.
func SaveUploadedFile(file *multipart.FileHeader, kind UploadKind) (*StoredFile, error) {
	mtype, err := CheckUpload(file, kind)
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	destDir := filepath.Join(config.Current().UploadDir, kind.Dir)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, err
	}

	name := GenerateUniqueFilename(file.Filename)
	diskPath := filepath.Join(destDir, name)

	dst, err := os.Create(diskPath)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(diskPath)
		return nil, err
	}

	return &StoredFile{
		Name:     file.Filename,
		URL:      uploadURLPrefix + kind.Dir + "/" + name,
		DiskPath: diskPath,
		Size:     written,
		MIME:     mtype,
	}, nil
}

// GenerateUniqueFilename keeps a sanitised copy of the original name after a
// date and uuid prefix.
func GenerateUniqueFilename(original string) string {
	base := filepath.Base(original)
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.Trim(reUnsafeFilename.ReplaceAllString(stem, "-"), "-.")
	if len(stem) > 60 {
		stem = stem[:60]
	}
	if stem == "" {
		stem = "file"
	}
	return fmt.Sprintf("%s-%s-%s%s", time.Now().Format("20060102"), uuid.NewString(), stem, ext)
}

// DiskPathFor maps an upload URL back to its location on disk. It returns ""
// for anything outside the upload directory.
func DiskPathFor(url string) string {
	if !strings.HasPrefix(url, uploadURLPrefix) {
		return ""
	}
	rel := filepath.Clean(strings.TrimPrefix(url, uploadURLPrefix))
	if rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return ""
	}
	return filepath.Join(config.Current().UploadDir, rel)
}

// RemoveUpload deletes a previously stored upload. Missing files are ignored.
func RemoveUpload(url string) error {
	path := DiskPathFor(url)
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
