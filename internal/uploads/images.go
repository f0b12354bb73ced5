// Package uploads stores post images on local disk and serves them under /uploads.
package uploads

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	URLPrefix = "/uploads"
	imagesDir = "blog-images"
)

var (
	ErrUnsupportedType = errors.New("only image files are allowed")
	ErrTooLarge        = errors.New("image exceeds the upload size limit")
)

var allowedExt = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

type ImageStore struct {
	root     string
	maxBytes int64
}

// NewImageStore creates <root>/blog-images if needed.
func NewImageStore(root string, maxBytes int64) (*ImageStore, error) {
	if err := os.MkdirAll(filepath.Join(root, imagesDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &ImageStore{root: root, maxBytes: maxBytes}, nil
}

// Save checks extension, size and sniffed content, then writes the file under a fresh uuid name.
// The returned value is the public URL of the image.
func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := allowedExt[ext]; !ok {
		return "", ErrUnsupportedType
	}
	if fh.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(s.root, imagesDir, name)

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}
	if _, err := io.Copy(out, bytes.NewReader(data)); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("writing image file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("writing image file: %w", err)
	}

	return path.Join(URLPrefix, imagesDir, name), nil
}

// Remove deletes an image previously returned by Save. Unknown or foreign URLs are ignored.
func (s *ImageStore) Remove(url string) error {
	prefix := path.Join(URLPrefix, imagesDir) + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}

	name := strings.TrimPrefix(url, prefix)
	if name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return nil
	}

	err := os.Remove(filepath.Join(s.root, imagesDir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
