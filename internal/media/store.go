// Package media stores uploaded product images on the local filesystem and
// checks that uploads really are images.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrNotImage = errors.New("upload a valid image. The file you uploaded was either not an image or a corrupted image")

type LocalStorage struct {
	root    string
	baseURL string
	log     *logrus.Logger
}

func NewLocalStorage(root, baseURL string, logger *logrus.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("could not create media root %s: %w", root, err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStorage{root: root, baseURL: baseURL, log: logger}, nil
}

func (s *LocalStorage) Root() string { return s.root }

// Save writes r under a fresh name that keeps the extension of name and
// returns the stored name.
func (s *LocalStorage) Save(name string, r io.Reader) (string, error) {
	stored := uuid.NewString() + strings.ToLower(filepath.Ext(name))
	f, err := os.OpenFile(filepath.Join(s.root, stored), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("could not create image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(filepath.Join(s.root, stored))
		return "", fmt.Errorf("could not write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("could not close image file: %w", err)
	}
	s.log.Infof("Media: Stored image %s (uploaded as %s)", stored, name)
	return stored, nil
}

func (s *LocalStorage) Delete(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid image name %q", name)
	}
	err := os.Remove(filepath.Join(s.root, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not delete image %s: %w", name, err)
	}
	return nil
}

func (s *LocalStorage) URL(name string) string {
	return s.baseURL + path.Base(name)
}

// SniffImage detects the content type of an upload and rewinds it. It
// returns the canonical extension (with dot) for image content and
// ErrNotImage otherwise.
func SniffImage(r io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("could not read upload: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("could not rewind upload: %w", err)
	}
	// SVG is markup, not a raster image.
	if !strings.HasPrefix(mtype.String(), "image/") || mtype.Is("image/svg+xml") {
		return "", ErrNotImage
	}
	return mtype.Extension(), nil
}
