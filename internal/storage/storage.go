// Package storage provides transient image storage for pipeline artifacts.
// References are plain file paths so recognition backends that only accept
// paths (e.g. tesseract) can consume them directly.
package storage

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Store writes, reads and removes images by reference.
type Store interface {
	WriteImage(stem string, img image.Image) (string, error)
	ReadImage(ref string) (image.Image, error)
	Remove(ref string) error
}

// DiskStore keeps transient images in a single directory.
// Each written image gets a unique name derived from the given stem,
// so concurrent pipeline invocations never collide.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a disk-backed store rooted at dir.
// An empty dir falls back to the system temp directory.
func NewDiskStore(dir string) (*DiskStore, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the storage root directory.
func (s *DiskStore) Dir() string { return s.dir }

// WriteImage persists img as PNG under a unique name derived from stem
// and returns the reference (file path).
func (s *DiskStore) WriteImage(stem string, img image.Image) (string, error) {
	if img == nil {
		return "", errors.New("nil image")
	}
	if stem == "" {
		stem = "image"
	}
	f, err := os.CreateTemp(s.dir, stem+"-*.png")
	if err != nil {
		return "", fmt.Errorf("create transient file: %w", err)
	}
	ref := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close transient file: %w", err)
	}
	if err := imaging.Save(img, ref); err != nil {
		_ = os.Remove(ref)
		return "", fmt.Errorf("save transient image: %w", err)
	}
	return ref, nil
}

// ReadImage decodes the image stored at ref.
func (s *DiskStore) ReadImage(ref string) (image.Image, error) {
	img, err := imaging.Open(ref)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", ref, err)
	}
	return img, nil
}

// Remove deletes the image at ref. Removing a reference outside the
// store's directory is refused so callers cannot accidentally delete
// their own input files through the store.
func (s *DiskStore) Remove(ref string) error {
	if filepath.Dir(ref) != filepath.Clean(s.dir) {
		return fmt.Errorf("reference %s not owned by store", ref)
	}
	return os.Remove(ref)
}

// Stem derives a storage stem from an arbitrary input reference.
func Stem(ref string) string {
	base := filepath.Base(ref)
	ext := filepath.Ext(base)
	if ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "" || base == "." {
		return "image"
	}
	return base
}
