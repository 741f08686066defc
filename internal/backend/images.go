package backend

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// imageExtensions are tried in order when a name has no extension.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tif", ".tiff", ".webp"}

// ImageStore loads template images relative to a base directory and caches
// decoded results.
type ImageStore struct {
	Dir string

	mu    sync.Mutex
	cache map[string]image.Image
}

// NewImageStore returns a store rooted at dir.
func NewImageStore(dir string) *ImageStore {
	return &ImageStore{Dir: dir, cache: make(map[string]image.Image)}
}

// Resolve returns the file path for name, trying known extensions when
// name has none.
func (s *ImageStore) Resolve(name string) (string, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.Dir, name)
	}
	if filepath.Ext(path) != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("image %q: %w", name, err)
		}
		return path, nil
	}
	for _, ext := range imageExtensions {
		if _, err := os.Stat(path + ext); err == nil {
			return path + ext, nil
		}
	}
	return "", fmt.Errorf("image %q: no file in %s with a supported extension", name, s.Dir)
}

// Load decodes the named image.
func (s *ImageStore) Load(name string) (image.Image, error) {
	s.mu.Lock()
	if img, ok := s.cache[name]; ok {
		s.mu.Unlock()
		return img, nil
	}
	s.mu.Unlock()

	path, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	s.mu.Lock()
	s.cache[name] = img
	s.mu.Unlock()
	return img, nil
}
