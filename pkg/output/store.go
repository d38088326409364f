// FILE: pkg/output/store.go
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Store owns the output root for one run. Each restaurant gets its own
// directory (the unique slug) under the root; run-level summaries sit at
// the root itself. All returned file paths are relative to the root so
// metadata and summaries stay valid if the tree is moved.
type Store struct {
	root string
	log  *logrus.Entry
}

// NewStore creates the output root if needed and returns a Store over it.
func NewStore(root string, log *logrus.Entry) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating output root '%s': %w", root, err)
	}
	return &Store{root: root, log: log}, nil
}

// Root returns the output root directory path.
func (s *Store) Root() string {
	return s.root
}

// RestaurantDir returns the absolute directory path for one restaurant slug.
// The directory is not created.
func (s *Store) RestaurantDir(slug string) string {
	return filepath.Join(s.root, slug)
}

// EnsureRestaurantDir creates the restaurant's directory if needed and
// returns its absolute path.
func (s *Store) EnsureRestaurantDir(slug string) (string, error) {
	dir := s.RestaurantDir(slug)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating restaurant dir '%s': %w", dir, err)
	}
	return dir, nil
}

// SaveDocument writes one fetched document into the restaurant's directory
// as <stem><ext>, de-duplicating filename collisions within the site by
// appending -2, -3, ... before the extension. Returns the saved path
// relative to the output root.
func (s *Store) SaveDocument(slug, stem, ext string, body []byte) (string, error) {
	dir, err := s.EnsureRestaurantDir(slug)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	filename := stem + ext
	for n := 2; ; n++ {
		path := filepath.Join(dir, filename)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			if _, werr := f.Write(body); werr != nil {
				f.Close()
				os.Remove(path)
				return "", fmt.Errorf("writing '%s': %w", path, werr)
			}
			if cerr := f.Close(); cerr != nil {
				return "", fmt.Errorf("closing '%s': %w", path, cerr)
			}
			return filepath.ToSlash(filepath.Join(slug, filename)), nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("creating '%s': %w", path, err)
		}
		filename = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
}
