package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"menu-scraper/pkg/models"
)

// MetadataFilename is the durable per-restaurant record inside each
// restaurant directory.
const MetadataFilename = "metadata.json"

// WriteMetadata persists the per-restaurant record. The timestamp is
// normalized to UTC with second precision so records diff cleanly
// across runs.
func (s *Store) WriteMetadata(slug string, meta models.SiteMetadata) error {
	dir, err := s.EnsureRestaurantDir(slug)
	if err != nil {
		return err
	}
	meta.Timestamp = meta.Timestamp.UTC().Truncate(time.Second)
	if meta.SavedFiles == nil {
		meta.SavedFiles = []models.SavedFile{}
	}
	if meta.Errors == nil {
		meta.Errors = []string{}
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata for '%s': %w", slug, err)
	}

	path := filepath.Join(dir, MetadataFilename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing '%s': %w", path, err)
	}
	return nil
}

// ReadMetadata loads a restaurant's metadata.json. Returns os.ErrNotExist
// (wrapped) when the file is absent.
func (s *Store) ReadMetadata(slug string) (*models.SiteMetadata, error) {
	path := filepath.Join(s.RestaurantDir(slug), MetadataFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading '%s': %w", path, err)
	}
	var meta models.SiteMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing '%s': %w", path, err)
	}
	return &meta, nil
}
