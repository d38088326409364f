package output

import (
	"os"
	"path/filepath"
	"strings"

	"menu-scraper/pkg/models"
)

// ExistingResult reports whether the restaurant already has menu documents
// on disk from a previous run, and if so returns a skip result built from
// them so no network work is needed.
//
// metadata.json is preferred: when it exists and lists saved files, the
// result echoes it with tag "skipped_existing_menu" appended. A broken or
// empty metadata file falls through to a directory scan for .html/.htm/.pdf
// documents; hits yield reconstructed entries (no URL, null status and
// content type, assumed menu-like) tagged "skipped_existing_menu_no_meta".
// A directory holding only metadata.json or unrelated files is not a skip.
func (s *Store) ExistingResult(r models.Restaurant) (models.SiteResult, bool) {
	dir := s.RestaurantDir(r.Slug)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return models.SiteResult{}, false
	}

	if meta, err := s.ReadMetadata(r.Slug); err == nil && len(meta.SavedFiles) > 0 {
		res := models.SiteResult{
			UUID:       orDefault(meta.UUID, r.UUID),
			Slug:       r.Slug,
			Name:       orDefault(meta.Name, r.Name),
			Website:    orDefault(meta.Website, r.Website),
			Found:      true,
			SavedFiles: meta.SavedFiles,
			Errors:     append(meta.Errors, "skipped_existing_menu"),
			Skipped:    true,
		}
		if res.Errors == nil {
			res.Errors = []string{"skipped_existing_menu"}
		}
		return res, true
	}

	saved := s.scanSavedDocuments(r.Slug, dir)
	if len(saved) == 0 {
		return models.SiteResult{}, false
	}
	return models.SiteResult{
		UUID:       r.UUID,
		Slug:       r.Slug,
		Name:       r.Name,
		Website:    r.Website,
		Found:      true,
		SavedFiles: saved,
		Errors:     []string{"skipped_existing_menu_no_meta"},
		Skipped:    true,
	}, true
}

// scanSavedDocuments reconstructs saved-file entries from the documents
// present in a restaurant directory.
func (s *Store) scanSavedDocuments(slug, dir string) []models.SavedFile {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var saved []models.SavedFile
	for _, entry := range entries {
		if !entry.Type().IsRegular() || entry.Name() == MetadataFilename {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".html", ".htm", ".pdf":
			saved = append(saved, models.SavedFile{
				File:       filepath.ToSlash(filepath.Join(slug, entry.Name())),
				IsMenuLike: true,
			})
		}
	}
	return saved
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
