package models

import "time"

// Restaurant is one seed record from the input list. Immutable once loaded.
type Restaurant struct {
	UUID    string `json:"uuid"`
	Name    string `json:"name"`
	Slug    string `json:"-"` // derived: slugified name + "--" + uuid[:8]
	Website string `json:"website,omitempty"`
}

// HasWebsite reports whether this seed carries a usable website URL.
func (r Restaurant) HasWebsite() bool {
	return r.Website != ""
}

// MenuCandidate is a URL that may point at a menu document. It is refined
// stage by stage (scored -> fetched -> classified); stages return updated
// copies rather than mutating shared state.
type MenuCandidate struct {
	URL         string
	Label       string
	Score       int
	ContentType string
	StatusCode  int
	IsMenuLike  *bool // nil until classified
	Guessed     bool  // constructed from the common-path bank, not from a link
}

// WithFetchResult returns a copy carrying the fetch outcome.
func (c MenuCandidate) WithFetchResult(statusCode int, contentType string) MenuCandidate {
	c.StatusCode = statusCode
	c.ContentType = contentType
	return c
}

// WithMenuLike returns a copy with the classification decided.
func (c MenuCandidate) WithMenuLike(menuLike bool) MenuCandidate {
	c.IsMenuLike = &menuLike
	return c
}

// MenuLike reports the classification, false while still unknown.
func (c MenuCandidate) MenuLike() bool {
	return c.IsMenuLike != nil && *c.IsMenuLike
}

// SavedFile records one document written to disk. File is relative to the
// output root. Entries reconstructed from a directory scan (resume without
// metadata) have an empty URL and null Status/ContentType.
type SavedFile struct {
	URL         string  `json:"url"`
	File        string  `json:"file"`
	Status      *int    `json:"status"`
	ContentType *string `json:"content_type"`
	IsMenuLike  bool    `json:"is_menu_like"`
}

// SiteResult is the per-restaurant outcome of one run. Errors and SavedFiles
// are never nil so the JSON summary renders empty lists, not null.
type SiteResult struct {
	UUID       string      `json:"uuid"`
	Slug       string      `json:"slug"`
	Name       string      `json:"name"`
	Website    string      `json:"website,omitempty"`
	Found      bool        `json:"found"`
	SavedFiles []SavedFile `json:"saved_files"`
	Errors     []string    `json:"errors"`
	Skipped    bool        `json:"skipped"`
}

// NewSiteResult seeds a result for one restaurant.
func NewSiteResult(r Restaurant) SiteResult {
	return SiteResult{
		UUID:       r.UUID,
		Slug:       r.Slug,
		Name:       r.Name,
		Website:    r.Website,
		SavedFiles: []SavedFile{},
		Errors:     []string{},
	}
}

// AddError appends a non-fatal error tag.
func (res *SiteResult) AddError(tag string) {
	res.Errors = append(res.Errors, tag)
}

// AddFile appends a saved-document record.
func (res *SiteResult) AddFile(f SavedFile) {
	res.SavedFiles = append(res.SavedFiles, f)
}

// Status derives the one-word progress status for this result.
func (res SiteResult) Status() ResultStatus {
	switch {
	case res.Skipped:
		return ResultSkip
	case res.Found:
		return ResultFound
	default:
		return ResultMiss
	}
}

// SiteMetadata is the durable per-restaurant record (metadata.json). Future
// runs read it to resume without re-fetching.
type SiteMetadata struct {
	UUID       string      `json:"uuid"`
	Name       string      `json:"name"`
	Website    string      `json:"website"`
	Timestamp  time.Time   `json:"timestamp"` // RFC3339 UTC
	Found      bool        `json:"found"`
	SavedFiles []SavedFile `json:"saved_files"`
	Errors     []string    `json:"errors"`
}

// PlaceResolution is a cached name/website lookup for a Google Maps place URL.
type PlaceResolution struct {
	Name       string    `json:"name"`
	Website    string    `json:"website,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}
