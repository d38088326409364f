package storage

import "menu-scraper/pkg/models"

// ResolutionStore caches Google Maps place resolutions so repeated resolve
// runs never pay for the same Places API lookup twice.
type ResolutionStore interface {
	// Get retrieves a cached resolution for a Google Maps place URL.
	// Returns (nil, false, nil) on a clean cache miss.
	Get(gmapsURL string) (*models.PlaceResolution, bool, error)

	// Put stores (or overwrites) the resolution for a Google Maps place URL.
	Put(gmapsURL string, res models.PlaceResolution) error

	// Close cleanly closes the underlying database
	Close() error
}
