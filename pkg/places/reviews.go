package places

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReviewPlace is one unique restaurant pulled from a reviews dump.
type ReviewPlace struct {
	ID  string // restaurant_id from the reviews rows
	URL string // Google Maps place URL
}

type reviewRow struct {
	RestaurantID  string `json:"restaurant_id"`
	RestaurantURL string `json:"restaurant_url"`
}

// LoadReviewPlaces reads a reviews-style JSON array and returns one entry
// per restaurant_id, first occurrence wins, insertion order preserved.
// Rows missing either field are dropped.
func LoadReviewPlaces(path string) ([]ReviewPlace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reviews file '%s': %w", path, err)
	}

	var rows []reviewRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing reviews file '%s': %w", path, err)
	}

	seen := make(map[string]bool, len(rows))
	places := make([]ReviewPlace, 0, len(rows))
	for _, row := range rows {
		if row.RestaurantID == "" || row.RestaurantURL == "" {
			continue
		}
		if seen[row.RestaurantID] {
			continue
		}
		seen[row.RestaurantID] = true
		places = append(places, ReviewPlace{ID: row.RestaurantID, URL: row.RestaurantURL})
	}
	return places, nil
}
