package parse

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"menu-scraper/pkg/models"
	"menu-scraper/pkg/utils"
)

// Namespace for deterministic seed UUIDs. Seeds without a uuid of their own
// get one derived from name+website so output directories (and therefore
// resume) stay stable across runs.
var seedNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8") // RFC 4122 namespace DNS

// rawSeed mirrors one record of the input list; unknown fields are ignored.
type rawSeed struct {
	UUID    string `json:"uuid"`
	Name    string `json:"name"`
	Website string `json:"website"`
}

// LoadRestaurants reads the restaurant seed list from a JSON array of
// {uuid, name, website} records, applies the offset/limit slice, and derives
// slugs. Offset/limit apply before any filtering on website presence.
func LoadRestaurants(path string, offset, limit int) ([]models.Restaurant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading restaurant list '%s': %w: %w", path, utils.ErrFilesystem, err)
	}

	var raw []rawSeed
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("restaurant list '%s' is not a JSON array of seeds: %w: %w", path, utils.ErrParsing, err)
	}

	if offset > 0 {
		if offset >= len(raw) {
			raw = nil
		} else {
			raw = raw[offset:]
		}
	}
	if limit > 0 && limit < len(raw) {
		raw = raw[:limit]
	}

	restaurants := make([]models.Restaurant, 0, len(raw))
	for _, seed := range raw {
		restaurants = append(restaurants, buildRestaurant(seed))
	}
	return restaurants, nil
}

// NewSeed builds a Restaurant from a resolved name/website pair, synthesizing
// the deterministic uuid and slug the same way loaded seeds get them. The
// resolve command uses this to emit seed lists the crawler can consume.
func NewSeed(name, website string) models.Restaurant {
	return buildRestaurant(rawSeed{Name: name, Website: website})
}

// buildRestaurant normalizes one raw seed into a Restaurant with a stable
// slug of the form <slugified-name>--<uuid8>.
func buildRestaurant(seed rawSeed) models.Restaurant {
	name := strings.TrimSpace(seed.Name)
	if name == "" {
		name = "restaurant"
	}

	website := strings.TrimSpace(seed.Website)

	id := strings.TrimSpace(seed.UUID)
	if id == "" {
		id = uuid.NewSHA1(seedNamespace, []byte(name+"|"+website)).String()
	}

	return models.Restaurant{
		UUID:    id,
		Name:    name,
		Slug:    UniqueSlug(name, id),
		Website: website,
	}
}

// UniqueSlug joins the slugified name with the first 8 chars of the uuid,
// which is what names the restaurant's output directory.
func UniqueSlug(name, id string) string {
	slug := utils.Slugify(name)
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	if short == "" {
		return slug
	}
	return slug + "--" + short
}
