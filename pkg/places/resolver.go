package places

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"menu-scraper/pkg/models"
	"menu-scraper/pkg/storage"
)

// mapsPlaceRe matches the /maps/place/<name>/@<lat>,<lng> shape of a Google
// Maps place URL path.
var mapsPlaceRe = regexp.MustCompile(`/maps/place/([^/]+)/@(-?\d+\.\d+),(-?\d+\.\d+)`)

// ParseMapsURL extracts the place name and coordinates embedded in a Google
// Maps place URL. The name has URL escaping and '+' separators undone.
func ParseMapsURL(gmapsURL string) (name string, lat, lng float64, ok bool) {
	u, err := url.Parse(gmapsURL)
	if err != nil {
		return "", 0, 0, false
	}
	m := mapsPlaceRe.FindStringSubmatch(u.Path)
	if m == nil {
		return "", 0, 0, false
	}

	name = strings.ReplaceAll(m[1], "+", " ")
	lat, errLat := strconv.ParseFloat(m[2], 64)
	lng, errLng := strconv.ParseFloat(m[3], 64)
	if errLat != nil || errLng != nil {
		return "", 0, 0, false
	}
	return name, lat, lng, true
}

// Resolver turns Google Maps place URLs into name/website pairs, consulting
// the durable cache before spending a Places API call.
type Resolver struct {
	client *Client
	cache  storage.ResolutionStore
	log    *logrus.Entry
}

// NewResolver wires a Resolver. cache may be nil to disable caching.
func NewResolver(client *Client, cache storage.ResolutionStore, log *logrus.Entry) *Resolver {
	return &Resolver{client: client, cache: cache, log: log}
}

// Resolve is best-effort: parse the URL, try Nearby Search, fall back to
// Text Search, then chase Place Details. The returned name falls back to
// the one parsed from the URL and the website may be empty; neither is an
// error. Successful resolutions (non-empty name) are cached.
func (r *Resolver) Resolve(ctx context.Context, gmapsURL string) (models.PlaceResolution, error) {
	if r.cache != nil {
		if cached, found, err := r.cache.Get(gmapsURL); err != nil {
			r.log.Warnf("Resolution cache read failed for '%s': %v", gmapsURL, err)
		} else if found {
			r.log.Debugf("Resolution cache hit for '%s'", gmapsURL)
			return *cached, nil
		}
	}

	parsedName, lat, lng, parsed := ParseMapsURL(gmapsURL)
	res := models.PlaceResolution{Name: parsedName, ResolvedAt: time.Now().UTC()}

	var summary *PlaceSummary
	if parsed {
		var err error
		summary, err = r.client.NearbySearch(ctx, parsedName, lat, lng)
		if err != nil {
			r.log.Debugf("Nearby search miss for '%s': %v", parsedName, err)
		}
	}
	if summary == nil && parsedName != "" {
		var err error
		summary, err = r.client.TextSearch(ctx, parsedName)
		if err != nil {
			r.log.Debugf("Text search miss for '%s': %v", parsedName, err)
		}
	}

	if summary != nil {
		if summary.Name != "" {
			res.Name = summary.Name
		}
		if summary.PlaceID != "" {
			details, err := r.client.Details(ctx, summary.PlaceID)
			if err != nil {
				r.log.Warnf("Place details failed for '%s': %v", summary.PlaceID, err)
			} else {
				if details.Name != "" {
					res.Name = details.Name
				}
				res.Website = details.Website
			}
		}
	}

	if r.cache != nil && res.Name != "" {
		if err := r.cache.Put(gmapsURL, res); err != nil {
			r.log.Warnf("Resolution cache write failed for '%s': %v", gmapsURL, err)
		}
	}
	return res, nil
}
