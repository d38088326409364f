package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"menu-scraper/pkg/config"
	"menu-scraper/pkg/fetch"
	"menu-scraper/pkg/utils"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

const (
	defaultRequestTimeout = 15 * time.Second
	defaultNearbyRadius   = 200 // meters around the parsed coordinates
)

// Client talks to the Google Places Web Service. Calls go through the
// retrying fetcher so transient 5xx/429 responses from the API are absorbed.
type Client struct {
	fetcher *fetch.Fetcher
	apiKey  string
	baseURL string
	timeout time.Duration
	radius  int
	log     *logrus.Entry
}

// NewClient creates a Places client. baseURL is overridable for tests via
// SetBaseURL; production always uses the Google endpoint.
func NewClient(fetcher *fetch.Fetcher, cfg config.PlacesConfig, log *logrus.Entry) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	radius := cfg.NearbyRadiusMeters
	if radius <= 0 {
		radius = defaultNearbyRadius
	}
	return &Client{
		fetcher: fetcher,
		apiKey:  cfg.APIKey,
		baseURL: defaultBaseURL,
		timeout: timeout,
		radius:  radius,
		log:     log,
	}
}

// SetBaseURL points the client at a different API root. Tests use this to
// target an httptest server.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// PlaceSummary is one search hit, enough to chase details.
type PlaceSummary struct {
	PlaceID string `json:"place_id"`
	Name    string `json:"name"`
}

// PlaceDetails is the detail record for one place_id.
type PlaceDetails struct {
	Name    string `json:"name"`
	Website string `json:"website"`
	URL     string `json:"url"`
}

type searchResponse struct {
	Results []PlaceSummary `json:"results"`
	Status  string         `json:"status"`
}

type detailsResponse struct {
	Result PlaceDetails `json:"result"`
	Status string       `json:"status"`
}

// NearbySearch finds the best place match for a name near coordinates.
// Returns ErrPlaceNotFound (wrapped) when the API has no results.
func (c *Client) NearbySearch(ctx context.Context, name string, lat, lng float64) (*PlaceSummary, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("radius", strconv.Itoa(c.radius))
	params.Set("keyword", name)

	var resp searchResponse
	if err := c.get(ctx, "nearbysearch", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: nearby search for '%s' (status %s)", utils.ErrPlaceNotFound, name, resp.Status)
	}
	return &resp.Results[0], nil
}

// TextSearch is the fallback lookup by name alone.
func (c *Client) TextSearch(ctx context.Context, name string) (*PlaceSummary, error) {
	params := url.Values{}
	params.Set("query", name)

	var resp searchResponse
	if err := c.get(ctx, "textsearch", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: text search for '%s' (status %s)", utils.ErrPlaceNotFound, name, resp.Status)
	}
	return &resp.Results[0], nil
}

// Details retrieves name/website/url for a place_id.
func (c *Client) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "name,website,url")

	var resp detailsResponse
	if err := c.get(ctx, "details", params, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// get performs one API call with the per-call timeout and decodes the JSON
// payload into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	reqURL := c.baseURL + "/" + endpoint + "/json?" + params.Encode()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: places %s request: %w", utils.ErrRequestCreation, endpoint, err)
	}

	resp, err := c.fetcher.FetchWithRetry(req, callCtx)
	if err != nil {
		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
		return fmt.Errorf("places %s call failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding places %s response: %w", utils.ErrParsing, endpoint, err)
	}
	return nil
}
