package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"

	"menu-scraper/pkg/config"
)

// RobotsHandler is the per-host fetch-permission oracle. robots.txt files
// are fetched lazily on first access and cached for the lifetime of the
// run; staleness across runs is acceptable. A nil cache entry means the
// file could not be fetched or parsed and the host is treated as
// allow-all, per the configured compliance policy.
type RobotsHandler struct {
	fetcher       *Fetcher
	robotsCache   map[string]*robotstxt.RobotsData // hostname -> parsed data (or nil)
	robotsCacheMu sync.Mutex
	cfg           *config.AppConfig
	log           *logrus.Entry
}

// NewRobotsHandler creates a RobotsHandler with an empty cache.
func NewRobotsHandler(fetcher *Fetcher, cfg *config.AppConfig, log *logrus.Entry) *RobotsHandler {
	return &RobotsHandler{
		fetcher:     fetcher,
		robotsCache: make(map[string]*robotstxt.RobotsData),
		cfg:         cfg,
		log:         log,
	}
}

// Allowed reports whether the configured user agent may fetch targetURL.
// Unreachable or unparseable robots.txt means allowed.
func (rh *RobotsHandler) Allowed(ctx context.Context, targetURL *url.URL) bool {
	robotsData := rh.getRobotsData(ctx, targetURL)
	if robotsData == nil {
		return true
	}
	return robotsData.TestAgent(targetURL.RequestURI(), rh.cfg.UserAgent)
}

// getRobotsData retrieves robots.txt data for the targetURL's host, from
// cache or by fetching. Returns nil on any fetch/parse failure (the failure
// itself is cached so a dead host is only probed once per run).
func (rh *RobotsHandler) getRobotsData(ctx context.Context, targetURL *url.URL) *robotstxt.RobotsData {
	if ctx == nil {
		ctx = context.Background()
	}

	host := targetURL.Hostname()
	hostLog := rh.log.WithField("host", host)

	rh.robotsCacheMu.Lock()
	robotsData, found := rh.robotsCache[host]
	rh.robotsCacheMu.Unlock()
	if found {
		return robotsData // cached data, possibly nil
	}

	// Two workers racing on the same uncached host may both fetch; the
	// duplicate fetch is harmless and the second write is idempotent.
	robotsURL := &url.URL{Scheme: targetURL.Scheme, Host: targetURL.Host, Path: "/robots.txt"}
	if robotsURL.Scheme != "http" && robotsURL.Scheme != "https" {
		hostLog.Warnf("Invalid scheme '%s', defaulting to https for robots.txt", targetURL.Scheme)
		robotsURL.Scheme = "https"
	}
	robotsURLStr := robotsURL.String()
	robotsLog := hostLog.WithField("robots_url", robotsURLStr)
	robotsLog.Debug("Fetching robots.txt...") // log only on cache miss

	fetchCtx, cancel := context.WithTimeout(ctx, rh.cfg.RobotsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, robotsURLStr, nil)
	if err != nil {
		robotsLog.Errorf("Error creating request: %v", err)
		return rh.cacheAndReturn(host, nil)
	}
	req.Header.Set("User-Agent", rh.cfg.UserAgent)

	resp, fetchErr := rh.fetcher.FetchWithRetry(req, fetchCtx)
	if fetchErr != nil {
		// Non-200 or unreachable robots.txt -> allow all for this host
		if resp != nil {
			drainAndClose(resp)
		}
		robotsLog.Debugf("robots.txt unavailable, treating host as allow-all: %v", fetchErr)
		return rh.cacheAndReturn(host, nil)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, rh.cfg.MaxPageSizeBytes))
	if err != nil {
		robotsLog.Errorf("Error reading robots.txt body: %v", err)
		return rh.cacheAndReturn(host, nil)
	}

	data, err := robotstxt.FromBytes(bodyBytes)
	if err != nil {
		robotsLog.Warnf("Error parsing robots.txt, treating host as allow-all: %v", err)
		return rh.cacheAndReturn(host, nil)
	}

	robotsLog.Debug("Successfully fetched and parsed robots.txt")
	return rh.cacheAndReturn(host, data)
}

// cacheAndReturn stores the per-host slot under the lock and echoes the
// value so call sites stay single-line.
func (rh *RobotsHandler) cacheAndReturn(host string, data *robotstxt.RobotsData) *robotstxt.RobotsData {
	rh.robotsCacheMu.Lock()
	rh.robotsCache[host] = data
	rh.robotsCacheMu.Unlock()
	return data
}
