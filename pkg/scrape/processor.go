// FILE: pkg/scrape/processor.go
package scrape

import (
	"context"
	"fmt"
	"net/url"
	stdpath "path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"menu-scraper/pkg/detect"
	"menu-scraper/pkg/discover"
	"menu-scraper/pkg/fetch"
	"menu-scraper/pkg/models"
	"menu-scraper/pkg/output"
	"menu-scraper/pkg/parse"
	"menu-scraper/pkg/utils"
)

// PageFetcher fetches one page with a single attempt.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*fetch.PageResult, error)
}

// RobotsPolicy answers per-URL fetch-permission checks.
type RobotsPolicy interface {
	Allowed(ctx context.Context, targetURL *url.URL) bool
}

// Processor walks one restaurant through the full pipeline: resume check,
// robots gates, homepage fetch, candidate discovery, candidate fetching and
// classification, document persistence, metadata. Per-candidate failures
// are recorded as error tags on the result and never abort the site; only
// robots-home and homepage failures are site-fatal, and nothing a single
// site does aborts its siblings.
type Processor struct {
	fetcher    PageFetcher
	robots     RobotsPolicy
	generator  *discover.Generator
	classifier *detect.Classifier
	heuristics *discover.Heuristics
	store      *output.Store
	maxPages   int
	log        *logrus.Entry
}

// NewProcessor wires a Processor. maxPages is the per-site saved-document
// budget; values below 1 fall back to 1.
func NewProcessor(
	fetcher PageFetcher,
	robots RobotsPolicy,
	generator *discover.Generator,
	classifier *detect.Classifier,
	heuristics *discover.Heuristics,
	store *output.Store,
	maxPages int,
	log *logrus.Entry,
) *Processor {
	if maxPages < 1 {
		maxPages = 1
	}
	return &Processor{
		fetcher:    fetcher,
		robots:     robots,
		generator:  generator,
		classifier: classifier,
		heuristics: heuristics,
		store:      store,
		maxPages:   maxPages,
		log:        log,
	}
}

// Process runs the pipeline for one restaurant and returns its result.
// The returned result is always usable for the run summary, whatever
// happened along the way.
func (p *Processor) Process(ctx context.Context, r models.Restaurant) models.SiteResult {
	siteLog := p.log.WithFields(logrus.Fields{"slug": r.Slug, "name": r.Name})

	if res, ok := p.store.ExistingResult(r); ok {
		siteLog.WithField("state", models.SiteStateResumedFromExisting).
			Debugf("Existing output found (%d files), skipping", len(res.SavedFiles))
		return res
	}

	res := models.NewSiteResult(r)

	if !r.HasWebsite() {
		res.AddError("no_website")
		return res
	}

	baseURL := parse.NormalizeWebsiteURL(r.Website)
	homeURL, err := url.Parse(baseURL)
	if err != nil {
		res.AddError("homepage_unavailable:0:")
		p.writeMetadata(siteLog, r, baseURL, &res, false)
		return res
	}

	if !p.robots.Allowed(ctx, homeURL) {
		robotsErr := fmt.Errorf("%w: %s", utils.ErrRobotsDisallowed, baseURL)
		siteLog.WithFields(logrus.Fields{
			"state":    models.SiteStateRobotsBlocked,
			"category": utils.CategorizeError(robotsErr),
		}).Debug(robotsErr.Error())
		res.AddError("blocked_by_robots_home")
		p.writeMetadata(siteLog, r, baseURL, &res, false)
		return res
	}

	home, err := p.fetcher.FetchPage(ctx, baseURL)
	if err != nil || !home.IsHTML() {
		status, contentType := pageOutcome(home)
		if err == nil {
			err = fmt.Errorf("%w: %q", utils.ErrNonHTMLContent, contentType)
		}
		siteLog.WithFields(logrus.Fields{
			"state":    models.SiteStateHomepageUnavailable,
			"category": utils.CategorizeError(err),
		}).Debugf("Homepage unavailable (status=%d): %v", status, err)
		res.AddError(fmt.Sprintf("homepage_unavailable:%d:%s", status, contentType))
		p.writeMetadata(siteLog, r, baseURL, &res, false)
		return res
	}

	siteLog.WithField("state", models.SiteStateDiscovering).Debug("Generating menu candidates")
	candidates, err := p.generator.Candidates(baseURL, string(home.Body))
	if err != nil {
		// Unparseable homepage markup still leaves the guessed path bank
		siteLog.Warnf("Homepage parse failed, using guessed candidates only: %v", err)
		candidates = p.generator.Guessed(baseURL)
	}

	siteLog.WithField("state", models.SiteStateFetchingCandidates).
		Debugf("Walking %d ranked candidates (budget %d)", len(candidates), p.maxPages)
	saved := 0
	for _, cand := range candidates {
		if saved >= p.maxPages {
			break
		}
		if p.processCandidate(ctx, r, cand, &res) {
			saved++
		}
	}

	res.Found = saved > 0
	siteLog.WithField("state", models.SiteStateCompleted).
		Debugf("Completed: found=%t, saved=%d, errors=%d", res.Found, saved, len(res.Errors))
	p.writeMetadata(siteLog, r, baseURL, &res, true)
	return res
}

// processCandidate fetches, classifies, and maybe persists one candidate.
// Returns true when a document was saved against the site budget.
func (p *Processor) processCandidate(ctx context.Context, r models.Restaurant, cand models.MenuCandidate, res *models.SiteResult) bool {
	candURL, err := url.Parse(cand.URL)
	if err != nil {
		return false
	}

	if !p.robots.Allowed(ctx, candURL) {
		res.AddError("blocked_by_robots:" + cand.URL)
		return false
	}

	page, fetchErr := p.fetcher.FetchPage(ctx, cand.URL)
	status, contentType := pageOutcome(page)
	cand = cand.WithFetchResult(status, contentType)

	// PDFs are saved unconditionally; a restaurant linking a PDF from its
	// site is menu evidence enough.
	if page != nil && page.IsPDF() {
		if fetchErr != nil {
			res.AddError(fmt.Sprintf("write_failed_pdf:%s:%s", cand.URL, fetchErr.Error()))
			return false
		}
		cand = cand.WithMenuLike(true)
		rel, werr := p.store.SaveDocument(r.Slug, documentStem(cand, candURL), ".pdf", page.Body)
		if werr != nil {
			res.AddError(fmt.Sprintf("write_failed_pdf:%s:%s", cand.URL, werr.Error()))
			return false
		}
		res.AddFile(savedFile(cand, rel))
		return true
	}

	if fetchErr != nil || !page.IsHTML() {
		res.AddError(fmt.Sprintf("fetch_failed:%s:%d:%s", cand.URL, status, contentType))
		return false
	}

	body := string(page.Body)
	if p.classifier.LooksLikeErrorPage(body, status) {
		res.AddError(fmt.Sprintf("error_page:%s:%d", cand.URL, status))
		return false
	}

	external := p.heuristics.IsExternalHost(candURL.Hostname())
	cand = cand.WithMenuLike(p.classifier.IsMenuLike(body))

	if !cand.MenuLike() && !external {
		// Guessed paths must prove themselves by content; link-derived
		// candidates get one more chance on an unambiguous menu path.
		if cand.Guessed || !pathImpliesMenu(candURL.Path) {
			return false
		}
	}
	if external {
		cand = cand.WithMenuLike(true)
	}

	rel, werr := p.store.SaveDocument(r.Slug, documentStem(cand, candURL), ".html", page.Body)
	if werr != nil {
		res.AddError(fmt.Sprintf("write_failed:%s:%s", cand.URL, werr.Error()))
		return false
	}
	res.AddFile(savedFile(cand, rel))
	return true
}

// writeMetadata persists the durable per-restaurant record. Failures on
// intermediate writes are logged only; the final write after completion
// additionally tags the result so the summary shows it.
func (p *Processor) writeMetadata(siteLog *logrus.Entry, r models.Restaurant, website string, res *models.SiteResult, tagFailure bool) {
	meta := models.SiteMetadata{
		UUID:       r.UUID,
		Name:       r.Name,
		Website:    website,
		Timestamp:  time.Now(),
		Found:      res.Found,
		SavedFiles: res.SavedFiles,
		Errors:     res.Errors,
	}
	if err := p.store.WriteMetadata(r.Slug, meta); err != nil {
		siteLog.Errorf("Failed to write metadata: %v", err)
		if tagFailure {
			res.AddError("meta_write_failed:" + err.Error())
		}
	}
}

// savedFile builds the persistence record for an accepted candidate.
func savedFile(cand models.MenuCandidate, relPath string) models.SavedFile {
	status := cand.StatusCode
	contentType := cand.ContentType
	return models.SavedFile{
		URL:         cand.URL,
		File:        relPath,
		Status:      &status,
		ContentType: &contentType,
		IsMenuLike:  cand.MenuLike(),
	}
}

// pageOutcome extracts status/content-type for tags, tolerating a nil
// result from a failed fetch.
func pageOutcome(page *fetch.PageResult) (int, string) {
	if page == nil {
		return 0, ""
	}
	return page.StatusCode, page.ContentType
}

// documentStem picks the filename stem for a saved document: the sanitized
// candidate label, falling back to the URL path's last segment when the
// label sanitized to the generic "menu".
func documentStem(cand models.MenuCandidate, candURL *url.URL) string {
	stem := utils.SanitizeLabel(cand.Label)
	if stem != "menu" {
		return stem
	}
	tail := stdpath.Base(candURL.Path)
	if tail == "/" || tail == "." {
		return stem
	}
	if sanitized := utils.SanitizeLabel(tail); sanitized != "menu" {
		return sanitized
	}
	return stem
}

// pathImpliesMenu reports whether a URL path is unambiguous enough to save
// a link-derived page that failed content classification.
func pathImpliesMenu(urlPath string) bool {
	lower := strings.ToLower(urlPath)
	if strings.HasSuffix(lower, "/menu") || strings.HasSuffix(lower, "/menus") {
		return true
	}
	base := stdpath.Base(lower)
	return base == "menu" || base == "menus" ||
		strings.HasPrefix(base, "menu-") || strings.HasPrefix(base, "menus-")
}
