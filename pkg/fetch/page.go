package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"menu-scraper/pkg/utils"
)

// PageResult carries everything the site processor needs from one fetched
// document: the raw body, the bare media type, and the HTTP status. The
// status and content type are populated even for non-2xx responses so
// error tags can name them.
type PageResult struct {
	Body        []byte
	ContentType string // media type only, lowercased, parameters stripped
	StatusCode  int
}

// IsHTML reports whether the body can be treated as an HTML document.
// Servers that omit the header entirely are given the benefit of the
// doubt; restaurant sites are sloppy about Content-Type.
func (p *PageResult) IsHTML() bool {
	switch p.ContentType {
	case "", "text/html", "application/xhtml+xml":
		return true
	}
	return false
}

// IsPDF reports whether the response is a PDF document.
func (p *PageResult) IsPDF() bool {
	return p.ContentType == "application/pdf" || strings.Contains(p.ContentType, "pdf")
}

// FetchPage performs a single-attempt GET of one candidate or homepage URL.
// No retries: a flaky restaurant site is recorded as a miss, not hammered.
// A non-nil PageResult is returned for every response the server produced,
// whatever the status; err is non-nil only when no response was obtained.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) (*PageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrRequestCreation, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := &PageResult{
		StatusCode:  resp.StatusCode,
		ContentType: mediaType(resp.Header.Get("Content-Type")),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxPageSizeBytes+1))
	if err != nil {
		return result, fmt.Errorf("%w: reading '%s': %w", utils.ErrResponseBodyRead, pageURL, err)
	}
	if int64(len(body)) > f.cfg.MaxPageSizeBytes {
		return result, fmt.Errorf("%w: '%s' exceeds %d bytes", utils.ErrPageSizeExceeded, pageURL, f.cfg.MaxPageSizeBytes)
	}
	result.Body = body
	return result, nil
}

// mediaType strips parameters and normalizes a Content-Type header value.
func mediaType(header string) string {
	if header == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		// Fall back to the bare prefix; broken headers are common
		return strings.ToLower(strings.TrimSpace(strings.SplitN(header, ";", 2)[0]))
	}
	return strings.ToLower(mt)
}
