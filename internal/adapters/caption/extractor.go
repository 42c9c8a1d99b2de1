package caption

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/PabloGalante/mindlens/internal/domain"
	"github.com/PabloGalante/mindlens/internal/observability"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// maxPageBytes bounds how much of a page is parsed.
const maxPageBytes = 4 << 20

// HTTPExtractor scrapes the caption of a public post page.
type HTTPExtractor struct {
	httpClient *http.Client
	userAgent  string
}

var _ domain.CaptionExtractor = (*HTTPExtractor)(nil)

func NewHTTPExtractor(httpClient *http.Client) *HTTPExtractor {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPExtractor{httpClient: httpClient, userAgent: defaultUserAgent}
}

// FetchCaption never fails: fetch errors yield domain.CaptionExtractionFail
// and pages without a caption yield domain.CaptionNotExtracted.
func (e *HTTPExtractor) FetchCaption(ctx context.Context, url string) string {
	log := observability.LoggerFromContext(ctx).With("url", url)

	body, err := e.fetch(ctx, url)
	if err != nil {
		log.Warnw("caption extraction failed", "error", err)
		return domain.CaptionExtractionFail
	}
	defer body.Close()

	caption, err := ParseCaption(io.LimitReader(body, maxPageBytes))
	if err != nil {
		log.Warnw("caption extraction failed", "error", err)
		return domain.CaptionExtractionFail
	}
	if caption == "" {
		log.Infow("no caption found in page")
		return domain.CaptionNotExtracted
	}
	return caption
}

func (e *HTTPExtractor) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// ParseCaption looks for the og:description meta tag first, then for a
// "caption" field in the page's JSON-LD. It returns "" when neither exists.
func ParseCaption(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	if sel := doc.Find(`meta[property="og:description"]`).First(); sel.Length() > 0 {
		if content, ok := sel.Attr("content"); ok && strings.TrimSpace(content) != "" {
			return strings.TrimSpace(content), nil
		}
	}

	var caption string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		caption = captionFromJSONLD(s.Text())
		return caption == ""
	})
	return caption, nil
}

func captionFromJSONLD(raw string) string {
	var obj struct {
		Caption string `json:"caption"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &obj); err != nil {
		return ""
	}
	return strings.TrimSpace(obj.Caption)
}

// PlaceholderExtractor skips scraping and returns domain.PlaceholderCaption.
type PlaceholderExtractor struct{}

var _ domain.CaptionExtractor = PlaceholderExtractor{}

func (PlaceholderExtractor) FetchCaption(context.Context, string) string {
	return domain.PlaceholderCaption
}
