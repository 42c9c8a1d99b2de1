package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var urlPatterns = []*regexp.Regexp{
	// instagram profiles, posts and reels
	regexp.MustCompile(`^https?://(www\.)?instagram\.com/[A-Za-z0-9_.]+/?$`),
	regexp.MustCompile(`^https?://(www\.)?instagram\.com/(p|reel|reels)/[A-Za-z0-9_-]+/?$`),
	// x / twitter
	regexp.MustCompile(`^https?://(www\.)?(x|twitter)\.com/[A-Za-z0-9_]+/?$`),
	regexp.MustCompile(`^https?://(www\.)?(x|twitter)\.com/[A-Za-z0-9_]+/status(es)?/[0-9]+/?$`),
	regexp.MustCompile(`^https?://(www\.)?x\.com/p/[A-Za-z0-9_-]+/?$`),
	// tiktok
	regexp.MustCompile(`^https?://(www\.)?tiktok\.com/@[A-Za-z0-9_.]+/?$`),
	regexp.MustCompile(`^https?://(www\.)?tiktok\.com/@[A-Za-z0-9_.]+/video/[0-9]+/?$`),
}

// ValidateURL checks raw against the supported platform url patterns.
func ValidateURL(raw string) error {
	u := strings.TrimSpace(raw)
	for _, re := range urlPatterns {
		if re.MatchString(u) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
}

// NormalizeURLs trims every url, drops blanks and validates the rest.
func NormalizeURLs(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		u := strings.TrimSpace(r)
		if u == "" {
			continue
		}
		if err := ValidateURL(u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}
