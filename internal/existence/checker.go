// Package existence decides whether a song plausibly exists by looking for
// video results on a public search page.
package existence

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"moodify/internal/metrics"
)

const (
	DefaultBaseURL   = "https://www.youtube.com"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0"
	// videoFilter restricts results to videos.
	videoFilter = "EgIQAQ%3D%3D"

	defaultTimeout = 5 * time.Second
	defaultMaxBody = 2 * 1024 * 1024
)

type CheckerOptions struct {
	BaseURL      string
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	HTTPClient   *http.Client
}

// Checker performs live lookups against the search results page.
type Checker struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	maxBody   int64
	http      *http.Client
}

func NewChecker(opts CheckerOptions) *Checker {
	c := &Checker{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		maxBody:   opts.MaxBodyBytes,
		http:      opts.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.maxBody <= 0 {
		c.maxBody = defaultMaxBody
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

// SearchURL is the video search page for query.
func (c *Checker) SearchURL(query string) string {
	return c.baseURL + "/results?search_query=" + url.QueryEscape(query) + "&sp=" + videoFilter
}

// Check reports whether the search page for song shows video results.
// Pages larger than the body limit count as found, since oversized pages
// are result-rich. Any other failure returns false with the error.
func (c *Checker) Check(ctx context.Context, song string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(song), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ExistenceChecks.WithLabelValues("error").Inc()
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ExistenceChecks.WithLabelValues("error").Inc()
		return false, fmt.Errorf("search page error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		metrics.ExistenceChecks.WithLabelValues("error").Inc()
		return false, err
	}
	if int64(len(body)) > c.maxBody {
		slog.Info("search response exceeded body limit, treating as likely present", "song", song)
		metrics.ExistenceChecks.WithLabelValues("oversized").Inc()
		return true, nil
	}

	found := hasVideoMarkers(string(body))
	if found {
		metrics.ExistenceChecks.WithLabelValues("found").Inc()
	} else {
		metrics.ExistenceChecks.WithLabelValues("missing").Inc()
	}
	return found, nil
}

func hasVideoMarkers(body string) bool {
	if body == "" {
		return false
	}
	lower := strings.ToLower(body)
	return strings.Contains(lower, "/watch?v=") ||
		strings.Contains(lower, "videorenderer") ||
		(strings.Contains(lower, "ytinitialdata") && strings.Contains(lower, "video"))
}
