package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"moodify/internal/metrics"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "models/gemini-2.5-flash"

	maxResponseBytes = 4 << 20
	breakerName      = "gemini-generate"
)

// DefaultVersions are tried in order until one answers.
var DefaultVersions = []string{"/v1beta", "/v1"}

type GeminiOptions struct {
	BaseURL  string
	APIKey   string
	Versions []string
	// Timeout bounds each attempt. Zero means 30s.
	Timeout    time.Duration
	HTTPClient *http.Client
	// Breaker enables a circuit breaker around whole Generate calls.
	Breaker bool
}

// GeminiClient calls generateContent, falling back across api versions.
type GeminiClient struct {
	baseURL  string
	apiKey   string
	versions []string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[string]
}

func NewGeminiClient(opts GeminiOptions) *GeminiClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	versions := opts.Versions
	if len(versions) == 0 {
		versions = DefaultVersions
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &GeminiClient{
		baseURL:  baseURL,
		apiKey:   opts.APIKey,
		versions: versions,
		http:     httpClient,
	}
	if opts.Breaker {
		c.breaker = newBreaker()
	}
	return c
}

func newBreaker() *gobreaker.CircuitBreaker[string] {
	metrics.BreakerState.WithLabelValues(breakerName).Set(0)
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Info("circuit breaker state transition", "name", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// attemptResult is the outcome of one api version.
type attemptResult struct {
	version string
	body    string
	err     error
}

// Generate sends prompt to model and returns the first non-empty response
// body. Each version is tried once. When all fail the error is an
// *UnavailableError wrapping the last failure.
func (c *GeminiClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	if c.breaker == nil {
		return c.generate(ctx, model, prompt)
	}
	body, err := c.breaker.Execute(func() (string, error) {
		return c.generate(ctx, model, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", &UnavailableError{Model: model, Cause: err}
	}
	return body, err
}

func (c *GeminiClient) generate(ctx context.Context, model, prompt string) (string, error) {
	payload, err := gojson.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	var last error
	for _, version := range c.versions {
		res := c.attempt(ctx, version, model, payload)
		switch {
		case res.err != nil:
			metrics.GenerationAttempts.WithLabelValues(version, "error").Inc()
			slog.Warn("generation attempt failed", "version", version, "model", model, "err", res.err)
			last = res.err
		case res.body == "":
			metrics.GenerationAttempts.WithLabelValues(version, "empty").Inc()
			slog.Warn("generation attempt returned empty body", "version", version, "model", model)
			last = fmt.Errorf("empty body from %s", version)
		default:
			metrics.GenerationAttempts.WithLabelValues(version, "success").Inc()
			return res.body, nil
		}
	}
	if last == nil {
		last = errors.New("no api versions configured")
	}
	return "", &UnavailableError{Model: model, Cause: last}
}

func (c *GeminiClient) attempt(ctx context.Context, version, model string, payload []byte) attemptResult {
	start := time.Now()
	defer func() {
		metrics.GenerationDuration.WithLabelValues(version).Observe(time.Since(start).Seconds())
	}()

	path := version + "/" + model + ":generateContent"
	u := c.baseURL + path + "?key=" + url.QueryEscape(c.apiKey)
	slog.Debug("attempting generate", "path", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return attemptResult{version: version, err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return attemptResult{version: version, err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return attemptResult{version: version, err: fmt.Errorf("read response (%s): %w", path, err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return attemptResult{version: version, err: fmt.Errorf("gemini api error (%s): %d - %s", path, resp.StatusCode, string(body))}
	}
	return attemptResult{version: version, body: string(body)}
}
