package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"

	"moodify/internal/ai"
	"moodify/internal/playlist"
)

type stubRecommender struct {
	got   ai.Descriptor
	songs []string
	err   error
}

func (s *stubRecommender) Generate(_ context.Context, d ai.Descriptor) ([]string, error) {
	s.got = d
	return s.songs, s.err
}

func TestGenerateEndpoint(t *testing.T) {
	rec := &stubRecommender{songs: []string{"A - B | x | y"}}
	srv := httptest.NewServer(NewRouter(Options{Recommender: rec}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/generate", "application/json", strings.NewReader(`{"mood":"romantic","era":"90s","language":"Hindi","feeling":"nostalgic"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body songsResponse
	if err := gojson.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Songs) != 1 || body.Songs[0] != "A - B | x | y" {
		t.Fatalf("unexpected songs %v", body.Songs)
	}
	want := ai.Descriptor{Era: "90s", Mood: "romantic", Language: "Hindi", Feeling: "nostalgic"}
	if rec.got != want {
		t.Fatalf("descriptor: %#v", rec.got)
	}
}

func TestGenerateEndpointErrorIs500(t *testing.T) {
	rec := &stubRecommender{err: &ai.UnavailableError{Model: "m", Cause: errors.New("down")}}
	srv := httptest.NewServer(NewRouter(Options{Recommender: rec}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/generate", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body errorResponse
	if err := gojson.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(body.Error, "all generation attempts failed for model m") {
		t.Fatalf("error message: %q", body.Error)
	}
}

func TestGenerateEndpointBadBody(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Options{Recommender: &stubRecommender{}}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/generate", "application/json", strings.NewReader(`{not json`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestMockEndpoint(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Options{Recommender: &stubRecommender{}}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/mock", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var body songsResponse
	if err := gojson.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := playlist.Mock()
	if strings.Join(body.Songs, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected mock songs %v", body.Songs)
	}
}

func TestCORSAndHealth(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Options{Recommender: &stubRecommender{}}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Options{Recommender: &stubRecommender{}, RateLimit: 1}))
	defer srv.Close()

	codes := []int{}
	for i := 0; i < 2; i++ {
		resp, err := http.Post(srv.URL+"/api/mock", "application/json", nil)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}
