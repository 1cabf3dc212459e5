package existence

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestHasVideoMarkers(t *testing.T) {
	cases := map[string]bool{
		"":                                   false,
		"<html>nothing here</html>":          false,
		`<a href="/WATCH?v=abc">`:            true,
		`{"videoRenderer":{}}`:               true,
		`var ytInitialData = {"video": 1}`:   true,
		`var ytInitialData = {"items": []}`:  false,
		`just a video mention, no data blob`: false,
	}
	for body, want := range cases {
		if got := hasVideoMarkers(body); got != want {
			t.Fatalf("hasVideoMarkers(%q)=%v want %v", body, got, want)
		}
	}
}

func TestCheckerRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/results" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("search_query"); got != "Tum Hi Ho - Arijit Singh" {
			t.Fatalf("unexpected query %q", got)
		}
		if got := r.URL.Query().Get("sp"); got != "EgIQAQ==" {
			t.Fatalf("unexpected filter %q", got)
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "Mozilla/5.0") {
			t.Fatalf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(`<script>var ytInitialData = {"videoRenderer":{}}</script>`))
	}))
	defer srv.Close()

	c := NewChecker(CheckerOptions{BaseURL: srv.URL, HTTPClient: srv.Client()})
	found, err := c.Check(context.Background(), "Tum Hi Ho - Arijit Singh")
	if err != nil || !found {
		t.Fatalf("Check: found=%v err=%v", found, err)
	}
}

func TestCheckerOversizedCountsAsFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	c := NewChecker(CheckerOptions{BaseURL: srv.URL, HTTPClient: srv.Client(), MaxBodyBytes: 32})
	found, err := c.Check(context.Background(), "song")
	if err != nil || !found {
		t.Fatalf("oversized: found=%v err=%v", found, err)
	}
}

func TestCheckerFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search_query") == "slow" {
			time.Sleep(200 * time.Millisecond)
		}
		if r.URL.Query().Get("search_query") == "broken" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("/watch?v=1"))
	}))
	defer srv.Close()

	c := NewChecker(CheckerOptions{BaseURL: srv.URL, HTTPClient: srv.Client(), Timeout: 50 * time.Millisecond})
	if found, err := c.Check(context.Background(), "broken"); err == nil || found {
		t.Fatalf("status failure: found=%v err=%v", found, err)
	}
	if found, err := c.Check(context.Background(), "slow"); err == nil || found {
		t.Fatalf("timeout: found=%v err=%v", found, err)
	}
}

func TestValidatorCachesPerLowercasedKey(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte("/watch?v=1"))
	}))
	defer srv.Close()

	v := NewValidator(NewChecker(CheckerOptions{BaseURL: srv.URL, HTTPClient: srv.Client()}), NewCache(0))
	for _, song := range []string{"Song - Artist", "song - artist", "SONG - ARTIST", "Song - Artist"} {
		ok, err := v.Exists(context.Background(), song)
		if err != nil || !ok {
			t.Fatalf("Exists(%q): ok=%v err=%v", song, ok, err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one live check, got %d", got)
	}
}

func TestValidatorCachesFailedCheckAsMissing(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	v := NewValidator(NewChecker(CheckerOptions{BaseURL: srv.URL, HTTPClient: srv.Client()}), NewCache(0))
	for i := 0; i < 3; i++ {
		ok, err := v.Exists(context.Background(), "A - B")
		if err != nil || ok {
			t.Fatalf("call %d: ok=%v err=%v", i, ok, err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one live check, got %d", got)
	}
}

func TestCacheGetOrComputeOncePerKey(t *testing.T) {
	c := NewCache(10)
	var computes int32
	release := make(chan struct{})
	compute := func(context.Context) (bool, error) {
		atomic.AddInt32(&computes, 1)
		<-release
		return true, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := c.GetOrCompute(context.Background(), "k", compute); err != nil || !v {
				t.Errorf("GetOrCompute: v=%v err=%v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&computes); got != 1 {
		t.Fatalf("expected one compute, got %d", got)
	}
	if v, ok := c.Get("k"); !ok || !v {
		t.Fatalf("expected cached true")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	c.Set("a", true)
	c.Set("b", false)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a")
	}
	c.Set("c", true)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a retained")
	}
	if c.Len() != 2 {
		t.Fatalf("len=%d", c.Len())
	}
}

func TestCacheLookupErrors(t *testing.T) {
	c := NewCache(0)

	_, err := c.GetOrCompute(context.Background(), "p", func(context.Context) (bool, error) {
		panic("boom")
	})
	var le *LookupError
	if !errors.As(err, &le) {
		t.Fatalf("expected LookupError for panic, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	block := make(chan struct{})
	defer close(block)
	_, err = c.GetOrCompute(ctx, "q", func(context.Context) (bool, error) {
		<-block
		return true, nil
	})
	if !errors.As(err, &le) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled LookupError, got %v", err)
	}

	compErr := errors.New("down")
	_, err = c.GetOrCompute(context.Background(), "r", func(context.Context) (bool, error) {
		return false, compErr
	})
	if !errors.Is(err, compErr) || errors.As(err, &le) {
		t.Fatalf("compute errors pass through unwrapped, got %v", err)
	}
	if _, ok := c.Get("r"); ok {
		t.Fatalf("failed compute must not be cached")
	}
}
