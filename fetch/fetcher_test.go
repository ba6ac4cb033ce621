package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tickerbrief/config"
	"tickerbrief/types"
)

func newTestFetcher(proxyBase string, direct func(url string) (string, error)) *Fetcher {
	f := NewFetcher(proxyBase)
	f.DirectFetch = direct
	return f
}

func directFails(string) (string, error) {
	return "", errors.New("connection refused")
}

func longText(n int) string {
	return strings.Repeat("lorem ipsum dolor sit amet ", n/27+1)[:n]
}

func TestFetchOneNoURL(t *testing.T) {
	f := newTestFetcher("http://proxy.invalid", directFails)

	got := f.fetchOne(context.Background(), types.Source{
		Title:   "untitled",
		Snippet: "a short snippet",
	})
	if got.Status != types.FetchNoURL {
		t.Errorf("status = %s, want no_url", got.Status)
	}
	if got.Content != "a short snippet" {
		t.Errorf("no_url sources keep the snippet as content, got %q", got.Content)
	}
}

func TestFetchOneUnfetchableSchemeDegradesToSnippet(t *testing.T) {
	called := false
	f := newTestFetcher("http://proxy.invalid", func(string) (string, error) {
		called = true
		return "", errors.New("should not be reached")
	})

	got := f.fetchOne(context.Background(), types.Source{
		URL:     "ftp://archive.example/report.txt",
		Snippet: "a short snippet",
	})
	if got.Status != types.FetchSnippetOnly {
		t.Errorf("status = %s, want snippet_only", got.Status)
	}
	if got.Content != "a short snippet" {
		t.Errorf("content = %q, want the snippet", got.Content)
	}
	if called {
		t.Error("non-http URLs must not reach the direct tier")
	}

	got = f.fetchOne(context.Background(), types.Source{URL: "ftp://archive.example/report.txt"})
	if got.Status != types.FetchFailed {
		t.Errorf("status without snippet = %s, want failed", got.Status)
	}
}

func TestFetchOnePreFilledSkipsNetwork(t *testing.T) {
	called := false
	f := newTestFetcher("http://proxy.invalid", func(string) (string, error) {
		called = true
		return "", errors.New("should not be reached")
	})

	got := f.fetchOne(context.Background(), types.Source{
		URL:     "https://news.example/item",
		Content: longText(config.PreFilledThreshold + 1),
	})
	if got.Status != types.FetchPreFilled {
		t.Errorf("status = %s, want pre_filled", got.Status)
	}
	if called {
		t.Error("pre-filled sources must not hit the network")
	}
}

func TestFetchOneDirectSuccess(t *testing.T) {
	f := newTestFetcher("http://proxy.invalid", func(string) (string, error) {
		return longText(500), nil
	})

	got := f.fetchOne(context.Background(), types.Source{URL: "https://news.example/item"})
	if got.Status != types.FetchSuccess {
		t.Errorf("status = %s, want success", got.Status)
	}
	if got.Content == "" {
		t.Error("successful fetch must carry content")
	}
}

func TestFetchOneDirectTruncatesLongContent(t *testing.T) {
	f := newTestFetcher("http://proxy.invalid", func(string) (string, error) {
		return longText(5000), nil
	})

	got := f.fetchOne(context.Background(), types.Source{URL: "https://news.example/item"})
	if len(got.Content) != config.MaxContentChars {
		t.Errorf("content length = %d, want cap %d", len(got.Content), config.MaxContentChars)
	}
}

func TestFetchOneShortExtractionFallsToProxy(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "news.example") {
			t.Errorf("proxy did not receive the target URL: %s", r.URL.Path)
		}
		fmt.Fprint(w, longText(400))
	}))
	defer proxy.Close()

	// Direct extraction returns too little text to count.
	f := newTestFetcher(proxy.URL, func(string) (string, error) {
		return "thin page", nil
	})

	got := f.fetchOne(context.Background(), types.Source{URL: "https://news.example/item"})
	if got.Status != types.FetchSuccess {
		t.Errorf("status = %s, want success via proxy", got.Status)
	}
	if len(got.Content) < config.MinExtractedChars {
		t.Errorf("proxy content too short: %d chars", len(got.Content))
	}
}

func TestFetchOneBothTiersFailSnippetOnly(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer proxy.Close()

	f := newTestFetcher(proxy.URL, directFails)

	got := f.fetchOne(context.Background(), types.Source{
		URL:     "https://news.example/item",
		Snippet: "snippet survives",
	})
	if got.Status != types.FetchSnippetOnly {
		t.Errorf("status = %s, want snippet_only", got.Status)
	}
	if got.Content != "snippet survives" {
		t.Errorf("content = %q, want the snippet", got.Content)
	}
}

func TestFetchOneBothTiersFailNoSnippet(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer proxy.Close()

	f := newTestFetcher(proxy.URL, directFails)

	got := f.fetchOne(context.Background(), types.Source{URL: "https://news.example/item"})
	if got.Status != types.FetchFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
}

func TestFetchAllPreservesOrder(t *testing.T) {
	f := newTestFetcher("http://proxy.invalid", func(url string) (string, error) {
		return longText(300) + " " + url, nil
	})

	sources := make([]types.Source, 12)
	for i := range sources {
		sources[i] = types.Source{URL: fmt.Sprintf("https://news.example/%d", i)}
	}

	enriched := f.FetchAll(context.Background(), sources)
	if len(enriched) != len(sources) {
		t.Fatalf("expected %d results, got %d", len(sources), len(enriched))
	}
	for i, e := range enriched {
		if e.URL != sources[i].URL {
			t.Errorf("result %d is for %s, want %s", i, e.URL, sources[i].URL)
		}
	}
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	f := newTestFetcher("http://proxy.invalid", func(url string) (string, error) {
		if strings.HasSuffix(url, "/bad") {
			return "", errors.New("boom")
		}
		return longText(300), nil
	})

	enriched := f.FetchAll(context.Background(), []types.Source{
		{URL: "https://news.example/good"},
		{URL: "https://news.example/bad"},
		{URL: "https://news.example/good2"},
	})

	if enriched[0].Status != types.FetchSuccess || enriched[2].Status != types.FetchSuccess {
		t.Errorf("one failure must not poison the batch: %s, %s", enriched[0].Status, enriched[2].Status)
	}
	if enriched[1].Status != types.FetchFailed {
		t.Errorf("failed source status = %s, want failed", enriched[1].Status)
	}
}
