// Package fetch resolves discovered source URLs to full text. Fetches run
// under a fixed-size semaphore; each source tries a direct fetch with
// readability extraction first, then a rendering proxy for JS-heavy or
// paywalled pages, then degrades to the provider snippet. No single source
// failure ever aborts the batch.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	readability "github.com/go-shiori/go-readability"

	"tickerbrief/config"
	"tickerbrief/types"
)

// Fetcher enriches sources with content. DirectFetch is swappable for tests;
// it defaults to readability's fetch-and-extract.
type Fetcher struct {
	ProxyBase   string
	Client      *http.Client
	DirectFetch func(url string) (string, error)
}

// NewFetcher builds a fetcher using the given rendering-proxy base URL
// (r.jina.ai style: proxy fetches and returns clean markdown).
func NewFetcher(proxyBase string) *Fetcher {
	return &Fetcher{
		ProxyBase: strings.TrimRight(proxyBase, "/"),
		Client:    &http.Client{Timeout: config.FetchTimeout},
		DirectFetch: func(url string) (string, error) {
			article, err := readability.FromURL(url, config.FetchTimeout)
			if err != nil {
				return "", err
			}
			return article.TextContent, nil
		},
	}
}

// FetchAll processes every source to completion, success or degraded,
// independently. Output order matches input order.
func (f *Fetcher) FetchAll(ctx context.Context, sources []types.Source) []types.FetchedSource {
	enriched := make([]types.FetchedSource, len(sources))

	var wg sync.WaitGroup
	sem := make(chan struct{}, config.MaxConcurrentFetches)

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src types.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			enriched[i] = f.fetchOne(ctx, src)
		}(i, src)
	}
	wg.Wait()

	var fetched, preFilled int
	for _, s := range enriched {
		switch s.Status {
		case types.FetchSuccess:
			fetched++
		case types.FetchPreFilled:
			preFilled++
		}
	}
	log.Printf("Fetch complete: %d fetched, %d pre-filled, %d degraded",
		fetched, preFilled, len(enriched)-fetched-preFilled)

	return enriched
}

// fetchOne applies the two-tier fallback for a single source. The tiers are
// strictly sequential: direct before proxy, never retried within a tier.
func (f *Fetcher) fetchOne(ctx context.Context, src types.Source) types.FetchedSource {
	out := types.FetchedSource{Source: src}

	if src.URL == "" {
		out.Status = types.FetchNoURL
		out.Content = src.Snippet
		return out
	}

	// Never re-fetch data we already have (e.g. Finnhub summaries).
	if len(src.Content) > config.PreFilledThreshold {
		out.Status = types.FetchPreFilled
		return out
	}

	// Non-http URLs skip both tiers and degrade like any failed fetch.
	if strings.HasPrefix(src.URL, "http") {
		if text, ok := f.direct(src.URL); ok {
			out.Content = text
			out.Status = types.FetchSuccess
			return out
		}

		if text, ok := f.proxy(ctx, src.URL); ok {
			out.Content = text
			out.Status = types.FetchSuccess
			return out
		}
	}

	out.Content = src.Snippet
	if src.Snippet != "" {
		out.Status = types.FetchSnippetOnly
	} else {
		out.Status = types.FetchFailed
	}
	return out
}

// direct fetches the page and strips boilerplate. Extracted text below the
// minimum length counts as a miss so the proxy tier gets its turn.
func (f *Fetcher) direct(url string) (string, bool) {
	text, err := f.DirectFetch(url)
	if err != nil {
		log.Printf("Direct fetch failed %s: %v", url, err)
		return "", false
	}
	text = strings.TrimSpace(text)
	if len(text) <= config.MinExtractedChars {
		return "", false
	}
	return truncate(text, config.MaxContentChars), true
}

// proxy fetches through the rendering proxy, which returns clean markdown;
// no extraction pass is applied on top.
func (f *Fetcher) proxy(ctx context.Context, url string) (string, bool) {
	proxyURL := fmt.Sprintf("%s/%s", f.ProxyBase, url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, proxyURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("Accept", "text/markdown")

	resp, err := f.Client.Do(req)
	if err != nil {
		log.Printf("Proxy fetch failed %s: %v", url, err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", false
	}

	text := strings.TrimSpace(string(body))
	if len(text) <= config.MinExtractedChars {
		return "", false
	}
	return truncate(text, config.MaxContentChars), true
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
