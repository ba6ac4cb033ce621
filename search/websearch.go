package search

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tickerbrief/config"
	"tickerbrief/types"
)

const duckduckgoBase = "https://html.duckduckgo.com/html/"

// userAgent keeps the HTML endpoint from rejecting the request outright.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36"

// DuckDuckGoProvider scrapes the DuckDuckGo HTML endpoint, one request per
// decomposed sub-query, and deduplicates by URL across the result sets
// preserving first-seen order.
type DuckDuckGoProvider struct {
	BaseURL string
	Client  *http.Client
}

func NewDuckDuckGoProvider() *DuckDuckGoProvider {
	return &DuckDuckGoProvider{
		BaseURL: duckduckgoBase,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *DuckDuckGoProvider) Name() string { return types.ProviderDuckDuckGo }

// Search runs all sub-queries in parallel. A failed sub-query contributes
// nothing; the others still count.
func (p *DuckDuckGoProvider) Search(ctx context.Context, q Query) ([]types.Source, error) {
	perQuery := make([][]types.Source, len(q.SubQueries))

	var wg sync.WaitGroup
	for i, sub := range q.SubQueries {
		wg.Add(1)
		go func(i int, sub string) {
			defer wg.Done()
			results, err := p.searchOne(ctx, sub, config.ResultsPerQuery)
			if err != nil {
				log.Printf("DDG search error for %q: %v", sub, err)
				return
			}
			perQuery[i] = results
		}(i, sub)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var deduped []types.Source
	for _, results := range perQuery {
		for _, r := range results {
			if r.URL == "" || seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			deduped = append(deduped, r)
		}
	}

	log.Printf("DDG: %d unique results from %d queries", len(deduped), len(q.SubQueries))
	return deduped, nil
}

func (p *DuckDuckGoProvider) searchOne(ctx context.Context, query string, maxResults int) ([]types.Source, error) {
	reqURL := p.BaseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo parse failed: %w", err)
	}

	var results []types.Source
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		target := resolveRedirect(href)
		if target == "" {
			return true
		}

		snippet := strings.TrimSpace(sel.Find(".result__snippet").Text())
		results = append(results, types.Source{
			URL:      target,
			Title:    strings.TrimSpace(link.Text()),
			Snippet:  snippet,
			Content:  snippet,
			Provider: types.ProviderDuckDuckGo,
		})
		return len(results) < maxResults
	})

	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect links so the
// collector dedupes on the real article URL.
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return href
	}
	return ""
}
