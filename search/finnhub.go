package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tickerbrief/config"
	"tickerbrief/types"
)

const finnhubBase = "https://finnhub.io/api/v1"

// FinnhubProvider fetches company news from the Finnhub API. The free tier
// only covers US-listed stocks, so anything outside NYSE/NASDAQ (or a missing
// API key) returns no results rather than an error.
type FinnhubProvider struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewFinnhubProvider builds the provider; an empty apiKey disables it.
func NewFinnhubProvider(apiKey string) *FinnhubProvider {
	return &FinnhubProvider{
		APIKey:  apiKey,
		BaseURL: finnhubBase,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *FinnhubProvider) Name() string { return types.ProviderFinnhub }

type finnhubNewsItem struct {
	Headline string `json:"headline"`
	URL      string `json:"url"`
	Summary  string `json:"summary"`
	Datetime int64  `json:"datetime"`
}

// Search returns recent company news. The summary doubles as snippet and
// pre-filled content so the fetcher can skip these URLs entirely.
func (p *FinnhubProvider) Search(ctx context.Context, q Query) ([]types.Source, error) {
	if p.APIKey == "" || !usExchanges[q.Exchange] {
		return nil, nil
	}

	end := time.Now()
	start := end.AddDate(0, 0, -config.FinnhubDaysBack)

	reqURL := fmt.Sprintf("%s/company-news?symbol=%s&from=%s&to=%s&token=%s",
		p.BaseURL,
		url.QueryEscape(q.Ticker),
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
		p.APIKey,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("finnhub request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("finnhub returned %d for %s", resp.StatusCode, q.Ticker)
	}

	var items []finnhubNewsItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("finnhub decode failed: %w", err)
	}

	if len(items) > config.FinnhubMaxItems {
		items = items[:config.FinnhubMaxItems]
	}

	results := make([]types.Source, 0, len(items))
	for _, item := range items {
		headline := strings.TrimSpace(item.Headline)
		if headline == "" {
			continue
		}
		ts := ""
		if item.Datetime > 0 {
			ts = time.Unix(item.Datetime, 0).UTC().Format(time.RFC3339)
		}
		results = append(results, types.Source{
			URL:       item.URL,
			Title:     headline,
			Snippet:   item.Summary,
			Content:   item.Summary,
			Provider:  types.ProviderFinnhub,
			Timestamp: ts,
		})
	}

	log.Printf("Finnhub: %d articles for %s", len(results), q.Ticker)
	return results, nil
}
