package search

import (
	"context"
	"log"
	"sync"

	"tickerbrief/config"
	"tickerbrief/types"
)

// Provider is one independent source-discovery backend. Implementations skip
// silently (nil, nil) when the query is outside their coverage; errors are
// logged by the collector and treated the same as empty results.
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query) ([]types.Source, error)
}

// Collector fans a query out to all providers under a single deadline and
// merges their results, deduplicated by URL with first-seen metadata winning.
type Collector struct {
	providers []Provider
}

// NewCollector wires the standard provider set.
func NewCollector(finnhubKey string) *Collector {
	return &Collector{
		providers: []Provider{
			NewFinnhubProvider(finnhubKey),
			NewDuckDuckGoProvider(),
			NewEdgarProvider(),
		},
	}
}

// NewCollectorWith builds a collector over an explicit provider list.
func NewCollectorWith(providers ...Provider) *Collector {
	return &Collector{providers: providers}
}

// Collect runs every provider concurrently. On deadline expiry, providers
// that have completed contribute their results and in-flight ones are
// abandoned; a timeout degrades coverage, it is not a failure.
func (c *Collector) Collect(ctx context.Context, q Query) ([]types.Source, types.SourceStats) {
	ctx, cancel := context.WithTimeout(ctx, config.CollectTimeout)
	defer cancel()

	var mu sync.Mutex
	slots := make([][]types.Source, len(c.providers))

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for i, p := range c.providers {
			wg.Add(1)
			go func(i int, p Provider) {
				defer wg.Done()
				results, err := p.Search(ctx, q)
				if err != nil {
					log.Printf("Collector: %s failed for %s: %v", p.Name(), q.Ticker, err)
					return
				}
				mu.Lock()
				slots[i] = results
				mu.Unlock()
			}(i, p)
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Printf("Collector: source collection timed out for %s, using partial results", q.Ticker)
	}

	mu.Lock()
	defer mu.Unlock()

	seen := make(map[string]bool)
	var merged []types.Source
	var stats types.SourceStats

	// Merge in provider registration order so output is stable regardless
	// of completion order.
	for i, p := range c.providers {
		for _, src := range slots[i] {
			c.count(&stats, p.Name(), 1)
			if src.URL != "" && seen[src.URL] {
				continue
			}
			if src.URL != "" {
				seen[src.URL] = true
			}
			merged = append(merged, src)
		}
	}
	stats.Total = len(merged)

	log.Printf("Sources collected for %s: finnhub=%d duckduckgo=%d sec_edgar=%d total=%d",
		q.Ticker, stats.Finnhub, stats.DuckDuckGo, stats.SECEdgar, stats.Total)
	return merged, stats
}

func (c *Collector) count(stats *types.SourceStats, provider string, n int) {
	switch provider {
	case types.ProviderFinnhub:
		stats.Finnhub += n
	case types.ProviderDuckDuckGo:
		stats.DuckDuckGo += n
	case types.ProviderSECEdgar:
		stats.SECEdgar += n
	}
}
