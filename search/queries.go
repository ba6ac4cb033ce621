// Package search discovers candidate sources for a ticker by fanning out to
// independent providers (Finnhub company news, DuckDuckGo web search, SEC
// EDGAR filings) under one shared deadline and merging results by URL.
package search

import (
	"fmt"
	"time"
)

// Query is the collector's input: the ticker plus the decomposed sub-queries
// the web search provider runs.
type Query struct {
	Ticker      string
	Exchange    string
	CompanyName string
	SubQueries  []string
}

// usExchanges are the markets the structured providers actually cover.
// Outside these the providers skip silently; that is coverage, not failure.
var usExchanges = map[string]bool{
	"NYSE":   true,
	"NASDAQ": true,
}

// NewQuery decomposes a ticker into targeted sub-queries. The count is kept
// small for speed; each sub-query targets a different angle of the research.
func NewQuery(ticker, exchange, companyName string) Query {
	name := companyName
	if name == "" {
		name = ticker
	}
	year := time.Now().Year()

	return Query{
		Ticker:      ticker,
		Exchange:    exchange,
		CompanyName: name,
		SubQueries: []string{
			fmt.Sprintf("%s stock news %d", ticker, year),
			fmt.Sprintf("%s earnings revenue forecast", name),
			fmt.Sprintf("%s price target analyst upgrade downgrade", ticker),
		},
	}
}
