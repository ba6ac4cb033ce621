package search

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"tickerbrief/config"
	"tickerbrief/types"
)

const edgarBase = "https://www.sec.gov/cgi-bin/browse-edgar"

// edgarForms are the filing types worth surfacing; everything else in the
// feed is noise for research purposes.
var edgarForms = map[string]bool{
	"8-K":  true,
	"10-Q": true,
	"10-K": true,
}

// EdgarProvider reads recent filings for a ticker from SEC EDGAR's Atom feed.
// Free, no API key, US-listed companies only.
type EdgarProvider struct {
	BaseURL string
	parser  *gofeed.Parser
}

func NewEdgarProvider() *EdgarProvider {
	parser := gofeed.NewParser()
	// SEC blocks anonymous default user agents
	parser.UserAgent = "tickerbrief/1.0 (research contact: admin@tickerbrief.local)"
	return &EdgarProvider{
		BaseURL: edgarBase,
		parser:  parser,
	}
}

func (p *EdgarProvider) Name() string { return types.ProviderSECEdgar }

// Search fetches the company's filing feed and keeps the most recent
// 8-K/10-Q/10-K entries. Skips silently outside EDGAR's market coverage.
func (p *EdgarProvider) Search(ctx context.Context, q Query) ([]types.Source, error) {
	if !usExchanges[q.Exchange] {
		return nil, nil
	}

	feedURL := fmt.Sprintf("%s?action=getcompany&ticker=%s&type=&dateb=&owner=include&count=40&output=atom",
		p.BaseURL, url.QueryEscape(q.Ticker))

	feed, err := p.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("edgar feed fetch failed: %w", err)
	}

	entity := strings.TrimSpace(feed.Title)
	if entity == "" {
		entity = q.Ticker
	}

	var results []types.Source
	for _, item := range feed.Items {
		form := filingForm(item)
		if !edgarForms[form] {
			continue
		}

		date := ""
		if item.UpdatedParsed != nil {
			date = item.UpdatedParsed.Format("2006-01-02")
		} else if item.PublishedParsed != nil {
			date = item.PublishedParsed.Format("2006-01-02")
		}

		line := fmt.Sprintf("%s filing by %s on %s", form, entity, date)
		results = append(results, types.Source{
			URL:       item.Link,
			Title:     fmt.Sprintf("%s SEC Filing: %s (%s)", entity, form, date),
			Snippet:   line,
			Content:   line,
			Provider:  types.ProviderSECEdgar,
			Timestamp: date,
		})

		if len(results) >= config.EdgarMaxFilings {
			break
		}
	}

	log.Printf("SEC EDGAR: %d filings for %s", len(results), q.Ticker)
	return results, nil
}

// filingForm reads the form type from the entry's category, falling back to
// the title prefix ("8-K - Current report").
func filingForm(item *gofeed.Item) string {
	if len(item.Categories) > 0 {
		return strings.TrimSpace(item.Categories[0])
	}
	form, _, _ := strings.Cut(item.Title, " - ")
	return strings.TrimSpace(form)
}
