package rerank

import (
	"context"
	"strconv"
	"strings"
	"time"

	"tickerbrief/types"
)

// financialKeywords is the fixed vocabulary that boosts a chunk's score.
var financialKeywords = []string{
	"earnings", "revenue", "profit", "loss", "growth", "acquisition",
	"merger", "partnership", "guidance", "forecast", "dividend", "buyback",
	"ipo", "sec", "filing", "analyst", "upgrade", "downgrade", "target price",
}

// KeywordStrategy is the unconditional last resort: deterministic scoring
// from ticker mention, query-term coverage, financial vocabulary, and a
// recency signal. It always produces a result.
type KeywordStrategy struct{}

func (KeywordStrategy) Name() string { return "keyword" }

func (KeywordStrategy) Attempt(_ context.Context, req Request, chunks []types.Chunk) ([]types.Chunk, bool) {
	scored := make([]types.Chunk, len(chunks))
	for i, c := range chunks {
		scored[i] = c
		scored[i].RerankScore = keywordScore(c.Text, req.Query, req.Ticker)
	}
	return topK(scored, req.TopK), true
}

func keywordScore(text, query, ticker string) float64 {
	score := 0.0
	textLower := strings.ToLower(text)
	queryTerms := strings.Fields(strings.ToLower(query))

	if ticker != "" && strings.Contains(textLower, strings.ToLower(ticker)) {
		score += 0.35
	}

	if len(queryTerms) > 0 {
		matched := 0
		for _, term := range queryTerms {
			if strings.Contains(textLower, term) {
				matched++
			}
		}
		part := float64(matched) / float64(len(queryTerms)) * 0.4
		if part > 0.4 {
			part = 0.4
		}
		score += part
	}

	finMatches := 0
	for _, kw := range financialKeywords {
		if strings.Contains(textLower, kw) {
			finMatches++
		}
	}
	finPart := float64(finMatches) * 0.05
	if finPart > 0.2 {
		finPart = 0.2
	}
	score += finPart

	if strings.Contains(text, strconv.Itoa(time.Now().Year())) {
		score += 0.05
	}

	return clamp(score)
}
