// Package rerank scores and orders chunks by relevance to the research
// query. Tiers are tried in order (Cohere Rerank API, local lexical model,
// keyword heuristic) and the first tier to produce a result wins outright;
// tiers are never mixed within one run.
package rerank

import (
	"context"
	"log"
	"sort"

	"tickerbrief/types"
)

// Request carries the relevance query and the ticker used for boosting.
type Request struct {
	Query  string
	Ticker string
	TopK   int
}

// Strategy is one rerank tier. Attempt returns (topK sorted descending,
// true), or (nil, false) to let the cascade move on. A strategy must not
// mutate the chunks it was given, and must never change a SourceID.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, req Request, chunks []types.Chunk) ([]types.Chunk, bool)
}

// Reranker iterates an ordered strategy list. The final tier (keyword
// scoring) always produces a result, so Rerank never returns empty for
// non-empty input.
type Reranker struct {
	strategies []Strategy
}

// NewReranker wires the standard cascade. The Cohere tier is only included
// when an API key is configured.
func NewReranker(cohereAPIKey string) *Reranker {
	var strategies []Strategy
	if cohereAPIKey != "" {
		strategies = append(strategies, NewCohereStrategy(cohereAPIKey))
	}
	strategies = append(strategies, NewLexicalStrategy(), KeywordStrategy{})
	return &Reranker{strategies: strategies}
}

// NewRerankerWith builds a reranker over an explicit strategy list.
func NewRerankerWith(strategies ...Strategy) *Reranker {
	return &Reranker{strategies: strategies}
}

// Rerank returns the top-K chunks by relevance, scores in [0,1], sorted
// descending. Tier unavailability is never surfaced to the caller.
func (r *Reranker) Rerank(ctx context.Context, req Request, chunks []types.Chunk) []types.Chunk {
	if len(chunks) == 0 {
		return nil
	}

	for _, s := range r.strategies {
		if top, ok := s.Attempt(ctx, req, chunks); ok {
			log.Printf("Reranker: %s ranked %d of %d chunks", s.Name(), len(top), len(chunks))
			return top
		}
		log.Printf("Reranker: %s unavailable, cascading", s.Name())
	}
	return nil
}

// clamp bounds a relevance score to [0,1].
func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// topK sorts scored chunks descending and keeps the first k. Sorting is
// stable so equal scores keep chunk order.
func topK(scored []types.Chunk, k int) []types.Chunk {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RerankScore > scored[j].RerankScore
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
