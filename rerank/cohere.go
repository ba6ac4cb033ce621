package rerank

import (
	"context"
	"crypto/tls"
	"log"
	"math"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"tickerbrief/config"
	"tickerbrief/types"
)

const cohereRerankModel = "rerank-english-v3.0"

// CohereStrategy is the remote rerank tier. Any API failure cascades to the
// next tier instead of surfacing.
type CohereStrategy struct {
	client *cohereclient.Client
}

// NewCohereStrategy builds the Cohere client. HTTP/1.1 is forced to avoid
// HTTP/2 protocol errors against the Cohere edge.
func NewCohereStrategy(apiKey string) *CohereStrategy {
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	return &CohereStrategy{
		client: cohereclient.NewClient(
			cohereclient.WithToken(apiKey),
			cohereclient.WithHTTPClient(httpClient),
		),
	}
}

func (s *CohereStrategy) Name() string { return "cohere" }

func (s *CohereStrategy) Attempt(ctx context.Context, req Request, chunks []types.Chunk) ([]types.Chunk, bool) {
	docs := make([]string, len(chunks))
	for i, c := range chunks {
		text := c.Text
		if len(text) > config.MaxChunkScoreChars {
			text = text[:config.MaxChunkScoreChars]
		}
		docs[i] = text
	}

	topN := req.TopK
	resp, err := s.client.V2.Rerank(ctx, &cohere.V2RerankRequest{
		Model:     cohereRerankModel,
		Query:     req.Query,
		Documents: docs,
		TopN:      &topN,
	})
	if err != nil {
		log.Printf("Reranker: cohere rerank failed: %v", err)
		return nil, false
	}
	if resp == nil || len(resp.Results) == 0 {
		return nil, false
	}

	ranked := make([]types.Chunk, 0, len(resp.Results))
	for _, hit := range resp.Results {
		if hit.Index < 0 || int(hit.Index) >= len(chunks) {
			continue
		}
		chunk := chunks[hit.Index]
		chunk.RerankScore = clamp(math.Round(hit.RelevanceScore*10000) / 10000)
		ranked = append(ranked, chunk)
	}
	if len(ranked) == 0 {
		return nil, false
	}
	return topK(ranked, req.TopK), true
}
