package rerank

import (
	"context"
	"math"
	"regexp"
	"strings"
	"sync"

	"tickerbrief/types"
)

// lexicalModel is the process-wide local relevance model: a tokenizer plus a
// stopword table. Loaded once, read-only afterwards.
type lexicalModel struct {
	tokenRe   *regexp.Regexp
	stopwords map[string]bool
}

var (
	modelOnce sync.Once
	model     *lexicalModel

	// inferenceGate serializes scoring so CPU-bound work never runs more
	// than once at a time per process and cannot stall concurrent I/O.
	inferenceGate = make(chan struct{}, 1)
)

func loadModel() *lexicalModel {
	modelOnce.Do(func() {
		const stopwords = "a an and are as at be by for from has have in is it its " +
			"of on or that the this to was were will with not but they them their"
		stop := map[string]bool{}
		for _, w := range strings.Fields(stopwords) {
			stop[w] = true
		}
		model = &lexicalModel{
			tokenRe:   regexp.MustCompile(`[a-z0-9]+`),
			stopwords: stop,
		}
	})
	return model
}

// LexicalStrategy is the local tier: TF-IDF cosine similarity between the
// query and each chunk, with IDF weights computed over the run's own chunk
// corpus. No network, always available, but yields to the keyword tier when
// it finds no lexical overlap at all.
type LexicalStrategy struct{}

func NewLexicalStrategy() LexicalStrategy { return LexicalStrategy{} }

func (LexicalStrategy) Name() string { return "lexical" }

func (LexicalStrategy) Attempt(ctx context.Context, req Request, chunks []types.Chunk) ([]types.Chunk, bool) {
	m := loadModel()

	type result struct {
		scored []types.Chunk
		max    float64
	}
	resCh := make(chan result, 1)

	go func() {
		inferenceGate <- struct{}{}
		defer func() { <-inferenceGate }()

		docs := make([][]string, len(chunks))
		for i, c := range chunks {
			docs[i] = m.tokenize(c.Text)
		}
		idf := inverseDocFreq(docs)
		queryVec := termVector(m.tokenize(req.Query+" "+req.Ticker), idf)

		scored := make([]types.Chunk, len(chunks))
		maxScore := 0.0
		for i, c := range chunks {
			scored[i] = c
			scored[i].RerankScore = cosine(queryVec, termVector(docs[i], idf))
			if scored[i].RerankScore > maxScore {
				maxScore = scored[i].RerankScore
			}
		}
		resCh <- result{scored: scored, max: maxScore}
	}()

	var res result
	select {
	case res = <-resCh:
	case <-ctx.Done():
		return nil, false
	}

	if res.max == 0 {
		return nil, false
	}

	// Normalize so the best match scores 1.0 and everything stays in [0,1].
	for i := range res.scored {
		res.scored[i].RerankScore = clamp(math.Round(res.scored[i].RerankScore/res.max*10000) / 10000)
	}
	return topK(res.scored, req.TopK), true
}

func (m *lexicalModel) tokenize(text string) []string {
	raw := m.tokenRe.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if !m.stopwords[t] {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// inverseDocFreq computes smoothed IDF weights over the chunk corpus.
func inverseDocFreq(docs [][]string) map[string]float64 {
	docFreq := map[string]int{}
	for _, doc := range docs {
		seen := map[string]bool{}
		for _, t := range doc {
			if !seen[t] {
				seen[t] = true
				docFreq[t]++
			}
		}
	}

	idf := make(map[string]float64, len(docFreq))
	n := float64(len(docs))
	for term, df := range docFreq {
		idf[term] = math.Log(1 + n/float64(df))
	}
	return idf
}

// termVector builds a TF-IDF weight vector. Terms absent from the corpus IDF
// table (possible for query terms) get a neutral weight of 1.
func termVector(tokens []string, idf map[string]float64) map[string]float64 {
	tf := map[string]float64{}
	for _, t := range tokens {
		tf[t]++
	}
	vec := make(map[string]float64, len(tf))
	for term, count := range tf {
		weight := idf[term]
		if weight == 0 {
			weight = 1
		}
		vec[term] = count * weight
	}
	return vec
}

func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for term, wa := range a {
		dot += wa * b[term]
		normA += wa * wa
	}
	for _, wb := range b {
		normB += wb * wb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
