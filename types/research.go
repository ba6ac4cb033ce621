package types

// FetchStatus describes how a source's content was obtained.
type FetchStatus string

const (
	FetchSuccess     FetchStatus = "success"      // direct or proxy fetch produced usable text
	FetchPreFilled   FetchStatus = "pre_filled"   // provider already supplied enough content
	FetchSnippetOnly FetchStatus = "snippet_only" // both fetch tiers failed, snippet used
	FetchFailed      FetchStatus = "failed"       // no fetched text and no snippet
	FetchNoURL       FetchStatus = "no_url"
)

// Provider names as they appear in source metadata and per-provider counts.
const (
	ProviderFinnhub    = "finnhub"
	ProviderDuckDuckGo = "duckduckgo"
	ProviderSECEdgar   = "sec_edgar"
)

// Source is one discovered external reference before content retrieval.
// Content may be pre-filled by providers that return full summaries.
type Source struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Provider  string `json:"provider"`
	Timestamp string `json:"timestamp,omitempty"`
	Content   string `json:"content,omitempty"`
}

// FetchedSource is a Source annotated with the outcome of content retrieval.
// Content is never empty unless Status is "failed" or "no_url".
type FetchedSource struct {
	Source
	Status FetchStatus `json:"fetch_status"`
}

// SourceStats holds per-provider result counts from one collection run.
type SourceStats struct {
	Finnhub    int `json:"finnhub"`
	DuckDuckGo int `json:"duckduckgo"`
	SECEdgar   int `json:"sec_edgar"`
	Total      int `json:"total"`
}

// Chunk is a bounded text window from one source's content, tagged with
// provenance. SourceID is 1-based and stable for the lifetime of a run.
type Chunk struct {
	Text        string  `json:"text"`
	SourceID    int     `json:"source_id"`
	SourceURL   string  `json:"source_url"`
	SourceTitle string  `json:"source_title"`
	SourceType  string  `json:"source_type"`
	Timestamp   string  `json:"timestamp,omitempty"`
	RerankScore float64 `json:"rerank_score"`
}

// Citation is the metadata for one source referenced by the synthesis.
type Citation struct {
	URL            string  `json:"url"`
	Title          string  `json:"title"`
	SourceType     string  `json:"source_type"`
	RelevanceScore float64 `json:"relevance_score"`
}

// CitationMap maps stringified source IDs to citation metadata. It contains
// only sources whose chunks survived reranking.
type CitationMap map[string]Citation

// Sentiment values allowed in a ResearchDocument.
const (
	SentimentBullish = "bullish"
	SentimentNeutral = "neutral"
	SentimentBearish = "bearish"
)

// Pipeline modes recorded on a ResearchDocument.
const (
	PipelineLive     = "live"
	PipelineFallback = "fallback"
)

// Catalyst is one potential price-moving event extracted by synthesis.
type Catalyst struct {
	Catalyst   string  `json:"catalyst"`
	Confidence float64 `json:"confidence"`
	SourceIDs  []int   `json:"source_ids"`
	Impact     string  `json:"impact"`
}

// ResearchDocument is the cached and returned artifact of one pipeline run.
// It is immutable after creation.
type ResearchDocument struct {
	Synthesis         string            `json:"synthesis"`
	Catalysts         []Catalyst        `json:"catalysts"`
	KeyMetrics        map[string]string `json:"key_metrics"`
	RiskFactors       []string          `json:"risk_factors"`
	Sentiment         string            `json:"sentiment"`
	ConfidenceOverall float64           `json:"confidence_overall"`
	Sources           CitationMap       `json:"sources"`
	Headlines         []string          `json:"headlines"`
	Ticker            string            `json:"ticker"`
	Exchange          string            `json:"exchange"`
	Timestamp         string            `json:"timestamp"`
	PipelineMode      string            `json:"pipeline_mode"`
}

// Stream event status values, emitted in order on the SSE path.
const (
	StatusStarting     = "starting"
	StatusCacheHit     = "cache_hit"
	StatusSearching    = "searching"
	StatusSearchDone   = "search_done"
	StatusFetching     = "fetching"
	StatusFetchDone    = "fetch_done"
	StatusChunking     = "chunking"
	StatusChunkDone    = "chunk_done"
	StatusReranking    = "reranking"
	StatusRerankDone   = "rerank_done"
	StatusSynthesizing = "synthesizing"
	StatusComplete     = "complete"
	StatusError        = "error"
)

// StreamEvent is one progress message on the streaming path. Counter fields
// are pointers so that a genuine zero still serializes.
type StreamEvent struct {
	Status          string            `json:"status"`
	Message         string            `json:"message,omitempty"`
	SourcesFound    *int              `json:"sources_found,omitempty"`
	Breakdown       *SourceStats      `json:"breakdown,omitempty"`
	ArticlesFetched *int              `json:"articles_fetched,omitempty"`
	TotalChunks     *int              `json:"total_chunks,omitempty"`
	TopChunks       *int              `json:"top_chunks,omitempty"`
	CatalystsFound  *int              `json:"catalysts_found,omitempty"`
	Result          *ResearchDocument `json:"result,omitempty"`
}
