package config

import "time"

// Source Collection Constants
const (
	// CollectTimeout bounds the whole three-provider search fan-out.
	// On expiry, whatever providers have completed is used as-is.
	CollectTimeout = 25 * time.Second

	// ResultsPerQuery caps web search results per decomposed sub-query
	ResultsPerQuery = 3

	// FinnhubDaysBack is the company-news lookback window
	FinnhubDaysBack = 7

	// FinnhubMaxItems caps items taken from one Finnhub response
	FinnhubMaxItems = 8

	// EdgarMaxFilings caps filings taken from the EDGAR feed
	EdgarMaxFilings = 5
)

// Content Fetching Constants
const (
	// MaxConcurrentFetches limits parallel article fetches to avoid
	// overwhelming hosts or tripping anti-bot defenses
	MaxConcurrentFetches = 5

	// FetchTimeout is the per-attempt fetch deadline; slow sources are
	// skipped, not retried
	FetchTimeout = 4 * time.Second

	// MinExtractedChars is the minimum extracted text length for a fetch
	// tier to count as a success
	MinExtractedChars = 150

	// PreFilledThreshold is the existing-content length above which a
	// source is never re-fetched
	PreFilledThreshold = 200

	// MaxContentChars truncates fetched content; enough signal, less noise
	MaxContentChars = 1500
)

// Chunking Constants
const (
	// ChunkSizeWords is the window size per chunk
	ChunkSizeWords = 400

	// ChunkOverlapWords is the overlap between consecutive windows
	ChunkOverlapWords = 80

	// MinChunkWords drops trailing boundary artifacts at creation time
	MinChunkWords = 40

	// MinSourceContentChars skips sources with too little content to chunk
	MinSourceContentChars = 100
)

// Reranking and Synthesis Constants
const (
	// TopKChunks is the number of chunks retained after reranking
	TopKChunks = 12

	// MaxChunkScoreChars truncates chunk text sent to scoring APIs
	MaxChunkScoreChars = 512

	// MaxContextChars is the hard cap on the synthesis context
	MaxContextChars = 10000

	// MaxChunkContextChars truncates each chunk inside the context
	MaxChunkContextChars = 600

	// MaxHeadlines caps the headlines carried on the final document
	MaxHeadlines = 5
)

// Cache Constants
const (
	// CacheTTL is how long a completed document stays valid
	CacheTTL = 30 * time.Minute

	// CacheKeyPrefix namespaces research keys in the shared store
	CacheKeyPrefix = "stk_research"
)
