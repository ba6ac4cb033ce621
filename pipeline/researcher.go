// Package pipeline sequences source collection, content fetching, chunking,
// reranking, and synthesis into one forward-only state machine, exposed both
// as a one-shot call and as a progress-emitting stream. Both drivers run the
// exact same stage functions and populate the same cache.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"tickerbrief/cache"
	"tickerbrief/common"
	"tickerbrief/config"
	"tickerbrief/rag"
	"tickerbrief/rerank"
	"tickerbrief/search"
	"tickerbrief/synth"
	"tickerbrief/types"
)

// State names for the pipeline state machine. Transitions are strictly
// forward; no state is ever revisited within a run.
type State string

const (
	StateIdle         State = "idle"
	StateCollecting   State = "collecting"
	StateFetching     State = "fetching"
	StateChunking     State = "chunking"
	StateReranking    State = "reranking"
	StateSynthesizing State = "synthesizing"
	StateComplete     State = "complete"
	StateFallback     State = "degraded_fallback"
)

// Request identifies one research run.
type Request struct {
	Ticker      string `json:"ticker" binding:"required"`
	Exchange    string `json:"exchange" binding:"required"`
	CompanyName string `json:"company_name"`
}

// SourceCollector discovers sources for a query.
type SourceCollector interface {
	Collect(ctx context.Context, q search.Query) ([]types.Source, types.SourceStats)
}

// ContentFetcher resolves sources to content.
type ContentFetcher interface {
	FetchAll(ctx context.Context, sources []types.Source) []types.FetchedSource
}

// ChunkReranker orders chunks by relevance and keeps the top K.
type ChunkReranker interface {
	Rerank(ctx context.Context, req rerank.Request, chunks []types.Chunk) []types.Chunk
}

// Synthesizer generates the final document from the top chunks.
type Synthesizer interface {
	Synthesize(ctx context.Context, ticker, exchange string, topChunks []types.Chunk) (*types.ResearchDocument, error)
}

// Store is the cache surface the controller uses.
type Store interface {
	Get(ctx context.Context, key string) *types.ResearchDocument
	Set(ctx context.Context, key string, doc *types.ResearchDocument)
	Invalidate(ctx context.Context, key string)
	Backend() string
}

// Researcher is the pipeline controller. All collaborators are injected at
// construction and shared by every run.
type Researcher struct {
	collector   SourceCollector
	fetcher     ContentFetcher
	reranker    ChunkReranker
	synthesizer Synthesizer
	store       Store
	archiver    *common.Archiver
}

// New wires a controller. archiver may be nil (archival not configured).
func New(collector SourceCollector, fetcher ContentFetcher, reranker ChunkReranker, synthesizer Synthesizer, store Store, archiver *common.Archiver) *Researcher {
	return &Researcher{
		collector:   collector,
		fetcher:     fetcher,
		reranker:    reranker,
		synthesizer: synthesizer,
		store:       store,
		archiver:    archiver,
	}
}

// Store exposes the cache for the API layer's eviction endpoint.
func (r *Researcher) Store() Store { return r.store }

// runState is the value threaded through the stage functions. Each stage
// consumes the previous stage's output and owns its own; nothing reaches
// back into earlier data.
type runState struct {
	req   Request
	state State

	sources []types.Source
	stats   types.SourceStats
	fetched []types.FetchedSource
	chunks  []types.Chunk
	top     []types.Chunk
}

// Research runs the pipeline one-shot and returns the terminal document.
// Every failure mode yields the fallback document, never an error.
func (r *Researcher) Research(ctx context.Context, req Request) *types.ResearchDocument {
	return r.run(ctx, req, func(types.StreamEvent) {})
}

// Stream runs the identical pipeline, emitting one progress event per state
// transition; the terminal event carries the full document. The returned
// document equals what Research would have produced.
func (r *Researcher) Stream(ctx context.Context, req Request, emit func(types.StreamEvent)) *types.ResearchDocument {
	return r.run(ctx, req, emit)
}

func (r *Researcher) run(ctx context.Context, req Request, emit func(types.StreamEvent)) (doc *types.ResearchDocument) {
	key := cache.Key(req.Ticker, req.Exchange)

	// Truly unexpected failures at any stage degrade to the fallback
	// document; there is no terminal state without a recovery document.
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Pipeline: unexpected failure for %s: %v", req.Ticker, rec)
			doc = r.fallback(req, emit, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	if cached := r.store.Get(ctx, key); cached != nil {
		log.Printf("Pipeline: cache hit for %s", key)
		emit(types.StreamEvent{Status: types.StatusCacheHit, Message: "Returning cached research"})
		emit(types.StreamEvent{Status: types.StatusComplete, Result: cached})
		return cached
	}

	log.Printf("Pipeline: starting research for %s (%s)", req.Ticker, req.Exchange)
	emit(types.StreamEvent{Status: types.StatusStarting, Message: fmt.Sprintf("Initialising pipeline for %s...", req.Ticker)})

	st := runState{req: req, state: StateIdle}

	emit(types.StreamEvent{Status: types.StatusSearching, Message: "Searching Finnhub, DuckDuckGo, SEC EDGAR..."})
	st = r.collectStage(ctx, st)
	emit(types.StreamEvent{Status: types.StatusSearchDone, SourcesFound: intp(st.stats.Total), Breakdown: &st.stats})
	if len(st.sources) == 0 {
		return r.fallback(req, emit, "No sources found")
	}

	emit(types.StreamEvent{Status: types.StatusFetching, Message: fmt.Sprintf("Fetching %d articles in parallel...", len(st.sources))})
	st = r.fetchStage(ctx, st)
	emit(types.StreamEvent{Status: types.StatusFetchDone, ArticlesFetched: intp(fetchedCount(st.fetched))})

	emit(types.StreamEvent{Status: types.StatusChunking, Message: "Building chunks..."})
	st = r.chunkStage(st)
	emit(types.StreamEvent{Status: types.StatusChunkDone, TotalChunks: intp(len(st.chunks))})
	if len(st.chunks) == 0 {
		return r.fallback(req, emit, "No content extracted")
	}

	emit(types.StreamEvent{Status: types.StatusReranking, Message: "Reranking chunks by relevance..."})
	st = r.rerankStage(ctx, st)
	emit(types.StreamEvent{Status: types.StatusRerankDone, TopChunks: intp(len(st.top))})
	if len(st.top) == 0 {
		return r.fallback(req, emit, "No relevant chunks after reranking")
	}

	emit(types.StreamEvent{Status: types.StatusSynthesizing, Message: "Generating synthesis with citations..."})
	st, doc = r.synthStage(ctx, st)
	if st.state == StateFallback {
		emit(types.StreamEvent{Status: types.StatusError, Message: "Synthesis unavailable", Result: doc})
		return doc
	}

	r.store.Set(ctx, key, doc)
	r.archive(ctx, doc)

	emit(types.StreamEvent{
		Status:         types.StatusComplete,
		CatalystsFound: intp(len(doc.Catalysts)),
		Result:         doc,
	})
	return doc
}

// collectStage: idle -> collecting.
func (r *Researcher) collectStage(ctx context.Context, st runState) runState {
	st.state = StateCollecting
	q := search.NewQuery(st.req.Ticker, st.req.Exchange, st.req.CompanyName)
	st.sources, st.stats = r.collector.Collect(ctx, q)
	return st
}

// fetchStage: collecting -> fetching.
func (r *Researcher) fetchStage(ctx context.Context, st runState) runState {
	st.state = StateFetching
	st.fetched = r.fetcher.FetchAll(ctx, st.sources)
	return st
}

// chunkStage: fetching -> chunking.
func (r *Researcher) chunkStage(st runState) runState {
	st.state = StateChunking
	st.chunks = rag.BuildChunks(st.fetched)
	return st
}

// rerankStage: chunking -> reranking.
func (r *Researcher) rerankStage(ctx context.Context, st runState) runState {
	st.state = StateReranking
	st.top = r.reranker.Rerank(ctx, rerank.Request{
		Query:  fmt.Sprintf("%s %s stock market news earnings catalysts", st.req.Ticker, st.req.Exchange),
		Ticker: st.req.Ticker,
		TopK:   config.TopKChunks,
	}, st.chunks)
	return st
}

// synthStage: reranking -> synthesizing -> complete or degraded_fallback.
func (r *Researcher) synthStage(ctx context.Context, st runState) (runState, *types.ResearchDocument) {
	st.state = StateSynthesizing
	doc, err := r.synthesizer.Synthesize(ctx, st.req.Ticker, st.req.Exchange, st.top)
	if err != nil {
		log.Printf("Pipeline: synthesis failed for %s: %v", st.req.Ticker, err)
		st.state = StateFallback
		return st, synth.Fallback(st.req.Ticker, st.req.Exchange)
	}
	st.state = StateComplete
	return st, doc
}

// fallback terminates a run with the degraded document and the error event.
func (r *Researcher) fallback(req Request, emit func(types.StreamEvent), message string) *types.ResearchDocument {
	log.Printf("Pipeline: %s for %s (%s), returning fallback", message, req.Ticker, req.Exchange)
	doc := synth.Fallback(req.Ticker, req.Exchange)
	emit(types.StreamEvent{Status: types.StatusError, Message: message, Result: doc})
	return doc
}

func (r *Researcher) archive(ctx context.Context, doc *types.ResearchDocument) {
	if err := r.archiver.Archive(ctx, doc); err != nil {
		// Archival is best-effort; the response is already decided.
		log.Printf("Pipeline: archive failed for %s_%s: %v", doc.Ticker, doc.Exchange, err)
	}
}

func fetchedCount(fetched []types.FetchedSource) int {
	n := 0
	for _, f := range fetched {
		if f.Status == types.FetchSuccess || f.Status == types.FetchPreFilled {
			n++
		}
	}
	return n
}

func intp(n int) *int { return &n }
