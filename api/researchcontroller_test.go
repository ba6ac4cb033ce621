package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"tickerbrief/pipeline"
	"tickerbrief/types"
)

type fakeStore struct {
	docs        map[string]*types.ResearchDocument
	invalidated []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]*types.ResearchDocument)}
}

func (f *fakeStore) Get(_ context.Context, key string) *types.ResearchDocument { return f.docs[key] }
func (f *fakeStore) Set(_ context.Context, key string, doc *types.ResearchDocument) {
	f.docs[key] = doc
}
func (f *fakeStore) Invalidate(_ context.Context, key string) {
	f.invalidated = append(f.invalidated, key)
	delete(f.docs, key)
}
func (f *fakeStore) Backend() string { return "memory" }

type fakeService struct {
	doc     *types.ResearchDocument
	events  []types.StreamEvent
	store   *fakeStore
	lastReq pipeline.Request
}

func (f *fakeService) Research(_ context.Context, req pipeline.Request) *types.ResearchDocument {
	f.lastReq = req
	return f.doc
}

func (f *fakeService) Stream(_ context.Context, req pipeline.Request, emit func(types.StreamEvent)) *types.ResearchDocument {
	f.lastReq = req
	for _, ev := range f.events {
		emit(ev)
	}
	return f.doc
}

func (f *fakeService) Store() pipeline.Store { return f.store }

func liveDoc() *types.ResearchDocument {
	return &types.ResearchDocument{
		Synthesis:    "Strong quarter [1].",
		Sentiment:    types.SentimentBullish,
		Sources:      types.CitationMap{"1": {URL: "https://a.example", Title: "A"}},
		Ticker:       "AAPL",
		Exchange:     "NASDAQ",
		PipelineMode: types.PipelineLive,
	}
}

func newTestRouter(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(svc, HealthInfo{FinnhubConfigured: true, GeminiConfigured: true})
}

func TestResearchEndpoint(t *testing.T) {
	svc := &fakeService{doc: liveDoc(), store: newFakeStore()}
	router := newTestRouter(svc)

	body := strings.NewReader(`{"ticker":"AAPL","exchange":"NASDAQ","company_name":"Apple Inc"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/research", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var doc types.ResearchDocument
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("response not a document: %v", err)
	}
	if doc.Ticker != "AAPL" || doc.PipelineMode != types.PipelineLive {
		t.Errorf("document mangled: %+v", doc)
	}
	if svc.lastReq.CompanyName != "Apple Inc" {
		t.Errorf("company name not forwarded: %+v", svc.lastReq)
	}
}

func TestResearchEndpointUpperCasesIdentity(t *testing.T) {
	svc := &fakeService{doc: liveDoc(), store: newFakeStore()}
	router := newTestRouter(svc)

	body := strings.NewReader(`{"ticker":"nvda","exchange":"nasdaq"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/research", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if svc.lastReq.Ticker != "NVDA" || svc.lastReq.Exchange != "NASDAQ" {
		t.Errorf("identity not upper-cased: %+v", svc.lastReq)
	}
}

func TestStreamEndpointUpperCasesIdentity(t *testing.T) {
	svc := &fakeService{doc: liveDoc(), store: newFakeStore()}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/research/stream?ticker=nvda&exchange=nasdaq", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if svc.lastReq.Ticker != "NVDA" || svc.lastReq.Exchange != "NASDAQ" {
		t.Errorf("identity not upper-cased: %+v", svc.lastReq)
	}
}

func TestEvictEndpointUpperCasesKey(t *testing.T) {
	store := newFakeStore()
	svc := &fakeService{doc: liveDoc(), store: store}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/research/cache?ticker=nvda&exchange=nasdaq", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(store.invalidated) != 1 || store.invalidated[0] != "NVDA_NASDAQ" {
		t.Errorf("evicted key = %v, want [NVDA_NASDAQ]", store.invalidated)
	}
}

func TestResearchEndpointRejectsMissingFields(t *testing.T) {
	svc := &fakeService{doc: liveDoc(), store: newFakeStore()}
	router := newTestRouter(svc)

	for _, body := range []string{`{}`, `{"ticker":"AAPL"}`, `{"exchange":"NASDAQ"}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestStreamEndpointFramesAndHeaders(t *testing.T) {
	n := 3
	svc := &fakeService{
		doc:   liveDoc(),
		store: newFakeStore(),
		events: []types.StreamEvent{
			{Status: types.StatusStarting, Message: "Initialising..."},
			{Status: types.StatusSearchDone, SourcesFound: &n},
			{Status: types.StatusComplete, Result: liveDoc()},
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/research/stream?ticker=AAPL&exchange=NASDAQ", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := w.Header().Get("X-Accel-Buffering"); got != "no" {
		t.Errorf("X-Accel-Buffering = %q", got)
	}

	frames := strings.Split(strings.TrimSpace(w.Body.String()), "\n\n")
	if len(frames) != 3 {
		t.Fatalf("expected 3 SSE frames, got %d: %q", len(frames), w.Body.String())
	}

	var statuses []string
	for _, frame := range frames {
		if !strings.HasPrefix(frame, "data: ") {
			t.Fatalf("frame missing data prefix: %q", frame)
		}
		var ev types.StreamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &ev); err != nil {
			t.Fatalf("frame not JSON: %v", err)
		}
		statuses = append(statuses, ev.Status)
	}
	want := []string{types.StatusStarting, types.StatusSearchDone, types.StatusComplete}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("frame %d status = %s, want %s", i, statuses[i], want[i])
		}
	}

	// The terminal frame carries the document and its citation map.
	var last types.StreamEvent
	_ = json.Unmarshal([]byte(strings.TrimPrefix(frames[2], "data: ")), &last)
	if last.Result == nil || last.Result.Sources["1"].URL != "https://a.example" {
		t.Errorf("terminal frame lost the document: %+v", last.Result)
	}
}

func TestStreamEndpointRequiresTickerAndExchange(t *testing.T) {
	svc := &fakeService{doc: liveDoc(), store: newFakeStore()}
	router := newTestRouter(svc)

	for _, path := range []string{
		"/api/research/stream",
		"/api/research/stream?ticker=AAPL",
		"/api/research/stream?exchange=NASDAQ",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
}

func TestEvictEndpointIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.docs["AAPL_NASDAQ"] = liveDoc()
	svc := &fakeService{doc: liveDoc(), store: store}
	router := newTestRouter(svc)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/api/research/cache?ticker=AAPL&exchange=NASDAQ", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("call %d: status = %d, want 200", i, w.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("call %d: bad body: %v", i, err)
		}
		if resp["status"] != "evicted" || resp["key"] != "AAPL_NASDAQ" {
			t.Errorf("call %d: body = %v", i, resp)
		}
	}
	if len(store.invalidated) != 2 {
		t.Errorf("expected 2 invalidations, got %d", len(store.invalidated))
	}
}

func TestEvictEndpointRequiresParams(t *testing.T) {
	svc := &fakeService{doc: liveDoc(), store: newFakeStore()}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/research/cache?ticker=AAPL", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	svc := &fakeService{doc: liveDoc(), store: newFakeStore()}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Status       string          `json:"status"`
		CacheBackend string          `json:"cache_backend"`
		Providers    map[string]bool `json:"providers"`
		RerankTiers  []string        `json:"rerank_tiers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Status != "healthy" || resp.CacheBackend != "memory" {
		t.Errorf("health = %+v", resp)
	}
	if !resp.Providers["finnhub"] || !resp.Providers["duckduckgo"] {
		t.Errorf("providers = %v", resp.Providers)
	}
	if len(resp.RerankTiers) != 2 {
		t.Errorf("without cohere expected 2 tiers, got %v", resp.RerankTiers)
	}
}
