package common

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"tickerbrief/types"
)

type fakeObjectStore struct {
	bucket      string
	key         string
	body        []byte
	contentType string
	calls       int
}

func (f *fakeObjectStore) Put(_ context.Context, bucket, key string, body []byte, contentType string) error {
	f.calls++
	f.bucket = bucket
	f.key = key
	f.body = body
	f.contentType = contentType
	return nil
}

func TestArchiverNilIsSafe(t *testing.T) {
	var a *Archiver
	if err := a.Archive(context.Background(), &types.ResearchDocument{Ticker: "AAPL"}); err != nil {
		t.Errorf("nil archiver must be a no-op, got %v", err)
	}
}

func TestNewArchiverRequiresBucket(t *testing.T) {
	if a := NewArchiver(&fakeObjectStore{}, "", "pre/"); a != nil {
		t.Error("empty bucket must yield a nil archiver")
	}
	if a := NewArchiver(nil, "bucket", ""); a != nil {
		t.Error("nil store must yield a nil archiver")
	}
}

func TestArchiveKeyLayoutAndBody(t *testing.T) {
	store := &fakeObjectStore{}
	a := NewArchiver(store, "briefs", "archive/")

	doc := &types.ResearchDocument{
		Ticker:       "AAPL",
		Exchange:     "NASDAQ",
		Timestamp:    "2026-08-28T12:30:45Z",
		PipelineMode: types.PipelineLive,
	}
	if err := a.Archive(context.Background(), doc); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	if store.bucket != "briefs" {
		t.Errorf("bucket = %q", store.bucket)
	}
	want := "archive/research/AAPL_NASDAQ/2026-08-28T12-30-45Z.json"
	if store.key != want {
		t.Errorf("key = %q, want %q", store.key, want)
	}
	if store.contentType != "application/json" {
		t.Errorf("content type = %q", store.contentType)
	}
	if !strings.Contains(string(store.body), "\n") {
		t.Error("body should be pretty-printed JSON")
	}

	var round types.ResearchDocument
	if err := json.Unmarshal(store.body, &round); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if round.Ticker != "AAPL" || round.PipelineMode != types.PipelineLive {
		t.Errorf("body mangled: %+v", round)
	}
}
