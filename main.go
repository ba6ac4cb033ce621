package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"tickerbrief/api"
	"tickerbrief/cache"
	"tickerbrief/common"
	"tickerbrief/config"
	"tickerbrief/fetch"
	"tickerbrief/pipeline"
	"tickerbrief/rerank"
	"tickerbrief/search"
	"tickerbrief/synth"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	store := cache.New(cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	synthesizer, err := synth.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("failed to initialize synthesizer: %v", err)
	}

	archiver := initializeArchiver(ctx, cfg)

	researcher := pipeline.New(
		search.NewCollector(cfg.FinnhubAPIKey),
		fetch.NewFetcher(cfg.ReaderProxyBase),
		rerank.NewReranker(cfg.CohereAPIKey),
		synthesizer,
		store,
		archiver,
	)

	r := api.NewRouter(researcher, api.HealthInfo{
		FinnhubConfigured: cfg.FinnhubAPIKey != "",
		CohereConfigured:  cfg.CohereAPIKey != "",
		GeminiConfigured:  cfg.GeminiAPIKey != "",
		ArchiveConfigured: archiver != nil,
	})

	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET    /api/health")
	log.Println("  POST   /api/research")
	log.Println("  GET    /api/research/stream")
	log.Println("  DELETE /api/research/cache")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// initializeArchiver returns a document archiver if S3 is configured via
// env, nil otherwise (archival silently skipped).
func initializeArchiver(ctx context.Context, cfg config.Config) *common.Archiver {
	if cfg.S3Bucket == "" {
		return nil
	}

	s3c, err := common.NewS3(ctx, common.S3Config{
		Region:       cfg.S3Region,
		Profile:      cfg.S3Profile,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		log.Printf("Warning: failed to init S3 client: %v (archival disabled)", err)
		return nil
	}
	return common.NewArchiver(s3c, cfg.S3Bucket, cfg.S3Prefix)
}
