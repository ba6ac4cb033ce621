package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tickerbrief/pipeline"
	"tickerbrief/types"
)

// ResearchService is the pipeline surface the controllers depend on.
type ResearchService interface {
	Research(ctx context.Context, req pipeline.Request) *types.ResearchDocument
	Stream(ctx context.Context, req pipeline.Request, emit func(types.StreamEvent)) *types.ResearchDocument
	Store() pipeline.Store
}

// RegisterResearchRoutes registers the research pipeline endpoints. Ticker
// and exchange are upper-cased at the boundary so exchange coverage gates
// and cache keys are insensitive to client spelling.
func RegisterResearchRoutes(r *gin.Engine, svc ResearchService) {
	g := r.Group("/api/research")
	g.POST("", makeResearchHandler(svc))
	g.GET("/stream", makeStreamHandler(svc))
	g.DELETE("/cache", makeEvictHandler(svc))
}

// makeResearchHandler serves the one-shot path. Generated documents,
// fallback ones included, are always 200; only failures outside the state
// machine's recovery path (none in practice) would surface as 500 via the
// recovery middleware.
func makeResearchHandler(svc ResearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pipeline.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Ticker = strings.ToUpper(req.Ticker)
		req.Exchange = strings.ToUpper(req.Exchange)

		doc := svc.Research(c.Request.Context(), req)
		c.JSON(http.StatusOK, doc)
	}
}

// makeStreamHandler serves the Server-Sent Events path. Each event is one
// `data: <json>` frame, flushed immediately; headers disable intermediary
// buffering so events arrive incrementally.
func makeStreamHandler(svc ResearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := pipeline.Request{
			Ticker:      strings.ToUpper(c.Query("ticker")),
			Exchange:    strings.ToUpper(c.Query("exchange")),
			CompanyName: c.Query("company_name"),
		}
		if req.Ticker == "" || req.Exchange == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ticker and exchange are required"})
			return
		}

		h := c.Writer.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		c.Writer.WriteHeader(http.StatusOK)
		c.Writer.Flush()

		svc.Stream(c.Request.Context(), req, func(ev types.StreamEvent) {
			b, err := json.Marshal(ev)
			if err != nil {
				return
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", b)
			c.Writer.Flush()
		})
	}
}

// makeEvictHandler evicts the cached document for a key. Idempotent: always
// succeeds, whether or not an entry existed.
func makeEvictHandler(svc ResearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticker := strings.ToUpper(c.Query("ticker"))
		exchange := strings.ToUpper(c.Query("exchange"))
		if ticker == "" || exchange == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ticker and exchange are required"})
			return
		}

		key := ticker + "_" + exchange
		svc.Store().Invalidate(c.Request.Context(), key)
		c.JSON(http.StatusOK, gin.H{
			"status": "evicted",
			"key":    key,
		})
	}
}
