package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthInfo describes which optional integrations are configured, for the
// health endpoint.
type HealthInfo struct {
	FinnhubConfigured bool
	CohereConfigured  bool
	GeminiConfigured  bool
	ArchiveConfigured bool
}

// RegisterHealthRoutes registers the health check endpoint.
func RegisterHealthRoutes(r *gin.Engine, svc ResearchService, info HealthInfo) {
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "healthy",
			"cache_backend": svc.Store().Backend(),
			"providers": gin.H{
				"finnhub":    info.FinnhubConfigured,
				"duckduckgo": true,
				"sec_edgar":  true,
			},
			"rerank_tiers": rerankTiers(info.CohereConfigured),
			"synthesis":    info.GeminiConfigured,
			"archive":      info.ArchiveConfigured,
		})
	})
}

func rerankTiers(cohere bool) []string {
	if cohere {
		return []string{"cohere", "lexical", "keyword"}
	}
	return []string{"lexical", "keyword"}
}
