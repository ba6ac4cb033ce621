package api

import (
	"github.com/gin-gonic/gin"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(svc ResearchService, health HealthInfo) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterResearchRoutes(r, svc)
	RegisterHealthRoutes(r, svc, health)
	return r
}
