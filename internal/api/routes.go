package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	infragin "github.com/dj0804/GrievanceInsight/infrastructure/gin"
)

// SetupRoutes configures all API routes. A non-empty jwtSecret puts /api/v1
// behind bearer-token auth; metrics may be nil.
func SetupRoutes(router *gin.Engine, handler *Handler, jwtSecret string, metrics http.Handler) {
	router.GET("/", handler.Root)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := infragin.ProtectedGroup(router, "/api/v1", jwtSecret)
	{
		analyze := v1.Group("/analyze")
		{
			analyze.POST("/batch", handler.AnalyzeBatch)
			analyze.POST("/csv", handler.AnalyzeUpload)
			analyze.POST("/single", handler.AnalyzeSingle)
			analyze.POST("/single/db", handler.AnalyzeAndStore)
		}

		v1.GET("/categories", handler.Categories)
		v1.GET("/demo", handler.Demo)

		analytics := v1.Group("/analytics")
		{
			analytics.GET("/db", handler.StoredAnalytics)
			analytics.GET("/snapshots", handler.Snapshots)
		}

		grievances := v1.Group("/grievances")
		{
			grievances.GET("/recent", handler.Recent)
			grievances.GET("/search", handler.Search)
			grievances.GET("/category/:category", handler.ByCategory)
		}

		v1.GET("/batches/latest", handler.LatestBatch)
	}
}
