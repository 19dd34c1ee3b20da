package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	correctionHandler *CorrectionHandler
	auth              gin.HandlerFunc
	metrics           gin.HandlerFunc
}

// NewHandlerManager wires the HTTP surface. metrics may be nil to skip the /metrics route.
func NewHandlerManager(correctionHandler *CorrectionHandler, auth gin.HandlerFunc, metrics gin.HandlerFunc) *HandlerManager {
	if auth == nil {
		auth = AuthMiddleware(nil)
	}
	return &HandlerManager{
		correctionHandler: correctionHandler,
		auth:              auth,
		metrics:           metrics,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	if hm.metrics != nil {
		router.GET("/metrics", hm.metrics)
	}

	v1 := router.Group("/api/v1")
	v1.Use(hm.auth)
	{
		results := v1.Group("/results")
		{
			results.POST("/:id/answers", hm.correctionHandler.RecordAnswer)
			results.POST("/:id/correct", hm.correctionHandler.RequestCorrection)
			results.GET("/:id/export", hm.correctionHandler.ExportResult)
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "correction-service",
	})
}
