package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"acordex/internal/handler"
	"acordex/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	logger *zap.Logger,
	allowedOrigins []string,
	extractionH *handler.ExtractionHandler,
	validationH *handler.ValidationHandler,
	ruleH *handler.RuleHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks and metrics
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	extractions := v1.Group("/extractions")
	extractions.POST("", extractionH.Extract)
	extractions.POST("/detect", extractionH.Detect)

	validations := v1.Group("/validations")
	validations.POST("", validationH.Validate)
	validations.POST("/match", validationH.Match)

	rules := v1.Group("/rules")
	rules.POST("", ruleH.Create)
	rules.GET("", ruleH.List)
	rules.GET("/export", ruleH.Export)
	rules.GET("/:id", ruleH.GetByID)
	rules.PUT("", ruleH.UpdateBulk)
	rules.PUT("/:id", ruleH.Update)
	rules.DELETE("", ruleH.DeleteBulk)
	rules.DELETE("/:id", ruleH.Delete)

	return r
}
