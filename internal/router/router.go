package router

import (
	"github.com/gin-gonic/gin"

	"billscan/internal/handler"
	"billscan/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	billH *handler.BillHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.CompanyContext())

	bills := v1.Group("/bills")
	bills.POST("/:id/parse", billH.Parse)
	bills.POST("/:id/attachments", billH.UploadAttachment)
	bills.DELETE("/:id/attachments/:attachment_id", billH.DeleteAttachment)

	v1.GET("/credit/:kind", billH.CreditBalance)

	return r
}
