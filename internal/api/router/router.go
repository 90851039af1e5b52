package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/api/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "careerai-job-api",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	jobHandler := handler.NewJobHandler(deps)
	notificationHandler := handler.NewNotificationHandler(deps)

	// API v1 routes (all caller-scoped)
	v1 := r.Group("/api/v1")
	v1.Use(AuthMiddleware())
	{
		jobsGroup := v1.Group("/jobs")
		{
			// POST /api/v1/jobs - Create a new job
			jobsGroup.POST("", jobHandler.CreateJob)

			// GET /api/v1/jobs - List caller's jobs, filterable by status
			jobsGroup.GET("", jobHandler.ListJobs)

			// GET /api/v1/jobs/watch - Stream active-job snapshots
			jobsGroup.GET("/watch", jobHandler.WatchJobs)

			// GET /api/v1/jobs/:job_id - Get job status snapshot
			jobsGroup.GET("/:job_id", jobHandler.GetJob)
		}

		notificationsGroup := v1.Group("/notifications")
		{
			// GET /api/v1/notifications - List caller's notifications
			notificationsGroup.GET("", notificationHandler.ListNotifications)

			// POST /api/v1/notifications/read - Mark notifications read
			notificationsGroup.POST("/read", notificationHandler.MarkNotificationsRead)
		}
	}

	return r
}
