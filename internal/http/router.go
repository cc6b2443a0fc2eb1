package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	if cfg.Lendings != nil {
		lendings := NewLendingsController(cfg.Lendings)
		api.POST("/lendings", lendings.Create)
		api.GET("/lendings", lendings.Search)
		api.GET("/lendings/overdue", lendings.Overdue)
		api.GET("/lendings/stats/average-duration", lendings.AverageDuration)
		api.GET("/lendings/:year/:seq", lendings.Get)
		api.PATCH("/lendings/:year/:seq/return", lendings.Return)
		api.GET("/lendings/:year/:seq/fine", lendings.Fine)
		api.DELETE("/lendings/:year/:seq", lendings.Delete)
		api.GET("/readers/:year/:seq/lendings", lendings.ReaderLendings)
	}

	if cfg.Reporter != nil {
		reports := NewReportsController(cfg.Reporter, cfg.ReportRunner, cfg.TaskStatus)
		api.GET("/reports/overdue", reports.Overdue)
		api.POST("/reports/overdue/run", reports.Run)
		api.GET("/tasks/:id", reports.TaskStatus)
	}

	if cfg.Audit != nil {
		audit := NewAuditController(cfg.Audit)
		api.GET("/audit", audit.GetAuditEvents)
		api.GET("/lendings/:year/:seq/audit", audit.GetLendingEvents)
	}

	return router
}
