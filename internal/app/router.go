package app

import (
	"aicu_backend/docs"
	"aicu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		learning := api.Group("/learning")
		{
			learning.POST("/quiz-completed", c.learning.QuizCompleted)
			learning.POST("/sessions", c.learning.StartSession)
			learning.GET("/continue", c.learning.ContinueIndex)
		}

		statistics := api.Group("/statistics")
		{
			statistics.GET("/categories", c.statistics.GetCategories)
			statistics.GET("/realtime", c.statistics.GetRealTime)
			statistics.GET("/results", c.statistics.GetResults)
			statistics.GET("/export", c.statistics.Export)
			statistics.POST("/snapshot", c.statistics.CreateSnapshot)
		}

		sync := api.Group("/sync")
		{
			sync.POST("/focus", c.sync.Focus)
			sync.POST("/reconnect", c.sync.Reconnect)
			sync.GET("/events", c.sync.RecentEvents)
			sync.GET("/ws", c.sync.ServeWS)
		}

		simulation := api.Group("/simulation")
		{
			simulation.POST("/time", c.simulation.SetTime)
			simulation.DELETE("/time", c.simulation.ClearTime)
			simulation.POST("/batch", c.simulation.RunBatch)
			simulation.POST("/validate", c.simulation.Validate)
		}
	}
}
