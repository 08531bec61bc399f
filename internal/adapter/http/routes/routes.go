package routes

import (
	"github.com/gin-gonic/gin"

	"todolist/internal/adapter/http/handler"
	"todolist/internal/core/telemetry"
	. "todolist/internal/shared"
)

type HandlersConfig struct {
	TodoHandler *handler.TodoHandler
}

func SetupRouter(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *LokiLogger) *gin.Engine {
	return SetupRouterWithConfig(handlers, metrics, logger, GetDefaultConfig())
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *LokiLogger, config *AppConfig) *gin.Engine {
	router := gin.New()

	SetupGinMiddlewareWithConfig(router, config.Telemetry.ServiceName, metrics, logger, config)

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	if handlers.TodoHandler != nil {
		setupTodoRoutes(router, handlers.TodoHandler)
	}

	return router
}

func setupTodoRoutes(router *gin.Engine, todoHandler *handler.TodoHandler) {
	router.GET("/healthz", todoHandler.Health)

	todos := router.Group("/todos")
	{
		todos.GET("", todoHandler.GetAllTodos)
		todos.GET("/board", todoHandler.GetBoard)
		todos.POST("", todoHandler.CreateTodo)
		todos.PATCH("/:id", todoHandler.UpdateTodo)
		todos.POST("/:id/toggle", todoHandler.ToggleTodo)
		todos.DELETE("/:id", todoHandler.DeleteTodo)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SetupRouterForTests mounts the routes without telemetry, caching or rate
// limiting.
func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	router := gin.New()

	router.Use(RequestIDMiddleware())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	if handlers.TodoHandler != nil {
		setupTodoRoutes(router, handlers.TodoHandler)
	}

	return router
}
