package tasks

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/tasklist/server/internal/auth"
	"codeberg.org/tasklist/server/internal/notifications"
	"codeberg.org/tasklist/server/tasklist/tasks"
)

func RegisterRoutes(router *gin.RouterGroup, store tasks.Store, verifier auth.Verifier, notifier *notifications.Dispatcher) {
	tasksGroup := router.Group("/todos")
	tasksGroup.Use(auth.AuthMiddleware(verifier))
	{
		tasksGroup.GET("", ListTasksHandler(store))
		tasksGroup.POST("", CreateTaskHandler(store, notifier))
		tasksGroup.GET("/stats", StatsHandler(store))
		tasksGroup.PUT("/bulk-update", BulkUpdateTasksHandler(store))
		tasksGroup.GET("/:id", GetTaskHandler(store))
		tasksGroup.PUT("/:id", UpdateTaskHandler(store))
		tasksGroup.DELETE("/:id", DeleteTaskHandler(store))
	}
}
