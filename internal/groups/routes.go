package groups

import (
	"log"

	"tg_sender/pkg/storage"

	"github.com/gin-gonic/gin"
)

// SetupRoutes регистрирует маршруты групп.
func SetupRoutes(r *gin.RouterGroup, db *storage.DB) {
	handler := NewHandler(db)
	r.GET("", handler.List)
	r.POST("", handler.Create)
	r.PUT("/:id", handler.Update)
	r.DELETE("/:id", handler.Delete)
	r.PUT("/:id/templates/:name", handler.SetOverride)
	log.Printf("[ROUTER] Group routes registered")
}

// SetupTopicRoutes регистрирует маршруты тем форумов.
func SetupTopicRoutes(r *gin.RouterGroup, db *storage.DB) {
	handler := NewHandler(db)
	r.GET("", handler.ListTopics)
	r.POST("", handler.CreateTopic)
	r.PUT("/:group_id/:topic_id", handler.UpdateTopic)
	r.DELETE("/:group_id/:topic_id", handler.DeleteTopic)
	r.PUT("/:group_id/:topic_id/templates/:name", handler.SetTopicOverride)
}
