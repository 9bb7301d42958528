package fetch

import (
	"log"

	"tg_sender/pkg/storage"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.RouterGroup, db *storage.DB) {
	handler := NewHandler(db)
	r.POST("/groups", handler.FetchGroups)
	r.POST("/groups/add", handler.AddGroups)
	r.POST("/topics", handler.FetchTopics)
	r.POST("/topics/add", handler.AddTopics)
	log.Printf("[ROUTER] Fetch routes registered")
}
