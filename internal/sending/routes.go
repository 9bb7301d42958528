package sending

import (
	"log"

	"tg_sender/pkg/storage"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.RouterGroup, db *storage.DB) {
	handler := NewHandler(db)
	r.POST("", handler.Send)
	r.POST("/preview", handler.Preview)
	r.POST("/cancel", handler.CancelAll)
	r.GET("/:id", handler.Status)
	log.Printf("[ROUTER] Send routes registered")
}
