package templates

import (
	"tg_sender/pkg/storage"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.RouterGroup, db *storage.DB) {
	handler := NewHandler(db)
	r.GET("", handler.List)
	r.POST("", handler.Save)
	r.POST("/params/next", handler.NextParam)
	r.GET("/:name", handler.Get)
	r.DELETE("/:name", handler.Delete)
}
