package accounts_auth

import (
	"log"

	"tg_sender/pkg/storage"

	"github.com/gin-gonic/gin"
)

// SetupRoutes регистрирует маршруты входа в Telegram.
func SetupRoutes(r *gin.RouterGroup, db *storage.DB) {
	handler := NewHandler(db)
	r.POST("/code", handler.RequestCode)
	r.POST("/verify", handler.Verify)
	log.Printf("[ROUTER] Auth routes registered")
}

// SetupSettingsRoutes регистрирует маршруты настроек подключения.
func SetupSettingsRoutes(r *gin.RouterGroup, db *storage.DB) {
	handler := NewHandler(db)
	r.GET("", handler.GetSettings)
	r.POST("", handler.SaveSettings)
	r.POST("/proxy", handler.CreateProxy)
}
