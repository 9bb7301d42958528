package accounts_auth

import (
	"tg_sender/pkg/storage"

	"github.com/gin-gonic/gin"
)

// SetupCheckRoutes регистрирует маршрут проверки авторизации аккаунта.
func SetupCheckRoutes(r *gin.RouterGroup, db *storage.DB) {
	handler := NewHandler(db)
	// POST, чтобы результат не кэшировался.
	r.POST("/check", handler.Check)
	r.GET("/alerts", handler.Alerts)
}
