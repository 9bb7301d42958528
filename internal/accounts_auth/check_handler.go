package accounts_auth

import (
	"context"
	"net/http"

	"tg_sender/internal/common"
	"tg_sender/internal/httputil"
	tgauth "tg_sender/pkg/telegram/accounts_auth"

	"github.com/gin-gonic/gin"
)

// Check проверяет, действует ли сессия текущего аккаунта.
// Потерянная авторизация сбрасывает флаг в БД.
func (h *AccountHandler) Check(c *gin.Context) {
	acc, ok := common.ActiveAccount(c, h.DB)
	if !ok {
		return
	}

	var authorized bool
	err := common.RunLocked(c.Request.Context(), acc, "auth check", func(ctx context.Context) error {
		var err error
		authorized, err = tgauth.Check(ctx, h.DB, acc)
		return err
	})
	if err != nil {
		common.RespondTelegramError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"phone": acc.Phone, "authorized": authorized})
}

const alertsLimit = 100

// Alerts возвращает последние критичные события: потерю авторизации, FLOOD_WAIT.
func (h *AccountHandler) Alerts(c *gin.Context) {
	list, err := h.DB.ListSos(c.Request.Context(), alertsLimit)
	if err != nil {
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": list})
}
