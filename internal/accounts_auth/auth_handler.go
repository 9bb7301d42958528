package accounts_auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"tg_sender/internal/common"
	"tg_sender/internal/httputil"
	tgauth "tg_sender/pkg/telegram/accounts_auth"

	"github.com/gin-gonic/gin"
)

// RequestCode отправляет код подтверждения на телефон текущего аккаунта.
func (h *AccountHandler) RequestCode(c *gin.Context) {
	acc, ok := common.ActiveAccount(c, h.DB)
	if !ok {
		return
	}

	var hash string
	err := common.RunLocked(c.Request.Context(), acc, "auth", func(ctx context.Context) error {
		var err error
		hash, err = tgauth.RequestCode(ctx, h.DB, acc)
		return err
	})
	if err != nil {
		log.Printf("[AUTH ERROR] Не удалось получить код для %s: %v", acc.Phone, err)
		common.RespondTelegramError(c, err)
		return
	}

	if hash == "" {
		c.JSON(http.StatusOK, gin.H{"status": "authorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "code_sent"})
}

// Verify завершает вход кодом и, если нужно, паролем двухфакторной защиты.
func (h *AccountHandler) Verify(c *gin.Context) {
	var input struct {
		Code     string `json:"code" binding:"required"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Введите код")
		return
	}

	acc, ok := common.ActiveAccount(c, h.DB)
	if !ok {
		return
	}
	if acc.IsAuthorized {
		c.JSON(http.StatusOK, gin.H{"status": "authorized"})
		return
	}

	err := common.RunLocked(c.Request.Context(), acc, "auth", func(ctx context.Context) error {
		return tgauth.CompleteAuthorization(ctx, h.DB, acc, strings.TrimSpace(input.Code), input.Password)
	})
	switch {
	case err == nil:
		log.Printf("[AUTH] Аккаунт %s авторизован", acc.Phone)
		c.JSON(http.StatusOK, gin.H{"status": "authorized"})
	case errors.Is(err, tgauth.ErrPasswordNeeded):
		httputil.RespondErrorWith(c, http.StatusUnauthorized, err.Error(), gin.H{"password_required": true})
	case errors.Is(err, tgauth.ErrCodeInvalid), errors.Is(err, tgauth.ErrCodeNotRequested):
		httputil.RespondError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[AUTH ERROR] Ошибка входа для %s: %v", acc.Phone, err)
		common.RespondTelegramError(c, err)
	}
}
