package common

import (
	"context"
	"errors"
	"log"
	"net/http"

	"tg_sender/config"
	"tg_sender/internal/httputil"
	"tg_sender/models"
	"tg_sender/pkg/storage"
	"tg_sender/pkg/telegram/module"
	"tg_sender/pkg/telegram/module/account_mutex"

	"github.com/gin-gonic/gin"
)

// NoAccountMessage возвращается, пока настройки подключения не сохранены.
const NoAccountMessage = "Сначала заполните настройки подключения"

// ActiveAccount загружает текущий аккаунт и проверяет, что данные подключения заполнены.
// При ошибке ответ уже отправлен, и возвращается false.
func ActiveAccount(c *gin.Context, db *storage.DB) (*models.Account, bool) {
	acc, err := db.GetLastAccount(c.Request.Context())
	if errors.Is(err, storage.ErrNotFound) {
		httputil.RespondError(c, http.StatusPreconditionFailed, NoAccountMessage)
		return nil, false
	}
	if err != nil {
		log.Printf("[HANDLER ERROR] Не удалось получить аккаунт: %v", err)
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return nil, false
	}
	if !acc.Configured() {
		httputil.RespondError(c, http.StatusPreconditionFailed, NoAccountMessage)
		return nil, false
	}
	return acc, true
}

// RunLocked выполняет fn, пока аккаунт занят операцией op, с ограничением времени
// telegram.timeout. Если аккаунт занят, возвращается ошибка с account_mutex.ErrAccountBusy.
func RunLocked(ctx context.Context, acc *models.Account, op string, fn func(ctx context.Context) error) error {
	if err := account_mutex.LockAccount(acc.ID, op); err != nil {
		return err
	}
	defer account_mutex.UnlockAccount(acc.ID)

	ctx, cancel := context.WithTimeout(ctx, config.TelegramTimeout())
	defer cancel()
	return fn(ctx)
}

// RespondTelegramError подбирает код ответа для ошибки запроса к Telegram.
func RespondTelegramError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, account_mutex.ErrAccountBusy):
		httputil.RespondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, module.ErrInvalidAPI):
		httputil.RespondError(c, http.StatusBadRequest, module.ErrInvalidAPI.Error())
	case errors.Is(err, context.DeadlineExceeded):
		httputil.RespondError(c, http.StatusGatewayTimeout, "Telegram не ответил вовремя")
	default:
		httputil.RespondError(c, http.StatusBadGateway, err.Error())
	}
}
