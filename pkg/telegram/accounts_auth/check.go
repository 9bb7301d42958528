package accounts_auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tg_sender/models"
	"tg_sender/pkg/storage"
	module "tg_sender/pkg/telegram/module"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

// Check проверяет, сохранилась ли авторизация аккаунта.
// Если сессии нет или Telegram её отозвал, флаг авторизации сбрасывается
// и событие пишется в Sos. Прочие ошибки (сеть, прокси, таймаут, ключи API)
// возвращаются вызывающему без изменения состояния в БД.
func Check(ctx context.Context, db *storage.DB, acc *models.Account) (bool, error) {
	err := module.WithClient(ctx, acc, db, func(ctx context.Context, _ *telegram.Client, api *tg.Client) error {
		_, err := api.UsersGetFullUser(ctx, &tg.InputUserSelf{})
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case sessionLost(err):
		log.Printf("[ACCOUNT AUTH CHECK] аккаунт %s: авторизация потеряна: %v", acc.Phone, err)
		markUnauthorized(ctx, db, acc)
		return false, nil
	default:
		log.Printf("[ACCOUNT AUTH CHECK] аккаунт %s: ошибка запроса: %v", acc.Phone, err)
		return false, err
	}
}

// sessionLost сообщает, что ошибка означает потерю авторизации, а не сбой связи.
func sessionLost(err error) bool {
	if errors.Is(err, session.ErrNotFound) || auth.IsUnauthorized(err) {
		return true
	}
	return tgerr.Is(err, "AUTH_KEY_UNREGISTERED", "SESSION_REVOKED", "USER_DEACTIVATED")
}

// markUnauthorized сбрасывает флаг авторизации и пишет сообщение в Sos.
// Записи выполняются и после истечения ctx запроса.
func markUnauthorized(ctx context.Context, db *storage.DB, acc *models.Account) {
	if !acc.IsAuthorized {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := db.MarkAccountAsUnauthorized(ctx, acc.ID); err != nil {
		log.Printf("[ACCOUNT AUTH CHECK] ошибка обновления статуса %s: %v", acc.Phone, err)
	}
	msg := fmt.Sprintf("номер %s больше не авторизован в программе", acc.Phone)
	if err := db.SaveSos(ctx, msg); err != nil {
		log.Printf("[ACCOUNT AUTH CHECK] ошибка записи в Sos: %v", err)
	}
}
