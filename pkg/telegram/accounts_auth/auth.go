// Package accounts_auth содержит вход аккаунта в Telegram: запрос кода,
// подтверждение кодом и паролем двухфакторной защиты, проверку сессии.
package accounts_auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tg_sender/models"
	"tg_sender/pkg/storage"
	module "tg_sender/pkg/telegram/module"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

var (
	// ErrPasswordNeeded: включена двухфакторная защита, нужен пароль.
	ErrPasswordNeeded = errors.New("требуется пароль двухфакторной авторизации")
	// ErrCodeInvalid: код неверный или устарел.
	ErrCodeInvalid = errors.New("код подтверждения неверный или устарел")
	// ErrCodeNotRequested: код ещё не запрашивали.
	ErrCodeNotRequested = errors.New("сначала запросите код подтверждения")
)

// RequestCode отправляет код подтверждения и сохраняет его хеш в БД.
// Если сессия уже авторизована, код не запрашивается и возвращается пустой хеш.
func RequestCode(ctx context.Context, db *storage.DB, acc *models.Account) (string, error) {
	var phoneCodeHash string
	err := module.WithClient(ctx, acc, db, func(ctx context.Context, client *telegram.Client, _ *tg.Client) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return err
		}
		if status.Authorized {
			log.Printf("[AUTH] %s уже авторизован, код не нужен", acc.Phone)
			return db.MarkAccountAsAuthorized(ctx, acc.ID)
		}

		sentCode, err := client.Auth().SendCode(ctx, acc.Phone, auth.SendCodeOptions{})
		if err != nil {
			return err
		}
		switch sent := sentCode.(type) {
		case *tg.AuthSentCode:
			phoneCodeHash = sent.PhoneCodeHash
			// Сохраняем полученный хеш в БД для дальнейшей авторизации
			return db.UpdatePhoneCodeHash(ctx, acc.ID, phoneCodeHash)
		case *tg.AuthSentCodeSuccess:
			log.Printf("[AUTH] %s авторизован без кода", acc.Phone)
			return db.MarkAccountAsAuthorized(ctx, acc.ID)
		default:
			log.Printf("[AUTH ERROR] Unexpected sent code type: %T", sentCode)
			return fmt.Errorf("unexpected sent code type: %T", sentCode)
		}
	})
	return phoneCodeHash, err
}

// CompleteAuthorization входит по коду. Если у аккаунта включена двухфакторная защита,
// а пароль не передан, возвращается ErrPasswordNeeded.
func CompleteAuthorization(ctx context.Context, db *storage.DB, acc *models.Account, code, password string) error {
	if acc.PhoneCodeHash == "" {
		return ErrCodeNotRequested
	}
	err := module.WithClient(ctx, acc, db, func(ctx context.Context, client *telegram.Client, _ *tg.Client) error {
		_, err := client.Auth().SignIn(ctx, acc.Phone, code, acc.PhoneCodeHash)
		if errors.Is(err, auth.ErrPasswordAuthNeeded) {
			if password == "" {
				return ErrPasswordNeeded
			}
			if _, err := client.Auth().Password(ctx, password); err != nil {
				log.Printf("[AUTH ERROR] Password authentication failed: %v", err)
				return fmt.Errorf("password authentication failed: %w", err)
			}
			return nil
		}
		if tgerr.Is(err, "PHONE_CODE_INVALID", "PHONE_CODE_EXPIRED", "PHONE_CODE_EMPTY") {
			return fmt.Errorf("%w: %v", ErrCodeInvalid, err)
		}
		if err != nil {
			log.Printf("[AUTH ERROR] Authorization failed: %v", err)
			return fmt.Errorf("authorization error: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := db.MarkAccountAsAuthorized(ctx, acc.ID); err != nil {
		return fmt.Errorf("отметка авторизации: %w", err)
	}
	log.Printf("[AUTH] Successfully authorized phone: %s", acc.Phone)
	return nil
}
