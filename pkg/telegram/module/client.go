package module

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"tg_sender/models"
	"tg_sender/pkg/storage"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"go.uber.org/zap"
	"golang.org/x/net/proxy"
)

// ErrInvalidAPI: Telegram отклонил api_id/api_hash.
var ErrInvalidAPI = errors.New("некорректные API ID или API Hash")

var (
	loggerMu sync.RWMutex
	logger   = zap.NewNop()
)

// SetLogger задаёт логгер, который получает внутренний журнал gotd/td.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

func currentLogger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// Modf_AccountInitialization создаёт клиент Telegram для аккаунта с хранилищем сессии в БД
// и, если задан, SOCKS5-прокси.
func Modf_AccountInitialization(acc *models.Account, db *storage.DB) (*telegram.Client, error) {
	var store session.Storage = &session.StorageMemory{}
	if db != nil && acc.ID > 0 {
		store = &DBSessionStorage{DB: db, AccountID: acc.ID}
	}

	opts := telegram.Options{
		SessionStorage: store,
		Logger:         currentLogger().Named(acc.Phone),
	}
	if p := acc.Proxy; p != nil {
		addr := fmt.Sprintf("%s:%d", p.IP, p.Port)
		var auth *proxy.Auth
		if p.Login != "" || p.Password != "" {
			auth = &proxy.Auth{User: p.Login, Password: p.Password}
		}
		d, err := proxy.SOCKS5("tcp", addr, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("proxy dialer: %w", err)
		}
		dc, ok := d.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("proxy dialer missing context")
		}
		opts.Resolver = dcs.Plain(dcs.PlainOptions{Dial: dc.DialContext})
		log.Printf("[PROXY] %s via %s", acc.Phone, addr)
	}
	return telegram.NewClient(acc.ApiID, acc.ApiHash, opts), nil
}

// WithClient открывает соединение от имени аккаунта, выполняет fn и закрывает соединение.
func WithClient(ctx context.Context, acc *models.Account, db *storage.DB, fn func(ctx context.Context, client *telegram.Client, api *tg.Client) error) error {
	client, err := Modf_AccountInitialization(acc, db)
	if err != nil {
		return err
	}
	err = client.Run(ctx, func(ctx context.Context) error {
		return fn(ctx, client, client.API())
	})
	return ClassifyError(err)
}

// ClassifyError заменяет ошибки неверных ключей API на ErrInvalidAPI.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if tgerr.Is(err, "API_ID_INVALID", "API_ID_PUBLISHED_FLOOD") {
		return fmt.Errorf("%w: %v", ErrInvalidAPI, err)
	}
	return err
}
