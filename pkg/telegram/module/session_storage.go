package module

import (
	"context"
	"errors"

	"tg_sender/pkg/storage"

	"github.com/gotd/td/session"
)

// DBSessionStorage хранит и загружает сессии Telegram из таблицы account_session.
type DBSessionStorage struct {
	DB        *storage.DB
	AccountID int
}

// LoadSession загружает текст сессии из БД.
func (s *DBSessionStorage) LoadSession(ctx context.Context) ([]byte, error) {
	if s == nil || s.DB == nil {
		return nil, session.ErrNotFound
	}
	data, err := s.DB.LoadSession(ctx, s.AccountID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, session.ErrNotFound
	}
	return data, err
}

// StoreSession сохраняет текст сессии в БД.
func (s *DBSessionStorage) StoreSession(ctx context.Context, data []byte) error {
	if s == nil || s.DB == nil {
		return session.ErrNotFound
	}
	return s.DB.StoreSession(ctx, s.AccountID, data)
}
