package storage

import (
	"context"
	"database/sql"
	"errors"
	"log"
)

// LoadSession возвращает сохранённую сессию Telegram аккаунта.
// При отсутствии записи возвращается ErrNotFound.
func (db *DB) LoadSession(ctx context.Context, accountID int) ([]byte, error) {
	var data string
	// В account_session хранится не более одной записи на аккаунт.
	err := db.Conn.QueryRowContext(ctx, "SELECT data_json FROM account_session WHERE account = $1", accountID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("[DB ERROR] ошибка чтения сессии аккаунта %d: %v", accountID, err)
		return nil, err
	}
	return []byte(data), nil
}

// StoreSession сохраняет сессию, перезаписывая предыдущую.
func (db *DB) StoreSession(ctx context.Context, accountID int, data []byte) error {
	_, err := db.Conn.ExecContext(
		ctx,
		"INSERT INTO account_session (account, data_json) VALUES ($1, $2) "+
			"ON CONFLICT (account) DO UPDATE SET data_json = EXCLUDED.data_json, date_time = NOW()",
		accountID,
		string(data),
	)
	if err != nil {
		log.Printf("[DB ERROR] ошибка сохранения сессии аккаунта %d: %v", accountID, err)
		return err
	}
	return nil
}
