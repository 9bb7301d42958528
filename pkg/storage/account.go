package storage

import (
	"context"
	"database/sql"
	"log"
	"time"

	"tg_sender/models"
)

const accountColumns = `
       a.id, a.phone, a.api_id, a.api_hash, a.rate_delay, a.phone_code_hash, a.is_authorized,
       a.proxy_id, a.floodwait_until,
       p.id, p.ip, p.port, p.login, p.password
`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanAccount читает аккаунт вместе с необязательным прокси из LEFT JOIN.
func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		account       models.Account
		proxyRef      sql.NullInt64
		proxyID       sql.NullInt64
		proxyIP       sql.NullString
		proxyPort     sql.NullInt64
		proxyLogin    sql.NullString
		proxyPassword sql.NullString
	)
	err := row.Scan(
		&account.ID,
		&account.Phone,
		&account.ApiID,
		&account.ApiHash,
		&account.RateDelay,
		&account.PhoneCodeHash,
		&account.IsAuthorized,
		&proxyRef,
		&account.FloodWait,
		&proxyID,
		&proxyIP,
		&proxyPort,
		&proxyLogin,
		&proxyPassword,
	)
	if err != nil {
		return nil, err
	}
	if proxyRef.Valid {
		ref := int(proxyRef.Int64)
		account.ProxyID = &ref
	}
	if proxyID.Valid {
		account.Proxy = &models.Proxy{
			ID:       int(proxyID.Int64),
			IP:       proxyIP.String,
			Port:     int(proxyPort.Int64),
			Login:    proxyLogin.String,
			Password: proxyPassword.String,
		}
	}
	return &account, nil
}

// SaveAccount создаёт аккаунт или обновляет настройки существующего (по телефону).
// Если изменились api_id или api_hash, авторизация сбрасывается.
func (db *DB) SaveAccount(ctx context.Context, account models.Account) (*models.Account, error) {
	query := `
              INSERT INTO accounts (phone, api_id, api_hash, rate_delay, proxy_id)
              VALUES ($1, $2, $3, $4, $5)
              ON CONFLICT (phone) DO UPDATE SET
                     api_id        = EXCLUDED.api_id,
                     api_hash      = EXCLUDED.api_hash,
                     rate_delay    = EXCLUDED.rate_delay,
                     proxy_id      = EXCLUDED.proxy_id,
                     is_authorized = accounts.is_authorized
                                     AND accounts.api_id = EXCLUDED.api_id
                                     AND accounts.api_hash = EXCLUDED.api_hash,
                     updated_at    = NOW()
              RETURNING id, is_authorized
       `
	err := db.Conn.QueryRowContext(
		ctx,
		query,
		account.Phone,
		account.ApiID,
		account.ApiHash,
		account.RateDelay,
		account.ProxyID,
	).Scan(&account.ID, &account.IsAuthorized)
	if err != nil {
		log.Printf("[DB ERROR] Ошибка при сохранении аккаунта %s: %v", account.Phone, err)
		return nil, err
	}

	log.Printf("[DB INFO] Аккаунт %s сохранён с ID=%d", account.Phone, account.ID)
	return &account, nil
}

// GetLastAccount возвращает аккаунт, чьи настройки сохраняли последними.
func (db *DB) GetLastAccount(ctx context.Context) (*models.Account, error) {
	query := `SELECT ` + accountColumns + `
              FROM accounts a
              LEFT JOIN proxy p ON a.proxy_id = p.id
              ORDER BY a.updated_at DESC, a.id DESC
              LIMIT 1`
	acc, err := scanAccount(db.Conn.QueryRowContext(ctx, query))
	if err != nil {
		return nil, notFound(err)
	}
	return acc, nil
}

// UpdatePhoneCodeHash сохраняет хеш отправленного кода для последующего входа.
func (db *DB) UpdatePhoneCodeHash(ctx context.Context, accountID int, hash string) error {
	_, err := db.Conn.ExecContext(ctx, "UPDATE accounts SET phone_code_hash = $1 WHERE id = $2", hash, accountID)
	return err
}

func (db *DB) MarkAccountAsAuthorized(ctx context.Context, accountID int) error {
	_, err := db.Conn.ExecContext(ctx,
		"UPDATE accounts SET is_authorized = true, phone_code_hash = '' WHERE id = $1",
		accountID,
	)
	return err
}

func (db *DB) MarkAccountAsUnauthorized(ctx context.Context, accountID int) error {
	_, err := db.Conn.ExecContext(ctx, "UPDATE accounts SET is_authorized = false WHERE id = $1", accountID)
	return err
}

// MarkFloodWait фиксирует время окончания флуд-ограничения для аккаунта.
func (db *DB) MarkFloodWait(ctx context.Context, accountID int, until time.Time) error {
	_, err := db.Conn.ExecContext(ctx, "UPDATE accounts SET floodwait_until = $1 WHERE id = $2", until, accountID)
	return err
}
