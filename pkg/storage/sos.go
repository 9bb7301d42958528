package storage

import (
	"context"

	"tg_sender/models"
)

// SaveSos сохраняет сообщение о критичном событии (например, потере авторизации)
// в таблице "Sos". Время добавляет сама БД через DEFAULT NOW().
func (db *DB) SaveSos(ctx context.Context, msg string) error {
	_, err := db.Conn.ExecContext(ctx, `INSERT INTO "Sos" (msg) VALUES ($1)`, msg)
	return err
}

// ListSos возвращает последние limit событий, новые первыми.
func (db *DB) ListSos(ctx context.Context, limit int) ([]models.Sos, error) {
	rows, err := db.Conn.QueryContext(ctx,
		`SELECT id, date_time, msg FROM "Sos" ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Sos{}
	for rows.Next() {
		var s models.Sos
		if err := rows.Scan(&s.ID, &s.DateTime, &s.Msg); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
