package storage

import (
	"context"

	"tg_sender/models"
)

// CreateProxy сохраняет прокси, чтобы его можно было привязать к аккаунту.
func (db *DB) CreateProxy(ctx context.Context, p models.Proxy) (*models.Proxy, error) {
	query := `
              INSERT INTO proxy (ip, port, login, password)
              VALUES ($1, $2, $3, $4)
              RETURNING id
       `
	err := db.Conn.QueryRowContext(ctx, query, p.IP, p.Port, p.Login, p.Password).Scan(&p.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProxyByID загружает прокси по идентификатору.
func (db *DB) GetProxyByID(ctx context.Context, id int) (*models.Proxy, error) {
	var p models.Proxy
	query := `
              SELECT id, ip, port, login, password
              FROM proxy
              WHERE id = $1
       `
	err := db.Conn.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.IP, &p.Port, &p.Login, &p.Password)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}
