package storage

import (
	"context"
	"database/sql"
	"log"

	"github.com/lib/pq"
)

// ListTags возвращает теги в порядке создания.
func (db *DB) ListTags(ctx context.Context) ([]string, error) {
	rows, err := db.Conn.QueryContext(ctx, "SELECT name FROM tags ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// CreateTag добавляет новый тег. Повтор названия даёт ErrTagExists.
func (db *DB) CreateTag(ctx context.Context, name string) error {
	_, err := db.Conn.ExecContext(ctx, "INSERT INTO tags (name) VALUES ($1)", name)
	if uniqueViolation(err) {
		return ErrTagExists
	}
	return err
}

// ensureTags создаёт недостающие теги, уже существующие пропускает.
func ensureTags(ctx context.Context, tx *sql.Tx, names []string) error {
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, "INSERT INTO tags (name) VALUES ($1) ON CONFLICT DO NOTHING", name); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTag удаляет тег и снимает его со всех групп и тем в одной транзакции.
func (db *DB) DeleteTag(ctx context.Context, name string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE name = $1", name)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE chat_groups SET tags = array_remove(tags, $1) WHERE tags && $2",
			name, pq.Array([]string{name}),
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE topics SET tags = array_remove(tags, $1) WHERE tags && $2",
			name, pq.Array([]string{name}),
		); err != nil {
			return err
		}
		log.Printf("[DB INFO] Тег %q удалён", name)
		return nil
	})
}
