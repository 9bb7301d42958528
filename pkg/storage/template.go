package storage

import (
	"context"

	"tg_sender/models"

	"github.com/lib/pq"
)

// ListTemplates возвращает шпаргалки в порядке создания.
func (db *DB) ListTemplates(ctx context.Context) ([]models.Template, error) {
	rows, err := db.Conn.QueryContext(ctx, "SELECT name, text, params FROM templates ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.Name, &t.Text, pq.Array(&t.Params)); err != nil {
			return nil, err
		}
		if t.Params == nil {
			t.Params = []string{}
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (db *DB) GetTemplate(ctx context.Context, name string) (*models.Template, error) {
	var t models.Template
	err := db.Conn.QueryRowContext(ctx, "SELECT name, text, params FROM templates WHERE name = $1", name).
		Scan(&t.Name, &t.Text, pq.Array(&t.Params))
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// SaveTemplate сохраняет шпаргалку. Без overwrite существующее имя даёт ErrTemplateExists.
func (db *DB) SaveTemplate(ctx context.Context, t models.Template, overwrite bool) error {
	if overwrite {
		_, err := db.Conn.ExecContext(ctx, `
              INSERT INTO templates (name, text, params) VALUES ($1, $2, $3)
              ON CONFLICT (name) DO UPDATE SET text = EXCLUDED.text, params = EXCLUDED.params`,
			t.Name, t.Text, pq.Array(nonNil(t.Params)),
		)
		return err
	}
	_, err := db.Conn.ExecContext(ctx,
		"INSERT INTO templates (name, text, params) VALUES ($1, $2, $3)",
		t.Name, t.Text, pq.Array(nonNil(t.Params)),
	)
	if uniqueViolation(err) {
		return ErrTemplateExists
	}
	return err
}

func (db *DB) DeleteTemplate(ctx context.Context, name string) error {
	res, err := db.Conn.ExecContext(ctx, "DELETE FROM templates WHERE name = $1", name)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
