package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"tg_sender/models"

	"github.com/lib/pq"
)

const groupColumns = "id, kind, access_hash, name, username, client_number, tags, custom_templates"

func scanGroup(row rowScanner) (*models.Group, error) {
	var (
		g         models.Group
		templates []byte
	)
	if err := row.Scan(
		&g.ID,
		&g.Kind,
		&g.AccessHash,
		&g.Name,
		&g.Username,
		&g.ClientNumber,
		pq.Array(&g.Tags),
		&templates,
	); err != nil {
		return nil, err
	}
	overrides, err := decodeOverrides(templates)
	if err != nil {
		return nil, fmt.Errorf("группа %d: %w", g.ID, err)
	}
	g.CustomTemplates = overrides
	if g.Tags == nil {
		g.Tags = []string{}
	}
	return &g, nil
}

// decodeOverrides разбирает JSONB со своими текстами шаблонов.
func decodeOverrides(raw []byte) (map[string]string, error) {
	overrides := map[string]string{}
	if len(raw) == 0 {
		return overrides, nil
	}
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("custom_templates: %w", err)
	}
	return overrides, nil
}

func encodeOverrides(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return json.Marshal(m)
}

// ListGroups возвращает сохранённые группы. Если переданы теги, остаются
// только группы, у которых есть хотя бы один из них.
func (db *DB) ListGroups(ctx context.Context, tags []string) ([]models.Group, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if len(tags) == 0 {
		rows, err = db.Conn.QueryContext(ctx, "SELECT "+groupColumns+" FROM chat_groups ORDER BY position")
	} else {
		rows, err = db.Conn.QueryContext(ctx,
			"SELECT "+groupColumns+" FROM chat_groups WHERE tags && $1 ORDER BY position",
			pq.Array(tags),
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

func (db *DB) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	g, err := scanGroup(db.Conn.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM chat_groups WHERE id = $1", id))
	if err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

// CreateGroup сохраняет группу и создаёт недостающие теги.
// Повторное добавление той же группы даёт ErrGroupExists.
func (db *DB) CreateGroup(ctx context.Context, g models.Group) error {
	templates, err := encodeOverrides(g.CustomTemplates)
	if err != nil {
		return err
	}
	if g.Kind == "" {
		g.Kind = models.GroupKindChannel
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureTags(ctx, tx, g.Tags); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
              INSERT INTO chat_groups (id, kind, access_hash, name, username, client_number, tags, custom_templates)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			g.ID, g.Kind, g.AccessHash, g.Name, g.Username, g.ClientNumber, pq.Array(nonNil(g.Tags)), templates,
		)
		if uniqueViolation(err) {
			return ErrGroupExists
		}
		return err
	})
}

// UpdateGroup меняет редактируемые пользователем поля: название, номер клиента и теги.
func (db *DB) UpdateGroup(ctx context.Context, g models.Group) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureTags(ctx, tx, g.Tags); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE chat_groups SET name = $1, client_number = $2, tags = $3 WHERE id = $4",
			g.Name, g.ClientNumber, pq.Array(nonNil(g.Tags)), g.ID,
		)
		if err != nil {
			return err
		}
		return expectAffected(res)
	})
}

func (db *DB) DeleteGroup(ctx context.Context, id int64) error {
	res, err := db.Conn.ExecContext(ctx, "DELETE FROM chat_groups WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// SetGroupOverride задаёт собственный текст шаблона для конкретной группы.
func (db *DB) SetGroupOverride(ctx context.Context, id int64, template, text string) error {
	res, err := db.Conn.ExecContext(ctx,
		"UPDATE chat_groups SET custom_templates = custom_templates || jsonb_build_object($1::text, $2::text) WHERE id = $3",
		template, text, id,
	)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// expectAffected превращает обновление без затронутых строк в ErrNotFound.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// SetGroupAccessHash сохраняет access hash, полученный при загрузке диалогов.
func (db *DB) SetGroupAccessHash(ctx context.Context, id, hash int64) error {
	_, err := db.Conn.ExecContext(ctx, "UPDATE chat_groups SET access_hash = $1 WHERE id = $2", hash, id)
	if err != nil {
		return err
	}
	_, err = db.Conn.ExecContext(ctx, "UPDATE topics SET access_hash = $1 WHERE group_id = $2", hash, id)
	return err
}
