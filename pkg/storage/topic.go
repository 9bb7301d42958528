package storage

import (
	"context"
	"database/sql"
	"fmt"

	"tg_sender/models"

	"github.com/lib/pq"
)

const topicColumns = "group_id, topic_id, access_hash, name, client_number, tags, custom_templates"

func scanTopic(row rowScanner) (*models.Topic, error) {
	var (
		t         models.Topic
		templates []byte
	)
	if err := row.Scan(&t.GroupID, &t.TopicID, &t.AccessHash, &t.Name, &t.ClientNumber, pq.Array(&t.Tags), &templates); err != nil {
		return nil, err
	}
	overrides, err := decodeOverrides(templates)
	if err != nil {
		return nil, fmt.Errorf("тема %d/%d: %w", t.GroupID, t.TopicID, err)
	}
	t.CustomTemplates = overrides
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

// ListTopics возвращает сохранённые темы, при необходимости отфильтрованные по тегам.
func (db *DB) ListTopics(ctx context.Context, tags []string) ([]models.Topic, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if len(tags) == 0 {
		rows, err = db.Conn.QueryContext(ctx, "SELECT "+topicColumns+" FROM topics ORDER BY position")
	} else {
		rows, err = db.Conn.QueryContext(ctx,
			"SELECT "+topicColumns+" FROM topics WHERE tags && $1 ORDER BY position",
			pq.Array(tags),
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	topics := []models.Topic{}
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, *t)
	}
	return topics, rows.Err()
}

func (db *DB) GetTopic(ctx context.Context, groupID int64, topicID int) (*models.Topic, error) {
	t, err := scanTopic(db.Conn.QueryRowContext(ctx,
		"SELECT "+topicColumns+" FROM topics WHERE group_id = $1 AND topic_id = $2",
		groupID, topicID,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// CreateTopic сохраняет тему. Повтор пары (группа, тема) даёт ErrTopicExists.
func (db *DB) CreateTopic(ctx context.Context, t models.Topic) error {
	templates, err := encodeOverrides(t.CustomTemplates)
	if err != nil {
		return err
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureTags(ctx, tx, t.Tags); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
              INSERT INTO topics (group_id, topic_id, access_hash, name, client_number, tags, custom_templates)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			t.GroupID, t.TopicID, t.AccessHash, t.Name, t.ClientNumber, pq.Array(nonNil(t.Tags)), templates,
		)
		if uniqueViolation(err) {
			return ErrTopicExists
		}
		return err
	})
}

func (db *DB) UpdateTopic(ctx context.Context, t models.Topic) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureTags(ctx, tx, t.Tags); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE topics SET name = $1, client_number = $2, tags = $3 WHERE group_id = $4 AND topic_id = $5",
			t.Name, t.ClientNumber, pq.Array(nonNil(t.Tags)), t.GroupID, t.TopicID,
		)
		if err != nil {
			return err
		}
		return expectAffected(res)
	})
}

func (db *DB) DeleteTopic(ctx context.Context, groupID int64, topicID int) error {
	res, err := db.Conn.ExecContext(ctx, "DELETE FROM topics WHERE group_id = $1 AND topic_id = $2", groupID, topicID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// SetTopicOverride задаёт собственный текст шаблона для темы.
func (db *DB) SetTopicOverride(ctx context.Context, groupID int64, topicID int, template, text string) error {
	res, err := db.Conn.ExecContext(ctx,
		"UPDATE topics SET custom_templates = custom_templates || jsonb_build_object($1::text, $2::text) WHERE group_id = $3 AND topic_id = $4",
		template, text, groupID, topicID,
	)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
