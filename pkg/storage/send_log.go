package storage

import (
	"context"

	"tg_sender/models"
)

// SaveSendLog записывает результат одной попытки отправки.
func (db *DB) SaveSendLog(ctx context.Context, e models.SendLog) error {
	_, err := db.Conn.ExecContext(ctx, `
              INSERT INTO send_log (task_id, account_id, recipient, peer_id, topic_id, status, error)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.TaskID, e.AccountID, e.Recipient, e.PeerID, e.TopicID, e.Status, e.Error,
	)
	return err
}

// ListSendLog возвращает журнал задачи в порядке отправки.
func (db *DB) ListSendLog(ctx context.Context, taskID string) ([]models.SendLog, error) {
	rows, err := db.Conn.QueryContext(ctx, `
              SELECT id, task_id, account_id, recipient, peer_id, topic_id, status, error, date_time
              FROM send_log
              WHERE task_id = $1
              ORDER BY id`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.SendLog{}
	for rows.Next() {
		var e models.SendLog
		if err := rows.Scan(&e.ID, &e.TaskID, &e.AccountID, &e.Recipient, &e.PeerID, &e.TopicID, &e.Status, &e.Error, &e.DateTime); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
