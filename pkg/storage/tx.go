package storage

import (
	"context"
	"database/sql"
	"log"
)

// withTx выполняет fn в транзакции: фиксирует при успехе и откатывает при ошибке.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.Conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("[DB WARN] откат транзакции: %v", rbErr)
		}
		return err
	}
	return tx.Commit()
}
