package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

var (
	// ErrNotFound возвращается, когда запись отсутствует в БД.
	ErrNotFound = errors.New("запись не найдена")
	// ErrTagExists: тег с таким названием уже создан.
	ErrTagExists = errors.New("такой тег уже существует")
	// ErrGroupExists возвращается при повторном сохранении группы с тем же ID.
	ErrGroupExists = errors.New("группа уже добавлена")
	// ErrTopicExists: пара (группа, тема) уже сохранена.
	ErrTopicExists = errors.New("тема уже добавлена")
	// ErrTemplateExists возвращается, если шаблон уже есть, а перезапись не разрешена.
	ErrTemplateExists = errors.New("шаблон с таким именем уже существует")
)

type DB struct {
	Conn *sql.DB
}

func NewDB(conn *sql.DB) *DB {
	return &DB{Conn: conn}
}

// Migrate создаёт недостающие таблицы. Все выражения схемы идемпотентны,
// поэтому вызывается при каждом запуске.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Conn.ExecContext(ctx, schema); err != nil {
		log.Printf("[DB ERROR] Ошибка применения схемы: %v", err)
		return fmt.Errorf("миграция: %w", err)
	}
	log.Printf("[DB INFO] Схема применена")
	return nil
}

// notFound переводит sql.ErrNoRows в ErrNotFound, остальные ошибки не меняет.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// uniqueViolation сообщает, нарушено ли ограничение уникальности (код 23505).
func uniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
