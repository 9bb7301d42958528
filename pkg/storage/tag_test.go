package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"

	"github.com/lib/pq"
)

// TestDeleteTagRemovesFromGroupsAndTopics проверяет, что тег снимается со всех
// групп и тем в одной транзакции.
func TestDeleteTagRemovesFromGroupsAndTopics(t *testing.T) {
	st := &fakeState{}
	db := openFake(t, st)

	if err := db.DeleteTag(context.Background(), "vip"); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(st.execs) != 3 {
		t.Fatalf("ожидалось 3 запроса, получено %d", len(st.execs))
	}
	if !strings.Contains(st.execs[0], "DELETE FROM tags") {
		t.Errorf("первым должен удаляться сам тег: %s", st.execs[0])
	}
	if !strings.Contains(st.execs[1], "chat_groups") || !strings.Contains(st.execs[1], "array_remove") {
		t.Errorf("тег не снимается с групп: %s", st.execs[1])
	}
	if !strings.Contains(st.execs[2], "topics") || !strings.Contains(st.execs[2], "array_remove") {
		t.Errorf("тег не снимается с тем: %s", st.execs[2])
	}
	if !st.committed || st.rolledBack {
		t.Fatalf("транзакция должна быть зафиксирована")
	}
}

// TestDeleteTagNotFound проверяет, что удаление несуществующего тега откатывает транзакцию.
func TestDeleteTagNotFound(t *testing.T) {
	st := &fakeState{
		onExec: func(query string, args []driver.NamedValue) (driver.Result, error) {
			return fakeResult{affected: 0}, nil
		},
	}
	db := openFake(t, st)

	err := db.DeleteTag(context.Background(), "нет")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидалась ErrNotFound, получено %v", err)
	}
	if !st.rolledBack {
		t.Fatalf("транзакция должна быть отменена")
	}
	if len(st.execs) != 1 {
		t.Fatalf("после неудачи не должно быть других запросов, получено %d", len(st.execs))
	}
}

// TestCreateTagDuplicate проверяет перевод нарушения уникальности в ErrTagExists.
func TestCreateTagDuplicate(t *testing.T) {
	st := &fakeState{
		onExec: func(query string, args []driver.NamedValue) (driver.Result, error) {
			return nil, &pq.Error{Code: "23505"}
		},
	}
	db := openFake(t, st)

	if err := db.CreateTag(context.Background(), "vip"); !errors.Is(err, ErrTagExists) {
		t.Fatalf("ожидалась ErrTagExists, получено %v", err)
	}
}

// TestListTagsOrder проверяет, что теги возвращаются в порядке строк БД.
func TestListTagsOrder(t *testing.T) {
	st := &fakeState{
		onQuery: func(query string, args []driver.NamedValue) (driver.Rows, error) {
			return &fakeRows{columns: []string{"name"}, data: [][]driver.Value{{"b"}, {"a"}}}, nil
		},
	}
	db := openFake(t, st)

	tags, err := db.ListTags(context.Background())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(tags) != 2 || tags[0] != "b" || tags[1] != "a" {
		t.Fatalf("неверный список тегов: %v", tags)
	}
	if !strings.Contains(st.queries[0], "ORDER BY position") {
		t.Errorf("теги должны сортироваться по порядку создания: %s", st.queries[0])
	}
}
