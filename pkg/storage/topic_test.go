package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"

	"tg_sender/models"

	"github.com/lib/pq"
)

func topicRows(data ...[]driver.Value) *fakeRows {
	return &fakeRows{
		columns: []string{"group_id", "topic_id", "access_hash", "name", "client_number", "tags", "custom_templates"},
		data:    data,
	}
}

// TestListTopicsFilterByTags проверяет фильтр по тегам и разбор строк тем.
func TestListTopicsFilterByTags(t *testing.T) {
	var gotArg any
	st := &fakeState{
		onQuery: func(query string, args []driver.NamedValue) (driver.Rows, error) {
			if len(args) == 1 {
				gotArg = args[0].Value
			}
			return topicRows(
				[]driver.Value{int64(-1000000000010), int64(5), int64(77), "Новости", "3", []byte("{vip}"), []byte(`{"promo":"Свой текст"}`)},
			), nil
		},
	}
	db := openFake(t, st)

	topics, err := db.ListTopics(context.Background(), []string{"vip"})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if !strings.Contains(st.queries[0], "FROM topics WHERE tags && $1") {
		t.Errorf("в запросе нет фильтра по тегам: %s", st.queries[0])
	}
	if gotArg != "{\"vip\"}" {
		t.Errorf("неверный аргумент фильтра: %v", gotArg)
	}
	if len(topics) != 1 {
		t.Fatalf("ожидалась одна тема, получено %d", len(topics))
	}
	tp := topics[0]
	if tp.GroupID != -1000000000010 || tp.TopicID != 5 || tp.AccessHash != 77 || tp.ClientNumber != "3" {
		t.Errorf("неверные поля темы: %+v", tp)
	}
	if len(tp.Tags) != 1 || tp.Tags[0] != "vip" || tp.CustomTemplates["promo"] != "Свой текст" {
		t.Errorf("неверные теги или шаблоны: %+v", tp)
	}
}

func TestListTopicsBrokenRow(t *testing.T) {
	st := &fakeState{
		onQuery: func(query string, args []driver.NamedValue) (driver.Rows, error) {
			return topicRows(
				[]driver.Value{int64(-10), int64(5), int64(0), "t", "", []byte("{}"), []byte("[1,2]")},
			), nil
		},
	}
	db := openFake(t, st)

	if _, err := db.ListTopics(context.Background(), nil); err == nil {
		t.Fatalf("ожидалась ошибка разбора шаблонов темы")
	}
}

// TestCreateTopicDuplicate проверяет ErrTopicExists для уже сохранённой пары (группа, тема).
func TestCreateTopicDuplicate(t *testing.T) {
	st := &fakeState{
		onExec: func(query string, args []driver.NamedValue) (driver.Result, error) {
			if strings.Contains(query, "INSERT INTO topics") {
				return nil, &pq.Error{Code: "23505"}
			}
			return fakeResult{affected: 1}, nil
		},
	}
	db := openFake(t, st)

	err := db.CreateTopic(context.Background(), models.Topic{GroupID: -10, TopicID: 5, Name: "t", Tags: []string{"vip"}})
	if !errors.Is(err, ErrTopicExists) {
		t.Fatalf("ожидалась ErrTopicExists, получено %v", err)
	}
	if !st.rolledBack || st.committed {
		t.Fatalf("транзакция должна быть отменена")
	}
}

func TestCreateTopicStoresAccessHash(t *testing.T) {
	st := &fakeState{}
	db := openFake(t, st)

	err := db.CreateTopic(context.Background(), models.Topic{GroupID: -10, TopicID: 5, AccessHash: 42, Name: "t"})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(st.execs) != 1 {
		t.Fatalf("без тегов ожидался один запрос, получено %d", len(st.execs))
	}
	if st.execArgs[0][2].Value != int64(42) {
		t.Errorf("access hash не передан: %v", st.execArgs[0][2].Value)
	}
}

// TestSetTopicOverride проверяет запись своего текста шаблона и ErrNotFound для неизвестной темы.
func TestSetTopicOverride(t *testing.T) {
	affected := int64(1)
	st := &fakeState{
		onExec: func(query string, args []driver.NamedValue) (driver.Result, error) {
			return fakeResult{affected: affected}, nil
		},
	}
	db := openFake(t, st)

	if err := db.SetTopicOverride(context.Background(), -10, 5, "promo", "Свой текст"); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if !strings.Contains(st.execs[0], "jsonb_build_object") {
		t.Errorf("шаблон должен добавляться в JSONB: %s", st.execs[0])
	}
	args := st.execArgs[0]
	if args[0].Value != "promo" || args[1].Value != "Свой текст" || args[2].Value != int64(-10) || args[3].Value != int64(5) {
		t.Errorf("неверные аргументы: %+v", args)
	}

	affected = 0
	if err := db.SetTopicOverride(context.Background(), -10, 6, "promo", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидалась ErrNotFound, получено %v", err)
	}
}
