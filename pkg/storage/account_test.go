package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
)

func accountRows(data ...[]driver.Value) *fakeRows {
	return &fakeRows{
		columns: []string{
			"id", "phone", "api_id", "api_hash", "rate_delay", "phone_code_hash", "is_authorized",
			"proxy_id", "floodwait_until", "id", "ip", "port", "login", "password",
		},
		data: data,
	}
}

// TestGetLastAccountWithoutProxy проверяет, что при отсутствии прокси поле Proxy остаётся nil.
func TestGetLastAccountWithoutProxy(t *testing.T) {
	st := &fakeState{
		onQuery: func(query string, args []driver.NamedValue) (driver.Rows, error) {
			return accountRows([]driver.Value{
				int64(3), "+79990001122", int64(12345), "hash", float64(2.5), "", true,
				nil, nil, nil, nil, nil, nil, nil,
			}), nil
		},
	}
	db := openFake(t, st)

	acc, err := db.GetLastAccount(context.Background())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if acc.ID != 3 || acc.ApiID != 12345 || !acc.IsAuthorized {
		t.Errorf("неверные поля аккаунта: %+v", acc)
	}
	if acc.Proxy != nil || acc.ProxyID != nil {
		t.Errorf("прокси не ожидался: %+v", acc.Proxy)
	}
	if acc.Delay().Milliseconds() != 2500 {
		t.Errorf("неверная задержка: %v", acc.Delay())
	}
}

// TestGetLastAccountWithProxy проверяет заполнение прокси из LEFT JOIN.
func TestGetLastAccountWithProxy(t *testing.T) {
	st := &fakeState{
		onQuery: func(query string, args []driver.NamedValue) (driver.Rows, error) {
			return accountRows([]driver.Value{
				int64(3), "+79990001122", int64(12345), "hash", float64(10), "", false,
				int64(7), nil, int64(7), "10.0.0.1", int64(1080), "user", "pass",
			}), nil
		},
	}
	db := openFake(t, st)

	acc, err := db.GetLastAccount(context.Background())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if acc.Proxy == nil || acc.Proxy.IP != "10.0.0.1" || acc.Proxy.Port != 1080 {
		t.Fatalf("прокси заполнен неверно: %+v", acc.Proxy)
	}
	if acc.ProxyID == nil || *acc.ProxyID != 7 {
		t.Fatalf("неверный proxy_id: %v", acc.ProxyID)
	}
}

// TestGetLastAccountEmpty проверяет ErrNotFound, когда настройки ещё не сохранялись.
func TestGetLastAccountEmpty(t *testing.T) {
	st := &fakeState{
		onQuery: func(query string, args []driver.NamedValue) (driver.Rows, error) {
			return accountRows(), nil
		},
	}
	db := openFake(t, st)

	if _, err := db.GetLastAccount(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидалась ErrNotFound, получено %v", err)
	}
}
