package models

import (
	"database/sql"
	"time"
)

// Account — учётные данные Telegram, с которыми работает приложение.
// Активным считается последний сохранённый аккаунт.
type Account struct {
	ID            int          `json:"id"`
	Phone         string       `json:"phone"`
	ApiID         int          `json:"api_id"`
	ApiHash       string       `json:"api_hash"`
	RateDelay     float64      `json:"rate_delay"` // Пауза между отправками, в секундах
	IsAuthorized  bool         `json:"is_authorized"`
	PhoneCodeHash string       `json:"-"`
	ProxyID       *int         `json:"proxy_id"`
	Proxy         *Proxy       `json:"proxy,omitempty"`
	FloodWait     sql.NullTime `json:"-"`
}

// Delay возвращает паузу между отправками в виде time.Duration.
func (a Account) Delay() time.Duration {
	return time.Duration(a.RateDelay * float64(time.Second))
}

// Configured сообщает, заполнены ли все поля, нужные для подключения.
func (a Account) Configured() bool {
	return a.ApiID != 0 && a.ApiHash != "" && a.Phone != ""
}
