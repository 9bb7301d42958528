package models

import "time"

// Sos хранит запись о критичном событии (потеря авторизации, FLOOD_WAIT).
type Sos struct {
	ID       int       `json:"id"`
	DateTime time.Time `json:"date_time"`
	Msg      string    `json:"msg"`
}
