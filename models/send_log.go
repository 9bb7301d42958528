package models

import "time"

// Статусы попытки отправки.
const (
	SendStatusSent   = "sent"
	SendStatusFailed = "failed"
)

// SendLog фиксирует одну попытку доставки сообщения в рамках задачи отправки.
type SendLog struct {
	ID        int       `json:"id"`
	TaskID    string    `json:"task_id"`
	AccountID int       `json:"account_id"`
	Recipient string    `json:"recipient"`
	PeerID    int64     `json:"peer_id"`
	TopicID   int       `json:"topic_id,omitempty"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	DateTime  time.Time `json:"date_time"`
}
