// Package sender рассылает подготовленные сообщения по группам и темам
// с паузой между отправками.
package sender

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gotd/td/tg"
)

// MaxAttachments — предел файлов в одном альбоме Telegram.
const MaxAttachments = 10

// Виды получателей.
const (
	KindGroup = "group"
	KindTopic = "topic"
)

var (
	ErrNoRecipients = errors.New("не выбрано ни одного получателя")
	ErrEmptyMessage = errors.New("сообщение не может быть пустым")
	// ErrTooManyAttachments: в один альбом Telegram принимает не больше MaxAttachments файлов.
	ErrTooManyAttachments = fmt.Errorf("вложений не может быть больше %d", MaxAttachments)
	// ErrPeerUnknown: нет access hash, и среди диалогов группа не нашлась.
	ErrPeerUnknown = errors.New("группа не найдена среди диалогов аккаунта")
)

// Entry — один получатель вместе с уже подготовленным текстом.
type Entry struct {
	Kind         string            `json:"kind"`
	Name         string            `json:"name"`
	ClientNumber string            `json:"client_number"`
	PeerID       int64             `json:"peer_id"`
	TopicID      int               `json:"topic_id,omitempty"`
	Message      string            `json:"message"`
	Peer         tg.InputPeerClass `json:"-"`
}

// Label возвращает подпись получателя для журнала.
func (e Entry) Label() string {
	client := e.ClientNumber
	if client == "" {
		client = "N/A"
	}
	return fmt.Sprintf("%s (клиент: %s)", e.Name, client)
}

// Job — разовая задача рассылки.
type Job struct {
	ID          string
	AccountID   int
	Entries     []Entry
	Attachments []string
	Delay       time.Duration
}

// Validate проверяет, что есть получатели и каждому есть что отправить.
func (j Job) Validate() error {
	if len(j.Entries) == 0 {
		return ErrNoRecipients
	}
	if j.Delay < 0 {
		return errors.New("задержка не может быть отрицательной")
	}
	if len(j.Attachments) > MaxAttachments {
		return ErrTooManyAttachments
	}
	if len(j.Attachments) > 0 {
		return nil
	}
	for _, e := range j.Entries {
		if strings.TrimSpace(e.Message) == "" {
			return fmt.Errorf("%w: %s", ErrEmptyMessage, e.Name)
		}
	}
	return nil
}
