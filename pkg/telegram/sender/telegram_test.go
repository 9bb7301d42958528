package sender

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gotd/td/bin"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

// fakeInvoker отвечает на запросы загрузки и отправки как сервер Telegram.
// Первые floods запросов отправки получают FLOOD_WAIT_1.
type fakeInvoker struct {
	mu        sync.Mutex
	floods    int
	nextID    int64
	attempts  int
	delivered []bin.Encoder
}

func (f *fakeInvoker) Invoke(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch input.(type) {
	case *tg.UploadSaveFilePartRequest:
		output.(*tg.BoolBox).Bool = &tg.BoolTrue{}
	case *tg.MessagesUploadMediaRequest:
		f.nextID++
		output.(*tg.MessageMediaBox).MessageMedia = &tg.MessageMediaDocument{
			Document: &tg.Document{ID: f.nextID, AccessHash: f.nextID * 10},
		}
	case *tg.MessagesSendMessageRequest, *tg.MessagesSendMediaRequest, *tg.MessagesSendMultiMediaRequest:
		f.attempts++
		if f.floods > 0 {
			f.floods--
			return tgerr.New(420, "FLOOD_WAIT_1")
		}
		f.delivered = append(f.delivered, input)
		output.(*tg.UpdatesBox).Updates = &tg.Updates{}
	default:
		return fmt.Errorf("неожиданный запрос %T", input)
	}
	return nil
}

func writeFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], []byte("содержимое "+name), 0o644); err != nil {
			t.Fatalf("не удалось создать файл: %v", err)
		}
	}
	return paths
}

// TestSendMediaAlbumFloodWait проверяет, что несколько файлов уходят одним альбомом
// и повтор после FLOOD_WAIT не дублирует уже отправленное.
func TestSendMediaAlbumFloodWait(t *testing.T) {
	waits := stubWait(t, nil)
	inv := &fakeInvoker{floods: 1}
	m := NewTGMessenger(tg.NewClient(inv))
	job := Job{
		Entries:     []Entry{{Kind: KindTopic, Name: "t", TopicID: 15, Message: "подпись", Peer: &tg.InputPeerChannel{ChannelID: 1, AccessHash: 2}}},
		Attachments: writeFiles(t, "a.txt", "b.txt"),
	}

	res := Run(context.Background(), job, m, nil)
	if res.Success != 1 || res.Failed != 0 {
		t.Fatalf("неверный итог: %+v", res)
	}
	if len(*waits) != 1 {
		t.Fatalf("ожидалось одно ожидание FLOOD_WAIT, получено %v", *waits)
	}
	if inv.attempts != 2 || len(inv.delivered) != 1 {
		t.Fatalf("ожидалась одна доставка из двух попыток, попыток %d, доставок %d", inv.attempts, len(inv.delivered))
	}

	req, ok := inv.delivered[0].(*tg.MessagesSendMultiMediaRequest)
	if !ok {
		t.Fatalf("файлы должны уходить альбомом, получено %T", inv.delivered[0])
	}
	if len(req.MultiMedia) != 2 {
		t.Fatalf("в альбоме должно быть 2 файла, получено %d", len(req.MultiMedia))
	}
	if req.MultiMedia[0].Message != "подпись" || req.MultiMedia[1].Message != "" {
		t.Errorf("подпись должна быть только у первого файла: %q / %q", req.MultiMedia[0].Message, req.MultiMedia[1].Message)
	}
	if req.MultiMedia[0].RandomID == req.MultiMedia[1].RandomID {
		t.Errorf("у файлов альбома одинаковый RandomID")
	}
	if _, ok := req.MultiMedia[0].Media.(*tg.InputMediaDocument); !ok {
		t.Errorf("текстовые файлы должны уходить документами, получено %T", req.MultiMedia[0].Media)
	}
	reply, ok := req.ReplyTo.(*tg.InputReplyToMessage)
	if !ok || reply.TopMsgID != 15 {
		t.Errorf("альбом должен уйти в тему 15: %+v", req.ReplyTo)
	}
}

// TestSendMediaSingleFile проверяет отправку одного файла обычным сообщением с подписью.
func TestSendMediaSingleFile(t *testing.T) {
	inv := &fakeInvoker{}
	m := NewTGMessenger(tg.NewClient(inv))
	paths := writeFiles(t, "doc.txt")

	err := m.SendMedia(context.Background(), &tg.InputPeerChat{ChatID: 5}, generalTopicID, paths, "текст")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(inv.delivered) != 1 {
		t.Fatalf("ожидалась одна отправка, получено %d", len(inv.delivered))
	}
	req, ok := inv.delivered[0].(*tg.MessagesSendMediaRequest)
	if !ok {
		t.Fatalf("ожидался messages.sendMedia, получено %T", inv.delivered[0])
	}
	if req.Message != "текст" {
		t.Errorf("неверная подпись: %q", req.Message)
	}
	if req.ReplyTo != nil {
		t.Errorf("в General ответ на тему не нужен: %+v", req.ReplyTo)
	}
	doc, ok := req.Media.(*tg.InputMediaUploadedDocument)
	if !ok || doc.MimeType != "text/plain" {
		t.Fatalf("ожидался документ text/plain, получено %+v", req.Media)
	}
}

// TestSendTextToTopic проверяет ответ на тему при отправке текста.
func TestSendTextToTopic(t *testing.T) {
	inv := &fakeInvoker{}
	m := NewTGMessenger(tg.NewClient(inv))

	if err := m.SendText(context.Background(), &tg.InputPeerChannel{ChannelID: 1}, 7, "привет"); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	req, ok := inv.delivered[0].(*tg.MessagesSendMessageRequest)
	if !ok || req.Message != "привет" {
		t.Fatalf("неверный запрос: %+v", inv.delivered[0])
	}
	reply, ok := req.ReplyTo.(*tg.InputReplyToMessage)
	if !ok || reply.ReplyToMsgID != 7 || reply.TopMsgID != 7 {
		t.Errorf("неверный ответ на тему: %+v", req.ReplyTo)
	}
}
