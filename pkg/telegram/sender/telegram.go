package sender

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
)

// В тему General сообщения уходят без ответа на тему.
const generalTopicID = 1

// TGMessenger отправляет сообщения через MTProto API аккаунта.
type TGMessenger struct {
	api *tg.Client
	up  *uploader.Uploader
}

func NewTGMessenger(api *tg.Client) *TGMessenger {
	return &TGMessenger{api: api, up: uploader.NewUploader(api)}
}

func (m *TGMessenger) SendText(ctx context.Context, peer tg.InputPeerClass, topicID int, text string) error {
	req := &tg.MessagesSendMessageRequest{
		Peer:     peer,
		Message:  text,
		RandomID: rand.Int63(),
	}
	if reply := replyTo(topicID); reply != nil {
		req.SetReplyTo(reply)
	}
	_, err := m.api.MessagesSendMessage(ctx, req)
	return err
}

// SendMedia отправляет один файл обычным сообщением, а несколько файлов одним
// альбомом. Подпись ставится к первому файлу. Альбом уходит одним запросом,
// поэтому повтор после FLOOD_WAIT не дублирует уже отправленные файлы.
func (m *TGMessenger) SendMedia(ctx context.Context, peer tg.InputPeerClass, topicID int, paths []string, caption string) error {
	if len(paths) == 0 {
		return nil
	}
	mimes := make([]*mimetype.MIME, len(paths))
	photos := true
	for i, path := range paths {
		mt, err := mimetype.DetectFile(path)
		if err != nil {
			return fmt.Errorf("вложение %s: %w", path, err)
		}
		mimes[i] = mt
		photos = photos && isPhoto(mt)
	}

	if len(paths) == 1 {
		media, err := m.uploadMedia(ctx, paths[0], mimes[0], photos)
		if err != nil {
			return err
		}
		req := &tg.MessagesSendMediaRequest{
			Peer:     peer,
			Media:    media,
			Message:  caption,
			RandomID: rand.Int63(),
		}
		if reply := replyTo(topicID); reply != nil {
			req.SetReplyTo(reply)
		}
		_, err = m.api.MessagesSendMedia(ctx, req)
		return err
	}

	// В альбоме фото нельзя смешивать с документами: если есть хоть один не-фото файл,
	// все файлы уходят документами.
	album := make([]tg.InputSingleMedia, 0, len(paths))
	for i, path := range paths {
		uploaded, err := m.uploadMedia(ctx, path, mimes[i], photos)
		if err != nil {
			return err
		}
		media, err := m.attachMedia(ctx, peer, uploaded)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		item := tg.InputSingleMedia{Media: media, RandomID: rand.Int63()}
		if i == 0 {
			item.Message = caption
		}
		album = append(album, item)
	}
	req := &tg.MessagesSendMultiMediaRequest{Peer: peer, MultiMedia: album}
	if reply := replyTo(topicID); reply != nil {
		req.SetReplyTo(reply)
	}
	_, err := m.api.MessagesSendMultiMedia(ctx, req)
	return err
}

// uploadMedia загружает файл. asPhoto отправляет его фото, иначе документом с исходным именем.
func (m *TGMessenger) uploadMedia(ctx context.Context, path string, mt *mimetype.MIME, asPhoto bool) (tg.InputMediaClass, error) {
	file, err := m.up.FromPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("загрузка %s: %w", filepath.Base(path), err)
	}
	return mediaFor(file, mt, filepath.Base(path), asPhoto), nil
}

// attachMedia регистрирует загруженный файл на сервере: в альбом принимаются
// только уже сохранённые фото и документы.
func (m *TGMessenger) attachMedia(ctx context.Context, peer tg.InputPeerClass, media tg.InputMediaClass) (tg.InputMediaClass, error) {
	res, err := m.api.MessagesUploadMedia(ctx, &tg.MessagesUploadMediaRequest{Peer: peer, Media: media})
	if err != nil {
		return nil, err
	}
	switch v := res.(type) {
	case *tg.MessageMediaPhoto:
		if p, ok := v.Photo.(*tg.Photo); ok {
			return &tg.InputMediaPhoto{ID: &tg.InputPhoto{ID: p.ID, AccessHash: p.AccessHash, FileReference: p.FileReference}}, nil
		}
	case *tg.MessageMediaDocument:
		if d, ok := v.Document.(*tg.Document); ok {
			return &tg.InputMediaDocument{ID: &tg.InputDocument{ID: d.ID, AccessHash: d.AccessHash, FileReference: d.FileReference}}, nil
		}
	}
	return nil, fmt.Errorf("неожиданный ответ uploadMedia: %T", res)
}

func isPhoto(mt *mimetype.MIME) bool {
	return mt.Is("image/jpeg") || mt.Is("image/png")
}

func mediaFor(file tg.InputFileClass, mt *mimetype.MIME, name string, asPhoto bool) tg.InputMediaClass {
	if asPhoto {
		return &tg.InputMediaUploadedPhoto{File: file}
	}
	return &tg.InputMediaUploadedDocument{
		File:     file,
		MimeType: mimeType(mt),
		Attributes: []tg.DocumentAttributeClass{
			&tg.DocumentAttributeFilename{FileName: name},
		},
	}
}

// mimeType отрезает параметры вроде "; charset=utf-8".
func mimeType(mt *mimetype.MIME) string {
	s, _, _ := strings.Cut(mt.String(), ";")
	return s
}

func replyTo(topicID int) *tg.InputReplyToMessage {
	if topicID <= generalTopicID {
		return nil
	}
	return &tg.InputReplyToMessage{ReplyToMsgID: topicID, TopMsgID: topicID}
}
