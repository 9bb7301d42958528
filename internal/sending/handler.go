// Package sending готовит и запускает рассылку по выбранным группам и темам.
package sending

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"tg_sender/internal/httputil"
	"tg_sender/pkg/cheatsheet"
	"tg_sender/pkg/storage"
	"tg_sender/pkg/telegram/sender"

	"github.com/gin-gonic/gin"
)

type SendHandler struct {
	DB *storage.DB

	mu    sync.Mutex
	tasks map[string]*task
}

func NewHandler(db *storage.DB) *SendHandler {
	return &SendHandler{DB: db, tasks: make(map[string]*task)}
}

// recipientRef указывает получателя. Message, если передан, заменяет
// подготовленный текст (правка после предпросмотра).
type recipientRef struct {
	Kind    string  `json:"kind" binding:"required,oneof=group topic"`
	ID      int64   `json:"id"`
	GroupID int64   `json:"group_id"`
	TopicID int     `json:"topic_id"`
	Message *string `json:"message"`
}

// sendRequest задаёт получателей явно (Recipients) и/или тегами: Tags добавляет
// все сохранённые группы и темы хотя бы с одним из тегов.
type sendRequest struct {
	Recipients  []recipientRef     `json:"recipients" binding:"dive"`
	Tags        []string           `json:"tags"`
	Message     string             `json:"message"`
	Template    string             `json:"template"`
	Params      []cheatsheet.Param `json:"params"`
	Attachments []string           `json:"attachments"`
}

// recipient — данные получателя, нужные для подготовки текста.
type recipient struct {
	kind         string
	name         string
	clientNumber string
	peerID       int64
	topicID      int
	accessHash   int64
	overrides    map[string]string
}

// entryFor готовит текст для получателя: переопределение шаблона или общий текст,
// затем подстановка параметров. Правка из предпросмотра имеет приоритет.
func entryFor(r recipient, ref recipientRef, req sendRequest) sender.Entry {
	text := cheatsheet.Render(cheatsheet.Resolve(req.Message, req.Template, r.overrides), req.Params)
	if ref.Message != nil {
		text = *ref.Message
	}
	return sender.Entry{
		Kind:         r.kind,
		Name:         r.name,
		ClientNumber: r.clientNumber,
		PeerID:       r.peerID,
		TopicID:      r.topicID,
		Message:      text,
	}
}

// refKey однозначно задаёт получателя: для группы topicID равен 0.
type refKey struct {
	peerID  int64
	topicID int
}

func (r recipientRef) key() refKey {
	if r.Kind == sender.KindTopic {
		return refKey{r.GroupID, r.TopicID}
	}
	return refKey{r.ID, 0}
}

// expandTags дополняет явный список получателей группами и темами с тегами tags.
// Повторы отбрасываются, явные получатели сохраняют правку текста.
func (h *SendHandler) expandTags(ctx context.Context, refs []recipientRef, tags []string) ([]recipientRef, error) {
	tags = cheatsheet.NormalizeTags(tags)
	if len(tags) == 0 {
		return refs, nil
	}
	seen := make(map[refKey]bool, len(refs))
	for _, r := range refs {
		seen[r.key()] = true
	}
	add := func(r recipientRef) {
		if !seen[r.key()] {
			seen[r.key()] = true
			refs = append(refs, r)
		}
	}

	groups, err := h.DB.ListGroups(ctx, tags)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		add(recipientRef{Kind: sender.KindGroup, ID: g.ID})
	}
	topics, err := h.DB.ListTopics(ctx, tags)
	if err != nil {
		return nil, err
	}
	for _, t := range topics {
		add(recipientRef{Kind: sender.KindTopic, GroupID: t.GroupID, TopicID: t.TopicID})
	}
	return refs, nil
}

// baseText возвращает общий текст рассылки: введённый вручную или, если он пуст,
// текст выбранной шпаргалки.
func (h *SendHandler) baseText(ctx context.Context, req sendRequest) (string, error) {
	if strings.TrimSpace(req.Message) != "" || req.Template == "" {
		return req.Message, nil
	}
	t, err := h.DB.GetTemplate(ctx, req.Template)
	if err != nil {
		return "", fmt.Errorf("шаблон %q: %w", req.Template, err)
	}
	return t.Text, nil
}

// buildEntries загружает получателей из БД и готовит им тексты.
// Возвращает также известные access hash групп.
func (h *SendHandler) buildEntries(ctx context.Context, req sendRequest) ([]sender.Entry, map[int64]int64, error) {
	base, err := h.baseText(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	req.Message = base

	refs, err := h.expandTags(ctx, req.Recipients, req.Tags)
	if err != nil {
		return nil, nil, err
	}
	entries := make([]sender.Entry, 0, len(refs))
	hashes := make(map[int64]int64)
	for _, ref := range refs {
		var r recipient
		switch ref.Kind {
		case sender.KindGroup:
			g, err := h.DB.GetGroup(ctx, ref.ID)
			if err != nil {
				return nil, nil, fmt.Errorf("группа %d: %w", ref.ID, err)
			}
			r = recipient{
				kind:         sender.KindGroup,
				name:         g.Name,
				clientNumber: g.ClientNumber,
				peerID:       g.ID,
				accessHash:   g.AccessHash,
				overrides:    g.CustomTemplates,
			}
		case sender.KindTopic:
			t, err := h.DB.GetTopic(ctx, ref.GroupID, ref.TopicID)
			if err != nil {
				return nil, nil, fmt.Errorf("тема %d/%d: %w", ref.GroupID, ref.TopicID, err)
			}
			r = recipient{
				kind:         sender.KindTopic,
				name:         t.Name,
				clientNumber: t.ClientNumber,
				peerID:       t.GroupID,
				topicID:      t.TopicID,
				accessHash:   t.AccessHash,
				overrides:    t.CustomTemplates,
			}
		}
		if r.accessHash != 0 {
			hashes[r.peerID] = r.accessHash
		}
		entries = append(entries, entryFor(r, ref, req))
	}
	return entries, hashes, nil
}

// checkAttachments проверяет, что все вложения существуют и это обычные файлы.
func checkAttachments(paths []string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("вложение %s недоступно: %w", p, err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("вложение %s не является файлом", p)
		}
	}
	return nil
}

// bindRequest разбирает запрос и загружает получателей. При ошибке ответ уже отправлен.
func (h *SendHandler) bindRequest(c *gin.Context) (sendRequest, []sender.Entry, map[int64]int64, bool) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Некорректный запрос: "+err.Error())
		return req, nil, nil, false
	}
	if len(req.Recipients) == 0 && len(cheatsheet.NormalizeTags(req.Tags)) == 0 {
		httputil.RespondError(c, http.StatusBadRequest, sender.ErrNoRecipients.Error())
		return req, nil, nil, false
	}
	if err := checkAttachments(req.Attachments); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, err.Error())
		return req, nil, nil, false
	}
	entries, hashes, err := h.buildEntries(c.Request.Context(), req)
	if err == nil && len(entries) == 0 {
		httputil.RespondError(c, http.StatusBadRequest, "С выбранными тегами нет ни одной группы или темы")
		return req, nil, nil, false
	}
	if errors.Is(err, storage.ErrNotFound) {
		httputil.RespondError(c, http.StatusNotFound, err.Error())
		return req, nil, nil, false
	}
	if err != nil {
		log.Printf("[HANDLER ERROR] Подготовка рассылки: %v", err)
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return req, nil, nil, false
	}
	return req, entries, hashes, true
}

// Preview возвращает тексты, которые получит каждый получатель.
func (h *SendHandler) Preview(c *gin.Context) {
	req, entries, _, ok := h.bindRequest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "attachments": req.Attachments})
}
