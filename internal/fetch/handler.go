// Package fetch загружает группы и темы аккаунта из Telegram и импортирует
// выбранные в список получателей.
package fetch

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"tg_sender/internal/common"
	"tg_sender/internal/httputil"
	"tg_sender/models"
	"tg_sender/pkg/cheatsheet"
	"tg_sender/pkg/storage"
	"tg_sender/pkg/telegram/dialogs"
	"tg_sender/pkg/telegram/module"

	"github.com/gin-gonic/gin"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
)

// FetchHandler хранит результат последней загрузки, из которого импортируются группы и темы.
type FetchHandler struct {
	DB *storage.DB

	mu     sync.Mutex
	groups []models.FetchedGroup
	topics []models.FetchedTopic
}

func NewHandler(db *storage.DB) *FetchHandler {
	return &FetchHandler{DB: db}
}

type fetchedGroupView struct {
	models.FetchedGroup
	Saved bool `json:"saved"`
}

type fetchedTopicView struct {
	models.FetchedTopic
	Saved bool `json:"saved"`
}

// authorizedAccount возвращает активный аккаунт, если он уже вошёл в Telegram.
func (h *FetchHandler) authorizedAccount(c *gin.Context) (*models.Account, bool) {
	acc, ok := common.ActiveAccount(c, h.DB)
	if !ok {
		return nil, false
	}
	if !acc.IsAuthorized {
		httputil.RespondError(c, http.StatusPreconditionFailed, "Сначала авторизуйтесь")
		return nil, false
	}
	return acc, true
}

// FetchGroups загружает группы и каналы, в которых состоит аккаунт.
func (h *FetchHandler) FetchGroups(c *gin.Context) {
	acc, ok := h.authorizedAccount(c)
	if !ok {
		return
	}

	var groups []models.FetchedGroup
	err := common.RunLocked(c.Request.Context(), acc, "fetch groups", func(ctx context.Context) error {
		return module.WithClient(ctx, acc, h.DB, func(ctx context.Context, _ *telegram.Client, api *tg.Client) error {
			var err error
			groups, err = dialogs.GetUserGroups(ctx, api)
			return err
		})
	})
	if err != nil {
		log.Printf("[FETCH ERROR] Загрузка групп для %s: %v", acc.Phone, err)
		common.RespondTelegramError(c, err)
		return
	}

	h.mu.Lock()
	h.groups = groups
	h.topics = nil
	h.mu.Unlock()

	saved, err := h.savedGroupIDs(c.Request.Context())
	if err != nil {
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return
	}
	views := make([]fetchedGroupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, fetchedGroupView{FetchedGroup: g, Saved: saved[g.ID]})
	}

	log.Printf("[FETCH] Загружено групп: %d", len(groups))
	c.JSON(http.StatusOK, gin.H{"count": len(views), "groups": views})
}

// FetchTopics загружает темы всех форум-групп из последней загрузки.
// Ошибка отдельной группы не прерывает обход.
func (h *FetchHandler) FetchTopics(c *gin.Context) {
	h.mu.Lock()
	groups := append([]models.FetchedGroup(nil), h.groups...)
	h.mu.Unlock()
	if len(groups) == 0 {
		httputil.RespondError(c, http.StatusPreconditionFailed, "Сначала загрузите группы")
		return
	}

	acc, ok := h.authorizedAccount(c)
	if !ok {
		return
	}

	var (
		topics = []models.FetchedTopic{}
		failed = []string{}
	)
	err := common.RunLocked(c.Request.Context(), acc, "fetch topics", func(ctx context.Context) error {
		return module.WithClient(ctx, acc, h.DB, func(ctx context.Context, _ *telegram.Client, api *tg.Client) error {
			for _, g := range groups {
				if !g.Forum {
					continue
				}
				list, err := dialogs.GetGroupTopics(ctx, api, g)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					log.Printf("[FETCH WARN] Темы группы %s: %v", g.Name, err)
					failed = append(failed, g.Name)
					continue
				}
				topics = append(topics, list...)
			}
			return nil
		})
	})
	if err != nil {
		log.Printf("[FETCH ERROR] Загрузка тем для %s: %v", acc.Phone, err)
		common.RespondTelegramError(c, err)
		return
	}

	h.mu.Lock()
	h.topics = topics
	h.mu.Unlock()

	saved, err := h.DB.ListTopics(c.Request.Context(), nil)
	if err != nil {
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return
	}
	known := make(map[topicKey]bool, len(saved))
	for _, t := range saved {
		known[topicKey{t.GroupID, t.TopicID}] = true
	}
	views := make([]fetchedTopicView, 0, len(topics))
	for _, t := range topics {
		views = append(views, fetchedTopicView{FetchedTopic: t, Saved: known[topicKey{t.GroupID, t.TopicID}]})
	}

	log.Printf("[FETCH] Найдено тем: %d, групп с ошибкой: %d", len(topics), len(failed))
	c.JSON(http.StatusOK, gin.H{"count": len(views), "topics": views, "failed": failed})
}

type topicKey struct {
	groupID int64
	topicID int
}

func (h *FetchHandler) savedGroupIDs(ctx context.Context) (map[int64]bool, error) {
	saved, err := h.DB.ListGroups(ctx, nil)
	if err != nil {
		return nil, err
	}
	ids := make(map[int64]bool, len(saved))
	for _, g := range saved {
		ids[g.ID] = true
	}
	return ids, nil
}

type importItem struct {
	ID           int64  `json:"id"`
	GroupID      int64  `json:"group_id"`
	TopicID      int    `json:"topic_id"`
	ClientNumber string `json:"client_number"`
	Tag          string `json:"tag"`
}

func (it importItem) tags() []string {
	if tag := cheatsheet.NormalizeTag(it.Tag); tag != "" {
		return []string{tag}
	}
	return []string{}
}

// AddGroups импортирует выбранные группы из последней загрузки. Уже сохранённые пропускаются.
func (h *FetchHandler) AddGroups(c *gin.Context) {
	var req struct {
		Groups []importItem `json:"groups" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Выберите группы для добавления")
		return
	}

	h.mu.Lock()
	fetched := make(map[int64]models.FetchedGroup, len(h.groups))
	for _, g := range h.groups {
		fetched[g.ID] = g
	}
	h.mu.Unlock()

	var added, skipped int
	for _, it := range req.Groups {
		g, ok := fetched[it.ID]
		if !ok {
			log.Printf("[FETCH WARN] Группа %d отсутствует в последней загрузке", it.ID)
			skipped++
			continue
		}
		err := h.DB.CreateGroup(c.Request.Context(), models.Group{
			ID:           g.ID,
			Kind:         g.Kind,
			AccessHash:   g.AccessHash,
			Name:         g.Name,
			Username:     g.Username,
			ClientNumber: it.ClientNumber,
			Tags:         it.tags(),
		})
		if errors.Is(err, storage.ErrGroupExists) {
			skipped++
			continue
		}
		if err != nil {
			log.Printf("[FETCH ERROR] Не удалось добавить группу %s: %v", g.Name, err)
			httputil.RespondError(c, http.StatusInternalServerError, "DB error")
			return
		}
		added++
	}

	c.JSON(http.StatusOK, gin.H{"added": added, "skipped": skipped})
}

// AddTopics импортирует выбранные темы из последней загрузки. Уже сохранённые пропускаются.
func (h *FetchHandler) AddTopics(c *gin.Context) {
	var req struct {
		Topics []importItem `json:"topics" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Выберите темы для добавления")
		return
	}

	h.mu.Lock()
	fetched := make(map[topicKey]models.FetchedTopic, len(h.topics))
	for _, t := range h.topics {
		fetched[topicKey{t.GroupID, t.TopicID}] = t
	}
	h.mu.Unlock()

	var added, skipped int
	for _, it := range req.Topics {
		t, ok := fetched[topicKey{it.GroupID, it.TopicID}]
		if !ok {
			skipped++
			continue
		}
		err := h.DB.CreateTopic(c.Request.Context(), models.Topic{
			GroupID:      t.GroupID,
			TopicID:      t.TopicID,
			AccessHash:   t.AccessHash,
			Name:         t.Name,
			ClientNumber: it.ClientNumber,
			Tags:         it.tags(),
		})
		if errors.Is(err, storage.ErrTopicExists) {
			skipped++
			continue
		}
		if err != nil {
			log.Printf("[FETCH ERROR] Не удалось добавить тему %s: %v", t.Name, err)
			httputil.RespondError(c, http.StatusInternalServerError, "DB error")
			return
		}
		added++
	}

	c.JSON(http.StatusOK, gin.H{"added": added, "skipped": skipped})
}
