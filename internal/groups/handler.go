// Package groups управляет сохранёнными получателями: группами и темами форумов.
package groups

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"tg_sender/internal/httputil"
	"tg_sender/models"
	"tg_sender/pkg/cheatsheet"
	"tg_sender/pkg/storage"
	"tg_sender/pkg/telegram/dialogs"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	DB *storage.DB
}

func NewHandler(db *storage.DB) *GroupHandler {
	return &GroupHandler{DB: db}
}

type recipientRequest struct {
	Name         string   `json:"name" binding:"required"`
	ClientNumber string   `json:"client_number"`
	Tags         []string `json:"tags"`
}

type overrideRequest struct {
	Text string `json:"text"`
}

// respondStorageError переводит ошибки хранилища в ответ.
func respondStorageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httputil.RespondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrGroupExists), errors.Is(err, storage.ErrTopicExists):
		httputil.RespondError(c, http.StatusConflict, err.Error())
	default:
		log.Printf("[HANDLER ERROR] %v", err)
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
	}
}

func groupID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Invalid group id")
		return 0, false
	}
	return id, true
}

// List возвращает группы; параметры ?tag= оставляют группы хотя бы с одним из тегов.
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.DB.ListGroups(c.Request.Context(), cheatsheet.NormalizeTags(c.QueryArray("tag")))
	if err != nil {
		respondStorageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// Create добавляет группу вручную по её ID.
func (h *GroupHandler) Create(c *gin.Context) {
	var req struct {
		recipientRequest
		ID         int64  `json:"id" binding:"required"`
		AccessHash int64  `json:"access_hash"`
		Username   string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Введите название и ID группы")
		return
	}
	kind, _, err := dialogs.UnmarkID(req.ID)
	if err != nil {
		httputil.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	g := models.Group{
		ID:           req.ID,
		Kind:         kind,
		AccessHash:   req.AccessHash,
		Name:         strings.TrimSpace(req.Name),
		Username:     strings.TrimPrefix(strings.TrimSpace(req.Username), "@"),
		ClientNumber: strings.TrimSpace(req.ClientNumber),
		Tags:         cheatsheet.NormalizeTags(req.Tags),
	}
	if err := h.DB.CreateGroup(c.Request.Context(), g); err != nil {
		respondStorageError(c, err)
		return
	}
	log.Printf("[HANDLER] Группа %s (%d) добавлена", g.Name, g.ID)
	c.JSON(http.StatusCreated, g)
}

func (h *GroupHandler) Update(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	var req recipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Введите название группы")
		return
	}
	err := h.DB.UpdateGroup(c.Request.Context(), models.Group{
		ID:           id,
		Name:         strings.TrimSpace(req.Name),
		ClientNumber: strings.TrimSpace(req.ClientNumber),
		Tags:         cheatsheet.NormalizeTags(req.Tags),
	})
	if err != nil {
		respondStorageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *GroupHandler) Delete(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	if err := h.DB.DeleteGroup(c.Request.Context(), id); err != nil {
		respondStorageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// SetOverride задаёт группе собственный текст шаблона.
func (h *GroupHandler) SetOverride(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	name := c.Param("name")
	if _, err := h.DB.GetTemplate(c.Request.Context(), name); err != nil {
		respondStorageError(c, err)
		return
	}
	if err := h.DB.SetGroupOverride(c.Request.Context(), id, name, strings.TrimRight(req.Text, " \n\t")); err != nil {
		respondStorageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
