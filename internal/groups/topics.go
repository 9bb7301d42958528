package groups

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"tg_sender/internal/httputil"
	"tg_sender/models"
	"tg_sender/pkg/cheatsheet"

	"github.com/gin-gonic/gin"
)

func topicKey(c *gin.Context) (int64, int, bool) {
	groupID, err := strconv.ParseInt(c.Param("group_id"), 10, 64)
	if err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Invalid group id")
		return 0, 0, false
	}
	topicID, err := strconv.Atoi(c.Param("topic_id"))
	if err != nil || topicID <= 0 {
		httputil.RespondError(c, http.StatusBadRequest, "Invalid topic id")
		return 0, 0, false
	}
	return groupID, topicID, true
}

func (h *GroupHandler) ListTopics(c *gin.Context) {
	topics, err := h.DB.ListTopics(c.Request.Context(), cheatsheet.NormalizeTags(c.QueryArray("tag")))
	if err != nil {
		respondStorageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// CreateTopic добавляет тему вручную. Access hash берётся из сохранённой группы, если она есть.
func (h *GroupHandler) CreateTopic(c *gin.Context) {
	var req struct {
		recipientRequest
		GroupID int64 `json:"group_id" binding:"required"`
		TopicID int   `json:"topic_id" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Введите название, ID группы и ID темы")
		return
	}

	t := models.Topic{
		GroupID:      req.GroupID,
		TopicID:      req.TopicID,
		Name:         strings.TrimSpace(req.Name),
		ClientNumber: strings.TrimSpace(req.ClientNumber),
		Tags:         cheatsheet.NormalizeTags(req.Tags),
	}
	if g, err := h.DB.GetGroup(c.Request.Context(), req.GroupID); err == nil {
		t.AccessHash = g.AccessHash
	}
	if err := h.DB.CreateTopic(c.Request.Context(), t); err != nil {
		respondStorageError(c, err)
		return
	}
	log.Printf("[HANDLER] Тема %s (%d/%d) добавлена", t.Name, t.GroupID, t.TopicID)
	c.JSON(http.StatusCreated, t)
}

func (h *GroupHandler) UpdateTopic(c *gin.Context) {
	groupID, topicID, ok := topicKey(c)
	if !ok {
		return
	}
	var req recipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Введите название темы")
		return
	}
	err := h.DB.UpdateTopic(c.Request.Context(), models.Topic{
		GroupID:      groupID,
		TopicID:      topicID,
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

func (h *GroupHandler) DeleteTopic(c *gin.Context) {
	groupID, topicID, ok := topicKey(c)
	if !ok {
		return
	}
	if err := h.DB.DeleteTopic(c.Request.Context(), groupID, topicID); err != nil {
		respondStorageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *GroupHandler) SetTopicOverride(c *gin.Context) {
	groupID, topicID, ok := topicKey(c)
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
	if err := h.DB.SetTopicOverride(c.Request.Context(), groupID, topicID, name, strings.TrimRight(req.Text, " \n\t")); err != nil {
		respondStorageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
