package tags

import (
	"errors"
	"log"
	"net/http"

	"tg_sender/internal/httputil"
	"tg_sender/pkg/cheatsheet"
	"tg_sender/pkg/storage"

	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	DB *storage.DB
}

func NewHandler(db *storage.DB) *TagHandler {
	return &TagHandler{DB: db}
}

func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.DB.ListTags(c.Request.Context())
	if err != nil {
		log.Printf("[HANDLER ERROR] Список тегов: %v", err)
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (h *TagHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	name := cheatsheet.NormalizeTag(req.Name)
	if name == "" {
		httputil.RespondError(c, http.StatusBadRequest, "Введите название тега")
		return
	}

	err := h.DB.CreateTag(c.Request.Context(), name)
	if errors.Is(err, storage.ErrTagExists) {
		httputil.RespondError(c, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": name})
}

// Delete удаляет тег и снимает его со всех групп и тем.
func (h *TagHandler) Delete(c *gin.Context) {
	name := cheatsheet.NormalizeTag(c.Param("name"))
	err := h.DB.DeleteTag(c.Request.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		httputil.RespondError(c, http.StatusNotFound, "Tag not found")
		return
	}
	if err != nil {
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
