// Package templates хранит шпаргалки: тексты сообщений с параметрами [имя].
package templates

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"tg_sender/internal/httputil"
	"tg_sender/models"
	"tg_sender/pkg/cheatsheet"
	"tg_sender/pkg/storage"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	DB *storage.DB
}

func NewHandler(db *storage.DB) *TemplateHandler {
	return &TemplateHandler{DB: db}
}

func (h *TemplateHandler) List(c *gin.Context) {
	list, err := h.DB.ListTemplates(c.Request.Context())
	if err != nil {
		log.Printf("[HANDLER ERROR] Список шаблонов: %v", err)
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": list})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	t, err := h.DB.GetTemplate(c.Request.Context(), c.Param("name"))
	if errors.Is(err, storage.ErrNotFound) {
		httputil.RespondError(c, http.StatusNotFound, "Template not found")
		return
	}
	if err != nil {
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return
	}
	c.JSON(http.StatusOK, t)
}

// Save сохраняет шпаргалку. Существующее имя перезаписывается только при overwrite.
func (h *TemplateHandler) Save(c *gin.Context) {
	var req struct {
		Name      string   `json:"name"`
		Text      string   `json:"text"`
		Params    []string `json:"params"`
		Overwrite bool     `json:"overwrite"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	t := models.Template{
		Name:   strings.TrimSpace(req.Name),
		Text:   strings.TrimSpace(req.Text),
		Params: cheatsheet.NormalizeTags(req.Params),
	}
	if t.Text == "" {
		httputil.RespondError(c, http.StatusBadRequest, "Текст сообщения пуст")
		return
	}
	if t.Name == "" {
		httputil.RespondError(c, http.StatusBadRequest, "Введите название шаблона")
		return
	}

	err := h.DB.SaveTemplate(c.Request.Context(), t, req.Overwrite)
	if errors.Is(err, storage.ErrTemplateExists) {
		httputil.RespondError(c, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return
	}
	log.Printf("[HANDLER] Шаблон %q сохранён", t.Name)
	c.JSON(http.StatusOK, t)
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	err := h.DB.DeleteTemplate(c.Request.Context(), c.Param("name"))
	if errors.Is(err, storage.ErrNotFound) {
		httputil.RespondError(c, http.StatusNotFound, "Template not found")
		return
	}
	if err != nil {
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// NextParam предлагает имя для нового параметра.
func (h *TemplateHandler) NextParam(c *gin.Context) {
	var req struct {
		Existing []string `json:"existing"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": cheatsheet.NextParamName(req.Existing)})
}
