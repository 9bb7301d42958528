package accounts_auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"tg_sender/config"
	"tg_sender/internal/httputil"
	"tg_sender/models"
	"tg_sender/pkg/storage"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	DB *storage.DB
}

func NewHandler(db *storage.DB) *AccountHandler {
	return &AccountHandler{DB: db}
}

type settingsRequest struct {
	Phone     string   `json:"phone" binding:"required"`
	ApiID     int      `json:"api_id" binding:"required"`
	ApiHash   string   `json:"api_hash" binding:"required"`
	RateDelay *float64 `json:"rate_delay"`
	ProxyID   *int     `json:"proxy_id"`
}

// validate проверяет формат телефона и задержки, подставляя задержку по умолчанию.
func (r *settingsRequest) validate() error {
	r.Phone = strings.TrimSpace(r.Phone)
	r.ApiHash = strings.TrimSpace(r.ApiHash)
	if !strings.HasPrefix(r.Phone, "+") {
		return errors.New("Телефон должен начинаться с +")
	}
	if r.ApiID <= 0 {
		return errors.New("API ID должен быть положительным числом")
	}
	if r.RateDelay == nil {
		d := config.DefaultDelay()
		r.RateDelay = &d
	}
	if *r.RateDelay < 0 {
		return errors.New("Задержка должна быть неотрицательным числом")
	}
	return nil
}

// GetSettings возвращает текущие настройки подключения.
func (h *AccountHandler) GetSettings(c *gin.Context) {
	acc, err := h.DB.GetLastAccount(c.Request.Context())
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"rate_delay": config.DefaultDelay(), "is_authorized": false})
		return
	}
	if err != nil {
		log.Printf("[HANDLER ERROR] Не удалось получить настройки: %v", err)
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return
	}
	c.JSON(http.StatusOK, acc)
}

// SaveSettings сохраняет телефон, ключи API и задержку. Смена ключей сбрасывает авторизацию.
func (h *AccountHandler) SaveSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Заполните все поля")
		return
	}
	if err := req.validate(); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	if req.ProxyID != nil {
		if _, err := h.DB.GetProxyByID(ctx, *req.ProxyID); err != nil {
			httputil.RespondError(c, http.StatusBadRequest, "Proxy not found")
			return
		}
	}

	saved, err := h.DB.SaveAccount(ctx, models.Account{
		Phone:     req.Phone,
		ApiID:     req.ApiID,
		ApiHash:   req.ApiHash,
		RateDelay: *req.RateDelay,
		ProxyID:   req.ProxyID,
	})
	if err != nil {
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return
	}

	log.Printf("[HANDLER] Настройки сохранены для %s", saved.Phone)
	c.JSON(http.StatusOK, saved)
}

// CreateProxy сохраняет SOCKS5-прокси, который можно указать в настройках.
func (h *AccountHandler) CreateProxy(c *gin.Context) {
	var p models.Proxy
	if err := c.ShouldBindJSON(&p); err != nil || p.IP == "" || p.Port <= 0 || p.Port > 65535 {
		httputil.RespondError(c, http.StatusBadRequest, "Invalid proxy")
		return
	}
	created, err := h.DB.CreateProxy(c.Request.Context(), p)
	if err != nil {
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return
	}
	c.JSON(http.StatusOK, created)
}
