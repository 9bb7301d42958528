package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestRouterAuth проверяет, что /health открыт, а остальные маршруты требуют токен.
func TestRouterAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := setupRouter(nil, "secret")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/health: ожидался код 200, получен %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tags", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("/tags без токена: ожидался код 401, получен %d", w.Code)
	}
}
