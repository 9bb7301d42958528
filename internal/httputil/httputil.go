package httputil

import "github.com/gin-gonic/gin"

// RespondError отвечает {"error": msg} и прерывает цепочку обработчиков.
func RespondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// RespondErrorWith добавляет к ответу об ошибке дополнительные поля,
// например признак того, что нужен пароль 2FA.
func RespondErrorWith(c *gin.Context, status int, msg string, extra gin.H) {
	body := gin.H{"error": msg}
	for k, v := range extra {
		if k != "error" {
			body[k] = v
		}
	}
	c.AbortWithStatusJSON(status, body)
}
