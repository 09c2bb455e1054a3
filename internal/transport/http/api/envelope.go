package apihttp

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"netscope/internal/advisor"
	"netscope/internal/logger"

	"github.com/gin-gonic/gin"
)

// envelope 是所有 /api 响应的统一外层结构。
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Warning string `json:"warning,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondOK(c *gin.Context, data any, warning string) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Warning: warning})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Message: message})
}

// respondFailure maps advisor and storage errors to a status code.
func respondFailure(c *gin.Context, op string, err error) {
	if errors.Is(err, advisor.ErrInvalidOrigin) {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	logger.Errorf("[api] %s failed ip=%s err=%v", op, c.ClientIP(), err)
	respondError(c, http.StatusInternalServerError, op+" failed: "+err.Error())
}

func queryInt(c *gin.Context, key string, def, max int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
