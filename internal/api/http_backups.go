package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateBackup 立即导出一次快照。
func (h *HTTPHandler) CreateBackup(c *gin.Context) {
	if h.backup == nil {
		ServiceUnavailable(c, "backup storage not configured")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.backup.Create(ctx)
	if err != nil {
		respondError(c, err, "create backup")
		return
	}

	c.JSON(http.StatusCreated, result)
}
