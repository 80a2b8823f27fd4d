package api

import (
	"net/http"

	"stopbonus/internal/entity/dto"
	"stopbonus/internal/settings"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) GetSettings(c *gin.Context) {
	if h.settings == nil {
		ServiceUnavailable(c, "settings not available")
		return
	}
	c.JSON(http.StatusOK, h.settings.Get())
}

// UpdateSettings 修改统计使用的时区，立即对后续统计生效。
func (h *HTTPHandler) UpdateSettings(c *gin.Context) {
	if h.settings == nil {
		ServiceUnavailable(c, "settings not available")
		return
	}

	var req dto.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	if err := h.settings.SetTimezone(req.Timezone); err != nil {
		respondError(c, err, "update settings")
		return
	}

	c.JSON(http.StatusOK, h.settings.Get())
}

func (h *HTTPHandler) ListTimezones(c *gin.Context) {
	c.JSON(http.StatusOK, dto.TimezoneListResponse{Timezones: settings.AvailableTimezones()})
}
