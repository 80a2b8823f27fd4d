package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stopbonus/internal/backup"
	"stopbonus/internal/clock"
	"stopbonus/internal/service"
	"stopbonus/internal/settings"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	svc      *service.BonusService
	settings *settings.Store
	backup   *backup.Service
	clock    clock.Clock
}

// NewHTTPHandler 创建 HTTP 处理器实例；backupSvc 为空时备份接口返回 503。
func NewHTTPHandler(svc *service.BonusService, store *settings.Store, backupSvc *backup.Service, clk clock.Clock) *HTTPHandler {
	if clk == nil {
		clk = clock.System{}
	}
	return &HTTPHandler{
		svc:      svc,
		settings: store,
		backup:   backupSvc,
		clock:    clk,
	}
}

// RegisterRoutes 注册全部 API 路由
func (h *HTTPHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	apiGroup := r.Group("/api")

	accounts := apiGroup.Group("/accounts")
	accounts.GET("", h.ListAccounts)
	accounts.POST("", h.CreateAccount)
	accounts.PATCH("/:id", h.UpdateAccount)
	accounts.DELETE("/:id", h.DeleteAccount)
	accounts.GET("/:id/weapons", h.ListWeapons)
	accounts.POST("/:id/weapons", h.CreateWeapon)
	accounts.GET("/:id/records", h.ListRecords)
	accounts.POST("/:id/records", h.CreateRecord)
	accounts.GET("/:id/stats/daily", h.DailyStats)
	accounts.GET("/:id/stats/monthly", h.MonthlyStats)
	accounts.GET("/:id/stats/overview", h.StatsOverview)

	apiGroup.PATCH("/weapons/:id", h.UpdateWeapon)
	apiGroup.DELETE("/weapons/:id", h.DeleteWeapon)

	apiGroup.GET("/records/:id", h.GetRecord)
	apiGroup.DELETE("/records/:id", h.DeleteRecord)

	apiGroup.GET("/settings", h.GetSettings)
	apiGroup.PUT("/settings", h.UpdateSettings)
	apiGroup.GET("/settings/timezones", h.ListTimezones)

	apiGroup.POST("/backups", h.CreateBackup)
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// parseID 解析路径参数中的正整数 ID，失败时写入 400 响应。
func parseID(c *gin.Context, what string) (uint, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "invalid "+what+" id")
		return 0, false
	}
	return uint(id), true
}
