package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// statsQuery 解析 year/month/tz 查询参数。缺省的年月取所选时区下的当前时间；
// tz 为空时 loc 为 nil，由服务使用设置中的时区。
type statsQuery struct {
	year  int
	month time.Month
	loc   *time.Location
}

func (h *HTTPHandler) parseStatsQuery(c *gin.Context) (statsQuery, bool) {
	var q statsQuery

	if tz := strings.TrimSpace(c.Query("tz")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeInvalidTimezone, "unknown timezone", gin.H{"tz": tz})
			return q, false
		}
		q.loc = loc
	}

	nowLoc := q.loc
	if nowLoc == nil && h.settings != nil {
		nowLoc = h.settings.Location()
	}
	if nowLoc == nil {
		nowLoc = time.UTC
	}
	now := h.clock.Now().In(nowLoc)
	q.year, q.month = now.Year(), now.Month()

	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			BadRequest(c, ErrCodeInvalidRequest, "invalid year")
			return q, false
		}
		q.year = year
	}
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			BadRequest(c, ErrCodeInvalidRequest, "invalid month")
			return q, false
		}
		q.month = time.Month(month)
	}
	return q, true
}

func (h *HTTPHandler) DailyStats(c *gin.Context) {
	accountID, ok := parseID(c, "account")
	if !ok {
		return
	}
	q, ok := h.parseStatsQuery(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.svc.DailyStats(ctx, accountID, q.year, q.month, q.loc)
	if err != nil {
		respondError(c, err, "compute daily stats")
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) MonthlyStats(c *gin.Context) {
	accountID, ok := parseID(c, "account")
	if !ok {
		return
	}
	q, ok := h.parseStatsQuery(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.svc.MonthlyStats(ctx, accountID, q.year, q.loc)
	if err != nil {
		respondError(c, err, "compute monthly stats")
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) StatsOverview(c *gin.Context) {
	accountID, ok := parseID(c, "account")
	if !ok {
		return
	}
	q, ok := h.parseStatsQuery(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.svc.StatsOverview(ctx, accountID, q.year, q.month, q.loc)
	if err != nil {
		respondError(c, err, "compute stats overview")
		return
	}

	c.JSON(http.StatusOK, out)
}
