package api

import (
	"net/http"
	"strings"
	"time"

	"stopbonus/internal/entity/dto"

	"github.com/gin-gonic/gin"
)

type createRecordRequest struct {
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time" binding:"required"`
	DurationSeconds *int64    `json:"duration_seconds"`
	Score           uint      `json:"score"`
	Remark          string    `json:"remark"`
	WeaponIDs       []uint    `json:"weapon_ids"`
}

// ListRecords 列出账户的记录，from/to 为 RFC3339 时间，过滤开始时间 [from, to)。
func (h *HTTPHandler) ListRecords(c *gin.Context) {
	accountID, ok := parseID(c, "account")
	if !ok {
		return
	}

	rng, ok := parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	records, err := h.svc.ListRecords(ctx, accountID, rng)
	if err != nil {
		respondError(c, err, "list records")
		return
	}
	if records == nil {
		records = []dto.BonusRecordView{}
	}

	c.JSON(http.StatusOK, dto.BonusRecordListResponse{Records: records})
}

func (h *HTTPHandler) GetRecord(c *gin.Context) {
	id, ok := parseID(c, "record")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	record, err := h.svc.GetRecord(ctx, id)
	if err != nil {
		respondError(c, err, "load record")
		return
	}

	c.JSON(http.StatusOK, dto.BonusRecordDetailResponse{Record: record})
}

func (h *HTTPHandler) CreateRecord(c *gin.Context) {
	accountID, ok := parseID(c, "account")
	if !ok {
		return
	}

	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	in := dto.NewBonusRecord{
		AccountID: accountID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Score:     req.Score,
		Remark:    req.Remark,
		WeaponIDs: req.WeaponIDs,
	}
	if req.DurationSeconds != nil {
		d := time.Duration(*req.DurationSeconds) * time.Second
		in.Duration = &d
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	record, err := h.svc.CreateRecord(ctx, in)
	if err != nil {
		respondError(c, err, "create record")
		return
	}

	c.JSON(http.StatusCreated, dto.BonusRecordDetailResponse{Record: record})
}

func (h *HTTPHandler) DeleteRecord(c *gin.Context) {
	id, ok := parseID(c, "record")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.DeleteRecord(ctx, id); err != nil {
		respondError(c, err, "delete record")
		return
	}

	c.Status(http.StatusNoContent)
}

func parseTimeRange(c *gin.Context) (*dto.TimeRange, bool) {
	rawFrom := strings.TrimSpace(c.Query("from"))
	rawTo := strings.TrimSpace(c.Query("to"))
	if rawFrom == "" && rawTo == "" {
		return nil, true
	}

	var rng dto.TimeRange
	if rawFrom != "" {
		from, err := time.Parse(time.RFC3339, rawFrom)
		if err != nil {
			BadRequest(c, ErrCodeInvalidRequest, "invalid from time")
			return nil, false
		}
		rng.From = from
	}
	if rawTo != "" {
		to, err := time.Parse(time.RFC3339, rawTo)
		if err != nil {
			BadRequest(c, ErrCodeInvalidRequest, "invalid to time")
			return nil, false
		}
		rng.To = to
	}
	return &rng, true
}
