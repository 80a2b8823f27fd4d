package dto

import "time"

// BonusRecordView 记录的只读视图，武器列表已经物化。
type BonusRecordView struct {
	ID              uint          `json:"id"`
	AccountID       uint          `json:"account_id"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	Duration        time.Duration `json:"duration"`
	Score           uint          `json:"score"`
	Remark          string        `json:"remark"`
	Weapons         []WeaponView  `json:"weapons"`
	CreateTime      time.Time     `json:"create_time"`
	LastUpdatedTime time.Time     `json:"last_updated_time"`
}

func (v BonusRecordView) Key() uint { return v.ID }

func (v BonusRecordView) SameAs(other BonusRecordView) bool { return v.ID == other.ID }

// NewBonusRecord 创建记录的输入参数。
//
// Duration 为空时按 EndTime - StartTime 计算。
type NewBonusRecord struct {
	AccountID uint           `json:"account_id" validate:"required"`
	StartTime time.Time      `json:"start_time" validate:"required"`
	EndTime   time.Time      `json:"end_time" validate:"required"`
	Duration  *time.Duration `json:"duration,omitempty"`
	Score     uint           `json:"score" validate:"min=1,max=10"`
	Remark    string         `json:"remark" validate:"max=500"`
	WeaponIDs []uint         `json:"weapon_ids,omitempty" validate:"dive,required"`
}

// TimeRange is a half-open [From, To) filter on record start time. A zero
// bound is open.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// BonusRecordListResponse is the response for listing records.
type BonusRecordListResponse struct {
	Records []BonusRecordView `json:"records"`
}

// BonusRecordDetailResponse is the response for a single record.
type BonusRecordDetailResponse struct {
	Record BonusRecordView `json:"record"`
}
