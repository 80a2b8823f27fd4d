package converter

import (
	"stopbonus/internal/entity/db"
	"stopbonus/internal/entity/dto"
)

type RecordViewOption func(*dto.BonusRecordView)

func WithRecordRemark(remark string) RecordViewOption {
	return func(v *dto.BonusRecordView) { v.Remark = remark }
}

func WithRecordScore(score uint) RecordViewOption {
	return func(v *dto.BonusRecordView) { v.Score = score }
}

// WithRecordWeapons replaces the materialised weapon list.
func WithRecordWeapons(weapons []dto.WeaponView) RecordViewOption {
	return func(v *dto.BonusRecordView) {
		v.Weapons = append([]dto.WeaponView(nil), weapons...)
	}
}

// RecordToView 将 db.BonusRecord 转换为 dto.BonusRecordView。
// Weapons 关系必须已经预加载，视图不持有任何延迟加载的句柄。
func RecordToView(r *db.BonusRecord, opts ...RecordViewOption) dto.BonusRecordView {
	if r == nil {
		return dto.BonusRecordView{}
	}
	v := dto.BonusRecordView{
		ID:              r.ID,
		AccountID:       r.AccountID,
		StartTime:       r.StartTime.UTC(),
		EndTime:         r.EndTime.UTC(),
		Duration:        r.Duration,
		Score:           r.Score,
		Remark:          r.Remark,
		Weapons:         WeaponsToViews(r.Weapons),
		CreateTime:      r.CreateTime.UTC(),
		LastUpdatedTime: r.LastUpdatedTime.UTC(),
	}
	for _, opt := range opts {
		opt(&v)
	}
	return v
}

// RecordsToViews converts a slice of db.BonusRecord to views.
func RecordsToViews(records []db.BonusRecord) []dto.BonusRecordView {
	views := make([]dto.BonusRecordView, len(records))
	for i := range records {
		views[i] = RecordToView(&records[i])
	}
	return views
}
