package sql

import (
	"context"
	"time"

	"stopbonus/internal/entity"
	"stopbonus/internal/entity/db"
	"stopbonus/internal/stats"

	"gorm.io/gorm"
)

// ListRecordSpans loads only start time and duration of the account's
// records whose start falls in [from, to).
func (r *GormRepository) ListRecordSpans(ctx context.Context, accountID uint, from, to time.Time) ([]stats.Span, error) {
	const op = "ListRecordSpans"
	if r == nil || r.db == nil {
		return nil, entity.Storage(op, errNotInitialised)
	}

	var rows []db.BonusRecord
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Model(&db.BonusRecord{}).
			Select("start_time", "duration").
			Where("account_id = ? AND start_time >= ? AND start_time < ?", accountID, from.UTC(), to.UTC()).
			Order("start_time ASC").
			Find(&rows).Error
	}, ReadOnly())
	if err != nil {
		return nil, entity.StorageOrSelf(op, err)
	}

	spans := make([]stats.Span, len(rows))
	for i, row := range rows {
		spans[i] = stats.Span{Start: row.StartTime, Duration: row.Duration}
	}
	return spans, nil
}
