package sql

import (
	"context"
	"errors"

	"stopbonus/internal/entity"
	"stopbonus/internal/entity/db"
	"stopbonus/internal/entity/dto"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateRecord validates the input and stores a record together with its
// weapon associations. Times are stored in UTC.
func (r *GormRepository) CreateRecord(ctx context.Context, in dto.NewBonusRecord) (*db.BonusRecord, error) {
	const op = "CreateRecord"
	if r == nil || r.db == nil {
		return nil, entity.Storage(op, errNotInitialised)
	}

	record, err := newRecord(op, in)
	if err != nil {
		return nil, err
	}
	weaponIDs := uniqueIDs(in.WeaponIDs)

	err = r.run(ctx, func(tx *gorm.DB) error {
		var account db.Account
		if err := findAccount(tx, op, in.AccountID, &account); err != nil {
			return err
		}

		var weapons []db.Weapon
		if len(weaponIDs) > 0 {
			if err := tx.Where("id IN ? AND account_id = ?", weaponIDs, in.AccountID).
				Order("id ASC").Find(&weapons).Error; err != nil {
				return err
			}
			if missing, ok := firstMissing(weaponIDs, weapons); ok {
				return entity.NotFound(op, "weapon", missing)
			}
		}

		if err := tx.Omit(clause.Associations).Create(record).Error; err != nil {
			return err
		}
		for _, w := range weapons {
			link := db.BonusRecordWeapon{RecordID: record.ID, WeaponID: w.ID}
			if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
				return err
			}
		}
		record.Weapons = weapons
		return nil
	})
	if err != nil {
		return nil, entity.StorageOrSelf(op, err)
	}
	return record, nil
}

// GetRecord fetches a record with its weapons.
func (r *GormRepository) GetRecord(ctx context.Context, id uint) (*db.BonusRecord, error) {
	const op = "GetRecord"
	if r == nil || r.db == nil {
		return nil, entity.Storage(op, errNotInitialised)
	}

	var record db.BonusRecord
	err := r.run(ctx, func(tx *gorm.DB) error {
		if id == 0 {
			return entity.NotFound(op, "record", id)
		}
		err := tx.Preload("Weapons", orderWeapons).First(&record, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.NotFound(op, "record", id)
		}
		return err
	}, ReadOnly())
	if err != nil {
		return nil, entity.StorageOrSelf(op, err)
	}
	return &record, nil
}

// ListRecords 返回账户下的记录，按创建时间倒序，武器一次性预加载。
// rng 为 nil 时不过滤；否则按开始时间 [From, To) 过滤，零值边界表示不限。
func (r *GormRepository) ListRecords(ctx context.Context, accountID uint, rng *dto.TimeRange) ([]db.BonusRecord, error) {
	const op = "ListRecords"
	if r == nil || r.db == nil {
		return nil, entity.Storage(op, errNotInitialised)
	}

	var records []db.BonusRecord
	err := r.run(ctx, func(tx *gorm.DB) error {
		q := tx.Where("account_id = ?", accountID)
		if rng != nil {
			if !rng.From.IsZero() {
				q = q.Where("start_time >= ?", rng.From.UTC())
			}
			if !rng.To.IsZero() {
				q = q.Where("start_time < ?", rng.To.UTC())
			}
		}
		return q.Preload("Weapons", orderWeapons).
			Order("create_time DESC, id DESC").
			Find(&records).Error
	}, ReadOnly())
	if err != nil {
		return nil, entity.StorageOrSelf(op, err)
	}
	return records, nil
}

// DeleteRecord removes a record and its association rows. A missing id is
// not an error.
func (r *GormRepository) DeleteRecord(ctx context.Context, id uint) error {
	const op = "DeleteRecord"
	if r == nil || r.db == nil {
		return entity.Storage(op, errNotInitialised)
	}
	if id == 0 {
		return nil
	}

	err := r.run(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("record_id = ?", id).Delete(&db.BonusRecordWeapon{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db.BonusRecord{}, id).Error
	})
	return entity.StorageOrSelf(op, err)
}

func newRecord(op string, in dto.NewBonusRecord) (*db.BonusRecord, error) {
	if err := entity.Validate(op, in); err != nil {
		return nil, err
	}
	if in.EndTime.Before(in.StartTime) {
		return nil, entity.Validation(op, "end_time", "end_time must not be before start_time")
	}

	duration := in.EndTime.Sub(in.StartTime)
	if in.Duration != nil {
		duration = *in.Duration
	}
	if duration < 0 {
		return nil, entity.Validation(op, "duration", "duration must not be negative")
	}

	return &db.BonusRecord{
		AccountID: in.AccountID,
		StartTime: in.StartTime.UTC(),
		EndTime:   in.EndTime.UTC(),
		Duration:  duration,
		Score:     in.Score,
		Remark:    in.Remark,
	}, nil
}

func firstMissing(want []uint, got []db.Weapon) (uint, bool) {
	found := make(map[uint]struct{}, len(got))
	for _, w := range got {
		found[w.ID] = struct{}{}
	}
	for _, id := range want {
		if _, ok := found[id]; !ok {
			return id, true
		}
	}
	return 0, false
}

func orderWeapons(tx *gorm.DB) *gorm.DB {
	return tx.Order("name ASC")
}
