package sql

import (
	"context"
	"errors"
	"strings"

	"stopbonus/internal/entity"
	"stopbonus/internal/entity/db"

	"gorm.io/gorm"
)

// CreateWeapon inserts a weapon owned by accountID.
func (r *GormRepository) CreateWeapon(ctx context.Context, accountID uint, name string) (*db.Weapon, error) {
	const op = "CreateWeapon"
	if r == nil || r.db == nil {
		return nil, entity.Storage(op, errNotInitialised)
	}

	name, err := entity.NormalizeName(op, "name", name, db.WeaponNameMaxLength)
	if err != nil {
		return nil, err
	}

	weapon := &db.Weapon{AccountID: accountID, Name: name}
	err = r.run(ctx, func(tx *gorm.DB) error {
		var account db.Account
		if err := findAccount(tx, op, accountID, &account); err != nil {
			return err
		}
		return tx.Omit("Account").Create(weapon).Error
	})
	if err != nil {
		return nil, entity.StorageOrSelf(op, err)
	}
	return weapon, nil
}

// GetWeapon fetches a weapon by id, including its usage count.
func (r *GormRepository) GetWeapon(ctx context.Context, id uint) (*db.Weapon, error) {
	const op = "GetWeapon"
	if r == nil || r.db == nil {
		return nil, entity.Storage(op, errNotInitialised)
	}

	var weapon db.Weapon
	err := r.run(ctx, func(tx *gorm.DB) error {
		if err := findWeapon(tx, op, id, &weapon); err != nil {
			return err
		}
		weapons := []db.Weapon{weapon}
		if err := fillUsageCounts(tx, weapons); err != nil {
			return err
		}
		weapon = weapons[0]
		return nil
	}, ReadOnly())
	if err != nil {
		return nil, entity.StorageOrSelf(op, err)
	}
	return &weapon, nil
}

// ListWeapons returns the weapons of an account ordered by name. A non-empty
// query keeps only names containing it, case-insensitively.
func (r *GormRepository) ListWeapons(ctx context.Context, accountID uint, query string) ([]db.Weapon, error) {
	const op = "ListWeapons"
	if r == nil || r.db == nil {
		return nil, entity.Storage(op, errNotInitialised)
	}

	var weapons []db.Weapon
	err := r.run(ctx, func(tx *gorm.DB) error {
		q := tx.Where("account_id = ?", accountID)
		if needle := strings.TrimSpace(query); needle != "" {
			q = q.Where("LOWER(name) LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(needle))+"%")
		}
		if err := q.Order("name ASC, id ASC").Find(&weapons).Error; err != nil {
			return err
		}
		return fillUsageCounts(tx, weapons)
	}, ReadOnly())
	if err != nil {
		return nil, entity.StorageOrSelf(op, err)
	}
	return weapons, nil
}

// UpdateWeapon 更新武器字段。
func (r *GormRepository) UpdateWeapon(ctx context.Context, id uint, updates entity.WeaponUpdates) (*db.Weapon, error) {
	const op = "UpdateWeapon"
	if r == nil || r.db == nil {
		return nil, entity.Storage(op, errNotInitialised)
	}
	if updates.Name != nil {
		name, err := entity.NormalizeName(op, "name", *updates.Name, db.WeaponNameMaxLength)
		if err != nil {
			return nil, err
		}
		updates.Name = &name
	}

	var weapon db.Weapon
	err := r.run(ctx, func(tx *gorm.DB) error {
		if err := findWeapon(tx, op, id, &weapon); err != nil {
			return err
		}
		if updates.IsEmpty() {
			return nil
		}
		if err := tx.Model(&weapon).Updates(updates.ToMap()).Error; err != nil {
			return err
		}
		return tx.First(&weapon, id).Error
	})
	if err != nil {
		return nil, entity.StorageOrSelf(op, err)
	}
	return &weapon, nil
}

// DeleteWeapon removes a weapon and its association rows. Records that
// referenced it are kept.
func (r *GormRepository) DeleteWeapon(ctx context.Context, id uint) error {
	const op = "DeleteWeapon"
	if r == nil || r.db == nil {
		return entity.Storage(op, errNotInitialised)
	}
	if id == 0 {
		return nil
	}

	err := r.run(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("weapon_id = ?", id).Delete(&db.BonusRecordWeapon{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db.Weapon{}, id).Error
	})
	return entity.StorageOrSelf(op, err)
}

func findWeapon(tx *gorm.DB, op string, id uint, out *db.Weapon) error {
	if id == 0 {
		return entity.NotFound(op, "weapon", id)
	}
	if err := tx.First(out, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.NotFound(op, "weapon", id)
		}
		return err
	}
	return nil
}

// fillUsageCounts 统计每个武器被多少条记录引用。
func fillUsageCounts(tx *gorm.DB, weapons []db.Weapon) error {
	if len(weapons) == 0 {
		return nil
	}
	ids := make([]uint, len(weapons))
	for i := range weapons {
		ids[i] = weapons[i].ID
	}

	var rows []struct {
		WeaponID   uint
		UsageCount int64
	}
	if err := tx.Model(&db.BonusRecordWeapon{}).
		Select("weapon_id, COUNT(*) AS usage_count").
		Where("weapon_id IN ?", ids).
		Group("weapon_id").
		Scan(&rows).Error; err != nil {
		return err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.WeaponID] = row.UsageCount
	}
	for i := range weapons {
		weapons[i].UsageCount = counts[weapons[i].ID]
	}
	return nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return replacer.Replace(value)
}
