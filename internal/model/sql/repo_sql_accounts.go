package sql

import (
	"context"
	"errors"

	"stopbonus/internal/entity"
	"stopbonus/internal/entity/db"

	"gorm.io/gorm"
)

// CreateAccount inserts a new account with a trimmed, non-blank name.
func (r *GormRepository) CreateAccount(ctx context.Context, name string) (*db.Account, error) {
	const op = "CreateAccount"
	if r == nil || r.db == nil {
		return nil, entity.Storage(op, errNotInitialised)
	}

	name, err := entity.NormalizeName(op, "name", name, db.AccountNameMaxLength)
	if err != nil {
		return nil, err
	}

	account := &db.Account{Name: name}
	if err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Create(account).Error
	}); err != nil {
		return nil, entity.StorageOrSelf(op, err)
	}
	return account, nil
}

// GetAccount fetches an account by id.
func (r *GormRepository) GetAccount(ctx context.Context, id uint) (*db.Account, error) {
	const op = "GetAccount"
	if r == nil || r.db == nil {
		return nil, entity.Storage(op, errNotInitialised)
	}

	var account db.Account
	err := r.run(ctx, func(tx *gorm.DB) error {
		return findAccount(tx, op, id, &account)
	}, ReadOnly())
	if err != nil {
		return nil, entity.StorageOrSelf(op, err)
	}
	return &account, nil
}

// ListAccounts returns every account, oldest first.
func (r *GormRepository) ListAccounts(ctx context.Context) ([]db.Account, error) {
	const op = "ListAccounts"
	if r == nil || r.db == nil {
		return nil, entity.Storage(op, errNotInitialised)
	}

	var accounts []db.Account
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Order("create_time ASC, id ASC").Find(&accounts).Error
	}, ReadOnly())
	if err != nil {
		return nil, entity.StorageOrSelf(op, err)
	}
	return accounts, nil
}

// UpdateAccount 更新账户字段，last_updated_time 由 GORM 自动刷新。
func (r *GormRepository) UpdateAccount(ctx context.Context, id uint, updates entity.AccountUpdates) (*db.Account, error) {
	const op = "UpdateAccount"
	if r == nil || r.db == nil {
		return nil, entity.Storage(op, errNotInitialised)
	}
	if updates.Name != nil {
		name, err := entity.NormalizeName(op, "name", *updates.Name, db.AccountNameMaxLength)
		if err != nil {
			return nil, err
		}
		updates.Name = &name
	}

	var account db.Account
	err := r.run(ctx, func(tx *gorm.DB) error {
		if err := findAccount(tx, op, id, &account); err != nil {
			return err
		}
		if updates.IsEmpty() {
			return nil
		}
		if err := tx.Model(&account).Updates(updates.ToMap()).Error; err != nil {
			return err
		}
		return tx.First(&account, id).Error
	})
	if err != nil {
		return nil, entity.StorageOrSelf(op, err)
	}
	return &account, nil
}

// DeleteAccount removes the account together with its weapons, records and
// their association rows. A missing id is not an error.
func (r *GormRepository) DeleteAccount(ctx context.Context, id uint) error {
	const op = "DeleteAccount"
	if r == nil || r.db == nil {
		return entity.Storage(op, errNotInitialised)
	}
	if id == 0 {
		return nil
	}

	err := r.run(ctx, func(tx *gorm.DB) error {
		recordIDs := tx.Model(&db.BonusRecord{}).Select("id").Where("account_id = ?", id)
		if err := tx.Where("record_id IN (?)", recordIDs).Delete(&db.BonusRecordWeapon{}).Error; err != nil {
			return err
		}
		weaponIDs := tx.Model(&db.Weapon{}).Select("id").Where("account_id = ?", id)
		if err := tx.Where("weapon_id IN (?)", weaponIDs).Delete(&db.BonusRecordWeapon{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", id).Delete(&db.BonusRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", id).Delete(&db.Weapon{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db.Account{}, id).Error
	})
	return entity.StorageOrSelf(op, err)
}

func findAccount(tx *gorm.DB, op string, id uint, out *db.Account) error {
	if id == 0 {
		return entity.NotFound(op, "account", id)
	}
	if err := tx.First(out, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.NotFound(op, "account", id)
		}
		return err
	}
	return nil
}
