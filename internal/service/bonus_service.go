package service

import (
	"context"
	"time"

	"stopbonus/internal/entity"
	"stopbonus/internal/entity/converter"
	"stopbonus/internal/entity/dto"
	"stopbonus/internal/model"
	"stopbonus/internal/model/sql"
	"stopbonus/internal/settings"
)

// BonusService 账户、武器、记录和统计的业务入口，所有返回值都是视图。
// 视图在事务内完成投影，事务结束后不再访问数据库。
type BonusService struct {
	repo  model.Repository
	zones settings.ZoneProvider
}

// NewBonusService 创建业务服务；zones 为空时按 UTC 统计。
func NewBonusService(repo model.Repository, zones settings.ZoneProvider) *BonusService {
	if zones == nil {
		zones = settings.FixedZone{Loc: time.UTC}
	}
	return &BonusService{repo: repo, zones: zones}
}

func (s *BonusService) readOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.repo.Transaction(ctx, fn, sql.ReadOnly())
}

// ListAccounts returns every account.
func (s *BonusService) ListAccounts(ctx context.Context) ([]dto.AccountView, error) {
	var views []dto.AccountView
	err := s.readOnly(ctx, func(ctx context.Context) error {
		accounts, err := s.repo.ListAccounts(ctx)
		if err != nil {
			return err
		}
		views = converter.AccountsToViews(accounts)
		return nil
	})
	return views, err
}

func (s *BonusService) CreateAccount(ctx context.Context, name string) (dto.AccountView, error) {
	var view dto.AccountView
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		account, err := s.repo.CreateAccount(ctx, name)
		if err != nil {
			return err
		}
		view = converter.AccountToView(account)
		return nil
	})
	return view, err
}

// RenameAccount 修改账户名称。
func (s *BonusService) RenameAccount(ctx context.Context, id uint, name string) (dto.AccountView, error) {
	var view dto.AccountView
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		account, err := s.repo.UpdateAccount(ctx, id, entity.AccountUpdates{Name: &name})
		if err != nil {
			return err
		}
		view = converter.AccountToView(account)
		return nil
	})
	return view, err
}

// DeleteAccount 删除账户及其全部武器和记录。
func (s *BonusService) DeleteAccount(ctx context.Context, id uint) error {
	return s.repo.DeleteAccount(ctx, id)
}

// ListWeapons 返回账户的武器，query 非空时按名称模糊匹配。
func (s *BonusService) ListWeapons(ctx context.Context, accountID uint, query string) ([]dto.WeaponView, error) {
	var views []dto.WeaponView
	err := s.readOnly(ctx, func(ctx context.Context) error {
		weapons, err := s.repo.ListWeapons(ctx, accountID, query)
		if err != nil {
			return err
		}
		views = converter.WeaponsToViews(weapons)
		return nil
	})
	return views, err
}

func (s *BonusService) CreateWeapon(ctx context.Context, accountID uint, name string) (dto.WeaponView, error) {
	var view dto.WeaponView
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		weapon, err := s.repo.CreateWeapon(ctx, accountID, name)
		if err != nil {
			return err
		}
		view = converter.WeaponToView(weapon)
		return nil
	})
	return view, err
}

func (s *BonusService) RenameWeapon(ctx context.Context, id uint, name string) (dto.WeaponView, error) {
	var view dto.WeaponView
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		weapon, err := s.repo.UpdateWeapon(ctx, id, entity.WeaponUpdates{Name: &name})
		if err != nil {
			return err
		}
		view = converter.WeaponToView(weapon)
		return nil
	})
	return view, err
}

// DeleteWeapon 删除武器，引用它的记录保留。
func (s *BonusService) DeleteWeapon(ctx context.Context, id uint) error {
	return s.repo.DeleteWeapon(ctx, id)
}

// ListRecords returns the account's records, newest first. rng may be nil.
func (s *BonusService) ListRecords(ctx context.Context, accountID uint, rng *dto.TimeRange) ([]dto.BonusRecordView, error) {
	var views []dto.BonusRecordView
	err := s.readOnly(ctx, func(ctx context.Context) error {
		records, err := s.repo.ListRecords(ctx, accountID, rng)
		if err != nil {
			return err
		}
		views = converter.RecordsToViews(records)
		return nil
	})
	return views, err
}

// GetRecord returns one record with its weapons.
func (s *BonusService) GetRecord(ctx context.Context, id uint) (dto.BonusRecordView, error) {
	var view dto.BonusRecordView
	err := s.readOnly(ctx, func(ctx context.Context) error {
		record, err := s.repo.GetRecord(ctx, id)
		if err != nil {
			return err
		}
		view = converter.RecordToView(record)
		return nil
	})
	return view, err
}

func (s *BonusService) CreateRecord(ctx context.Context, in dto.NewBonusRecord) (dto.BonusRecordView, error) {
	var view dto.BonusRecordView
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		record, err := s.repo.CreateRecord(ctx, in)
		if err != nil {
			return err
		}
		view = converter.RecordToView(record)
		return nil
	})
	return view, err
}

func (s *BonusService) DeleteRecord(ctx context.Context, id uint) error {
	return s.repo.DeleteRecord(ctx, id)
}
