package model

import (
	"context"
	"time"

	"stopbonus/internal/entity"
	"stopbonus/internal/entity/db"
	"stopbonus/internal/entity/dto"
	"stopbonus/internal/model/sql"
	"stopbonus/internal/stats"
)

// Repository 定义数据库操作接口
//
// 所有方法都在一个事务中执行：ctx 中已有事务时加入该事务，否则各自开启一个。
type Repository interface {
	// 事务
	Transaction(ctx context.Context, fn func(ctx context.Context) error, opts ...sql.TxOption) error
	TransactionAsync(ctx context.Context, fn func(ctx context.Context) error, opts ...sql.TxOption) <-chan error

	// 账户
	CreateAccount(ctx context.Context, name string) (*db.Account, error)
	GetAccount(ctx context.Context, id uint) (*db.Account, error)
	ListAccounts(ctx context.Context) ([]db.Account, error)
	UpdateAccount(ctx context.Context, id uint, updates entity.AccountUpdates) (*db.Account, error)
	DeleteAccount(ctx context.Context, id uint) error

	// 武器
	CreateWeapon(ctx context.Context, accountID uint, name string) (*db.Weapon, error)
	GetWeapon(ctx context.Context, id uint) (*db.Weapon, error)
	ListWeapons(ctx context.Context, accountID uint, query string) ([]db.Weapon, error)
	UpdateWeapon(ctx context.Context, id uint, updates entity.WeaponUpdates) (*db.Weapon, error)
	DeleteWeapon(ctx context.Context, id uint) error

	// 记录
	CreateRecord(ctx context.Context, in dto.NewBonusRecord) (*db.BonusRecord, error)
	GetRecord(ctx context.Context, id uint) (*db.BonusRecord, error)
	ListRecords(ctx context.Context, accountID uint, rng *dto.TimeRange) ([]db.BonusRecord, error)
	DeleteRecord(ctx context.Context, id uint) error

	// 统计
	ListRecordSpans(ctx context.Context, accountID uint, from, to time.Time) ([]stats.Span, error)

	Close() error
}

var _ Repository = (*sql.GormRepository)(nil)
