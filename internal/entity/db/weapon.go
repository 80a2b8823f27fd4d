package db

import "time"

// Weapon 归属于某个账户的武器。删除账户时级联删除。
type Weapon struct {
	ID uint `gorm:"primarykey" json:"id"`

	AccountID uint     `gorm:"column:account_id;not null;index" json:"account_id"`
	Account   *Account `gorm:"foreignKey:AccountID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Name            string    `gorm:"column:name;type:varchar(1000);not null;index" json:"name"`
	CreateTime      time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`
	LastUpdatedTime time.Time `gorm:"column:last_updated_time;autoUpdateTime" json:"last_updated_time"`

	// 被多少条记录引用，仅查询时填充
	UsageCount int64 `gorm:"-" json:"usage_count,omitempty"`
}
