package db

import "time"

// 列长度上限
const (
	AccountNameMaxLength = 50
	WeaponNameMaxLength  = 1000
	RemarkMaxLength      = 500
)

// Account 账户，拥有自己的武器和记录。
type Account struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	Name            string    `gorm:"column:name;type:varchar(50);not null" json:"name"`
	CreateTime      time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`
	LastUpdatedTime time.Time `gorm:"column:last_updated_time;autoUpdateTime" json:"last_updated_time"`
}
