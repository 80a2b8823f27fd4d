package db

import "time"

// BonusRecord stores one logged bonus session.
//
// StartTime/EndTime are absolute instants and are always written in UTC so
// that lexical ordering in SQLite matches chronological ordering.
type BonusRecord struct {
	ID uint `gorm:"primarykey" json:"id"`

	AccountID uint     `gorm:"column:account_id;not null;index:idx_bonus_record_account_start,priority:1" json:"account_id"`
	Account   *Account `gorm:"foreignKey:AccountID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	StartTime time.Time     `gorm:"column:start_time;not null;index:idx_bonus_record_account_start,priority:2" json:"start_time"`
	EndTime   time.Time     `gorm:"column:end_time;not null" json:"end_time"`
	Duration  time.Duration `gorm:"column:duration;not null;default:0" json:"duration"`
	Score     uint          `gorm:"column:score;not null;default:0" json:"score"`
	Remark    string        `gorm:"column:remark;type:varchar(500);not null;default:''" json:"remark"`

	CreateTime      time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`
	LastUpdatedTime time.Time `gorm:"column:last_updated_time;autoUpdateTime" json:"last_updated_time"`

	Weapons []Weapon `gorm:"many2many:bonus_record_weapons;foreignKey:ID;joinForeignKey:RecordID;references:ID;joinReferences:WeaponID" json:"weapons"`
}

// BonusRecordWeapon 记录与武器的关联表，复合主键，两侧均级联删除。
type BonusRecordWeapon struct {
	RecordID uint         `gorm:"column:record_id;primaryKey" json:"record_id"`
	Record   *BonusRecord `gorm:"foreignKey:RecordID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	WeaponID uint         `gorm:"column:weapon_id;primaryKey;index" json:"weapon_id"`
	Weapon   *Weapon      `gorm:"foreignKey:WeaponID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
