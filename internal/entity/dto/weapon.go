package dto

import "time"

// WeaponView 武器的只读视图。
type WeaponView struct {
	ID              uint      `json:"id"`
	AccountID       uint      `json:"account_id"`
	Name            string    `json:"name"`
	UsageCount      int64     `json:"usage_count"`
	CreateTime      time.Time `json:"create_time"`
	LastUpdatedTime time.Time `json:"last_updated_time"`
}

func (v WeaponView) Key() uint { return v.ID }

func (v WeaponView) SameAs(other WeaponView) bool { return v.ID == other.ID }

// WeaponListResponse is the response for listing weapons.
type WeaponListResponse struct {
	Weapons []WeaponView `json:"weapons"`
}

// WeaponDetailResponse is the response for a single weapon.
type WeaponDetailResponse struct {
	Weapon WeaponView `json:"weapon"`
}
