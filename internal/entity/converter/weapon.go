package converter

import (
	"stopbonus/internal/entity/db"
	"stopbonus/internal/entity/dto"
)

type WeaponViewOption func(*dto.WeaponView)

// WithWeaponName overrides the projected name.
func WithWeaponName(name string) WeaponViewOption {
	return func(v *dto.WeaponView) { v.Name = name }
}

// WeaponToView 将 db.Weapon 转换为 dto.WeaponView。
func WeaponToView(w *db.Weapon, opts ...WeaponViewOption) dto.WeaponView {
	if w == nil {
		return dto.WeaponView{}
	}
	v := dto.WeaponView{
		ID:              w.ID,
		AccountID:       w.AccountID,
		Name:            w.Name,
		UsageCount:      w.UsageCount,
		CreateTime:      w.CreateTime.UTC(),
		LastUpdatedTime: w.LastUpdatedTime.UTC(),
	}
	for _, opt := range opts {
		opt(&v)
	}
	return v
}

// WeaponsToViews converts a slice of db.Weapon to views.
func WeaponsToViews(weapons []db.Weapon) []dto.WeaponView {
	views := make([]dto.WeaponView, len(weapons))
	for i := range weapons {
		views[i] = WeaponToView(&weapons[i])
	}
	return views
}
