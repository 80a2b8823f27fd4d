package entity

// AccountUpdates 账户更新字段
type AccountUpdates struct {
	Name *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u AccountUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u AccountUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// WeaponUpdates 武器更新字段
type WeaponUpdates struct {
	Name *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u WeaponUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u WeaponUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
