package converter

import (
	"stopbonus/internal/entity/db"
	"stopbonus/internal/entity/dto"
)

// AccountViewOption 覆盖视图中的个别字段。
type AccountViewOption func(*dto.AccountView)

// WithAccountName overrides the projected name.
func WithAccountName(name string) AccountViewOption {
	return func(v *dto.AccountView) { v.Name = name }
}

// AccountToView 将 db.Account 转换为 dto.AccountView。
func AccountToView(a *db.Account, opts ...AccountViewOption) dto.AccountView {
	if a == nil {
		return dto.AccountView{}
	}
	v := dto.AccountView{
		ID:              a.ID,
		Name:            a.Name,
		CreateTime:      a.CreateTime.UTC(),
		LastUpdatedTime: a.LastUpdatedTime.UTC(),
	}
	for _, opt := range opts {
		opt(&v)
	}
	return v
}

// AccountsToViews converts a slice of db.Account to views.
func AccountsToViews(accounts []db.Account) []dto.AccountView {
	views := make([]dto.AccountView, len(accounts))
	for i := range accounts {
		views[i] = AccountToView(&accounts[i])
	}
	return views
}
