package dto

import "time"

// AccountView 账户的只读视图。
type AccountView struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	CreateTime      time.Time `json:"create_time"`
	LastUpdatedTime time.Time `json:"last_updated_time"`
}

// Key 返回用于相等比较和哈希的标识。
func (v AccountView) Key() uint { return v.ID }

// SameAs reports whether both views denote the same persisted account.
func (v AccountView) SameAs(other AccountView) bool { return v.ID == other.ID }

// AccountListResponse is the response for listing accounts.
type AccountListResponse struct {
	Accounts []AccountView `json:"accounts"`
}

// AccountDetailResponse is the response for a single account.
type AccountDetailResponse struct {
	Account AccountView `json:"account"`
}
