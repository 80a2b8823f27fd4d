package dto

import "time"

// Snapshot 一次完整导出的数据快照。
type Snapshot struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Accounts   []AccountSnapshot `json:"accounts"`
}

// AccountSnapshot 单个账户及其全部武器和记录。
type AccountSnapshot struct {
	Account AccountView       `json:"account"`
	Weapons []WeaponView      `json:"weapons"`
	Records []BonusRecordView `json:"records"`
}

// BackupResult describes a stored snapshot.
type BackupResult struct {
	Key         string    `json:"key"`
	Accounts    int       `json:"accounts"`
	Weapons     int       `json:"weapons"`
	Records     int       `json:"records"`
	Bytes       int       `json:"bytes"`
	CompletedAt time.Time `json:"completed_at"`
}
