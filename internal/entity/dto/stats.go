package dto

import "time"

// StatBucket 单个统计桶（某天或某月）。
type StatBucket struct {
	Index        int           `json:"index"`
	Count        int           `json:"count"`
	Total        time.Duration `json:"total"`
	TotalMinutes float64       `json:"total_minutes"`
	AvgMinutes   float64       `json:"avg_minutes"`
}

// DailyStats 某月每天的统计，长度等于该月天数。
type DailyStats struct {
	AccountID uint         `json:"account_id"`
	Year      int          `json:"year"`
	Month     int          `json:"month"`
	Zone      string       `json:"zone"`
	Days      []StatBucket `json:"days"`
}

// MonthlyStats 某年每月的统计，固定 12 个桶。
type MonthlyStats struct {
	AccountID uint         `json:"account_id"`
	Year      int          `json:"year"`
	Zone      string       `json:"zone"`
	Months    []StatBucket `json:"months"`
}

// StatsOverview bundles both series for one account.
type StatsOverview struct {
	Daily   DailyStats   `json:"daily"`
	Monthly MonthlyStats `json:"monthly"`
}
