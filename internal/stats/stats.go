// Package stats buckets bonus records into per-day and per-month series.
//
// Everything here is pure: the caller supplies the spans and the zone, and
// each call produces a fresh, densely filled series.
package stats

import (
	"math"
	"time"
)

// Span 参与统计的最小数据：开始时刻和时长。
type Span struct {
	Start    time.Time
	Duration time.Duration
}

// Bucket 一个统计桶。
type Bucket struct {
	// Index 为天（1..N）或月（1..12）
	Index        int
	Count        int
	Total        time.Duration
	TotalMinutes float64
	AvgMinutes   float64
}

// DailySeries 某月的逐日统计。
type DailySeries struct {
	Year    int
	Month   time.Month
	Loc     *time.Location
	Buckets []Bucket
}

// MonthlySeries 某年的逐月统计。
type MonthlySeries struct {
	Year    int
	Loc     *time.Location
	Buckets []Bucket
}

// DaysIn returns the number of days of month in year.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthRange 返回 loc 时区下该月的绝对时间区间 [from, to)。
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	loc = orUTC(loc)
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}

// YearRange 返回 loc 时区下该年的绝对时间区间 [from, to)。
func YearRange(year int, loc *time.Location) (time.Time, time.Time) {
	loc = orUTC(loc)
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(1, 0, 0)
}

// Daily groups spans by local calendar day of the given month.
func Daily(spans []Span, year int, month time.Month, loc *time.Location) DailySeries {
	loc = orUTC(loc)
	buckets := newBuckets(DaysIn(year, month))
	for _, s := range spans {
		local := s.Start.In(loc)
		if local.Year() != year || local.Month() != month {
			continue
		}
		add(&buckets[local.Day()-1], s.Duration)
	}
	finish(buckets)
	return DailySeries{Year: year, Month: month, Loc: loc, Buckets: buckets}
}

// Monthly groups spans by local calendar month of the given year.
func Monthly(spans []Span, year int, loc *time.Location) MonthlySeries {
	loc = orUTC(loc)
	buckets := newBuckets(12)
	for _, s := range spans {
		local := s.Start.In(loc)
		if local.Year() != year {
			continue
		}
		add(&buckets[int(local.Month())-1], s.Duration)
	}
	finish(buckets)
	return MonthlySeries{Year: year, Loc: loc, Buckets: buckets}
}

func newBuckets(n int) []Bucket {
	buckets := make([]Bucket, n)
	for i := range buckets {
		buckets[i].Index = i + 1
	}
	return buckets
}

func add(b *Bucket, d time.Duration) {
	b.Count++
	b.Total += d
}

// finish 计算分钟数：总分钟取整，平均值 = 总分钟 / 次数，次数为 0 时平均值为 0。
func finish(buckets []Bucket) {
	for i := range buckets {
		b := &buckets[i]
		b.TotalMinutes = math.Floor(b.Total.Minutes())
		if b.Count > 0 {
			b.AvgMinutes = b.TotalMinutes / float64(b.Count)
		}
	}
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
