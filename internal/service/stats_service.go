package service

import (
	"context"
	"time"

	"stopbonus/internal/entity"
	"stopbonus/internal/entity/dto"
	"stopbonus/internal/model/sql"
	"stopbonus/internal/stats"

	"golang.org/x/sync/errgroup"
)

// 概览同时计算日、月两个序列
const overviewWorkers = 2

// DailyStats 统计某月每天的次数和时长。loc 为空时读取当前配置的时区。
func (s *BonusService) DailyStats(ctx context.Context, accountID uint, year int, month time.Month, loc *time.Location) (dto.DailyStats, error) {
	const op = "DailyStats"
	if err := validatePeriod(op, year, int(month)); err != nil {
		return dto.DailyStats{}, err
	}
	loc = s.location(loc)

	from, to := stats.MonthRange(year, month, loc)
	spans, err := s.loadSpans(ctx, accountID, from, to)
	if err != nil {
		return dto.DailyStats{}, entity.Aggregation(op, err)
	}

	series := stats.Daily(spans, year, month, loc)
	return dto.DailyStats{
		AccountID: accountID,
		Year:      year,
		Month:     int(month),
		Zone:      loc.String(),
		Days:      toBuckets(series.Buckets),
	}, nil
}

// MonthlyStats 统计某年每月的次数和时长，固定 12 个桶。
func (s *BonusService) MonthlyStats(ctx context.Context, accountID uint, year int, loc *time.Location) (dto.MonthlyStats, error) {
	const op = "MonthlyStats"
	if err := validatePeriod(op, year, 1); err != nil {
		return dto.MonthlyStats{}, err
	}
	loc = s.location(loc)

	from, to := stats.YearRange(year, loc)
	spans, err := s.loadSpans(ctx, accountID, from, to)
	if err != nil {
		return dto.MonthlyStats{}, entity.Aggregation(op, err)
	}

	series := stats.Monthly(spans, year, loc)
	return dto.MonthlyStats{
		AccountID: accountID,
		Year:      year,
		Zone:      loc.String(),
		Months:    toBuckets(series.Buckets),
	}, nil
}

// StatsOverview computes the daily series of month and the monthly series
// of year concurrently. Inside an existing unit of work both run in it,
// one after the other.
func (s *BonusService) StatsOverview(ctx context.Context, accountID uint, year int, month time.Month, loc *time.Location) (dto.StatsOverview, error) {
	loc = s.location(loc)

	var out dto.StatsOverview
	daily := func(ctx context.Context) (err error) {
		out.Daily, err = s.DailyStats(ctx, accountID, year, month, loc)
		return err
	}
	monthly := func(ctx context.Context) (err error) {
		out.Monthly, err = s.MonthlyStats(ctx, accountID, year, loc)
		return err
	}

	if sql.InTransaction(ctx) {
		if err := daily(ctx); err != nil {
			return dto.StatsOverview{}, err
		}
		if err := monthly(ctx); err != nil {
			return dto.StatsOverview{}, err
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewWorkers)
	g.Go(func() error { return daily(gctx) })
	g.Go(func() error { return monthly(gctx) })
	if err := g.Wait(); err != nil {
		return dto.StatsOverview{}, err
	}
	return out, nil
}

func (s *BonusService) loadSpans(ctx context.Context, accountID uint, from, to time.Time) ([]stats.Span, error) {
	var spans []stats.Span
	err := s.readOnly(ctx, func(ctx context.Context) error {
		var err error
		spans, err = s.repo.ListRecordSpans(ctx, accountID, from, to)
		return err
	})
	return spans, err
}

func (s *BonusService) location(loc *time.Location) *time.Location {
	if loc != nil {
		return loc
	}
	if current := s.zones.Location(); current != nil {
		return current
	}
	return time.UTC
}

func validatePeriod(op string, year, month int) error {
	if year < 1 || year > 9999 {
		return entity.Validation(op, "year", "year must be between 1 and 9999")
	}
	if month < 1 || month > 12 {
		return entity.Validation(op, "month", "month must be between 1 and 12")
	}
	return nil
}

func toBuckets(buckets []stats.Bucket) []dto.StatBucket {
	out := make([]dto.StatBucket, len(buckets))
	for i, b := range buckets {
		out[i] = dto.StatBucket{
			Index:        b.Index,
			Count:        b.Count,
			Total:        b.Total,
			TotalMinutes: b.TotalMinutes,
			AvgMinutes:   b.AvgMinutes,
		}
	}
	return out
}
