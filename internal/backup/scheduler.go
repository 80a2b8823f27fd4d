package backup

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

const jobTimeout = 2 * time.Minute

// Scheduler 按固定间隔执行备份。
type Scheduler struct {
	sched gocron.Scheduler
}

// StartScheduler 启动周期备份任务；interval 必须为正数。
func StartScheduler(svc *Service, interval time.Duration) (*Scheduler, error) {
	if svc == nil {
		return nil, errors.New("backup: nil service")
	}
	if interval <= 0 {
		return nil, errors.New("backup: interval must be positive")
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			if _, err := svc.Create(ctx); err != nil {
				logrus.WithError(err).Error("scheduled backup failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	logrus.WithField("interval", interval.String()).Info("backup scheduler started")
	return &Scheduler{sched: sched}, nil
}

// Stop waits for a running job and stops the scheduler.
func (s *Scheduler) Stop() error {
	if s == nil || s.sched == nil {
		return nil
	}
	return s.sched.Shutdown()
}
