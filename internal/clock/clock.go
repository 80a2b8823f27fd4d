package clock

import (
	"sync"
	"time"
)

// Clock 提供当前时间，存储层用它给 create_time / last_updated_time 打戳。
type Clock interface {
	Now() time.Time
}

// System 使用系统时间。
type System struct{}

// Now 返回 UTC 的当前时间。
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed 是可手动推进的时钟，主要用于测试。
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed creates a clock frozen at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t.UTC()}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Set 将时钟设置为指定时间。
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t.UTC()
	f.mu.Unlock()
}
