// Package settings keeps the user-editable runtime settings (currently only
// the time zone used for statistics) in a small JSON file next to the data.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"stopbonus/internal/entity"
	"stopbonus/internal/entity/dto"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DefaultTimezone 时区无效或未配置时使用的时区。
const DefaultTimezone = "Asia/Shanghai"

const keyTimezone = "timezone"

// 常用时区及中文显示名称。
var availableTimezones = []dto.TimezoneOption{
	{ID: "Asia/Shanghai", DisplayName: "中国 - 上海 (UTC+8)"},
	{ID: "Asia/Tokyo", DisplayName: "日本 - 东京 (UTC+9)"},
	{ID: "Asia/Seoul", DisplayName: "韩国 - 首尔 (UTC+9)"},
	{ID: "Asia/Singapore", DisplayName: "新加坡 (UTC+8)"},
	{ID: "America/New_York", DisplayName: "美国 - 纽约 (UTC-5/-4)"},
	{ID: "America/Los_Angeles", DisplayName: "美国 - 洛杉矶 (UTC-8/-7)"},
	{ID: "Europe/London", DisplayName: "英国 - 伦敦 (UTC+0/+1)"},
	{ID: "Europe/Paris", DisplayName: "法国 - 巴黎 (UTC+1/+2)"},
	{ID: "Australia/Sydney", DisplayName: "澳大利亚 - 悉尼 (UTC+10/+11)"},
	{ID: "UTC", DisplayName: "协调世界时 (UTC)"},
}

// ZoneProvider 提供统计时使用的时区，每次统计都会重新读取。
type ZoneProvider interface {
	Location() *time.Location
}

// FixedZone is a ZoneProvider that never changes.
type FixedZone struct {
	Loc *time.Location
}

func (z FixedZone) Location() *time.Location {
	if z.Loc == nil {
		return time.UTC
	}
	return z.Loc
}

// Store 基于 viper 的设置文件，读写并发安全。
type Store struct {
	mu   sync.RWMutex
	v    *viper.Viper
	path string
	loc  *time.Location
}

// Load 读取设置文件。文件不存在或内容损坏时使用默认值，不返回错误。
func Load(path string) *Store {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault(keyTimezone, DefaultTimezone)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) || !errors.Is(pathErr, fs.ErrNotExist) {
			logrus.WithError(err).WithField("path", path).Warn("settings file unreadable, using defaults")
		}
	}

	s := &Store{v: v, path: path}
	s.loc = resolveLocation(v.GetString(keyTimezone))
	return s
}

// Location 返回当前时区。
func (s *Store) Location() *time.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loc
}

// Get 返回当前设置。
func (s *Store) Get() dto.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dto.Settings{Timezone: s.loc.String()}
}

// SetTimezone validates and persists a new zone. Later aggregation calls
// pick it up immediately.
func (s *Store) SetTimezone(name string) error {
	const op = "SetTimezone"
	name = strings.TrimSpace(name)
	if name == "" {
		return entity.Validation(op, "timezone", "timezone is required")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return entity.Validation(op, "timezone", fmt.Sprintf("unknown timezone %q", name))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(keyTimezone, name)
	if err := s.persist(); err != nil {
		return entity.Storage(op, err)
	}
	s.loc = loc
	return nil
}

func (s *Store) persist() error {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	return s.v.WriteConfigAs(s.path)
}

// AvailableTimezones 返回可选时区列表的副本。
func AvailableTimezones() []dto.TimezoneOption {
	out := make([]dto.TimezoneOption, len(availableTimezones))
	copy(out, availableTimezones)
	return out
}

// DisplayName returns the localized label for a zone id, or the id itself.
func DisplayName(id string) string {
	for _, tz := range availableTimezones {
		if tz.ID == id {
			return tz.DisplayName
		}
	}
	return id
}

func resolveLocation(name string) *time.Location {
	if loc, err := time.LoadLocation(strings.TrimSpace(name)); err == nil && strings.TrimSpace(name) != "" {
		return loc
	}
	logrus.WithField("timezone", name).Warn("invalid timezone, falling back to default")
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

var (
	_ ZoneProvider = (*Store)(nil)
	_ ZoneProvider = FixedZone{}
)
