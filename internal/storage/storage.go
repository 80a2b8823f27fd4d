// Package storage persists backup snapshots to the local disk or to an
// object store (S3, R2, OSS, COS).
package storage

import (
	"context"
	"fmt"
	"strings"

	"stopbonus/internal/clock"
	"stopbonus/internal/config"
)

const (
	// TypeLocal 表示本地文件系统存储。
	TypeLocal = "local"
	// TypeS3 表示 Amazon S3 或兼容的存储后端。
	TypeS3 = "s3"
	// TypeOSS 表示阿里云 OSS 存储。
	TypeOSS = "oss"
	// TypeCOS 表示腾讯云 COS 存储。
	TypeCOS = "cos"
	// TypeR2 表示 Cloudflare R2 存储。
	TypeR2 = "r2"
)

// SaveOptions 控制对象的存放位置。
//
// 对象键的格式为 Category/YYYY/MM/DD/BaseName.Extension，日期取自存储的时钟（UTC）。
type SaveOptions struct {
	Category  string
	Extension string
	BaseName  string
}

// Storage 持久化一段数据并返回对象键（本地存储为相对路径）。
type Storage interface {
	Save(ctx context.Context, data []byte, opts SaveOptions) (string, error)
}

// NewStorage 根据配置实例化存储后端。
func NewStorage(cfg config.Config, clk clock.Clock) (Storage, error) {
	typeName := strings.ToLower(strings.TrimSpace(cfg.StorageType))
	switch typeName {
	case "", TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir, clk)
	case TypeS3:
		return NewS3Storage(cfg, clk)
	case TypeOSS:
		return NewOSSStorage(cfg, clk)
	case TypeCOS:
		return NewCOSStorage(cfg, clk)
	case TypeR2:
		return NewR2Storage(cfg, clk)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}
