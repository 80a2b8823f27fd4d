package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"stopbonus/internal/clock"
)

var errEmptyPayload = errors.New("empty payload")

// keyBuilder 生成对象键，日期目录取自注入的时钟。
type keyBuilder struct {
	clock clock.Clock
}

func newKeyBuilder(clk clock.Clock) keyBuilder {
	if clk == nil {
		clk = clock.System{}
	}
	return keyBuilder{clock: clk}
}

func (k keyBuilder) build(opts SaveOptions) string {
	now := k.clock.Now().UTC()
	category := sanitizePathSegment(opts.Category)
	if category == "" {
		category = "misc"
	}
	base := sanitizeFileBase(opts.BaseName)
	if base == "" {
		base = fmt.Sprintf("%d", now.UnixNano())
	}
	datedir := fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day())
	return path.Join(category, datedir, base+"."+normalizeExtension(opts.Extension))
}

func sanitizePathSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 32)
		case ch == '-', ch == '_':
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

func normalizeExtension(ext string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if trimmed == "" {
		return "bin"
	}
	return sanitizePathSegment(trimmed)
}

func sanitizeFileBase(value string) string {
	replaced := strings.ReplaceAll(strings.TrimSpace(value), " ", "-")
	return strings.Trim(sanitizePathSegment(replaced), "-_")
}

func detectContentType(ext string) string {
	typeName := mime.TypeByExtension("." + normalizeExtension(ext))
	if typeName == "" {
		return "application/octet-stream"
	}
	return typeName
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

// checkSave 保存前的通用检查：数据非空且 ctx 未取消。
func checkSave(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return errEmptyPayload
	}
	return ctx.Err()
}
