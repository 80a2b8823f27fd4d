package entity

import (
	"errors"
	"fmt"
	"strings"
)

// 错误类别，配合 errors.Is 使用。
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrStorage     = errors.New("storage error")
	ErrAggregation = errors.New("aggregation error")
)

// Error 是核心层统一返回的错误类型。
//
// Kind 为上面的某个类别；Op 标识出错的操作，例如 "CreateRecord"；
// Field 仅在校验错误时填写。
type Error struct {
	Kind    error
	Op      string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind membership. Aggregation failures also count as storage
// failures so callers that only care about I/O can match ErrStorage.
func (e *Error) Is(target error) bool {
	if e.Kind == target {
		return true
	}
	return e.Kind == ErrAggregation && target == ErrStorage
}

// Validation 构造校验错误。
func Validation(op, field, message string) error {
	return &Error{Kind: ErrValidation, Op: op, Field: field, Message: message}
}

// NotFound 构造实体不存在错误。
func NotFound(op, what string, id uint) error {
	return &Error{Kind: ErrNotFound, Op: op, Message: fmt.Sprintf("%s %d does not exist", what, id)}
}

// Storage wraps an underlying I/O or constraint failure.
func Storage(op string, err error) error {
	return &Error{Kind: ErrStorage, Op: op, Err: err}
}

// Aggregation wraps a failure raised while computing statistics.
func Aggregation(op string, err error) error {
	return &Error{Kind: ErrAggregation, Op: op, Err: err}
}

// StorageOrSelf 保留已经分类的错误，其余的包装成存储错误。
func StorageOrSelf(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Storage(op, err)
}

// FieldOf returns the offending field of a validation error, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
