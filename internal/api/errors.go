package api

import (
	"errors"
	"net/http"

	"stopbonus/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 错误码定义
const (
	// 通用错误码
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"

	// 业务错误码
	ErrCodeMissingField     = "ERR_MISSING_FIELD"
	ErrCodeInvalidTimezone  = "ERR_INVALID_TIMEZONE"
	ErrCodeStatsUnavailable = "ERR_STATS_UNAVAILABLE"
)

// APIError 统一的 API 错误响应结构
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
	})
}

// ErrorResponseWithDetails 返回带详情的错误响应
func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// 常用错误响应快捷函数

// BadRequest 400 错误请求
func BadRequest(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusBadRequest, code, message)
}

// NotFound 404 资源不存在
func NotFound(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusNotFound, code, message)
}

// InternalError 500 服务器内部错误
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ServiceUnavailable 503 服务不可用
func ServiceUnavailable(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// MissingField 缺少必填字段
func MissingField(c *gin.Context, field string) {
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeMissingField, field+" is required", gin.H{"field": field})
}

// InvalidPayload 无效的请求体
func InvalidPayload(c *gin.Context) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
}

// respondError 按错误类别写响应，action 用于日志和 500 时的提示。
func respondError(c *gin.Context, err error, action string) {
	var e *entity.Error
	switch {
	case errors.Is(err, entity.ErrValidation):
		if errors.As(err, &e) && e.Field != "" {
			ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeInvalidRequest, e.Message, gin.H{"field": e.Field})
			return
		}
		BadRequest(c, ErrCodeInvalidRequest, err.Error())
	case errors.Is(err, entity.ErrNotFound):
		message := err.Error()
		if errors.As(err, &e) && e.Message != "" {
			message = e.Message
		}
		NotFound(c, ErrCodeNotFound, message)
	case errors.Is(err, entity.ErrAggregation):
		logrus.WithError(err).Errorf("failed to %s", action)
		ErrorResponse(c, http.StatusServiceUnavailable, ErrCodeStatsUnavailable, "statistics are temporarily unavailable")
	default:
		logrus.WithError(err).Errorf("failed to %s", action)
		InternalError(c, "failed to "+action)
	}
}
