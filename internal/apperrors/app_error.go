package apperrors

import (
	"net/http"
)

// AppError 自定义错误类型。MessageID 用于 i18n，Details 保留给调用方排查的技术细节。
type AppError struct {
	Code      int
	MessageID string
	Message   string
	Details   string
	Cause     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 附加技术细节
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 附加底层错误
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	if e.Details == "" {
		e.Details = cause.Error()
	}
	return e
}

// WithCode 创建通用业务错误
func WithCode(code int, messageID, message string) *AppError {
	return &AppError{
		Code:      code,
		MessageID: messageID,
		Message:   message,
	}
}

// BusinessError 封装业务逻辑错误（通用）
func BusinessError(code int, messageID, message string) *AppError {
	return WithCode(code, messageID, message)
}

// InvalidRequestError 封装参数校验错误
func InvalidRequestError(messageID, message string) *AppError {
	return WithCode(http.StatusBadRequest, messageID, message)
}

// InvalidRequestErrorDefault 默认参数校验错误
func InvalidRequestErrorDefault() *AppError {
	return WithCode(http.StatusBadRequest, "error.invalid_request", "Parameter verification failed")
}

// UnauthorizedError 未认证错误
func UnauthorizedError() *AppError {
	return WithCode(http.StatusUnauthorized, "error.unauthorized", "Unauthorized")
}

// NotFoundError 资源不存在
func NotFoundError(messageID, message string) *AppError {
	return WithCode(http.StatusNotFound, messageID, message)
}

// ConflictError 资源冲突
func ConflictError(messageID, message string) *AppError {
	return WithCode(http.StatusConflict, messageID, message)
}

// UpstreamRejectedError 上游拒绝该 URL
func UpstreamRejectedError() *AppError {
	return WithCode(http.StatusBadRequest, "error.upstream_rejected", "The shortening provider rejected this URL")
}

// UpstreamTimeoutError 上游超时
func UpstreamTimeoutError() *AppError {
	return WithCode(http.StatusGatewayTimeout, "error.upstream_timeout", "The shortening provider timed out")
}

// UpstreamUnavailableError 上游不可用
func UpstreamUnavailableError() *AppError {
	return WithCode(http.StatusServiceUnavailable, "error.upstream_unavailable", "The shortening provider is unavailable")
}

// UpstreamBadResponseError 上游返回异常
func UpstreamBadResponseError() *AppError {
	return WithCode(http.StatusBadGateway, "error.upstream_bad_response", "Invalid response from the shortening provider")
}

// UpstreamRateLimitedError 上游限流
func UpstreamRateLimitedError() *AppError {
	return WithCode(http.StatusServiceUnavailable, "error.upstream_rate_limited", "The shortening provider rate limited this request")
}

// StorageError 持久层错误
func StorageError(message string) *AppError {
	return WithCode(http.StatusInternalServerError, "error.storage", message)
}

// StorageTimeoutError 持久层超时
func StorageTimeoutError() *AppError {
	return WithCode(http.StatusGatewayTimeout, "error.storage_timeout", "Database operation timed out")
}

// SystemError 封装系统内部错误
func SystemError(message string) *AppError {
	return WithCode(http.StatusInternalServerError, "error.internal", message)
}

// SystemErrorDefault 默认系统内部错误
func SystemErrorDefault() *AppError {
	return WithCode(http.StatusInternalServerError, "error.internal", "System error")
}
