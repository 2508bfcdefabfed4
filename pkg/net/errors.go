package net

import (
	"errors"
	"fmt"
)

// ==================== 错误分类 ====================

// ErrorKind 错误类别
type ErrorKind int

const (
	KindRequestFailed    ErrorKind = iota // 非 2xx (401 除外)
	KindUnauthorized                      // 401，Token 失效
	KindNetwork                           // 传输层失败
	KindNotAuthenticated                  // 本地校验：未登录，不会发出请求
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNetwork:
		return "network"
	case KindNotAuthenticated:
		return "not_authenticated"
	default:
		return "request_failed"
	}
}

// 401 时不论服务端返回什么，统一给调用方这条信息
const UnauthorizedMessage = "Access token required"

// APIError 统一错误类型
// 通过 errors.Is 与下方哨兵错误按类别匹配
type APIError struct {
	Kind    ErrorKind
	Status  int    // HTTP 状态码，传输层错误时为 0
	Message string // 对外展示的信息
	Err     error  // 底层错误
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is 按类别匹配
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Status == 0 && t.Err == nil
}

// 哨兵错误，仅用于 errors.Is 判断
var (
	ErrRequestFailed    = &APIError{Kind: KindRequestFailed, Message: "request failed"}
	ErrUnauthorized     = &APIError{Kind: KindUnauthorized, Message: UnauthorizedMessage}
	ErrNetwork          = &APIError{Kind: KindNetwork, Message: "network error"}
	ErrNotAuthenticated = &APIError{Kind: KindNotAuthenticated, Message: "Not authenticated"}
)

// NewUnauthorized 401 错误
func NewUnauthorized() *APIError {
	return &APIError{Kind: KindUnauthorized, Status: 401, Message: UnauthorizedMessage}
}

// NewRequestFailed 业务失败
// message 为空时使用 fallback，fallback 也为空时使用通用 HTTP 提示
func NewRequestFailed(status int, message, fallback string) *APIError {
	if message == "" {
		message = fallback
	}
	if message == "" {
		message = fmt.Sprintf("HTTP error! status: %d", status)
	}
	return &APIError{Kind: KindRequestFailed, Status: status, Message: message}
}

// NewNetworkError 传输层失败
func NewNetworkError(err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: fmt.Sprintf("network error: %v", err), Err: err}
}

// NewNotAuthenticated 本地未登录
func NewNotAuthenticated() *APIError {
	return &APIError{Kind: KindNotAuthenticated, Message: "Not authenticated"}
}

// IsUnauthorized 是否为 401
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
