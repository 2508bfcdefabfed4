package net

import (
	"io"
	"net/http"
)

// ==================== Header 构建 ====================

// AuthHeaders 鉴权请求头
// 统一封装 Content-Type 与 Bearer Token，token 为空时不带 Authorization
func AuthHeaders(token string) http.Header {
	h := PublicHeaders()
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// PublicHeaders 公开接口请求头 (不带鉴权)
func PublicHeaders() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return h
}

// MultipartHeaders 上传请求头
// 只带 Bearer Token，Content-Type 由 multipart 编码时生成 (含 boundary)
func MultipartHeaders(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// ==================== Call 构建 ====================

// File 单个上传文件
type File struct {
	Field       string // 表单字段名: image / images / video
	Name        string // 文件名
	ContentType string
	Reader      io.Reader
}

// Call 一次 HTTP 调用
// Body 与 Files 二选一：JSON 请求用 Body，上传用 Files
type Call struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	Files   []File

	// FailureMessage 服务端未返回 message 时的兜底错误信息
	FailureMessage string

	// Public 公开接口：401 按普通失败处理，不清理 Token
	// (例如登录密码错误时服务端返回 401)
	Public bool
}

// IsMultipart 是否为上传请求
func (c *Call) IsMultipart() bool {
	return len(c.Files) > 0
}

// NewJSONCall 构建 JSON 调用
func NewJSONCall(method, url string, headers http.Header, body []byte) *Call {
	if method == "" {
		method = http.MethodGet
	}
	return &Call{
		Method:  method,
		URL:     url,
		Headers: headers,
		Body:    body,
	}
}

// NewPublicCall 构建公开接口调用
func NewPublicCall(method, url string, body []byte) *Call {
	c := NewJSONCall(method, url, PublicHeaders(), body)
	c.Public = true
	return c
}

// NewMultipartCall 构建上传调用
func NewMultipartCall(url string, headers http.Header, failureMessage string, files ...File) *Call {
	return &Call{
		Method:         http.MethodPost,
		URL:            url,
		Headers:        headers,
		Files:          files,
		FailureMessage: failureMessage,
	}
}
