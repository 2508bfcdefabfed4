package net

import (
	"context"
	"encoding/json"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenStore 本地 Token 存储 (对应浏览器端的 admin_token)
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Remove(ctx context.Context) error
}

// Dispatcher 网络调度器
// 只负责"发一次请求 + 归一化结果"，去重与缓存由上层处理
type Dispatcher interface {
	// Send 发送一次调用，成功返回原始响应体
	// 失败统一返回 *APIError
	Send(ctx context.Context, call *Call) ([]byte, error)
}

// httpDispatcher 是 Dispatcher 接口的具体实现
type httpDispatcher struct {
	client *resty.Client
	tokens TokenStore
	logger *zap.Logger
}

var _ Dispatcher = (*httpDispatcher)(nil)

// NewDispatcher 基于 resty 客户端创建调度器
func NewDispatcher(client *resty.Client, tokens TokenStore, logger *zap.Logger) Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &httpDispatcher{
		client: client,
		tokens: tokens,
		logger: logger,
	}
}

// errorBody 服务端错误响应 {message}
type errorBody struct {
	Message string `json:"message"`
}

// Send 发送 HTTP 请求
// JSON 与 multipart 两种编码共用同一套错误处理 (含 401 清理 Token)
func (d *httpDispatcher) Send(ctx context.Context, call *Call) ([]byte, error) {
	req := d.client.R().SetContext(ctx)
	for key := range call.Headers {
		req.SetHeader(key, call.Headers.Get(key))
	}
	req.SetHeader("X-Request-ID", uuid.NewString())

	if call.IsMultipart() {
		for _, f := range call.Files {
			req.SetMultipartField(f.Field, f.Name, f.ContentType, f.Reader)
		}
	} else if len(call.Body) > 0 {
		req.SetBody(call.Body)
	}

	resp, err := req.Execute(call.Method, call.URL)
	if err != nil {
		d.logger.Error("[Dispatcher] 网络请求失败",
			zap.String("method", call.Method),
			zap.String("url", call.URL),
			zap.Error(err))
		return nil, NewNetworkError(err)
	}

	if resp.IsSuccess() {
		return resp.Body(), nil
	}

	status := resp.StatusCode()
	var eb errorBody
	// 错误体解析失败时走通用提示
	_ = json.Unmarshal(resp.Body(), &eb)

	d.logger.Warn("[Dispatcher] 请求返回错误状态",
		zap.String("method", call.Method),
		zap.String("url", call.URL),
		zap.Int("status", status),
		zap.String("message", eb.Message))

	if status == 401 && !call.Public {
		if d.tokens != nil {
			if rmErr := d.tokens.Remove(ctx); rmErr != nil {
				d.logger.Error("[Dispatcher] 清除本地 Token 失败", zap.Error(rmErr))
			}
		}
		return nil, NewUnauthorized()
	}

	return nil, NewRequestFailed(status, eb.Message, call.FailureMessage)
}
