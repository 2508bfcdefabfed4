package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ClientOptions 客户端参数
type ClientOptions struct {
	Timeout    time.Duration
	RetryCount int
	Debug      bool
}

// NewAPIClient 创建一个配置好超时、重试与日志的 Resty 客户端
// 它是全系统统一的网络请求入口
func NewAPIClient(opts ClientOptions, logger *zap.Logger) *resty.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}

	client := resty.New().
		SetDebug(opts.Debug).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetHeader("User-Agent", "Shop-Admin-Go/1.0")

	if logger != nil {
		client.SetLogger(logger.Sugar())
	}

	return client
}
