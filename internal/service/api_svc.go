package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"shop_admin_v1_202610/pkg/net"
	"shop_admin_v1_202610/pkg/utils"
)

// RequestOptions 单次请求参数
type RequestOptions struct {
	Method string // 为空视为 GET
	Body   any    // 为 nil 时不发送请求体
}

func (o RequestOptions) method() string {
	if o.Method == "" {
		return http.MethodGet
	}
	return o.Method
}

// ApiService 请求协调器
// 在 Dispatcher 之上提供：
//  1. 同指纹 (method + url + body) 请求去重，同一时刻最多一个在途请求
//  2. GET 响应缓存 (默认 30s)
//  3. 写操作成功后按前缀失效缓存
//  4. 401 时清空缓存并通知会话层
type ApiService struct {
	baseURL    string
	dispatcher net.Dispatcher
	tokens     net.TokenStore
	cache      *utils.ResponseCache
	pending    singleflight.Group
	logger     *zap.Logger

	// 每次失效 +1，在途 GET 完成时若代数变化则不回写缓存
	cacheGen atomic.Uint64

	hookMu            sync.RWMutex
	unauthorizedHooks []func(ctx context.Context)
}

// ApiOption 可选配置
type ApiOption func(*apiOptions)

type apiOptions struct {
	cacheTimeout time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// WithCacheTimeout 缓存有效期
func WithCacheTimeout(d time.Duration) ApiOption {
	return func(o *apiOptions) { o.cacheTimeout = d }
}

// WithClock 注入时钟 (测试用)
func WithClock(now func() time.Time) ApiOption {
	return func(o *apiOptions) { o.now = now }
}

// WithLogger 日志
func WithLogger(l *zap.Logger) ApiOption {
	return func(o *apiOptions) { o.logger = l }
}

// NewApiService 创建请求协调器
// baseURL 不带结尾斜杠，如 http://localhost:5000/api
func NewApiService(baseURL string, dispatcher net.Dispatcher, tokens net.TokenStore, opts ...ApiOption) *ApiService {
	o := apiOptions{cacheTimeout: utils.DefaultCacheTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	return &ApiService{
		baseURL:    baseURL,
		dispatcher: dispatcher,
		tokens:     tokens,
		cache:      utils.NewResponseCache(o.cacheTimeout, o.now),
		logger:     o.logger,
	}
}

// OnUnauthorized 注册 401 回调 (会话层用来销毁身份)
func (s *ApiService) OnUnauthorized(fn func(ctx context.Context)) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.unauthorizedHooks = append(s.unauthorizedHooks, fn)
}

// ==================== 核心请求 ====================

// Request 鉴权请求 (去重 + GET 缓存)
func (s *ApiService) Request(ctx context.Context, endpoint string, opts RequestOptions) ([]byte, error) {
	body, err := encodeBody(opts.Body)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	method := opts.method()
	url := s.baseURL + endpoint
	isRead := method == http.MethodGet
	cacheKey := cacheKeyOf(endpoint, opts.Method, body)

	if isRead {
		if data, ok := s.cache.Get(cacheKey); ok {
			s.logger.Debug("[ApiService] 命中缓存", zap.String("endpoint", endpoint))
			return data, nil
		}
	}

	key := fingerprint(method, url, body)
	return s.do(ctx, key, endpoint, func(callCtx context.Context) ([]byte, error) {
		gen := s.cacheGen.Load()

		call := net.NewJSONCall(method, url, net.AuthHeaders(s.token(callCtx)), body)
		data, err := s.dispatcher.Send(callCtx, call)
		if err != nil {
			s.handleError(callCtx, err)
			return nil, err
		}

		if isRead && s.cacheGen.Load() == gen {
			s.cache.Set(cacheKey, data)
		}
		return data, nil
	})
}

// PublicRequest 公开请求 (不带 Token)
// 同样去重，但不缓存
func (s *ApiService) PublicRequest(ctx context.Context, endpoint string, opts RequestOptions) ([]byte, error) {
	body, err := encodeBody(opts.Body)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	method := opts.method()
	url := s.baseURL + endpoint
	key := "PUBLIC_" + fingerprint(method, url, body)

	return s.do(ctx, key, endpoint, func(callCtx context.Context) ([]byte, error) {
		return s.dispatcher.Send(callCtx, net.NewPublicCall(method, url, body))
	})
}

// do 以 key 去重执行 fn
// 在途请求使用脱离调用方取消的 context，单个调用方放弃等待不会影响其他调用方
func (s *ApiService) do(ctx context.Context, key, endpoint string, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	callCtx := context.WithoutCancel(ctx)
	ch := s.pending.DoChan(key, func() (any, error) {
		return fn(callCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("[ApiService] 合并重复请求", zap.String("endpoint", endpoint))
		}
		if res.Err != nil {
			s.logger.Warn("[ApiService] 请求失败", zap.String("endpoint", endpoint), zap.Error(res.Err))
			return nil, res.Err
		}
		data, _ := res.Val.([]byte)
		return data, nil
	}
}

// handleError 401：清空缓存并通知会话层
// 在共享请求内执行，同一次失败只触发一次
func (s *ApiService) handleError(ctx context.Context, err error) {
	if !net.IsUnauthorized(err) {
		return
	}

	s.ClearCache()

	s.hookMu.RLock()
	hooks := append([]func(context.Context){}, s.unauthorizedHooks...)
	s.hookMu.RUnlock()

	for _, h := range hooks {
		h(ctx)
	}
}

func (s *ApiService) token(ctx context.Context) string {
	if s.tokens == nil {
		return ""
	}
	token, err := s.tokens.Get(ctx)
	if err != nil {
		s.logger.Error("[ApiService] 读取本地 Token 失败", zap.Error(err))
		return ""
	}
	return token
}

// ==================== 缓存管理 ====================

// ClearCache 清空全部缓存 (登录、登出、401)
func (s *ApiService) ClearCache() {
	s.cacheGen.Add(1)
	s.cache.Clear()
	s.logger.Debug("[ApiService] 缓存已清空")
}

// ClearCacheForEndpoint 清除 key 以 prefix 开头的缓存
func (s *ApiService) ClearCacheForEndpoint(prefix string) {
	s.cacheGen.Add(1)
	n := s.cache.DeletePrefix(prefix)
	s.logger.Debug("[ApiService] 缓存已失效", zap.String("prefix", prefix), zap.Int("entries", n))
}

// CacheSize 当前缓存条目数
func (s *ApiService) CacheSize() int {
	return s.cache.Len()
}

// ==================== 上传 ====================

// upload 上传文件，不缓存、不去重 (每次文件内容不同)
func (s *ApiService) upload(ctx context.Context, endpoint, failure string, files ...net.File) ([]byte, error) {
	call := net.NewMultipartCall(s.baseURL+endpoint, net.MultipartHeaders(s.token(ctx)), failure, files...)
	data, err := s.dispatcher.Send(ctx, call)
	if err != nil {
		s.handleError(ctx, err)
		return nil, err
	}
	return data, nil
}

// ==================== 工具函数 ====================

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(body)
	}
}

// fingerprint 请求指纹，空请求体按 {} 计
func fingerprint(method, url string, body []byte) string {
	b := "{}"
	if len(body) > 0 {
		b = string(body)
	}
	return method + "_" + url + "_" + b
}

// cacheKeyOf 缓存键：endpoint 开头，便于按前缀失效
func cacheKeyOf(endpoint, method string, body []byte) string {
	opts := struct {
		Method string          `json:"method,omitempty"`
		Body   json.RawMessage `json:"body,omitempty"`
	}{Method: method, Body: body}
	b, _ := json.Marshal(opts)
	return endpoint + "_" + string(b)
}

// decodeJSON 解析响应，空响应体返回零值
func decodeJSON[T any](data []byte) (T, error) {
	var out T
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("解析响应失败: %w", err)
	}
	return out, nil
}

// decodePtr 同 decodeJSON，失败时返回 nil
func decodePtr[T any](data []byte) (*T, error) {
	out, err := decodeJSON[T](data)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// decodeEntity 解析实体，兼容 {"<wrapKey>": {...}} 与直接返回实体两种格式
func decodeEntity[T any](data []byte, wrapKey string) (*T, error) {
	var out T
	if len(data) == 0 {
		return &out, nil
	}

	var wrapped map[string]json.RawMessage
	if json.Unmarshal(data, &wrapped) == nil {
		if raw, ok := wrapped[wrapKey]; ok && bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
			data = raw
		}
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	return &out, nil
}

// decodeList 解析列表，兼容直接数组与 {"<wrapKey>": [...]} / {"data": [...]}
func decodeList[T any](data []byte, wrapKey string) ([]T, error) {
	out := []T{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return out, nil
	}

	if data[0] != '[' {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("解析响应失败: %w", err)
		}
		raw, ok := wrapped[wrapKey]
		if !ok {
			raw, ok = wrapped["data"]
		}
		if !ok {
			return out, nil
		}
		data = raw
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
