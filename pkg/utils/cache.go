package utils

import (
	"strings"
	"sync"
	"time"
)

// DefaultCacheTimeout GET 响应默认缓存 30 秒
const DefaultCacheTimeout = 30 * time.Second

// cacheItem 内部结构，包含数据和写入时间
type cacheItem struct {
	data      []byte
	timestamp time.Time
}

// ResponseCache GET 响应缓存
// 过期只在读取时判断 (不做后台清理)，过期条目不返回，等下次写入覆盖
type ResponseCache struct {
	// 使用 sync.Map 保证并发安全
	entries sync.Map
	timeout time.Duration
	now     func() time.Time
}

// NewResponseCache 创建缓存
// now 为空时使用 time.Now，测试中可注入固定时钟
func NewResponseCache(timeout time.Duration, now func() time.Time) *ResponseCache {
	if timeout <= 0 {
		timeout = DefaultCacheTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &ResponseCache{
		timeout: timeout,
		now:     now,
	}
}

// Get 获取缓存并验证是否过期
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	val, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}

	item := val.(cacheItem)
	if c.now().Sub(item.timestamp) >= c.timeout {
		return nil, false
	}
	return item.data, true
}

// Set 写入缓存，记录当前时间
func (c *ResponseCache) Set(key string, data []byte) {
	c.entries.Store(key, cacheItem{
		data:      data,
		timestamp: c.now(),
	})
}

// Clear 清空全部缓存 (登录、401)
func (c *ResponseCache) Clear() {
	c.entries.Clear()
}

// DeletePrefix 删除所有以 prefix 开头的条目，返回删除数量
func (c *ResponseCache) DeletePrefix(prefix string) int {
	n := 0
	c.entries.Range(func(k, _ any) bool {
		if strings.HasPrefix(k.(string), prefix) {
			c.entries.Delete(k)
			n++
		}
		return true
	})
	return n
}

// Len 当前条目数 (含已过期未覆盖的)
func (c *ResponseCache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Timeout 缓存有效期
func (c *ResponseCache) Timeout() time.Duration {
	return c.timeout
}
