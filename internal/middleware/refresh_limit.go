package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== RefreshLimiter 刷新限流器 ====================

// RefreshLimiter 手动刷新冷却
// 强制刷新会清掉对应缓存并直连远端，防止界面连点把远端打满
type RefreshLimiter struct {
	locks sync.Map // key -> *lockEntry
	now   func() time.Time
}

type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// NewRefreshLimiter now 为空时使用 time.Now
func NewRefreshLimiter(now func() time.Time) *RefreshLimiter {
	if now == nil {
		now = time.Now
	}
	return &RefreshLimiter{now: now}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查并记录本次执行
func (r *RefreshLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := r.now()
	if elapsed := now.Sub(entry.lastTime); elapsed < interval {
		return CheckResult{RetryAfter: interval - elapsed}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 清除全部冷却
func (r *RefreshLimiter) Reset() {
	r.locks.Range(func(k, _ any) bool {
		r.locks.Delete(k)
		return true
	})
}

// ==================== 中间件 ====================

// RefreshCooldown 按 key 限制刷新频率
// interval <= 0 时不限流
func RefreshCooldown(limiter *RefreshLimiter, key string, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || interval <= 0 {
			c.Next()
			return
		}

		result := limiter.Check(key, interval)
		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(result.RetryAfter),
				"data": gin.H{
					"retry_after": result.RetryAfter.Seconds(),
					"key":         key,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// formatRetryMessage 重试提示
func formatRetryMessage(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("刷新冷却中，请 %d 毫秒后重试", d.Milliseconds())
	}
	return fmt.Sprintf("刷新冷却中，请 %d 秒后重试", int(d.Round(time.Second).Seconds()))
}
