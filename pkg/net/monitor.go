package net

import (
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ==================== CallMonitor 调用监控 ====================

const (
	monitorKeep      = 20               // 保留最近 20 次调用
	burstWindow      = 10 * time.Second // 频率统计窗口
	burstWarnAtAbove = 10               // 窗口内超过 10 次告警
)

// CallStatus 调用状态
type CallStatus string

const (
	CallPending CallStatus = "pending"
	CallSuccess CallStatus = "success"
	CallError   CallStatus = "error"
)

// CallRecord 单次调用记录
type CallRecord struct {
	ID         string        `json:"id"`
	Method     string        `json:"method"`
	URL        string        `json:"url"`
	StartedAt  time.Time     `json:"started_at"`
	Status     CallStatus    `json:"status"`
	StatusCode int           `json:"status_code,omitempty"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
}

// CallMonitor 记录经过 resty 客户端的所有网络调用
// 用于排查重复请求、请求风暴
type CallMonitor struct {
	mu      sync.Mutex
	records []CallRecord // 最新的在前
	total   int64
	now     func() time.Time
	logger  *zap.Logger
}

// NewCallMonitor 创建监控器
func NewCallMonitor(logger *zap.Logger) *CallMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CallMonitor{
		now:    time.Now,
		logger: logger,
	}
}

// Attach 挂载到 resty 客户端
func (m *CallMonitor) Attach(client *resty.Client) {
	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		m.begin(r.Header.Get("X-Request-ID"), r.Method, r.URL)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		status := CallSuccess
		if !resp.IsSuccess() {
			status = CallError
		}
		m.finish(resp.Request.Header.Get("X-Request-ID"), status, resp.StatusCode(), "")
		return nil
	})
	client.OnError(func(r *resty.Request, err error) {
		m.finish(r.Header.Get("X-Request-ID"), CallError, 0, err.Error())
	})
}

func (m *CallMonitor) begin(id, method, url string) {
	m.mu.Lock()
	now := m.now()
	m.total++
	m.records = append([]CallRecord{{
		ID:        id,
		Method:    method,
		URL:       url,
		StartedAt: now,
		Status:    CallPending,
	}}, m.records...)
	if len(m.records) > monitorKeep {
		m.records = m.records[:monitorKeep]
	}

	recent := 0
	for _, r := range m.records {
		if now.Sub(r.StartedAt) < burstWindow {
			recent++
		}
	}
	m.mu.Unlock()

	if recent > burstWarnAtAbove {
		m.logger.Warn("[Monitor] API 调用过于频繁",
			zap.Int("calls", recent),
			zap.Duration("window", burstWindow))
	}
}

func (m *CallMonitor) finish(id string, status CallStatus, code int, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.records {
		r := &m.records[i]
		if r.ID != id || r.Status != CallPending {
			continue
		}
		r.Status = status
		r.StatusCode = code
		r.Duration = m.now().Sub(r.StartedAt)
		r.Error = errMsg
		return
	}
}

// Snapshot 最近调用记录 (副本)
func (m *CallMonitor) Snapshot() []CallRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CallRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Total 累计调用次数
func (m *CallMonitor) Total() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}
