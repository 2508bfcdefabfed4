package task

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionVerifier 会话保活
type SessionVerifier interface {
	IsAuthenticated() bool
	Verify(ctx context.Context) error
}

// DefaultVerifySpec 每 10 分钟校验一次
const DefaultVerifySpec = "0 0/10 * * * *"

// SessionTask 定时调用 /auth/verify
// Token 失效时 401 会沿 ApiService -> AuthService 销毁会话，这里只负责触发
type SessionTask struct {
	verifier SessionVerifier
	cron     *cron.Cron
	spec     string
	timeout  time.Duration
	logger   *zap.Logger
}

func NewSessionTask(verifier SessionVerifier, spec string, logger *zap.Logger) *SessionTask {
	if spec == "" {
		spec = DefaultVerifySpec
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionTask{
		verifier: verifier,
		cron:     cron.New(cron.WithSeconds()), // 支持秒级控制
		spec:     spec,
		timeout:  30 * time.Second,
		logger:   logger,
	}
}

// Start 注册并启动定时任务
func (t *SessionTask) Start() error {
	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		t.verifyJob(ctx)
	})
	if err != nil {
		return fmt.Errorf("无法启动会话保活任务: %w", err)
	}

	t.cron.Start()
	t.logger.Info("[Task] 会话保活任务已启动", zap.String("spec", t.spec))
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (t *SessionTask) Stop() {
	<-t.cron.Stop().Done()
	t.logger.Info("[Task] 会话保活任务已停止")
}

func (t *SessionTask) verifyJob(ctx context.Context) {
	if !t.verifier.IsAuthenticated() {
		return
	}
	if err := t.verifier.Verify(ctx); err != nil {
		// 日志仅记录，下一轮再试
		t.logger.Warn("[Task] 会话校验失败", zap.Error(err))
		return
	}
	t.logger.Debug("[Task] 会话有效")
}
