package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// loadState 快照加载状态
type loadState int

const (
	stateUnloaded loadState = iota
	stateLoading
	stateLoaded
	stateFailed
)

func (s loadState) String() string {
	switch s {
	case stateLoading:
		return "loading"
	case stateLoaded:
		return "loaded"
	case stateFailed:
		return "failed"
	default:
		return "unloaded"
	}
}

// loadFlight 一次在途加载，等待方通过 done 得知结束
type loadFlight struct {
	seq  uint64
	done chan struct{}
	err  error
}

// snapshotLoader 单个快照 (配置 / 仪表盘) 的加载状态机
//   - 同一时刻最多一个在途加载，其余调用方等待它结束
//   - 已加载时 Load 直接返回，只有 Refresh 会重新拉取
//   - Reset 使会话代数 +1，之前发起的加载结果一律丢弃
type snapshotLoader[T any] struct {
	name  string
	fetch func(ctx context.Context) (*T, error)
	// 首次加载失败且没有旧值时的兜底数据，nil 表示不兜底
	fallback func() *T
	logger   *zap.Logger

	mu       sync.Mutex
	state    loadState
	data     *T
	loaded   bool
	gen      uint64
	seq      uint64
	inflight *loadFlight
}

func newSnapshotLoader[T any](name string, fetch func(ctx context.Context) (*T, error), fallback func() *T, logger *zap.Logger) *snapshotLoader[T] {
	return &snapshotLoader[T]{
		name:     name,
		fetch:    fetch,
		fallback: fallback,
		logger:   logger,
	}
}

// Load 未加载时拉取一次
func (l *snapshotLoader[T]) Load(ctx context.Context) error {
	return l.load(ctx, false, 0)
}

// Refresh 强制重新拉取
func (l *snapshotLoader[T]) Refresh(ctx context.Context) error {
	return l.RefreshSince(ctx, l.Seq())
}

// RefreshSince 保证返回的数据来自 mark 之后发起的加载
// 在途加载若早于 mark，先等它结束再发起新的；晚于 mark 则直接复用
func (l *snapshotLoader[T]) RefreshSince(ctx context.Context, mark uint64) error {
	return l.load(ctx, true, mark)
}

func (l *snapshotLoader[T]) load(ctx context.Context, force bool, mark uint64) error {
	for {
		l.mu.Lock()
		if f := l.inflight; f != nil {
			l.mu.Unlock()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-f.done:
			}
			if !force || f.seq > mark {
				return f.err
			}
			continue
		}

		// 非强制且已加载，或 mark 之后已有加载成功完成
		if l.loaded && (!force || l.seq > mark) {
			l.mu.Unlock()
			return nil
		}

		f := &loadFlight{seq: l.seq + 1, done: make(chan struct{})}
		l.seq = f.seq
		l.inflight = f
		l.state = stateLoading
		if force {
			l.loaded = false
		}
		gen := l.gen
		l.mu.Unlock()

		l.logger.Debug("[Snapshot] 开始加载", zap.String("name", l.name), zap.Uint64("seq", f.seq), zap.Bool("force", force))

		// 调用方取消不影响本次加载，结果对其他等待方同样有效
		data, err := l.fetch(context.WithoutCancel(ctx))
		l.finish(f, gen, data, err)
		return err
	}
}

func (l *snapshotLoader[T]) finish(f *loadFlight, gen uint64, data *T, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	defer close(f.done)

	f.err = err
	if l.inflight == f {
		l.inflight = nil
	}

	if gen != l.gen {
		l.logger.Debug("[Snapshot] 会话已变更，丢弃加载结果", zap.String("name", l.name))
		return
	}

	if err == nil {
		l.data = data
		l.loaded = true
		l.state = stateLoaded
		return
	}

	l.state = stateFailed
	if l.data == nil && l.fallback != nil {
		l.data = l.fallback()
		l.loaded = true
		l.logger.Warn("[Snapshot] 加载失败，使用默认数据", zap.String("name", l.name), zap.Error(err))
		return
	}
	l.logger.Warn("[Snapshot] 加载失败，保留旧数据", zap.String("name", l.name), zap.Error(err))
}

// Reset 会话变更：清空数据，作废在途加载
func (l *snapshotLoader[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.data = nil
	l.loaded = false
	l.state = stateUnloaded
	l.inflight = nil
}

// Snapshot 当前数据 (只读，不要修改)
func (l *snapshotLoader[T]) Snapshot() *T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data
}

func (l *snapshotLoader[T]) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

func (l *snapshotLoader[T]) State() loadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Seq 已发起的加载次数
func (l *snapshotLoader[T]) Seq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}
