package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"shop_admin_v1_202610/internal/api/dto"
	"shop_admin_v1_202610/internal/model"
	"shop_admin_v1_202610/pkg/net"
)

// SessionListener 会话变更回调
// user 为 nil 表示会话已销毁 (登出 / Token 失效)
type SessionListener func(ctx context.Context, user *model.AdminUser)

// AuthService 管理员会话
// 持有当前登录身份，负责 Token 的持久化与失效处理
type AuthService struct {
	api    *ApiService
	tokens net.TokenStore
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	user      *model.AdminUser
	loading   bool
	listeners []SessionListener
}

// NewAuthService 工厂方法
// Restore 结束前 Loading 为 true
// 注册 401 回调：任何鉴权请求返回 401 都会销毁当前会话
func NewAuthService(api *ApiService, tokens net.TokenStore, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuthService{
		api:     api,
		tokens:  tokens,
		logger:  logger,
		now:     time.Now,
		loading: true,
	}
	api.OnUnauthorized(s.expire)
	return s
}

// Subscribe 订阅会话变更，回调在锁外同步执行
func (s *AuthService) Subscribe(l SessionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// User 当前管理员 (副本)，未登录返回 nil
func (s *AuthService) User() *model.AdminUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated 是否已登录
func (s *AuthService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Loading 是否正在恢复会话
func (s *AuthService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// ==================== 会话生命周期 ====================

// Restore 启动时用本地 Token 恢复会话
// 1. 没有 Token：直接返回
// 2. JWT 已过期：删除 Token，不发请求
// 3. 调用 /auth/verify 校验，失败则删除 Token
func (s *AuthService) Restore(ctx context.Context) dto.Result[*model.AdminUser] {
	s.setLoading(true)
	defer s.setLoading(false)

	token, err := s.tokens.Get(ctx)
	if err != nil {
		s.logger.Error("[AuthService] 读取本地 Token 失败", zap.Error(err))
		return dto.Fail[*model.AdminUser](err, "Failed to read stored token")
	}
	if token == "" {
		return dto.Fail[*model.AdminUser](nil, "No stored session")
	}

	if tokenExpired(token, s.now()) {
		s.logger.Info("[AuthService] 本地 Token 已过期")
		s.removeToken(ctx)
		return dto.Fail[*model.AdminUser](nil, "Token expired")
	}

	resp, err := s.api.VerifyToken(ctx)
	if err != nil {
		s.logger.Warn("[AuthService] Token 校验失败", zap.Error(err))
		s.removeToken(ctx)
		return dto.Fail[*model.AdminUser](err, "Token verification failed")
	}
	if !resp.Success || resp.User == nil {
		s.removeToken(ctx)
		return dto.Fail[*model.AdminUser](errors.New(resp.Message), "Token verification failed")
	}

	user := s.establish(ctx, resp.User)
	if user == nil {
		s.logger.Warn("[AuthService] 会话建立后立即失效")
		return dto.Fail[*model.AdminUser](net.NewUnauthorized(), "Token verification failed")
	}
	s.logger.Info("[AuthService] 会话已恢复", zap.String("username", user.Username))
	return dto.Ok(user)
}

// Login 登录
func (s *AuthService) Login(ctx context.Context, username, password string) dto.Result[*model.AdminUser] {
	resp, err := s.api.Login(ctx, dto.LoginRequest{Username: username, Password: password})
	if err != nil {
		s.logger.Warn("[AuthService] 登录失败", zap.String("username", username), zap.Error(err))
		return dto.Fail[*model.AdminUser](err, "Login failed")
	}
	if !resp.Success || resp.User == nil {
		return dto.Fail[*model.AdminUser](errors.New(resp.Message), "Login failed")
	}

	// 先落盘 Token，监听方加载配置时需要带上它
	if err := s.tokens.Set(ctx, resp.Token); err != nil {
		s.logger.Error("[AuthService] 保存 Token 失败", zap.Error(err))
		return dto.Fail[*model.AdminUser](err, "Login failed")
	}

	user := s.establish(ctx, resp.User)
	if user == nil {
		s.logger.Warn("[AuthService] 会话建立后立即失效")
		return dto.Fail[*model.AdminUser](net.NewUnauthorized(), "Login failed")
	}
	s.logger.Info("[AuthService] 登录成功", zap.String("username", user.Username))
	return dto.Ok(user)
}

// Logout 登出：删除 Token、清空缓存、销毁身份
func (s *AuthService) Logout(ctx context.Context) {
	s.removeToken(ctx)
	s.api.ClearCache()
	s.destroy(ctx)
	s.logger.Info("[AuthService] 已登出")
}

// Verify 会话保活 (定时任务调用)
// 401 由 expire 处理；网络错误保留会话，等下一轮
func (s *AuthService) Verify(ctx context.Context) error {
	if !s.IsAuthenticated() {
		return nil
	}

	resp, err := s.api.VerifyToken(ctx)
	if err != nil {
		return err
	}
	if !resp.Success {
		s.logger.Warn("[AuthService] 服务端拒绝当前会话", zap.String("message", resp.Message))
		s.Logout(ctx)
		return net.NewNotAuthenticated()
	}
	return nil
}

// expire 401 回调，Token 已由 Dispatcher 删除，缓存已由 ApiService 清空
func (s *AuthService) expire(ctx context.Context) {
	if !s.IsAuthenticated() {
		return
	}
	s.logger.Warn("[AuthService] Token 已失效，会话销毁")
	s.destroy(ctx)
}

// ==================== 个人资料 ====================

// UpdateProfile 修改用户名 / 邮箱
func (s *AuthService) UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) dto.Result[*model.AdminUser] {
	if !s.IsAuthenticated() {
		return dto.Fail[*model.AdminUser](net.ErrNotAuthenticated, "")
	}

	resp, err := s.api.UpdateProfile(ctx, req)
	if err != nil {
		return dto.Fail[*model.AdminUser](err, "Failed to update profile")
	}
	if !resp.Success {
		return dto.Fail[*model.AdminUser](errors.New(resp.Message), "Failed to update profile")
	}

	s.mu.Lock()
	if s.user != nil {
		if resp.User != nil {
			u := *resp.User
			s.user = &u
		} else {
			if req.Username != "" {
				s.user.Username = req.Username
			}
			if req.Email != "" {
				s.user.Email = req.Email
			}
		}
	}
	s.mu.Unlock()

	return dto.Ok(s.User())
}

// ChangePassword 修改密码
func (s *AuthService) ChangePassword(ctx context.Context, current, next string) dto.Result[string] {
	if !s.IsAuthenticated() {
		return dto.Fail[string](net.ErrNotAuthenticated, "")
	}

	resp, err := s.api.ChangePassword(ctx, dto.ChangePasswordRequest{CurrentPassword: current, NewPassword: next})
	if err != nil {
		return dto.Fail[string](err, "Failed to change password")
	}
	if !resp.Success {
		return dto.Fail[string](errors.New(resp.Message), "Failed to change password")
	}
	r := dto.Ok(resp.Message)
	r.Message = resp.Message
	return r
}

// ==================== 内部 ====================

// establish 建立会话并通知监听方
// 监听方加载数据时遇到 401 会销毁刚建立的会话，此时返回 nil
func (s *AuthService) establish(ctx context.Context, user *model.AdminUser) *model.AdminUser {
	u := *user
	s.mu.Lock()
	s.user = &u
	listeners := append([]SessionListener{}, s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(ctx, &u)
	}
	return s.User()
}

func (s *AuthService) destroy(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	listeners := append([]SessionListener{}, s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(ctx, nil)
	}
}

func (s *AuthService) removeToken(ctx context.Context) {
	if err := s.tokens.Remove(ctx); err != nil {
		s.logger.Error("[AuthService] 删除本地 Token 失败", zap.Error(err))
	}
}

func (s *AuthService) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// tokenExpired 不验签，只看 exp
// 非 JWT 或没有 exp 的 Token 交给服务端判断
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
