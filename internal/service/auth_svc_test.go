package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop_admin_v1_202610/internal/api/dto"
	"shop_admin_v1_202610/internal/model"
)

// sessionRecorder 记录会话变更回调
type sessionRecorder struct {
	mu     sync.Mutex
	events []*model.AdminUser
}

func (r *sessionRecorder) listen(_ context.Context, u *model.AdminUser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, u)
}

func (r *sessionRecorder) Events() []*model.AdminUser {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.AdminUser{}, r.events...)
}

func signedToken(t *testing.T, exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("server-side-secret"))
	require.NoError(t, err)
	return s
}

func TestAuthService_LoginSuccess(t *testing.T) {
	st := newTestStack(t)
	rec := &sessionRecorder{}
	st.auth.Subscribe(rec.listen)
	ctx := context.Background()

	r := st.auth.Login(ctx, testUser, testPassword)
	require.True(t, r.Success, r.Error)
	assert.Equal(t, testUser, r.Data.Username)
	assert.Equal(t, model.ID("1"), r.Data.ID)
	assert.True(t, st.auth.IsAuthenticated())

	token, _ := st.tokens.Get(ctx)
	assert.Equal(t, testToken, token)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, testUser, events[0].Username)
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()

	r := st.auth.Login(ctx, testUser, "wrong")
	assert.False(t, r.Success)
	assert.Equal(t, "Invalid credentials", r.Error)
	assert.False(t, st.auth.IsAuthenticated())

	token, _ := st.tokens.Get(ctx)
	assert.Empty(t, token)
	assert.Equal(t, 0, st.fake.Hits(http.MethodGet, "/admin/config"))
}

func TestAuthService_Logout(t *testing.T) {
	st := newTestStack(t)
	rec := &sessionRecorder{}
	st.auth.Subscribe(rec.listen)
	ctx := context.Background()

	require.True(t, st.auth.Login(ctx, testUser, testPassword).Success)
	require.Positive(t, st.api.CacheSize())

	st.auth.Logout(ctx)

	assert.False(t, st.auth.IsAuthenticated())
	assert.Nil(t, st.auth.User())
	assert.Equal(t, 0, st.api.CacheSize())
	token, _ := st.tokens.Get(ctx)
	assert.Empty(t, token)

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Nil(t, events[1], "登出通知 nil")
}

func TestAuthService_Restore(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		wantOK      bool
		wantErr     string
		wantVerify  int
		wantRemoved bool
	}{
		{name: "无本地 Token", token: "", wantErr: "No stored session"},
		{name: "有效 Token", token: testToken, wantOK: true, wantVerify: 1},
		{name: "服务端拒绝", token: "revoked", wantErr: "Access token required", wantVerify: 1, wantRemoved: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestStack(t)
			ctx := context.Background()
			if tt.token != "" {
				require.NoError(t, st.tokens.Set(ctx, tt.token))
			}
			assert.True(t, st.auth.Loading(), "恢复前处于加载中")

			r := st.auth.Restore(ctx)

			assert.False(t, st.auth.Loading())
			assert.Equal(t, tt.wantOK, r.Success)
			assert.Equal(t, tt.wantErr, r.Error)
			assert.Equal(t, tt.wantVerify, st.fake.Hits(http.MethodGet, "/auth/verify"))

			token, _ := st.tokens.Get(ctx)
			if tt.wantRemoved {
				assert.Empty(t, token)
			}
			if tt.wantOK {
				assert.True(t, st.admin.ConfigLoaded(), "恢复会话后自动加载配置")
			}
		})
	}
}

func TestAuthService_RestoreExpiredJWTSkipsNetwork(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	require.NoError(t, st.tokens.Set(ctx, signedToken(t, time.Now().Add(-time.Hour))))

	r := st.auth.Restore(ctx)
	assert.False(t, r.Success)
	assert.Equal(t, "Token expired", r.Error)
	assert.Equal(t, 0, st.fake.Hits(http.MethodGet, "/auth/verify"))

	token, _ := st.tokens.Get(ctx)
	assert.Empty(t, token)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, tokenExpired(signedToken(t, now.Add(-time.Minute)), now))
	assert.False(t, tokenExpired(signedToken(t, now.Add(time.Hour)), now))
	assert.False(t, tokenExpired("opaque-token", now), "非 JWT 交给服务端判断")
}

func TestAuthService_UnauthorizedDestroysSession(t *testing.T) {
	st := newTestStack(t)
	rec := &sessionRecorder{}
	st.auth.Subscribe(rec.listen)
	ctx := context.Background()

	require.True(t, st.auth.Login(ctx, testUser, testPassword).Success)

	// 服务端吊销 Token
	require.NoError(t, st.tokens.Set(ctx, "revoked"))
	st.clock.Advance(time.Minute)
	err := st.auth.Verify(ctx)
	require.Error(t, err)

	assert.False(t, st.auth.IsAuthenticated())
	events := rec.Events()
	require.Len(t, events, 2)
	assert.Nil(t, events[1])
}

func TestAuthService_VerifyKeepsValidSession(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()

	// 未登录时不发请求
	require.NoError(t, st.auth.Verify(ctx))
	assert.Equal(t, 0, st.fake.Hits(http.MethodGet, "/auth/verify"))

	require.True(t, st.auth.Login(ctx, testUser, testPassword).Success)
	st.clock.Advance(time.Minute)
	require.NoError(t, st.auth.Verify(ctx))
	assert.True(t, st.auth.IsAuthenticated())
	assert.Equal(t, 1, st.fake.Hits(http.MethodGet, "/auth/verify"))
}

func TestAuthService_Profile(t *testing.T) {
	st := newTestStack(t)
	st.fake.engine.PUT("/api/auth/profile", func(c *gin.Context) {
		var req dto.ProfileUpdateRequest
		_ = c.ShouldBindJSON(&req)
		c.JSON(http.StatusOK, gin.H{"success": true, "user": gin.H{"id": 1, "username": req.Username, "email": req.Email}})
	})
	st.fake.engine.PUT("/api/auth/change-password", func(c *gin.Context) {
		var req dto.ChangePasswordRequest
		_ = c.ShouldBindJSON(&req)
		if req.CurrentPassword != testPassword {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Current password is incorrect"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated"})
	})
	ctx := context.Background()

	// 未登录
	assert.Equal(t, "Not authenticated", st.auth.UpdateProfile(ctx, dto.ProfileUpdateRequest{Username: "x"}).Error)

	require.True(t, st.auth.Login(ctx, testUser, testPassword).Success)

	r := st.auth.UpdateProfile(ctx, dto.ProfileUpdateRequest{Username: "boss", Email: "boss@shop.fr"})
	require.True(t, r.Success, r.Error)
	assert.Equal(t, "boss", st.auth.User().Username)

	pw := st.auth.ChangePassword(ctx, "wrong", "new-secret")
	assert.False(t, pw.Success)
	assert.Equal(t, "Current password is incorrect", pw.Error)

	pw = st.auth.ChangePassword(ctx, testPassword, "new-secret")
	assert.True(t, pw.Success)
	assert.Equal(t, "Password updated", pw.Message)
	assert.True(t, st.auth.IsAuthenticated())
}
