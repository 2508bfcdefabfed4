package service

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"shop_admin_v1_202610/internal/repository"
	"shop_admin_v1_202610/pkg/net"
	"shop_admin_v1_202610/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 模拟远端 API ====================

const (
	testUser     = "admin"
	testPassword = "secret"
	testToken    = "tok-1"
)

// fakeAPI 用 gin 模拟商城 REST API，记录每个路由的调用次数
type fakeAPI struct {
	engine *gin.Engine
	srv    *httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	lastAuth map[string]string

	configStatus    int
	dashboardStatus int
	deleteDelay     time.Duration
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{
		hits:            map[string]int{},
		lastAuth:        map[string]string{},
		configStatus:    http.StatusOK,
		dashboardStatus: http.StatusOK,
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		key := c.Request.Method + " " + c.Request.URL.Path
		f.mu.Lock()
		f.hits[key]++
		f.lastAuth[key] = c.GetHeader("Authorization")
		f.mu.Unlock()
		c.Next()
	})
	f.engine = r
	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

// BaseURL 对应配置里的 api.base_url
func (f *fakeAPI) BaseURL() string {
	return f.srv.URL + "/api"
}

func (f *fakeAPI) Hits(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" /api"+path]
}

func (f *fakeAPI) LastAuth(method, path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth[method+" /api"+path]
}

func (f *fakeAPI) SetConfigStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configStatus = code
}

func (f *fakeAPI) SetDashboardStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dashboardStatus = code
}

func (f *fakeAPI) status(which *int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *which
}

func bearerOK(c *gin.Context) bool {
	return c.GetHeader("Authorization") == "Bearer "+testToken
}

// serveShop 注册后台用到的全部路由
func (f *fakeAPI) serveShop() {
	api := f.engine.Group("/api")

	api.POST("/auth/login", func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = c.ShouldBindJSON(&req)
		if req.Username != testUser || req.Password != testPassword {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"token":   testToken,
			"user":    gin.H{"id": 1, "username": testUser, "email": "admin@shop.fr", "role": "admin"},
		})
	})

	api.GET("/auth/verify", func(c *gin.Context) {
		if !bearerOK(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": gin.H{"id": 1, "username": testUser, "role": "admin"}})
	})

	api.GET("/admin/config", func(c *gin.Context) {
		if !bearerOK(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Access token required"})
			return
		}
		if code := f.status(&f.configStatus); code != http.StatusOK {
			c.JSON(code, gin.H{"message": "config unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"shopInfo":    gin.H{"name": "Remote Shop"},
			"contactInfo": gin.H{"orderLink": "https://t.me/remote"},
			"categories":  []gin.H{{"id": 5, "name": "Huiles"}},
			"products": []gin.H{
				{"id": 1, "name": "Huile 10%", "popular": true, "variants": []gin.H{{"name": "10ml", "price": 29.9}}},
			},
		})
	})

	api.GET("/admin/dashboard", func(c *gin.Context) {
		if !bearerOK(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Access token required"})
			return
		}
		if code := f.status(&f.dashboardStatus); code != http.StatusOK {
			c.JSON(code, gin.H{"message": "dashboard unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stats": gin.H{"totalProducts": 1, "totalCategories": 1, "totalPages": 5}})
	})

	api.GET("/config", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"shopInfo": gin.H{"name": "Public Shop"}})
	})

	api.GET("/products", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"id": 1, "name": "Huile 10%"}})
	})
	api.POST("/products", func(c *gin.Context) {
		var p map[string]any
		_ = c.ShouldBindJSON(&p)
		p["id"] = 42
		c.JSON(http.StatusCreated, gin.H{"product": p})
	})

	api.GET("/categories", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"categories": []gin.H{{"id": 5, "name": "Huiles"}}})
	})
	api.POST("/categories", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"category": gin.H{"id": 6, "name": "Fleurs"}})
	})
	api.DELETE("/categories/:id", func(c *gin.Context) {
		f.mu.Lock()
		delay := f.deleteDelay
		f.mu.Unlock()
		time.Sleep(delay)
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	api.GET("/farms", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"id": 1, "name": "Ferme du Sud"}})
	})

	api.POST("/upload/image", func(c *gin.Context) {
		if !bearerOK(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Access token required"})
			return
		}
		fh, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "No image"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"imageUrl": "https://cdn.example.com/upload/v1/" + fh.Filename, "publicId": "p1"})
	})
}

// ==================== 服务构建 ====================

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestApiService(f *fakeAPI, tokens net.TokenStore, opts ...ApiOption) *ApiService {
	client := utils.NewAPIClient(utils.ClientOptions{Timeout: 5 * time.Second}, nil)
	dispatcher := net.NewDispatcher(client, tokens, nil)
	return NewApiService(f.BaseURL(), dispatcher, tokens, opts...)
}

// testStack 完整的客户端：ApiService + AuthService + AdminService
type testStack struct {
	fake   *fakeAPI
	tokens net.TokenStore
	clock  *testClock
	api    *ApiService
	auth   *AuthService
	admin  *AdminService
}

func newTestStack(t *testing.T) *testStack {
	f := newFakeAPI(t)
	f.serveShop()

	tokens := repository.NewMemoryTokenStore()
	clock := newTestClock()
	api := newTestApiService(f, tokens, WithClock(clock.Now))
	auth := NewAuthService(api, tokens, nil)
	admin := NewAdminService(api, auth, nil)

	return &testStack{
		fake:   f,
		tokens: tokens,
		clock:  clock,
		api:    api,
		auth:   auth,
		admin:  admin,
	}
}
