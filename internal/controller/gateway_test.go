package controller_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop_admin_v1_202610/internal/controller"
	"shop_admin_v1_202610/internal/repository"
	"shop_admin_v1_202610/internal/router"
	"shop_admin_v1_202610/internal/service"
	"shop_admin_v1_202610/pkg/net"
	"shop_admin_v1_202610/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 模拟远端 API ====================

type remote struct {
	mu             sync.Mutex
	deletedMedia   map[string]string
	uploadedImages []string
}

func newRemote(t *testing.T) (*remote, string) {
	rm := &remote{deletedMedia: map[string]string{}}
	r := gin.New()
	api := r.Group("/api")

	api.POST("/auth/login", func(c *gin.Context) {
		var req map[string]string
		_ = c.ShouldBindJSON(&req)
		if req["password"] != "secret" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "token": "tok", "user": gin.H{"id": 1, "username": req["username"]}})
	})
	api.GET("/admin/config", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"shopInfo": gin.H{"name": "Remote Shop"}, "contactInfo": gin.H{"orderLink": "https://t.me/remote"}})
	})
	api.GET("/admin/dashboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"stats": gin.H{"totalProducts": 3}})
	})
	api.POST("/products", func(c *gin.Context) {
		var p map[string]any
		_ = c.ShouldBindJSON(&p)
		p["id"] = 9
		c.JSON(http.StatusCreated, p)
	})
	api.DELETE("/upload/media", func(c *gin.Context) {
		var req map[string]string
		_ = c.ShouldBindJSON(&req)
		rm.mu.Lock()
		rm.deletedMedia[req["publicId"]] = req["resourceType"]
		rm.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"success": true, "result": "ok"})
	})
	api.POST("/upload/image", func(c *gin.Context) {
		fh, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "No image"})
			return
		}
		rm.mu.Lock()
		rm.uploadedImages = append(rm.uploadedImages, fh.Filename)
		rm.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"imageUrl": "https://cdn.example.com/upload/v1/" + fh.Filename, "publicId": "p1"})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return rm, srv.URL + "/api"
}

// ==================== 网关 ====================

func newGateway(t *testing.T) (*gin.Engine, *remote) {
	rm, baseURL := newRemote(t)

	tokens := repository.NewMemoryTokenStore()
	client := utils.NewAPIClient(utils.ClientOptions{Timeout: 5 * time.Second}, nil)
	monitor := net.NewCallMonitor(nil)
	monitor.Attach(client)

	apiSvc := service.NewApiService(baseURL, net.NewDispatcher(client, tokens, nil), tokens)
	authSvc := service.NewAuthService(apiSvc, tokens, nil)
	adminSvc := service.NewAdminService(apiSvc, authSvc, nil)

	r := gin.New()
	router.InitRoutes(r, router.Controllers{
		Session: controller.NewSessionController(authSvc),
		Admin:   controller.NewAdminController(adminSvc),
		Upload:  controller.NewUploadController(adminSvc),
		Debug:   controller.NewDebugController(monitor, apiSvc),
	}, authSvc, time.Minute)
	return r, rm
}

func performJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func loginGateway(t *testing.T, r http.Handler) {
	w := performJSON(r, http.MethodPost, "/api/session/login", gin.H{"username": "admin", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

// ==================== 测试用例 ====================

func TestGateway_RequiresSession(t *testing.T) {
	r, _ := newGateway(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/config"},
		{http.MethodGet, "/api/dashboard"},
		{http.MethodPost, "/api/products"},
		{http.MethodDelete, "/api/categories/5"},
		{http.MethodDelete, "/api/upload/media"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := performJSON(r, p.method, p.path, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestGateway_LoginAndSnapshots(t *testing.T) {
	r, _ := newGateway(t)

	w := performJSON(r, http.MethodPost, "/api/session/login", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["error"])

	w = performJSON(r, http.MethodPost, "/api/session/login", gin.H{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "缺少密码")

	loginGateway(t, r)

	w = performJSON(r, http.MethodGet, "/api/session", nil)
	assert.Equal(t, true, decode(t, w)["authenticated"])

	w = performJSON(r, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["loaded"])
	assert.Equal(t, false, body["loading"])
	assert.Equal(t, "Remote Shop", body["config"].(map[string]any)["shopInfo"].(map[string]any)["name"])

	w = performJSON(r, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["stats"].(map[string]any)
	assert.Equal(t, float64(3), stats["totalProducts"])

	w = performJSON(r, http.MethodPost, "/api/session/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = performJSON(r, http.MethodGet, "/api/config", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGateway_CreateProduct(t *testing.T) {
	r, _ := newGateway(t)
	loginGateway(t, r)

	w := performJSON(r, http.MethodPost, "/api/products", gin.H{"name": "Huile"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "没有有效规格")

	w = performJSON(r, http.MethodPost, "/api/products", gin.H{
		"name":     "Huile",
		"variants": []gin.H{{"name": "10ml", "price": 29.9}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(9), data["id"])
	assert.Equal(t, "https://t.me/remote", data["orderLink"])
}

func TestGateway_DeleteMediaByURL(t *testing.T) {
	r, rm := newGateway(t)
	loginGateway(t, r)

	w := performJSON(r, http.MethodDelete, "/api/upload/media", gin.H{
		"url":          "https://res.cloudinary.com/demo/video/upload/v1712345678/cbd-shop/videos/clip.mp4",
		"resourceType": "video",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rm.mu.Lock()
	defer rm.mu.Unlock()
	assert.Equal(t, "video", rm.deletedMedia["cbd-shop/videos/clip"])

	w = performJSON(r, http.MethodDelete, "/api/upload/media", gin.H{"url": "https://example.com/x.jpg"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGateway_UploadImage(t *testing.T) {
	r, rm := newGateway(t)
	loginGateway(t, r)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="huile.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write([]byte("PNG"))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, "/api/upload/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "https://cdn.example.com/upload/v1/huile.png", data["imageUrl"])

	rm.mu.Lock()
	defer rm.mu.Unlock()
	assert.Equal(t, []string{"huile.png"}, rm.uploadedImages)
}

func TestGateway_RefreshCooldown(t *testing.T) {
	r, _ := newGateway(t)
	loginGateway(t, r)

	w := performJSON(r, http.MethodPost, "/api/config/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["loaded"])

	w = performJSON(r, http.MethodPost, "/api/config/refresh", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = performJSON(r, http.MethodPost, "/api/dashboard/refresh", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 重新登录后冷却清零
	w = performJSON(r, http.MethodPost, "/api/session/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	loginGateway(t, r)
	w = performJSON(r, http.MethodPost, "/api/config/refresh", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateway_DebugCalls(t *testing.T) {
	r, _ := newGateway(t)
	loginGateway(t, r)

	w := performJSON(r, http.MethodGet, "/debug/calls", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	// login + config + dashboard
	assert.Equal(t, float64(3), body["total"])
	assert.Len(t, body["calls"], 3)
	assert.Equal(t, float64(2), body["cacheSize"])
}
