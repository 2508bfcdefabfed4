package net

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试辅助 ====================

type memTokens struct {
	mu      sync.Mutex
	token   string
	removed int
}

func (m *memTokens) Get(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memTokens) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memTokens) Remove(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.removed++
	return nil
}

// fakeAPI 用 gin 模拟远端 REST API
func fakeAPI(t *testing.T) (*gin.Engine, *httptest.Server) {
	r := gin.New()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return r, srv
}

func newTestDispatcher(tokens TokenStore) Dispatcher {
	return NewDispatcher(resty.New(), tokens, nil)
}

// ==================== 测试用例 ====================

func TestDispatcher_Success(t *testing.T) {
	r, srv := fakeAPI(t)
	var gotAuth, gotRequestID, gotBody string
	r.POST("/products", func(c *gin.Context) {
		gotAuth = c.GetHeader("Authorization")
		gotRequestID = c.GetHeader("X-Request-ID")
		b, _ := io.ReadAll(c.Request.Body)
		gotBody = string(b)
		c.JSON(http.StatusCreated, gin.H{"id": 7})
	})

	d := newTestDispatcher(&memTokens{})
	call := NewJSONCall(http.MethodPost, srv.URL+"/products", AuthHeaders("tok"), []byte(`{"name":"Huile"}`))

	data, err := d.Send(context.Background(), call)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7}`, string(data))
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, `{"name":"Huile"}`, gotBody)
}

func TestDispatcher_RequestFailed(t *testing.T) {
	r, srv := fakeAPI(t)
	r.GET("/with-message", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "boom"})
	})
	r.GET("/plain", func(c *gin.Context) {
		c.String(http.StatusBadGateway, "<html>bad gateway</html>")
	})

	d := newTestDispatcher(&memTokens{token: "tok"})

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantMsg    string
	}{
		{"服务端返回 message", "/with-message", 500, "boom"},
		{"错误体无法解析", "/plain", 502, "HTTP error! status: 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Send(context.Background(), NewJSONCall("", srv.URL+tt.path, AuthHeaders("tok"), nil))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRequestFailed))
			assert.False(t, IsUnauthorized(err))

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestDispatcher_UnauthorizedRemovesToken(t *testing.T) {
	r, srv := fakeAPI(t)
	r.GET("/admin/config", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "jwt expired"})
	})

	tokens := &memTokens{token: "stale"}
	d := newTestDispatcher(tokens)

	_, err := d.Send(context.Background(), NewJSONCall(http.MethodGet, srv.URL+"/admin/config", AuthHeaders("stale"), nil))
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, UnauthorizedMessage, err.Error())
	assert.Equal(t, 1, tokens.removed)

	token, _ := tokens.Get(context.Background())
	assert.Empty(t, token)
}

func TestDispatcher_PublicUnauthorizedKeepsToken(t *testing.T) {
	r, srv := fakeAPI(t)
	r.POST("/auth/login", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
	})

	tokens := &memTokens{token: "keep"}
	d := newTestDispatcher(tokens)

	_, err := d.Send(context.Background(), NewPublicCall(http.MethodPost, srv.URL+"/auth/login", []byte(`{}`)))
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.Equal(t, 0, tokens.removed)
}

func TestDispatcher_Multipart(t *testing.T) {
	r, srv := fakeAPI(t)
	var gotAuth, gotName, gotContent string
	r.POST("/upload/image", func(c *gin.Context) {
		gotAuth = c.GetHeader("Authorization")
		fh, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		f, _ := fh.Open()
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotName, gotContent = fh.Filename, string(b)
		c.JSON(http.StatusOK, gin.H{"imageUrl": "https://cdn/x.png", "publicId": "x"})
	})
	r.POST("/upload/video", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	d := newTestDispatcher(&memTokens{token: "tok"})

	file := File{Field: "image", Name: "x.png", ContentType: "image/png", Reader: strings.NewReader("PNGDATA")}
	data, err := d.Send(context.Background(), NewMultipartCall(srv.URL+"/upload/image", MultipartHeaders("tok"), "Image upload failed", file))
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://cdn/x.png")
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "x.png", gotName)
	assert.Equal(t, "PNGDATA", gotContent)

	video := File{Field: "video", Name: "v.mp4", ContentType: "video/mp4", Reader: strings.NewReader("MP4")}
	_, err = d.Send(context.Background(), NewMultipartCall(srv.URL+"/upload/video", MultipartHeaders("tok"), "Video upload failed", video))
	require.Error(t, err)
	assert.Equal(t, "Video upload failed", err.Error())
}

func TestDispatcher_NetworkError(t *testing.T) {
	_, srv := fakeAPI(t)
	url := srv.URL
	srv.Close()

	tokens := &memTokens{token: "tok"}
	d := newTestDispatcher(tokens)

	_, err := d.Send(context.Background(), NewJSONCall(http.MethodGet, url+"/products", AuthHeaders("tok"), nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, 0, tokens.removed)
}
