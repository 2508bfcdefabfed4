package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"shop_admin_v1_202610/internal/controller"
	"shop_admin_v1_202610/internal/middleware"
	"shop_admin_v1_202610/internal/model"
	"shop_admin_v1_202610/internal/service"
)

// Controllers 网关控制器集合
type Controllers struct {
	Session *controller.SessionController
	Admin   *controller.AdminController
	Upload  *controller.UploadController
	Debug   *controller.DebugController
}

// Session 网关依赖的会话能力
type Session interface {
	middleware.SessionChecker
	Subscribe(l service.SessionListener)
}

// InitRoutes 注册所有路由
// refreshCooldown 为强制刷新接口的冷却时间，0 表示不限；会话切换时冷却清零
func InitRoutes(r *gin.Engine, ctl Controllers, session Session, refreshCooldown time.Duration) {
	limiter := middleware.NewRefreshLimiter(nil)
	session.Subscribe(func(context.Context, *model.AdminUser) {
		limiter.Reset()
	})

	// 1. 调试
	r.GET("/debug/calls", ctl.Debug.Calls)

	api := r.Group("/api")
	{
		// 2. 会话 (登录 / 查询不需要已登录)
		s := api.Group("/session")
		{
			s.GET("", ctl.Session.Current)
			s.POST("/login", ctl.Session.Login)
			s.POST("/logout", ctl.Session.Logout)
			s.PUT("/profile", middleware.RequireSession(session), ctl.Session.UpdateProfile)
			s.PUT("/password", middleware.RequireSession(session), ctl.Session.ChangePassword)
		}

		// 3. 以下均需登录
		authed := api.Group("", middleware.RequireSession(session))

		cfg := authed.Group("/config")
		{
			cfg.GET("", ctl.Admin.GetConfig)
			cfg.POST("/refresh", middleware.RefreshCooldown(limiter, "config", refreshCooldown), ctl.Admin.RefreshConfig)
		}
		dash := authed.Group("/dashboard")
		{
			dash.GET("", ctl.Admin.GetDashboard)
			dash.POST("/refresh", middleware.RefreshCooldown(limiter, "dashboard", refreshCooldown), ctl.Admin.RefreshDashboard)
		}
		authed.PUT("/shop-settings", ctl.Admin.UpdateShopSettings)

		products := authed.Group("/products")
		{
			products.POST("", ctl.Admin.CreateProduct)
			products.PUT("/bulk", ctl.Admin.BulkUpdateProducts)
			products.PUT("/:id", ctl.Admin.UpdateProduct)
			products.DELETE("/:id", ctl.Admin.DeleteProduct)
		}
		categories := authed.Group("/categories")
		{
			categories.POST("", ctl.Admin.CreateCategory)
			categories.PUT("/:id", ctl.Admin.UpdateCategory)
			categories.DELETE("/:id", ctl.Admin.DeleteCategory)
		}
		farms := authed.Group("/farms")
		{
			farms.POST("", ctl.Admin.CreateFarm)
			farms.PUT("/:id", ctl.Admin.UpdateFarm)
			farms.DELETE("/:id", ctl.Admin.DeleteFarm)
		}
		social := authed.Group("/social-media")
		{
			social.POST("", ctl.Admin.CreateSocialMedia)
			social.PUT("/:id", ctl.Admin.UpdateSocialMedia)
			social.DELETE("/:id", ctl.Admin.DeleteSocialMedia)
		}

		upload := authed.Group("/upload")
		{
			upload.POST("/image", ctl.Upload.UploadImage)
			upload.POST("/images", ctl.Upload.UploadImages)
			upload.POST("/video", ctl.Upload.UploadVideo)
			upload.DELETE("/media", ctl.Upload.DeleteMedia)
		}
	}
}
