package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shop_admin_v1_202610/internal/config"
	"shop_admin_v1_202610/internal/controller"
	"shop_admin_v1_202610/internal/middleware"
	"shop_admin_v1_202610/internal/model"
	"shop_admin_v1_202610/internal/repository"
	"shop_admin_v1_202610/internal/router"
	"shop_admin_v1_202610/internal/service"
	"shop_admin_v1_202610/internal/task"
	"shop_admin_v1_202610/pkg/database"
	"shop_admin_v1_202610/pkg/logger"
	"shop_admin_v1_202610/pkg/net"
	"shop_admin_v1_202610/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径 (默认查找 ./config.yaml)")
	flag.Parse()

	// 1. 配置 & 日志
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	zl := logger.Must(logger.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
	defer func() { _ = zl.Sync() }()

	// 2. 初始化数据库
	db, err := database.InitDB(cfg.Store.DSN, zl, &model.ClientState{})
	if err != nil {
		zl.Fatal("数据库初始化失败", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	// 3. 初始化依赖
	deps := initDependencies(cfg, db, zl)

	// 4. 恢复上次会话
	restoreSession(deps)

	// 5. 启动定时任务
	sessionTask := initTasks(cfg, deps)

	// 6. 初始化路由
	r := setupRouter(cfg, deps)

	// 7. 启动服务
	startServer(cfg.Server.Port, r, zl)

	if sessionTask != nil {
		sessionTask.Stop()
	}
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Logger      *zap.Logger
	Tokens      net.TokenStore
	Monitor     *net.CallMonitor
	Dispatcher  net.Dispatcher
	Services    *Services
	Controllers router.Controllers
}

// Services 服务集合
type Services struct {
	Api   *service.ApiService
	Auth  *service.AuthService
	Admin *service.AdminService
}

// ==================== 初始化函数 ====================

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB, zl *zap.Logger) *Dependencies {
	// -------- 存储 --------
	tokens := repository.NewTokenRepository(db)

	// -------- 网络层 --------
	client := utils.NewAPIClient(utils.ClientOptions{
		Timeout:    cfg.API.Timeout,
		RetryCount: cfg.API.RetryCount,
		Debug:      cfg.API.Debug,
	}, zl)
	monitor := net.NewCallMonitor(zl)
	monitor.Attach(client)
	dispatcher := net.NewDispatcher(client, tokens, zl)

	// -------- 业务服务 --------
	apiSvc := service.NewApiService(cfg.API.BaseURL, dispatcher, tokens,
		service.WithCacheTimeout(cfg.API.CacheTimeout),
		service.WithLogger(zl),
	)
	authSvc := service.NewAuthService(apiSvc, tokens, zl)
	adminSvc := service.NewAdminService(apiSvc, authSvc, zl)

	services := &Services{
		Api:   apiSvc,
		Auth:  authSvc,
		Admin: adminSvc,
	}

	return &Dependencies{
		DB:          db,
		Logger:      zl,
		Tokens:      tokens,
		Monitor:     monitor,
		Dispatcher:  dispatcher,
		Services:    services,
		Controllers: initControllers(services, monitor),
	}
}

// initControllers 初始化所有控制器
func initControllers(svc *Services, monitor *net.CallMonitor) router.Controllers {
	return router.Controllers{
		Session: controller.NewSessionController(svc.Auth),
		Admin:   controller.NewAdminController(svc.Admin),
		Upload:  controller.NewUploadController(svc.Admin),
		Debug:   controller.NewDebugController(monitor, svc.Api),
	}
}

// restoreSession 用本地 Token 恢复会话，成功后会自动加载配置与看板
func restoreSession(deps *Dependencies) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	r := deps.Services.Auth.Restore(ctx)
	if !r.Success || r.Data == nil {
		deps.Logger.Info("未恢复会话，等待登录", zap.String("reason", r.Error))
		return
	}
	deps.Logger.Info("会话已恢复",
		zap.String("username", r.Data.Username),
		zap.Bool("config_loaded", deps.Services.Admin.ConfigLoaded()),
	)
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(cfg *config.Config, deps *Dependencies) *task.SessionTask {
	if cfg.Session.VerifySpec == "" {
		deps.Logger.Info("会话保活未启用")
		return nil
	}

	sessionTask := task.NewSessionTask(deps.Services.Auth, cfg.Session.VerifySpec, deps.Logger)
	if err := sessionTask.Start(); err != nil {
		deps.Logger.Fatal("定时任务启动失败", zap.Error(err))
	}
	return sessionTask
}

// ==================== 路由 ====================

func setupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(deps.Logger))
	router.InitRoutes(r, deps.Controllers, deps.Services.Auth, cfg.Server.RefreshCooldown)
	return r
}

// ==================== 服务启动 ====================

// startServer 启动服务，收到退出信号后优雅关闭
func startServer(port string, r *gin.Engine, zl *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		zl.Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("服务强制关闭", zap.Error(err))
	}

	zl.Info("服务已退出")
}
