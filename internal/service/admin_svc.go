package service

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"go.uber.org/zap"

	"shop_admin_v1_202610/internal/api/dto"
	"shop_admin_v1_202610/internal/model"
	"shop_admin_v1_202610/pkg/net"
)

// AdminService 后台数据协调
// 持有配置与看板两个快照，登录后自动加载，写操作成功后刷新
type AdminService struct {
	api    *ApiService
	auth   *AuthService
	logger *zap.Logger

	config    *snapshotLoader[model.Configuration]
	dashboard *snapshotLoader[model.Dashboard]

	// 进行中的写操作数
	busy atomic.Int32
}

// NewAdminService 工厂方法，订阅会话变更
func NewAdminService(api *ApiService, auth *AuthService, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AdminService{
		api:    api,
		auth:   auth,
		logger: logger,
	}
	s.config = newSnapshotLoader("config", api.GetAdminConfig, model.DefaultConfig, logger)
	s.dashboard = newSnapshotLoader("dashboard", api.GetDashboard, nil, logger)

	auth.Subscribe(s.onSessionChange)
	return s
}

// onSessionChange 新会话：作废旧快照，先加载配置，成功后再加载看板
// 会话销毁：清空快照
func (s *AdminService) onSessionChange(ctx context.Context, user *model.AdminUser) {
	s.config.Reset()
	s.dashboard.Reset()

	if user == nil {
		s.logger.Info("[AdminService] 会话已销毁，快照已清空")
		return
	}

	s.LoadConfig(ctx)
	if s.config.Loaded() {
		s.LoadDashboard(ctx)
	}
}

// ==================== 快照 ====================

// LoadConfig 加载店铺配置，已加载时直接返回
// 首次加载失败时回退为默认配置，Data 始终有值
func (s *AdminService) LoadConfig(ctx context.Context) dto.Result[*model.Configuration] {
	return s.loadConfig(ctx, s.config.Load)
}

// RefreshConfig 强制重新加载配置 (跳过响应缓存)
func (s *AdminService) RefreshConfig(ctx context.Context) dto.Result[*model.Configuration] {
	s.api.ClearCacheForEndpoint(prefixAdminConfig)
	return s.loadConfig(ctx, s.config.Refresh)
}

func (s *AdminService) loadConfig(ctx context.Context, load func(context.Context) error) dto.Result[*model.Configuration] {
	if !s.auth.IsAuthenticated() {
		r := dto.Fail[*model.Configuration](net.ErrNotAuthenticated, "")
		r.Data = s.Config()
		return r
	}
	if err := load(ctx); err != nil {
		r := dto.Fail[*model.Configuration](err, "Failed to load configuration")
		r.Data = s.Config()
		return r
	}
	return dto.Ok(s.Config())
}

// LoadDashboard 加载看板，已加载时直接返回
func (s *AdminService) LoadDashboard(ctx context.Context) dto.Result[*model.Dashboard] {
	return s.loadDashboard(ctx, s.dashboard.Load)
}

// RefreshDashboard 强制重新加载看板 (跳过响应缓存)
func (s *AdminService) RefreshDashboard(ctx context.Context) dto.Result[*model.Dashboard] {
	s.api.ClearCacheForEndpoint(prefixDashboard)
	return s.loadDashboard(ctx, s.dashboard.Refresh)
}

func (s *AdminService) loadDashboard(ctx context.Context, load func(context.Context) error) dto.Result[*model.Dashboard] {
	if !s.auth.IsAuthenticated() {
		return notAuthenticated[*model.Dashboard]()
	}
	if err := load(ctx); err != nil {
		r := dto.Fail[*model.Dashboard](err, "Failed to load dashboard")
		r.Data = s.Dashboard()
		return r
	}
	return dto.Ok(s.Dashboard())
}

// Config 当前配置副本，从不返回 nil
func (s *AdminService) Config() *model.Configuration {
	if c := s.config.Snapshot(); c != nil {
		return c.Clone()
	}
	return model.DefaultConfig()
}

// Dashboard 当前看板副本，nil 表示暂无数据
func (s *AdminService) Dashboard() *model.Dashboard {
	return s.dashboard.Snapshot().Clone()
}

// DashboardStats 看板统计，看板无数据时按配置计算
func (s *AdminService) DashboardStats() model.DashboardStats {
	if d := s.dashboard.Snapshot(); d != nil {
		return d.Stats
	}
	return model.StatsFromConfig(s.Config())
}

func (s *AdminService) ConfigLoaded() bool    { return s.config.Loaded() }
func (s *AdminService) DashboardLoaded() bool { return s.dashboard.Loaded() }

// Loading 配置加载中或有写操作未完成
func (s *AdminService) Loading() bool {
	return s.config.State() == stateLoading || s.busy.Load() > 0
}

// ==================== 写操作 ====================

func notAuthenticated[T any]() dto.Result[T] {
	return dto.Fail[T](net.ErrNotAuthenticated, "")
}

// mutation 写操作的公共流程
//  1. 未登录直接失败，不发请求
//  2. 调用接口
//  3. 成功后刷新配置，商品相关再刷新看板
func mutation[T any](ctx context.Context, s *AdminService, op string, withDashboard bool, fn func(ctx context.Context) (T, error)) dto.Result[T] {
	if !s.auth.IsAuthenticated() {
		return notAuthenticated[T]()
	}

	s.busy.Add(1)
	defer s.busy.Add(-1)

	// 在请求发出前取标记：同一时刻的重复操作 (如连点删除) 共用一次刷新
	configMark, dashMark := s.config.Seq(), s.dashboard.Seq()

	out, err := fn(ctx)
	if err != nil {
		s.logger.Warn("[AdminService] 操作失败", zap.String("op", op), zap.Error(err))
		return dto.Fail[T](err, "Failed to "+op)
	}

	if err := s.config.RefreshSince(ctx, configMark); err != nil {
		s.logger.Warn("[AdminService] 刷新配置失败", zap.String("op", op), zap.Error(err))
	}
	if withDashboard {
		if err := s.dashboard.RefreshSince(ctx, dashMark); err != nil {
			s.logger.Warn("[AdminService] 刷新看板失败", zap.String("op", op), zap.Error(err))
		}
	}

	s.logger.Info("[AdminService] 操作成功", zap.String("op", op))
	return dto.Ok(out)
}

// prepareProduct 整理并校验商品
func (s *AdminService) prepareProduct(p model.Product) (*model.Product, error) {
	p.Normalize(s.Config().ContactInfo.OrderLink)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// AddProduct 新增商品
func (s *AdminService) AddProduct(ctx context.Context, p model.Product) dto.Result[*model.Product] {
	if !s.auth.IsAuthenticated() {
		return notAuthenticated[*model.Product]()
	}
	prepared, err := s.prepareProduct(p)
	if err != nil {
		return dto.Fail[*model.Product](err, "Invalid product")
	}
	return mutation(ctx, s, "add product", true, func(ctx context.Context) (*model.Product, error) {
		return s.api.CreateProduct(ctx, prepared)
	})
}

// UpdateProduct 修改商品
func (s *AdminService) UpdateProduct(ctx context.Context, id model.ID, p model.Product) dto.Result[*model.Product] {
	if !s.auth.IsAuthenticated() {
		return notAuthenticated[*model.Product]()
	}
	prepared, err := s.prepareProduct(p)
	if err != nil {
		return dto.Fail[*model.Product](err, "Invalid product")
	}
	return mutation(ctx, s, "update product", true, func(ctx context.Context) (*model.Product, error) {
		return s.api.UpdateProduct(ctx, id, prepared)
	})
}

// DeleteProduct 删除商品
func (s *AdminService) DeleteProduct(ctx context.Context, id model.ID) dto.Result[dto.Empty] {
	return mutation(ctx, s, "delete product", true, func(ctx context.Context) (dto.Empty, error) {
		return dto.Empty{}, s.api.DeleteProduct(ctx, id)
	})
}

// BulkUpdateProducts 批量修改商品 (如批量设为热门)
func (s *AdminService) BulkUpdateProducts(ctx context.Context, req model.BulkUpdate) dto.Result[json.RawMessage] {
	return mutation(ctx, s, "bulk update products", true, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.BulkUpdateProducts(ctx, req)
	})
}

// AddCategory 新增分类
func (s *AdminService) AddCategory(ctx context.Context, c model.Category) dto.Result[*model.Category] {
	if !s.auth.IsAuthenticated() {
		return notAuthenticated[*model.Category]()
	}
	if err := c.Validate(); err != nil {
		return dto.Fail[*model.Category](err, "Invalid category")
	}
	return mutation(ctx, s, "add category", false, func(ctx context.Context) (*model.Category, error) {
		return s.api.CreateCategory(ctx, &c)
	})
}

// UpdateCategory 修改分类
func (s *AdminService) UpdateCategory(ctx context.Context, id model.ID, c model.Category) dto.Result[*model.Category] {
	if !s.auth.IsAuthenticated() {
		return notAuthenticated[*model.Category]()
	}
	if err := c.Validate(); err != nil {
		return dto.Fail[*model.Category](err, "Invalid category")
	}
	return mutation(ctx, s, "update category", false, func(ctx context.Context) (*model.Category, error) {
		return s.api.UpdateCategory(ctx, id, &c)
	})
}

// DeleteCategory 删除分类
func (s *AdminService) DeleteCategory(ctx context.Context, id model.ID) dto.Result[dto.Empty] {
	return mutation(ctx, s, "delete category", false, func(ctx context.Context) (dto.Empty, error) {
		return dto.Empty{}, s.api.DeleteCategory(ctx, id)
	})
}

// AddFarm 新增农场
func (s *AdminService) AddFarm(ctx context.Context, f model.Farm) dto.Result[*model.Farm] {
	if !s.auth.IsAuthenticated() {
		return notAuthenticated[*model.Farm]()
	}
	if err := f.Validate(); err != nil {
		return dto.Fail[*model.Farm](err, "Invalid farm")
	}
	return mutation(ctx, s, "add farm", false, func(ctx context.Context) (*model.Farm, error) {
		return s.api.CreateFarm(ctx, &f)
	})
}

// UpdateFarm 修改农场
func (s *AdminService) UpdateFarm(ctx context.Context, id model.ID, f model.Farm) dto.Result[*model.Farm] {
	if !s.auth.IsAuthenticated() {
		return notAuthenticated[*model.Farm]()
	}
	if err := f.Validate(); err != nil {
		return dto.Fail[*model.Farm](err, "Invalid farm")
	}
	return mutation(ctx, s, "update farm", false, func(ctx context.Context) (*model.Farm, error) {
		return s.api.UpdateFarm(ctx, id, &f)
	})
}

// DeleteFarm 删除农场
func (s *AdminService) DeleteFarm(ctx context.Context, id model.ID) dto.Result[dto.Empty] {
	return mutation(ctx, s, "delete farm", false, func(ctx context.Context) (dto.Empty, error) {
		return dto.Empty{}, s.api.DeleteFarm(ctx, id)
	})
}

// AddSocialMedia 新增社交链接
func (s *AdminService) AddSocialMedia(ctx context.Context, l model.SocialLink) dto.Result[*model.SocialLink] {
	if !s.auth.IsAuthenticated() {
		return notAuthenticated[*model.SocialLink]()
	}
	if err := l.Validate(); err != nil {
		return dto.Fail[*model.SocialLink](err, "Invalid social link")
	}
	return mutation(ctx, s, "add social media", false, func(ctx context.Context) (*model.SocialLink, error) {
		return s.api.CreateSocialMedia(ctx, &l)
	})
}

// UpdateSocialMedia 修改社交链接
func (s *AdminService) UpdateSocialMedia(ctx context.Context, id model.ID, l model.SocialLink) dto.Result[*model.SocialLink] {
	if !s.auth.IsAuthenticated() {
		return notAuthenticated[*model.SocialLink]()
	}
	if err := l.Validate(); err != nil {
		return dto.Fail[*model.SocialLink](err, "Invalid social link")
	}
	return mutation(ctx, s, "update social media", false, func(ctx context.Context) (*model.SocialLink, error) {
		return s.api.UpdateSocialMedia(ctx, id, &l)
	})
}

// DeleteSocialMedia 删除社交链接
func (s *AdminService) DeleteSocialMedia(ctx context.Context, id model.ID) dto.Result[dto.Empty] {
	return mutation(ctx, s, "delete social media", false, func(ctx context.Context) (dto.Empty, error) {
		return dto.Empty{}, s.api.DeleteSocialMedia(ctx, id)
	})
}

// UpdateShopSettings 修改店铺设置
func (s *AdminService) UpdateShopSettings(ctx context.Context, settings model.ShopSettings) dto.Result[json.RawMessage] {
	return mutation(ctx, s, "update shop settings", false, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.UpdateShopSettings(ctx, settings)
	})
}

// ==================== 媒体 ====================
// 只做登录校验，不刷新快照

// UploadImage 上传单张图片
func (s *AdminService) UploadImage(ctx context.Context, f dto.UploadFile) dto.Result[*dto.UploadImageResponse] {
	if !s.auth.IsAuthenticated() {
		return notAuthenticated[*dto.UploadImageResponse]()
	}
	resp, err := s.api.UploadImage(ctx, f)
	if err != nil {
		return dto.Fail[*dto.UploadImageResponse](err, "Image upload failed")
	}
	return dto.Ok(resp)
}

// UploadImages 批量上传图片
func (s *AdminService) UploadImages(ctx context.Context, files []dto.UploadFile) dto.Result[*dto.UploadImagesResponse] {
	if !s.auth.IsAuthenticated() {
		return notAuthenticated[*dto.UploadImagesResponse]()
	}
	resp, err := s.api.UploadImages(ctx, files)
	if err != nil {
		return dto.Fail[*dto.UploadImagesResponse](err, "Images upload failed")
	}
	return dto.Ok(resp)
}

// UploadVideo 上传视频
func (s *AdminService) UploadVideo(ctx context.Context, f dto.UploadFile) dto.Result[*dto.UploadVideoResponse] {
	if !s.auth.IsAuthenticated() {
		return notAuthenticated[*dto.UploadVideoResponse]()
	}
	resp, err := s.api.UploadVideo(ctx, f)
	if err != nil {
		return dto.Fail[*dto.UploadVideoResponse](err, "Video upload failed")
	}
	return dto.Ok(resp)
}

// DeleteMedia 删除媒体，resourceType 为空时按 image 处理
func (s *AdminService) DeleteMedia(ctx context.Context, publicID, resourceType string) dto.Result[*dto.DeleteMediaResponse] {
	if !s.auth.IsAuthenticated() {
		return notAuthenticated[*dto.DeleteMediaResponse]()
	}
	if resourceType == "" {
		resourceType = dto.ResourceImage
	}
	if err := model.ValidateResourceType(resourceType); err != nil {
		return dto.Fail[*dto.DeleteMediaResponse](err, "Invalid resource type")
	}
	resp, err := s.api.DeleteMedia(ctx, publicID, resourceType)
	if err != nil {
		return dto.Fail[*dto.DeleteMediaResponse](err, "Failed to delete media")
	}
	return dto.Ok(resp)
}
