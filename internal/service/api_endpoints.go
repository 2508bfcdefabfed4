package service

import (
	"context"
	"encoding/json"
	"net/http"

	"shop_admin_v1_202610/internal/api/dto"
	"shop_admin_v1_202610/internal/model"
	"shop_admin_v1_202610/pkg/net"
)

// 缓存前缀
const (
	prefixAuth        = "/auth"
	prefixAdminConfig = "/admin/config"
	prefixPublicCfg   = "/config"
	prefixDashboard   = "/admin/dashboard"
	prefixProducts    = "/products"
	prefixCategories  = "/categories"
	prefixFarms       = "/farms"
	prefixSocial      = "/social-media"
)

// 失效策略：每次写操作都失效 /admin/config，只有商品写操作额外失效 /admin/dashboard
var (
	productPrefixes  = []string{prefixProducts, prefixAdminConfig, prefixDashboard}
	categoryPrefixes = []string{prefixCategories, prefixAdminConfig}
	farmPrefixes     = []string{prefixFarms, prefixAdminConfig}
	socialPrefixes   = []string{prefixSocial, prefixAdminConfig}
	settingsPrefixes = []string{prefixAdminConfig, prefixPublicCfg}
)

// mutate 写操作：成功后失效相关缓存，失败不动缓存
func (s *ApiService) mutate(ctx context.Context, endpoint, method string, body any, prefixes ...string) ([]byte, error) {
	data, err := s.Request(ctx, endpoint, RequestOptions{Method: method, Body: body})
	if err != nil {
		return nil, err
	}
	for _, p := range prefixes {
		s.ClearCacheForEndpoint(p)
	}
	return data, nil
}

// ==================== Auth ====================

// Login 登录 (公开接口，登录前清空缓存)
func (s *ApiService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	s.ClearCache()
	data, err := s.PublicRequest(ctx, "/auth/login", RequestOptions{Method: http.MethodPost, Body: req})
	if err != nil {
		return nil, err
	}
	return decodePtr[dto.LoginResponse](data)
}

// VerifyToken 校验当前 Token
func (s *ApiService) VerifyToken(ctx context.Context) (*dto.VerifyResponse, error) {
	data, err := s.Request(ctx, "/auth/verify", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodePtr[dto.VerifyResponse](data)
}

// UpdateProfile 修改个人资料
func (s *ApiService) UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) (*dto.ProfileResponse, error) {
	data, err := s.mutate(ctx, "/auth/profile", http.MethodPut, req, prefixAuth)
	if err != nil {
		return nil, err
	}
	return decodePtr[dto.ProfileResponse](data)
}

// ChangePassword 修改密码
func (s *ApiService) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) (*dto.MessageResponse, error) {
	data, err := s.Request(ctx, "/auth/change-password", RequestOptions{Method: http.MethodPut, Body: req})
	if err != nil {
		return nil, err
	}
	return decodePtr[dto.MessageResponse](data)
}

// ==================== Config / Dashboard ====================

// GetAdminConfig 后台完整配置
func (s *ApiService) GetAdminConfig(ctx context.Context) (*model.Configuration, error) {
	data, err := s.Request(ctx, "/admin/config", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return model.DecodeConfiguration(data)
}

// GetPublicConfig 前台公开配置
func (s *ApiService) GetPublicConfig(ctx context.Context) (*model.Configuration, error) {
	data, err := s.PublicRequest(ctx, "/config", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return model.DecodeConfiguration(data)
}

// GetDashboard 看板数据
func (s *ApiService) GetDashboard(ctx context.Context) (*model.Dashboard, error) {
	data, err := s.Request(ctx, "/admin/dashboard", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeEntity[model.Dashboard](data, "dashboard")
}

// UpdateShopSettings 更新店铺设置
func (s *ApiService) UpdateShopSettings(ctx context.Context, settings model.ShopSettings) (json.RawMessage, error) {
	data, err := s.mutate(ctx, "/admin/shop-settings", http.MethodPut, settings, settingsPrefixes...)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// ==================== Products ====================

// GetProducts 商品列表
func (s *ApiService) GetProducts(ctx context.Context, q dto.ProductQuery) ([]model.Product, error) {
	endpoint := "/products"
	if qs := q.Encode(); qs != "" {
		endpoint += "?" + qs
	}
	data, err := s.Request(ctx, endpoint, RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeList[model.Product](data, "products")
}

// GetProduct 商品详情
func (s *ApiService) GetProduct(ctx context.Context, id model.ID) (*model.Product, error) {
	data, err := s.Request(ctx, "/products/"+id.String(), RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeEntity[model.Product](data, "product")
}

// CreateProduct 创建商品
func (s *ApiService) CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	data, err := s.mutate(ctx, "/products", http.MethodPost, p, productPrefixes...)
	if err != nil {
		return nil, err
	}
	return decodeEntity[model.Product](data, "product")
}

// UpdateProduct 更新商品
func (s *ApiService) UpdateProduct(ctx context.Context, id model.ID, p *model.Product) (*model.Product, error) {
	data, err := s.mutate(ctx, "/products/"+id.String(), http.MethodPut, p, productPrefixes...)
	if err != nil {
		return nil, err
	}
	return decodeEntity[model.Product](data, "product")
}

// DeleteProduct 删除商品
func (s *ApiService) DeleteProduct(ctx context.Context, id model.ID) error {
	_, err := s.mutate(ctx, "/products/"+id.String(), http.MethodDelete, nil, productPrefixes...)
	return err
}

// BulkUpdateProducts 批量更新商品
func (s *ApiService) BulkUpdateProducts(ctx context.Context, req model.BulkUpdate) (json.RawMessage, error) {
	data, err := s.mutate(ctx, "/admin/products/bulk-update", http.MethodPost, req, productPrefixes...)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// ==================== Categories ====================

// GetCategories 分类列表
func (s *ApiService) GetCategories(ctx context.Context) ([]model.Category, error) {
	data, err := s.Request(ctx, "/categories", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeList[model.Category](data, "categories")
}

// GetCategory 分类详情
func (s *ApiService) GetCategory(ctx context.Context, id model.ID) (*model.Category, error) {
	data, err := s.Request(ctx, "/categories/"+id.String(), RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeEntity[model.Category](data, "category")
}

// CreateCategory 创建分类
func (s *ApiService) CreateCategory(ctx context.Context, c *model.Category) (*model.Category, error) {
	data, err := s.mutate(ctx, "/categories", http.MethodPost, c, categoryPrefixes...)
	if err != nil {
		return nil, err
	}
	return decodeEntity[model.Category](data, "category")
}

// UpdateCategory 更新分类
func (s *ApiService) UpdateCategory(ctx context.Context, id model.ID, c *model.Category) (*model.Category, error) {
	data, err := s.mutate(ctx, "/categories/"+id.String(), http.MethodPut, c, categoryPrefixes...)
	if err != nil {
		return nil, err
	}
	return decodeEntity[model.Category](data, "category")
}

// DeleteCategory 删除分类
func (s *ApiService) DeleteCategory(ctx context.Context, id model.ID) error {
	_, err := s.mutate(ctx, "/categories/"+id.String(), http.MethodDelete, nil, categoryPrefixes...)
	return err
}

// ==================== Farms ====================

// GetFarms 农场列表
func (s *ApiService) GetFarms(ctx context.Context) ([]model.Farm, error) {
	data, err := s.Request(ctx, "/farms", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeList[model.Farm](data, "farms")
}

// GetFarm 农场详情
func (s *ApiService) GetFarm(ctx context.Context, id model.ID) (*model.Farm, error) {
	data, err := s.Request(ctx, "/farms/"+id.String(), RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeEntity[model.Farm](data, "farm")
}

// CreateFarm 创建农场
func (s *ApiService) CreateFarm(ctx context.Context, f *model.Farm) (*model.Farm, error) {
	data, err := s.mutate(ctx, "/farms", http.MethodPost, f, farmPrefixes...)
	if err != nil {
		return nil, err
	}
	return decodeEntity[model.Farm](data, "farm")
}

// UpdateFarm 更新农场
func (s *ApiService) UpdateFarm(ctx context.Context, id model.ID, f *model.Farm) (*model.Farm, error) {
	data, err := s.mutate(ctx, "/farms/"+id.String(), http.MethodPut, f, farmPrefixes...)
	if err != nil {
		return nil, err
	}
	return decodeEntity[model.Farm](data, "farm")
}

// DeleteFarm 删除农场
func (s *ApiService) DeleteFarm(ctx context.Context, id model.ID) error {
	_, err := s.mutate(ctx, "/farms/"+id.String(), http.MethodDelete, nil, farmPrefixes...)
	return err
}

// ==================== Social Media ====================

// GetSocialMedia 社交链接列表
func (s *ApiService) GetSocialMedia(ctx context.Context) ([]model.SocialLink, error) {
	data, err := s.Request(ctx, "/social-media", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeList[model.SocialLink](data, "socialMedia")
}

// GetSocialMediaLink 社交链接详情
func (s *ApiService) GetSocialMediaLink(ctx context.Context, id model.ID) (*model.SocialLink, error) {
	data, err := s.Request(ctx, "/social-media/"+id.String(), RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeEntity[model.SocialLink](data, "socialMedia")
}

// CreateSocialMedia 创建社交链接
func (s *ApiService) CreateSocialMedia(ctx context.Context, l *model.SocialLink) (*model.SocialLink, error) {
	data, err := s.mutate(ctx, "/social-media", http.MethodPost, l, socialPrefixes...)
	if err != nil {
		return nil, err
	}
	return decodeEntity[model.SocialLink](data, "socialMedia")
}

// UpdateSocialMedia 更新社交链接
func (s *ApiService) UpdateSocialMedia(ctx context.Context, id model.ID, l *model.SocialLink) (*model.SocialLink, error) {
	data, err := s.mutate(ctx, "/social-media/"+id.String(), http.MethodPut, l, socialPrefixes...)
	if err != nil {
		return nil, err
	}
	return decodeEntity[model.SocialLink](data, "socialMedia")
}

// DeleteSocialMedia 删除社交链接
func (s *ApiService) DeleteSocialMedia(ctx context.Context, id model.ID) error {
	_, err := s.mutate(ctx, "/social-media/"+id.String(), http.MethodDelete, nil, socialPrefixes...)
	return err
}

// ==================== Upload ====================

// UploadImage 上传单张图片 (字段 image)
func (s *ApiService) UploadImage(ctx context.Context, f dto.UploadFile) (*dto.UploadImageResponse, error) {
	data, err := s.upload(ctx, "/upload/image", "Image upload failed", toNetFile("image", f))
	if err != nil {
		return nil, err
	}
	return decodePtr[dto.UploadImageResponse](data)
}

// UploadImages 上传多张图片 (字段 images，可重复)
func (s *ApiService) UploadImages(ctx context.Context, files []dto.UploadFile) (*dto.UploadImagesResponse, error) {
	parts := make([]net.File, 0, len(files))
	for _, f := range files {
		parts = append(parts, toNetFile("images", f))
	}
	data, err := s.upload(ctx, "/upload/images", "Images upload failed", parts...)
	if err != nil {
		return nil, err
	}
	return decodePtr[dto.UploadImagesResponse](data)
}

// UploadVideo 上传视频 (字段 video)
func (s *ApiService) UploadVideo(ctx context.Context, f dto.UploadFile) (*dto.UploadVideoResponse, error) {
	data, err := s.upload(ctx, "/upload/video", "Video upload failed", toNetFile("video", f))
	if err != nil {
		return nil, err
	}
	return decodePtr[dto.UploadVideoResponse](data)
}

// DeleteMedia 删除远端媒体
func (s *ApiService) DeleteMedia(ctx context.Context, publicID, resourceType string) (*dto.DeleteMediaResponse, error) {
	if resourceType == "" {
		resourceType = dto.ResourceImage
	}
	data, err := s.Request(ctx, "/upload/media", RequestOptions{
		Method: http.MethodDelete,
		Body:   dto.DeleteMediaRequest{PublicID: publicID, ResourceType: resourceType},
	})
	if err != nil {
		return nil, err
	}
	return decodePtr[dto.DeleteMediaResponse](data)
}

func toNetFile(field string, f dto.UploadFile) net.File {
	return net.File{
		Field:       field,
		Name:        f.Name,
		ContentType: f.ContentType,
		Reader:      f.Reader,
	}
}
