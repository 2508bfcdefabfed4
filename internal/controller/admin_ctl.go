package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop_admin_v1_202610/internal/model"
	"shop_admin_v1_202610/internal/service"
)

type AdminController struct {
	adminSvc *service.AdminService
}

func NewAdminController(adminSvc *service.AdminService) *AdminController {
	return &AdminController{adminSvc: adminSvc}
}

// ==================== 配置 / 看板 ====================

// GetConfig 店铺配置
// @Summary 获取店铺配置
// @Description 未加载时先加载一次；加载失败时返回默认配置，loaded 表示是否来自服务端
// @Tags Admin (后台)
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/config [get]
func (c *AdminController) GetConfig(ctx *gin.Context) {
	r := c.adminSvc.LoadConfig(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{
		"config":  r.Data,
		"loaded":  c.adminSvc.ConfigLoaded(),
		"loading": c.adminSvc.Loading(),
		"error":   r.Error,
	})
}

// RefreshConfig 强制刷新配置
// @Router /api/config/refresh [post]
func (c *AdminController) RefreshConfig(ctx *gin.Context) {
	r := c.adminSvc.RefreshConfig(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{
		"config":  r.Data,
		"loaded":  c.adminSvc.ConfigLoaded(),
		"loading": c.adminSvc.Loading(),
		"error":   r.Error,
	})
}

// GetDashboard 看板
// @Summary 获取看板
// @Description dashboard 为空表示暂无数据，stats 此时按配置计算
// @Tags Admin (后台)
// @Produce json
// @Router /api/dashboard [get]
func (c *AdminController) GetDashboard(ctx *gin.Context) {
	r := c.adminSvc.LoadDashboard(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{
		"dashboard": r.Data,
		"stats":     c.adminSvc.DashboardStats(),
		"loaded":    c.adminSvc.DashboardLoaded(),
		"error":     r.Error,
	})
}

// RefreshDashboard 强制刷新看板
// @Router /api/dashboard/refresh [post]
func (c *AdminController) RefreshDashboard(ctx *gin.Context) {
	r := c.adminSvc.RefreshDashboard(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{
		"dashboard": r.Data,
		"stats":     c.adminSvc.DashboardStats(),
		"loaded":    c.adminSvc.DashboardLoaded(),
		"error":     r.Error,
	})
}

// UpdateShopSettings 店铺设置
// @Router /api/shop-settings [put]
func (c *AdminController) UpdateShopSettings(ctx *gin.Context) {
	var req model.ShopSettings
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, c.adminSvc.UpdateShopSettings(ctx.Request.Context(), req))
}

// ==================== 商品 ====================

// CreateProduct 新增商品
// @Summary 新增商品
// @Description 空规格行会被去掉；主图默认取图集第一张；下单链接默认取店铺联系方式
// @Tags Product (商品)
// @Accept json
// @Produce json
// @Param body body model.Product true "商品"
// @Success 201 {object} dto.Result[model.Product]
// @Failure 400 {object} dto.Result[model.Product]
// @Router /api/products [post]
func (c *AdminController) CreateProduct(ctx *gin.Context) {
	var req model.Product
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, c.adminSvc.AddProduct(ctx.Request.Context(), req))
}

// UpdateProduct 修改商品
// @Router /api/products/{id} [put]
func (c *AdminController) UpdateProduct(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req model.Product
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, c.adminSvc.UpdateProduct(ctx.Request.Context(), id, req))
}

// DeleteProduct 删除商品
// @Router /api/products/{id} [delete]
func (c *AdminController) DeleteProduct(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	respond(ctx, http.StatusOK, c.adminSvc.DeleteProduct(ctx.Request.Context(), id))
}

// BulkUpdateProducts 批量修改
// @Router /api/products/bulk [put]
func (c *AdminController) BulkUpdateProducts(ctx *gin.Context) {
	var req model.BulkUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, c.adminSvc.BulkUpdateProducts(ctx.Request.Context(), req))
}

// ==================== 分类 ====================

// @Router /api/categories [post]
func (c *AdminController) CreateCategory(ctx *gin.Context) {
	var req model.Category
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, c.adminSvc.AddCategory(ctx.Request.Context(), req))
}

// @Router /api/categories/{id} [put]
func (c *AdminController) UpdateCategory(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req model.Category
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, c.adminSvc.UpdateCategory(ctx.Request.Context(), id, req))
}

// @Router /api/categories/{id} [delete]
func (c *AdminController) DeleteCategory(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	respond(ctx, http.StatusOK, c.adminSvc.DeleteCategory(ctx.Request.Context(), id))
}

// ==================== 农场 ====================

func (c *AdminController) CreateFarm(ctx *gin.Context) {
	var req model.Farm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, c.adminSvc.AddFarm(ctx.Request.Context(), req))
}

func (c *AdminController) UpdateFarm(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req model.Farm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, c.adminSvc.UpdateFarm(ctx.Request.Context(), id, req))
}

func (c *AdminController) DeleteFarm(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	respond(ctx, http.StatusOK, c.adminSvc.DeleteFarm(ctx.Request.Context(), id))
}

// ==================== 社交链接 ====================

func (c *AdminController) CreateSocialMedia(ctx *gin.Context) {
	var req model.SocialLink
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, c.adminSvc.AddSocialMedia(ctx.Request.Context(), req))
}

func (c *AdminController) UpdateSocialMedia(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req model.SocialLink
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, c.adminSvc.UpdateSocialMedia(ctx.Request.Context(), id, req))
}

func (c *AdminController) DeleteSocialMedia(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	respond(ctx, http.StatusOK, c.adminSvc.DeleteSocialMedia(ctx.Request.Context(), id))
}
