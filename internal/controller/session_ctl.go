package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop_admin_v1_202610/internal/api/dto"
	"shop_admin_v1_202610/internal/service"
)

type SessionController struct {
	authSvc *service.AuthService
}

func NewSessionController(authSvc *service.AuthService) *SessionController {
	return &SessionController{authSvc: authSvc}
}

// Login 管理员登录
// @Summary 管理员登录
// @Description 登录成功后自动加载店铺配置与看板
// @Tags Session (会话)
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "用户名 / 密码"
// @Success 200 {object} dto.Result[model.AdminUser]
// @Failure 401 {object} dto.Result[model.AdminUser] "登录失败"
// @Router /api/session/login [post]
func (c *SessionController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	r := c.authSvc.Login(ctx.Request.Context(), req.Username, req.Password)
	if !r.Success {
		ctx.JSON(http.StatusUnauthorized, r)
		return
	}
	ctx.JSON(http.StatusOK, r)
}

// Logout 登出
// @Router /api/session/logout [post]
func (c *SessionController) Logout(ctx *gin.Context) {
	c.authSvc.Logout(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// Current 当前会话
// @Router /api/session [get]
func (c *SessionController) Current(ctx *gin.Context) {
	user := c.authSvc.User()
	ctx.JSON(http.StatusOK, gin.H{
		"authenticated": user != nil,
		"loading":       c.authSvc.Loading(),
		"user":          user,
	})
}

// UpdateProfile 修改资料
// @Router /api/session/profile [put]
func (c *SessionController) UpdateProfile(ctx *gin.Context) {
	var req dto.ProfileUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, c.authSvc.UpdateProfile(ctx.Request.Context(), req))
}

// ChangePassword 修改密码
// @Router /api/session/password [put]
func (c *SessionController) ChangePassword(ctx *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, c.authSvc.ChangePassword(ctx.Request.Context(), req.CurrentPassword, req.NewPassword))
}
