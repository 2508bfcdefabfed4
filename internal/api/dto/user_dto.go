package dto

import "shop_admin_v1_202610/internal/model"

// ==================== 登录 ====================

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应 (POST /auth/login)
type LoginResponse struct {
	Success bool             `json:"success"`
	User    *model.AdminUser `json:"user"`
	Token   string           `json:"token"`
	Message string           `json:"message,omitempty"`
}

// VerifyResponse Token 校验响应 (GET /auth/verify)
type VerifyResponse struct {
	Success bool             `json:"success"`
	User    *model.AdminUser `json:"user"`
	Message string           `json:"message,omitempty"`
}

// ==================== 个人资料 ====================

// ProfileUpdateRequest 修改资料
type ProfileUpdateRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ProfileResponse 修改资料响应
type ProfileResponse struct {
	Success bool             `json:"success"`
	User    *model.AdminUser `json:"user"`
	Message string           `json:"message,omitempty"`
}

// ==================== 密码修改 ====================

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// MessageResponse 通用 {success, message}
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
