package model

// AdminUser 后台管理员 (会话身份)
type AdminUser struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
