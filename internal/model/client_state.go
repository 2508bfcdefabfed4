package model

import "time"

// ClientState 本地客户端状态 (键值)
// 对应浏览器 localStorage，目前只保存 admin_token
type ClientState struct {
	Key       string    `gorm:"column:state_key;primaryKey;size:64"`
	Value     string    `gorm:"type:text"`
	UpdatedAt time.Time
}

func (ClientState) TableName() string {
	return "client_states"
}

// TokenKey Token 存储键
const TokenKey = "admin_token"
