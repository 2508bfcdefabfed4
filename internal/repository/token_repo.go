package repository

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shop_admin_v1_202610/internal/model"
	"shop_admin_v1_202610/pkg/net"
)

// ==================== TokenRepository Token 仓库 ====================

// tokenRepository 基于 client_states 表保存 Token
type tokenRepository struct {
	db *gorm.DB
}

var _ net.TokenStore = (*tokenRepository)(nil)

// NewTokenRepository 创建 Token 仓库
func NewTokenRepository(db *gorm.DB) net.TokenStore {
	return &tokenRepository{db: db}
}

// Get 读取 Token，不存在时返回空串
func (r *tokenRepository) Get(ctx context.Context) (string, error) {
	var state model.ClientState
	err := r.db.WithContext(ctx).Where("state_key = ?", model.TokenKey).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return state.Value, nil
}

// Set 写入 Token (存在则覆盖)
func (r *tokenRepository) Set(ctx context.Context, token string) error {
	state := model.ClientState{Key: model.TokenKey, Value: token}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&state).Error
}

// Remove 删除 Token
func (r *tokenRepository) Remove(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("state_key = ?", model.TokenKey).Delete(&model.ClientState{}).Error
}

// ==================== 内存实现 ====================

// memoryTokenStore 进程内 Token 存储，不落盘
type memoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore 创建内存 Token 存储
func NewMemoryTokenStore() net.TokenStore {
	return &memoryTokenStore{}
}

func (s *memoryTokenStore) Get(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *memoryTokenStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memoryTokenStore) Remove(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
