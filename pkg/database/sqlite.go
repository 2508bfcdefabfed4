package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 打开本地 sqlite 并自动建表
// dsn: 文件路径，":memory:" 为内存库 (测试用)
// models: 需要自动建表/迁移的结构体指针
func InitDB(dsn string, log *zap.Logger, models ...interface{}) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// 客户端只存少量状态，SQL 日志只看慢查询和错误
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 SQL DB 失败: %w", err)
	}
	// sqlite 单写者
	sqlDB.SetMaxOpenConns(1)

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("自动建表出错: %w", err)
		}
	}

	log.Info("[Database] 本地数据库已就绪", zap.String("dsn", dsn))
	return db, nil
}

// Close 关闭连接
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
