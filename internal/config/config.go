package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Store   StoreConfig   `mapstructure:"store"`
	Server  ServerConfig  `mapstructure:"server"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
}

// APIConfig 远端 REST API
type APIConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryCount   int           `mapstructure:"retry_count"`
	CacheTimeout time.Duration `mapstructure:"cache_timeout"`
	Debug        bool          `mapstructure:"debug"`
}

// StoreConfig 本地客户端状态 (Token) 存储
type StoreConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ServerConfig 本地管理网关
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	RefreshCooldown time.Duration `mapstructure:"refresh_cooldown"` // 手动刷新最小间隔，0 不限
}

// SessionConfig 会话保活
type SessionConfig struct {
	VerifySpec string `mapstructure:"verify_spec"` // cron 表达式 (含秒)，为空则不启用
}

// LogConfig 日志
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// EnvPrefix 环境变量前缀，如 SHOP_ADMIN_API_BASE_URL
const EnvPrefix = "SHOP_ADMIN"

// setDefaults 默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:5000/api")
	v.SetDefault("api.timeout", 20*time.Second)
	v.SetDefault("api.retry_count", 0)
	v.SetDefault("api.cache_timeout", 30*time.Second)
	v.SetDefault("api.debug", false)

	v.SetDefault("store.dsn", "shop_admin.db")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.refresh_cooldown", 2*time.Second)

	v.SetDefault("session.verify_spec", "0 0/10 * * * *")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load 加载配置
// 优先级：环境变量 > 配置文件 > 默认值；path 为空时按默认路径查找 config.yaml，找不到不报错
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 基础校验
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url 不能为空")
	}
	if c.API.CacheTimeout <= 0 {
		return errors.New("api.cache_timeout 必须大于 0")
	}
	if c.API.RetryCount < 0 {
		return errors.New("api.retry_count 不能为负数")
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	return nil
}
