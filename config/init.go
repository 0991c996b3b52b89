package config

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const envPrefix = "EQUIP"

var (
	cfg  *Config
	lock sync.RWMutex
)

// Init 读取 config.yaml（可用 CONFIG_PATH 指定），再用环境变量覆盖
func Init() {
	v := viper.New()
	setDefaults(v)

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	} else {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		// 没有配置文件时只使用默认值和环境变量
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			panic(err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		panic(err)
	}
	if err := envconfig.Process(envPrefix, c); err != nil {
		panic(err)
	}
	c.Prefix = strings.Trim(c.Prefix, "/")

	Set(c)
}

// Get 返回当前配置，未初始化时返回默认配置
func Get() *Config {
	lock.RLock()
	c := cfg
	lock.RUnlock()
	if c != nil {
		return c
	}

	v := viper.New()
	setDefaults(v)
	c = &Config{}
	_ = v.Unmarshal(c)
	Set(c)
	return c
}

// Set 替换当前配置，测试中也用它注入配置
func Set(c *Config) {
	lock.Lock()
	cfg = c
	lock.Unlock()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "8080")
	v.SetDefault("prefix", "api")
	v.SetDefault("mode", string(ModeDebug))

	v.SetDefault("storage.home", "uploads")
	v.SetDefault("storage.url_prefix", "/uploads")

	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", "3306")
	v.SetDefault("mysql.username", "root")
	v.SetDefault("mysql.db_name", "equipment")

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", "6379")

	v.SetDefault("jwt.access_secret", "change-me")
	v.SetDefault("jwt.access_expire", 86400)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("ai.api_url", "https://api.deepseek.com/v1/chat/completions")
	v.SetDefault("ai.model", "deepseek-chat")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_tokens", 2000)
	v.SetDefault("ai.system_message", "你是装备管理系统的智能助手，帮助用户查询装备、借用流程和使用注意事项。")
	v.SetDefault("ai.history_size", 10)
	v.SetDefault("ai.history_ttl", 7200)
	v.SetDefault("ai.timeout", 60)

	v.SetDefault("borrow.default_days", 7)

	v.SetDefault("seed.admin_username", "admin")
	v.SetDefault("seed.admin_password", "admin123")
	v.SetDefault("seed.admin_email", "admin@example.com")
}
