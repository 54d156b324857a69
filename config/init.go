package config

import (
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	instance *Config
	once     sync.Once
)

// Init 加载配置：先读 config.yaml，再用环境变量覆盖
func Init() {
	once.Do(func() {
		cfg := &Config{
			Host:   "0.0.0.0",
			Port:   "8080",
			Prefix: "api",
			Mode:   ModeDebug,
			Storage: Storage{
				Home: "./upload",
			},
			JWT: JWT{
				AccessExpire: 7 * 24 * 3600,
			},
			Log: Log{
				Level:      "info",
				MaxSize:    64,
				MaxBackups: 7,
				MaxAge:     30,
			},
		}

		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")

		// 配置文件可选，缺失时退回默认值 + 环境变量
		if err := v.ReadInConfig(); err == nil {
			if err := v.Unmarshal(cfg); err != nil {
				panic(err)
			}
		}

		if err := envconfig.Process("pcs", cfg); err != nil {
			panic(err)
		}

		instance = cfg
	})
}

// Get 获取全局配置实例
func Get() *Config {
	if instance == nil {
		Init()
	}
	return instance
}
