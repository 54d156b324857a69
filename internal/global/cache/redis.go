package cache

import (
	"context"

	"project-checkin-system/config"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// Init 初始化 Redis 客户端；未启用时 Client 保持 nil，调用方需自行降级
func Init() {
	cfg := config.Get()
	if !cfg.Redis.Enable {
		return
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 启动时做一次连通性检查，失败不阻塞启动
	if err := Client.Ping(context.Background()).Err(); err != nil {
		Client = nil
	}
}
