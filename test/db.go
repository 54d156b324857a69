package test

import (
	"fmt"
	"sync/atomic"
	"testing"

	"project-checkin-system/internal/global/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var dbSeq atomic.Int64

// NewDB 为单个测试创建独立的内存库，表结构与生产迁移保持一致
func NewDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:test%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
		Logger:         logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 共享内存库在最后一个连接关闭后即销毁，收敛为单连接
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

// UseDB 创建内存库并替换全局句柄，供走 database.DB 的 handler 测试使用
func UseDB(t *testing.T) *gorm.DB {
	db := NewDB(t)
	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}
