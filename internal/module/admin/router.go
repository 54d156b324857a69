package admin

import (
	"project-checkin-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (a *ModuleAdmin) InitRouter(r *gin.RouterGroup) {
	adminGroup := r.Group("/admin")

	adminGroup.Use(middleware.Auth(1))
	{
		// 注册系统概览端点
		adminGroup.GET("/stats", Stats)

		// 注册用户管理端点
		adminGroup.GET("/user/list", ListUsers)
		adminGroup.PUT("/user/role", UpdateUserRole)

		// 注册项目总览端点
		adminGroup.GET("/project/list", ListProjects)

		// 导出动态审计表
		adminGroup.GET("/activity/export", ExportActivities)
	}
}
