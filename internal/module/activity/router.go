package activity

import (
	"project-checkin-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (a *ModuleActivity) InitRouter(r *gin.RouterGroup) {
	// 全站动态无需登录
	r.GET("/activity/global", GlobalFeed)

	activityGroup := r.Group("/activity")

	activityGroup.Use(middleware.Auth(0))
	{
		// 注册本地动态端点（本人+好友）
		activityGroup.GET("/local", LocalFeed)

		// 注册项目动态端点
		activityGroup.GET("/project/:id", ProjectFeed)
	}

	adminGroup := r.Group("/activity")
	adminGroup.Use(middleware.Auth(1))
	{
		// 管理端修订动态，仅用于内容治理
		adminGroup.PUT("/update/:id", UpdateActivity)
		adminGroup.DELETE("/delete/:id", DeleteActivity)
	}
}
