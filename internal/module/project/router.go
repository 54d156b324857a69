package project

import (
	"project-checkin-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (p *ModuleProject) InitRouter(r *gin.RouterGroup) {
	// 公开项目卡片无需登录
	r.GET("/project/public/:id", PublicProject)

	projectGroup := r.Group("/project")

	projectGroup.Use(middleware.Auth(0))
	{
		// 注册创建项目端点
		projectGroup.POST("/create", CreateProject)

		// 注册我的项目列表端点
		projectGroup.GET("/mine", MyProjects)

		// 注册好友项目列表端点
		projectGroup.GET("/friends", FriendsProjects)

		// 注册项目详情端点
		projectGroup.GET("/detail/:id", ProjectDetail)

		// 注册更新项目端点
		projectGroup.PUT("/update/:id", UpdateProject)

		// 注册删除项目端点
		projectGroup.DELETE("/delete/:id", DeleteProject)

		// 还原删除项目端点
		projectGroup.PUT("/restore/:id", RestoreProject)

		// 成员管理端点
		projectGroup.POST("/member/add", AddMember)
		projectGroup.DELETE("/member/remove", RemoveMember)
	}
}
