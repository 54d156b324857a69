package friend

import (
	"project-checkin-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (f *ModuleFriend) InitRouter(r *gin.RouterGroup) {
	friendGroup := r.Group("/friend")

	friendGroup.Use(middleware.Auth(0))
	{
		// 注册添加好友端点
		friendGroup.POST("/add", AddFriend)

		// 注册好友列表端点
		friendGroup.GET("/list", ListFriends)

		// 注册删除好友端点
		friendGroup.DELETE("/remove/:id", RemoveFriend)

		// 注册查看好友项目端点
		friendGroup.GET("/projects/:id", FriendProjects)
	}
}
