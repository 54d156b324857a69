package user

import (
	"project-checkin-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (u *ModuleUser) InitRouter(r *gin.RouterGroup) {
	userGroup := r.Group("/user")
	{
		// 注册与登录无需鉴权
		userGroup.POST("/register", Register)
		userGroup.POST("/login", Login)
	}

	authGroup := r.Group("/user")
	authGroup.Use(middleware.Auth(0))
	{
		authGroup.GET("/me", Me)
	}
}
