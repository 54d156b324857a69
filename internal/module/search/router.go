package search

import (
	"github.com/gin-gonic/gin"
)

func (s *ModuleSearch) InitRouter(r *gin.RouterGroup) {
	// 搜索无需登录
	r.GET("/search", Search)
}
