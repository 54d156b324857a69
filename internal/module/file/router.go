package file

import (
	"project-checkin-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (f *ModuleFile) InitRouter(r *gin.RouterGroup) {
	fileGroup := r.Group("/file")

	fileGroup.Use(middleware.Auth(0))
	{
		// 注册上传文件端点
		fileGroup.POST("/upload/:projectID", UploadFile)

		// 注册文件列表端点
		fileGroup.GET("/list/:projectID", ListFiles)

		// 注册删除文件端点
		fileGroup.DELETE("/delete/:id", DeleteFile)

		// 只读下载，不加锁
		fileGroup.GET("/download/:id", DownloadFile)

		// 检出：取得独占锁并下载文件内容
		fileGroup.POST("/checkout/:id", CheckoutFile)

		// 检入：上传新内容并释放锁
		fileGroup.POST("/checkin/:id", CheckinFile)
	}
}
