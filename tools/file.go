package tools

import (
	"fmt"
	"net/url"
	"os"

	"github.com/gin-gonic/gin"
)

func FileExist(path string) bool {
	_, err := os.Stat(path)
	if err == nil {
		return true // 文件存在
	}
	if os.IsNotExist(err) {
		return false // 文件不存在
	}
	// 其他错误，如权限问题等
	return false
}

const (
	ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// SetDownloadHeader 设置附件下载响应头，文件名做 UTF-8 转义
func SetDownloadHeader(c *gin.Context, displayName, contentType string) {
	escaped := url.QueryEscape(displayName)

	c.Header("Content-Type", contentType)
	c.Header(
		"Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, escaped, escaped),
	)
}

func SendStoredFile(c *gin.Context, path, displayName, contentType string) error {
	SetDownloadHeader(c, displayName, contentType)
	c.File(path)
	return nil
}
