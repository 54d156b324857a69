package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"project-checkin-system/config"

	"github.com/google/uuid"
)

// FileBed 文件存储工具类
// 文件始终落盘到本地目录，启用 S3 时同时镜像到对象存储
type FileBed struct {
	SaveDir string // 文件保存根目录

	s3 *s3Backend
}

// New 根据全局配置创建文件床实例
func New() *FileBed {
	fb := &FileBed{
		SaveDir: config.Get().Storage.Home,
	}
	if config.Get().S3.Enable {
		fb.s3 = newS3Backend()
	}
	return fb
}

// SaveUpload 保存上传文件并返回存储 key 和字节数
func (fb *FileBed) SaveUpload(fileHeader *multipart.FileHeader) (string, int64, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	// 确保保存目录存在
	if err := os.MkdirAll(fb.SaveDir, os.ModePerm); err != nil {
		return "", 0, err
	}

	// 生成唯一文件名，避免同名覆盖
	ext := filepath.Ext(fileHeader.Filename)
	key := fmt.Sprintf("%s%s", uuid.NewString(), ext)
	filePath := filepath.Join(fb.SaveDir, key)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", 0, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		return "", 0, err
	}

	// 镜像到 S3，失败不影响本地保存结果
	if fb.s3 != nil {
		if _, err := dst.Seek(0, io.SeekStart); err == nil {
			_ = fb.s3.put(key, dst)
		}
	}

	return key, size, nil
}

// Open 按存储 key 打开文件内容
func (fb *FileBed) Open(key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(fb.SaveDir, key))
}

// Stat 返回文件大小，文件缺失时返回错误
func (fb *FileBed) Stat(key string) (int64, error) {
	info, err := os.Stat(filepath.Join(fb.SaveDir, key))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Remove 删除本地与 S3 中的文件，尽力而为
func (fb *FileBed) Remove(key string) error {
	err := os.Remove(filepath.Join(fb.SaveDir, key))
	if fb.s3 != nil {
		_ = fb.s3.remove(key)
	}
	return err
}

// PresignDownload 生成 S3 预签名下载 URL；未启用 S3 时返回空串
func (fb *FileBed) PresignDownload(key string, expiresIn int64) (string, error) {
	if fb.s3 == nil {
		return "", nil
	}
	return fb.s3.presignDownload(key, expiresIn)
}
