package file

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"time"

	"project-checkin-system/internal/core/locking"
	"project-checkin-system/internal/global/database"
	"project-checkin-system/internal/global/jwt"
	"project-checkin-system/internal/global/response"
	"project-checkin-system/internal/model"
	"project-checkin-system/tools"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UploadFileReq 定义上传文件请求的结构体（multipart form-data）
type UploadFileReq struct {
	File *multipart.FileHeader `form:"file" binding:"required"` // 文件内容
}

// CheckinReq 定义检入请求的结构体（multipart form-data）
type CheckinReq struct {
	File    *multipart.FileHeader `form:"file"`    // 替换内容，可选；缺省时仅放锁
	Message string                `form:"message"` // 检入说明
	Version string                `form:"version"` // 新版本串，可选
}

// UploadFile 上传文件到项目，任意成员可操作
func UploadFile(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	projectID, err := strconv.ParseUint(c.Param("projectID"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("项目ID格式错误"))
		return
	}

	var req UploadFileReq
	if err := c.ShouldBind(&req); err != nil {
		log.Error("绑定上传请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithTips("缺少文件"))
		return
	}

	project, aerr := gate.RequireProject(uint(projectID))
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}
	if _, aerr := gate.RequireMember(project.ID, payload.UserID); aerr != nil {
		log.Warn("无权限上传文件", "project_id", project.ID, "user_id", payload.UserID)
		response.Fail(c, aerr)
		return
	}

	key, size, err := fileBed.SaveUpload(req.File)
	if err != nil {
		log.Error("保存文件失败", "error", err, "name", req.File.Filename)
		response.Fail(c, response.ErrStorage.WithOrigin(err))
		return
	}

	file := model.File{
		ProjectID:  project.ID,
		Name:       req.File.Filename,
		Path:       key,
		UploadedBy: payload.UserID,
		Size:       size,
		MimeType:   req.File.Header.Get("Content-Type"),
		Status:     model.FileCheckedIn,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&file).Error; err != nil {
			return err
		}
		return recorder.Append(tx, &model.Activity{
			Type:      model.ActivityFileUploaded,
			ProjectID: project.ID,
			UserID:    payload.UserID,
			Message:   payload.Username + " 上传了文件 " + file.Name,
			Version:   project.Version,
			Files: []model.ActivityFile{
				{FileName: file.Name, FilePath: file.Path},
			},
		})
	})
	if err != nil {
		// 入库失败时清理已落盘内容
		_ = fileBed.Remove(key)
		log.Error("创建文件记录失败", "error", err, "name", file.Name)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("文件上传成功",
		"id", file.ID,
		"project_id", project.ID,
		"name", file.Name,
		"size", size,
	)

	response.Success(c, file)
}

// ListFiles 获取项目文件列表
func ListFiles(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	projectID, err := strconv.ParseUint(c.Param("projectID"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("项目ID格式错误"))
		return
	}

	project, aerr := gate.RequireProject(uint(projectID))
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}
	if aerr := gate.CanView(project, payload.UserID); aerr != nil {
		response.Fail(c, aerr)
		return
	}

	var files []model.File
	if err := database.DB.Find(&files, "project_id = ?", project.ID).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, files)
}

// DeleteFile 删除文件，任意成员可操作
func DeleteFile(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("文件ID格式错误"))
		return
	}

	file, project, aerr := locker.LoadFile(uint(id))
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}
	if _, aerr := gate.RequireMember(project.ID, payload.UserID); aerr != nil {
		log.Warn("无权限删除文件", "file_id", file.ID, "user_id", payload.UserID)
		response.Fail(c, aerr)
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(file).Error; err != nil {
			return err
		}
		return recorder.Append(tx, &model.Activity{
			Type:      model.ActivityFileDeleted,
			ProjectID: project.ID,
			UserID:    payload.UserID,
			Message:   payload.Username + " 删除了文件 " + file.Name,
			Version:   project.Version,
			Files: []model.ActivityFile{
				{FileName: file.Name, FilePath: file.Path},
			},
		})
	})
	if err != nil {
		log.Error("删除文件失败", "error", err, "file_id", file.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	if err := fileBed.Remove(file.Path); err != nil {
		log.Warn("清理文件内容失败", "key", file.Path, "error", err)
	}

	log.Info("文件删除成功",
		"id", file.ID,
		"project_id", project.ID,
		"name", file.Name,
	)

	response.Success(c)
}

// DownloadFile 只读下载，不加锁。
// 启用 S3 时返回预签名 URL，否则直接回传文件内容
func DownloadFile(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("文件ID格式错误"))
		return
	}

	file, project, aerr := locker.LoadFile(uint(id))
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}
	if aerr := gate.CanView(project, payload.UserID); aerr != nil {
		response.Fail(c, aerr)
		return
	}

	url, err := fileBed.PresignDownload(file.Path, 3600)
	if err != nil {
		log.Warn("生成预签名URL失败", "key", file.Path, "error", err)
	}
	if url != "" {
		response.Success(c, map[string]interface{}{"url": url})
		return
	}

	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := tools.SendStoredFile(c, filepath.Join(fileBed.SaveDir, file.Path), file.Name, contentType); err != nil {
		response.Fail(c, response.ErrStorage.WithOrigin(err))
	}
}

// CheckoutFile 检出文件：取得独占锁并以下载形式返回内容。
// 响应体为纯文本元信息横幅 + 原始文件字节
func CheckoutFile(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("文件ID格式错误"))
		return
	}

	file, project, aerr := locker.LoadFile(uint(id))
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}

	// 先确认内容可读再上锁，避免留下一个没有交付内容的锁
	content, err := fileBed.Open(file.Path)
	if err != nil {
		log.Error("读取文件内容失败", "error", err, "key", file.Path)
		response.Fail(c, response.ErrStorage.WithOrigin(err))
		return
	}
	defer content.Close()

	_, holder, aerr := locker.Checkout(payload.UserID, uint(id))
	if aerr != nil {
		if holder != nil {
			log.Warn("文件已被检出", "file_id", id, "holder_id", holder.ID)
		}
		response.Fail(c, aerr)
		return
	}

	log.Info("文件检出成功",
		"id", file.ID,
		"project_id", project.ID,
		"user_id", payload.UserID,
	)

	banner := checkoutBanner(project.Name, file.Name, project.Version, payload.Username)
	tools.SetDownloadHeader(c, file.Name, "application/octet-stream")
	c.Status(200)
	_, _ = c.Writer.WriteString(banner)
	_, _ = io.Copy(c.Writer, content)
}

// checkoutBanner 生成检出横幅，带上项目、文件、版本、持锁人和时间
func checkoutBanner(projectName, fileName, version, holder string) string {
	return fmt.Sprintf(
		"==========================================\n"+
			" Project        : %s\n"+
			" File           : %s\n"+
			" Version        : %s\n"+
			" Checked out by : %s\n"+
			" Checked out at : %s\n"+
			"==========================================\n",
		projectName, fileName, version, holder,
		time.Now().Format(time.RFC3339),
	)
}

// CheckinFile 检入文件：上传替换内容，释放锁并记录动态。
// 仅当前持锁人可操作
func CheckinFile(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("文件ID格式错误"))
		return
	}

	var req CheckinReq
	if err := c.ShouldBind(&req); err != nil {
		log.Error("绑定检入请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	prior, _, aerr := locker.LoadFile(uint(id))
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}

	input := locking.CheckinInput{
		Message: req.Message,
		Version: req.Version,
	}

	// 附带替换内容时先落盘，检入被拒再回收
	var key string
	if req.File != nil {
		var size int64
		var err error
		key, size, err = fileBed.SaveUpload(req.File)
		if err != nil {
			log.Error("保存检入内容失败", "error", err, "name", req.File.Filename)
			response.Fail(c, response.ErrStorage.WithOrigin(err))
			return
		}
		input.Replacement = &locking.Replacement{
			Name:     req.File.Filename,
			Path:     key,
			Size:     size,
			MimeType: req.File.Header.Get("Content-Type"),
		}
	}

	activity, aerr := locker.Checkin(payload.UserID, uint(id), input)
	if aerr != nil {
		if key != "" {
			_ = fileBed.Remove(key)
		}
		response.Fail(c, aerr)
		return
	}

	// 内容被替换后回收旧的落盘内容
	if input.Replacement != nil && prior.Path != input.Replacement.Path {
		if err := fileBed.Remove(prior.Path); err != nil {
			log.Warn("清理旧文件内容失败", "key", prior.Path, "error", err)
		}
	}

	log.Info("文件检入成功",
		"file_id", id,
		"user_id", payload.UserID,
		"version", activity.Version,
	)

	response.Success(c, map[string]interface{}{
		"activity_id": activity.ID,
		"message":     activity.Message,
		"version":     activity.Version,
		"files_added": len(activity.Files),
	})
}
