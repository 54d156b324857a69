package project

import (
	"strconv"
	"strings"
	"time"

	"project-checkin-system/internal/global/database"
	"project-checkin-system/internal/global/jwt"
	"project-checkin-system/internal/global/response"
	"project-checkin-system/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ProjectCreateReq 定义创建项目请求的结构体
type ProjectCreateReq struct {
	Name        string   `json:"name" binding:"required"`        // 项目名称
	Description string   `json:"description" binding:"required"` // 项目描述
	Hashtags    []string `json:"hashtags"`                       // 话题标签
	Type        string   `json:"type"`                           // 项目类型枚举
	Version     string   `json:"version"`                        // 初始版本串
}

// ProjectUpdateReq 定义更新项目请求的结构体，使用指针类型支持部分更新
type ProjectUpdateReq struct {
	Name        *string   `json:"name"`        // 项目名称，可选
	Description *string   `json:"description"` // 项目描述，可选
	Hashtags    *[]string `json:"hashtags"`    // 话题标签，可选
	Type        *string   `json:"type"`        // 项目类型，可选
	Version     *string   `json:"version"`     // 版本串，可选
}

// normalizeHashtags 标签统一小写并去除空白
func normalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// CreateProject 处理创建项目请求。
// 项目、所有者成员记录和 project_created 动态在同一事务内落库
func CreateProject(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	var req ProjectCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定创建项目请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	projectType := req.Type
	if projectType == "" {
		projectType = model.ProjectTypeOther
	}
	if !model.ValidProjectType(projectType) {
		response.Fail(c, response.ErrInvalidRequest.WithTips("项目类型不合法"))
		return
	}

	version := req.Version
	if version == "" {
		version = "v1.0.0"
	}

	project := model.Project{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Hashtags:    normalizeHashtags(req.Hashtags),
		Type:        projectType,
		Version:     version,
		OwnerID:     payload.UserID,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		// 所有者自动成为首个成员
		member := model.Member{
			ProjectID: project.ID,
			UserID:    payload.UserID,
			Role:      model.RoleOwner,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return recorder.Append(tx, &model.Activity{
			Type:      model.ActivityProjectCreated,
			ProjectID: project.ID,
			UserID:    payload.UserID,
			Message:   payload.Username + " 创建了项目 " + project.Name,
			Version:   project.Version,
		})
	})
	if err != nil {
		log.Error("创建项目失败", "error", err, "name", req.Name)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info(
		"项目创建成功",
		"id", project.ID,
		"name", project.Name,
		"owner_id", payload.UserID,
	)

	response.Success(c, project)
}

// MyProjects 获取当前用户参与的项目列表
func MyProjects(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	var projects []model.Project
	err := database.DB.
		Joins("JOIN member ON member.project_id = project.id AND member.deleted_at IS NULL").
		Where("member.user_id = ?", payload.UserID).
		Preload("Owner").
		Find(&projects).Error
	if err != nil {
		log.Error("获取项目列表失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, projects)
}

// FriendsProjects 获取好友参与（且自己未参与）的项目列表
func FriendsProjects(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	var friendIDs []uint
	if err := database.DB.Model(&model.Friend{}).
		Where("user_id = ?", payload.UserID).
		Pluck("friend_id", &friendIDs).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if len(friendIDs) == 0 {
		response.Success(c, []model.Project{})
		return
	}

	// 排除自己参与的项目
	mine := database.DB.Model(&model.Member{}).
		Select("project_id").
		Where("user_id = ?", payload.UserID)

	var projects []model.Project
	err := database.DB.
		Joins("JOIN member ON member.project_id = project.id AND member.deleted_at IS NULL").
		Where("member.user_id IN ?", friendIDs).
		Where("project.id NOT IN (?)", mine).
		Preload("Owner").
		Distinct().
		Find(&projects).Error
	if err != nil {
		log.Error("获取好友项目失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, projects)
}

// ProjectDetail 获取项目详情，包含成员与文件列表。
// 成员或所有者的好友可见
func ProjectDetail(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("项目ID格式错误"))
		return
	}

	project, aerr := gate.RequireProject(uint(id))
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}
	if aerr := gate.CanView(project, payload.UserID); aerr != nil {
		log.Warn("无权限查看项目", "id", id, "user_id", payload.UserID)
		response.Fail(c, aerr)
		return
	}

	var members []model.Member
	if err := database.DB.Preload("User").
		Find(&members, "project_id = ?", project.ID).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	var files []model.File
	if err := database.DB.Find(&files, "project_id = ?", project.ID).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	var owner model.User
	if err := database.DB.First(&owner, "id = ?", project.OwnerID).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, map[string]interface{}{
		"project": project,
		"owner": map[string]interface{}{
			"id":       owner.ID,
			"username": owner.Username,
			"email":    owner.Email,
		},
		"members": members,
		"files":   files,
	})
}

// PublicProject 公开项目卡片，无需登录，仅返回概要字段
func PublicProject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("项目ID格式错误"))
		return
	}

	project, aerr := gate.RequireProject(uint(id))
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}

	var owner model.User
	ownerName := ""
	if err := database.DB.First(&owner, "id = ?", project.OwnerID).Error; err == nil {
		ownerName = owner.Username
	}

	response.Success(c, map[string]interface{}{
		"id":          project.ID,
		"name":        project.Name,
		"description": project.Description,
		"type":        project.Type,
		"version":     project.Version,
		"hashtags":    project.Hashtags,
		"create_time": project.CreateTime(),
		"owner":       ownerName,
	})
}

// UpdateProject 处理更新项目请求，仅所有者可编辑元信息
func UpdateProject(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("项目ID格式错误"))
		return
	}

	var req ProjectUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定更新项目请求失败", "error", err, "id", id)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	project, aerr := gate.RequireProject(uint(id))
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}
	if aerr := gate.RequireOwner(project, payload.UserID); aerr != nil {
		log.Warn("无权限更新项目", "id", id, "owner_id", project.OwnerID, "user_id", payload.UserID)
		response.Fail(c, aerr)
		return
	}

	if req.Name != nil {
		project.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}
	if req.Hashtags != nil {
		project.Hashtags = normalizeHashtags(*req.Hashtags)
	}
	if req.Type != nil {
		if !model.ValidProjectType(*req.Type) {
			response.Fail(c, response.ErrInvalidRequest.WithTips("项目类型不合法"))
			return
		}
		project.Type = *req.Type
	}
	if req.Version != nil {
		project.Version = *req.Version
	}

	if err := database.DB.Save(project).Error; err != nil {
		log.Error("更新项目失败", "error", err, "id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("项目更新成功",
		"id", project.ID,
		"name", project.Name,
	)

	response.Success(c, project)
}

// DeleteProject 处理删除项目请求。
// 仅所有者可删除；成员、文件与动态在同一事务内级联删除，文件落盘内容尽力清理
func DeleteProject(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("项目ID格式错误"))
		return
	}

	project, aerr := gate.RequireProject(uint(id))
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}
	if aerr := gate.RequireOwner(project, payload.UserID); aerr != nil {
		log.Warn("无权限删除项目", "id", id, "owner_id", project.OwnerID, "user_id", payload.UserID)
		response.Fail(c, aerr)
		return
	}

	// 提前取出文件key，事务提交后清理落盘内容
	var fileKeys []string
	if err := database.DB.Model(&model.File{}).
		Where("project_id = ?", project.ID).
		Pluck("path", &fileKeys).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	// 级联删除共用同一时间戳，还原时据此区分级联行与更早单独删除的行
	now := time.Now()
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Member{}).
			Where("project_id = ?", project.ID).
			Update("deleted_at", now).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.File{}).
			Where("project_id = ?", project.ID).
			Update("deleted_at", now).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Activity{}).
			Where("project_id = ?", project.ID).
			Update("deleted_at", now).Error; err != nil {
			return err
		}
		return tx.Model(project).Update("deleted_at", now).Error
	})
	if err != nil {
		log.Error("删除项目失败", "error", err, "id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	for _, key := range fileKeys {
		if err := fileBed.Remove(key); err != nil {
			log.Warn("清理项目文件失败", "key", key, "error", err)
		}
	}

	log.Info("项目删除成功",
		"id", project.ID,
	)

	response.Success(c)
}

// RestoreProject 处理还原删除的项目请求
func RestoreProject(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("项目ID格式错误"))
		return
	}

	// 查询项目是否存在（含已删除）
	var project model.Project
	if err := database.DB.Unscoped().First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("项目不存在", "id", id)
			response.Fail(c, response.ErrNotFound.WithTips("项目不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if project.OwnerID != payload.UserID {
		log.Warn("无权限还原项目", "id", id, "owner_id", project.OwnerID, "user_id", payload.UserID)
		response.Fail(c, response.ErrForbidden.WithTips("无权限还原该项目"))
		return
	}
	if !project.DeletedAt.Valid {
		response.Fail(c, response.ErrInvalidOperation.WithTips("项目未被删除"))
		return
	}

	// 只还原级联时间戳命中的关联记录，删除项目之前单独删掉的行保持已删除
	cascadeAt := project.DeletedAt.Time
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Model(&model.Member{}).
			Where("project_id = ? AND deleted_at = ?", project.ID, cascadeAt).
			Update("deleted_at", nil).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Model(&model.File{}).
			Where("project_id = ? AND deleted_at = ?", project.ID, cascadeAt).
			Update("deleted_at", nil).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Model(&model.Activity{}).
			Where("project_id = ? AND deleted_at = ?", project.ID, cascadeAt).
			Update("deleted_at", nil).Error; err != nil {
			return err
		}
		return tx.Unscoped().Model(&model.Project{}).
			Where("id = ?", project.ID).
			Update("deleted_at", nil).Error
	})
	if err != nil {
		log.Error("还原项目失败", "error", err, "id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("项目还原成功",
		"id", project.ID,
		"name", project.Name,
	)
	response.Success(c)
}
