package admin

import (
	"project-checkin-system/internal/global/database"
	"project-checkin-system/internal/global/jwt"
	"project-checkin-system/internal/global/response"
	"project-checkin-system/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Stats 系统概览：各实体总数与当前检出中的文件数
func Stats(c *gin.Context) {
	counts := map[string]int64{}
	for name, m := range map[string]any{
		"users":      &model.User{},
		"projects":   &model.Project{},
		"files":      &model.File{},
		"activities": &model.Activity{},
	} {
		var count int64
		if err := database.DB.Model(m).Count(&count).Error; err != nil {
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
		counts[name] = count
	}

	var checkedOut int64
	if err := database.DB.Model(&model.File{}).
		Where("status = ?", model.FileCheckedOut).
		Count(&checkedOut).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	counts["checked_out_files"] = checkedOut

	response.Success(c, counts)
}

// ListUsersReq 用户管理列表查询参数
type ListUsersReq struct {
	Page     int    `form:"page"`      // 页码，默认为1
	PageSize int    `form:"page_size"` // 每页大小，默认为10
	Username string `form:"username"`  // 用户名模糊查询
}

// ListUsers 用户管理列表（支持分页与筛选）
func ListUsers(c *gin.Context) {
	var req ListUsersReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	// 设置默认值
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}

	query := database.DB.Model(&model.User{})
	if req.Username != "" {
		query = query.Where("username LIKE ?", "%"+req.Username+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	var users []model.User
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Find(&users).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	result := map[string]interface{}{
		"users":       users,
		"total":       total,
		"page":        req.Page,
		"page_size":   req.PageSize,
		"total_pages": (total + int64(req.PageSize) - 1) / int64(req.PageSize),
	}

	response.Success(c, result)
}

// UpdateUserRoleReq 调整用户角色请求
type UpdateUserRoleReq struct {
	UserID uint `json:"user_id" binding:"required"` // 目标用户ID
	RoleID *int `json:"role_id" binding:"required"` // 0 普通用户，1 管理员
}

// UpdateUserRole 提升/降级用户角色
func UpdateUserRole(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	var req UpdateUserRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定角色调整请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	if *req.RoleID != 0 && *req.RoleID != 1 {
		response.Fail(c, response.ErrInvalidRequest.WithTips("角色不合法"))
		return
	}
	if req.UserID == payload.UserID {
		response.Fail(c, response.ErrInvalidOperation.WithTips("不能调整自己的角色"))
		return
	}

	var user model.User
	if err := database.DB.First(&user, "id = ?", req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, response.ErrNotFound.WithTips("用户不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	if err := database.DB.Model(&user).Update("role_id", *req.RoleID).Error; err != nil {
		log.Error("调整用户角色失败", "error", err, "user_id", req.UserID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("用户角色调整成功",
		"user_id", user.ID,
		"role_id", *req.RoleID,
		"operator_id", payload.UserID,
	)

	response.Success(c)
}

// ListProjects 项目总览，带所有者信息
func ListProjects(c *gin.Context) {
	var projects []model.Project
	if err := database.DB.Preload("Owner").Find(&projects).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, projects)
}
