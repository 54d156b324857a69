package project

import (
	"project-checkin-system/internal/global/database"
	"project-checkin-system/internal/global/jwt"
	"project-checkin-system/internal/global/response"
	"project-checkin-system/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// MemberAddReq 定义添加成员请求的结构体
type MemberAddReq struct {
	ProjectID uint   `json:"project_id" binding:"required"` // 项目ID
	Email     string `json:"email" binding:"required,email"` // 成员邮箱
	Role      string `json:"role"`                           // collaborator / viewer，默认 collaborator
}

// MemberRemoveReq 定义移除成员请求的结构体
type MemberRemoveReq struct {
	ProjectID uint `json:"project_id" binding:"required"` // 项目ID
	UserID    uint `json:"user_id" binding:"required"`    // 被移除成员用户ID
}

// AddMember 处理添加成员请求，仅所有者可操作
func AddMember(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	var req MemberAddReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定添加成员请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleCollaborator
	}
	if role != model.RoleCollaborator && role != model.RoleViewer {
		response.Fail(c, response.ErrInvalidRequest.WithTips("成员角色不合法"))
		return
	}

	project, aerr := gate.RequireProject(req.ProjectID)
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}

	// 查询目标用户
	var target model.User
	err := database.DB.Where("email = ?", req.Email).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("目标用户不存在", "email", req.Email)
		response.Fail(c, response.ErrNotFound.WithTips("用户不存在"))
		return
	}
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	if aerr := gate.CheckAddMember(project, payload.UserID, &target); aerr != nil {
		log.Warn("添加成员被拒绝", "project_id", project.ID, "target_id", target.ID, "user_id", payload.UserID)
		response.Fail(c, aerr)
		return
	}

	member := model.Member{
		ProjectID: project.ID,
		UserID:    target.ID,
		Role:      role,
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// 软删除的旧成员行仍占用唯一索引，重新加入时复活旧行而不是新建
		var prior model.Member
		err := tx.Unscoped().
			Where("project_id = ? AND user_id = ?", project.ID, target.ID).
			First(&prior).Error
		switch {
		case err == nil:
			if err := tx.Unscoped().Model(&prior).
				Updates(map[string]any{"deleted_at": nil, "role": role}).Error; err != nil {
				return err
			}
			member = prior
			member.Role = role
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		default:
			return err
		}
		return recorder.Append(tx, &model.Activity{
			Type:      model.ActivityMemberAdded,
			ProjectID: project.ID,
			UserID:    payload.UserID,
			Message:   target.Username + " 加入了项目 " + project.Name,
			Version:   project.Version,
		})
	})
	if err != nil {
		log.Error("添加成员失败", "error", err, "project_id", project.ID, "target_id", target.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("添加成员成功",
		"project_id", project.ID,
		"target_id", target.ID,
		"role", role,
	)

	response.Success(c, member)
}

// RemoveMember 处理移除成员请求，仅所有者可操作且不能移除所有者
func RemoveMember(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	var req MemberRemoveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定移除成员请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	project, aerr := gate.RequireProject(req.ProjectID)
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}
	if aerr := gate.CheckRemoveMember(project, payload.UserID, req.UserID); aerr != nil {
		log.Warn("移除成员被拒绝", "project_id", project.ID, "target_id", req.UserID, "user_id", payload.UserID)
		response.Fail(c, aerr)
		return
	}

	member, aerr := gate.Membership(project.ID, req.UserID)
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}
	if member == nil {
		response.Fail(c, response.ErrNotFound.WithTips("该用户不是项目成员"))
		return
	}

	var target model.User
	if err := database.DB.First(&target, "id = ?", req.UserID).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(member).Error; err != nil {
			return err
		}
		return recorder.Append(tx, &model.Activity{
			Type:      model.ActivityMemberRemoved,
			ProjectID: project.ID,
			UserID:    payload.UserID,
			Message:   target.Username + " 被移出项目 " + project.Name,
			Version:   project.Version,
		})
	})
	if err != nil {
		log.Error("移除成员失败", "error", err, "project_id", project.ID, "target_id", req.UserID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("移除成员成功",
		"project_id", project.ID,
		"target_id", req.UserID,
	)

	response.Success(c)
}
