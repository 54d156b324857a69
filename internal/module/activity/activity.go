package activity

import (
	"strconv"

	"project-checkin-system/internal/global/database"
	"project-checkin-system/internal/global/jwt"
	"project-checkin-system/internal/global/response"
	"project-checkin-system/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// FeedReq 动态流查询参数，before 为毫秒时间戳游标
type FeedReq struct {
	Before int64 `form:"before"`
}

// GlobalFeed 全站最新动态
func GlobalFeed(c *gin.Context) {
	var req FeedReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	entries, err := recorder.GlobalFeed(c.Request.Context(), req.Before)
	if err != nil {
		log.Error("获取全站动态失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, entries)
}

// LocalFeed 本人及好友的动态
func LocalFeed(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	var req FeedReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	entries, err := recorder.LocalFeed(c.Request.Context(), payload.UserID, req.Before)
	if err != nil {
		log.Error("获取本地动态失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, entries)
}

// ProjectFeed 单个项目的动态，可见性与项目详情一致
func ProjectFeed(c *gin.Context) {
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

	var req FeedReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	project, aerr := gate.RequireProject(uint(id))
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}
	if aerr := gate.CanView(project, payload.UserID); aerr != nil {
		response.Fail(c, aerr)
		return
	}

	entries, err := recorder.ProjectFeed(c.Request.Context(), project.ID, req.Before)
	if err != nil {
		log.Error("获取项目动态失败", "error", err, "project_id", project.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, entries)
}

// ActivityUpdateReq 管理端修订动态请求
type ActivityUpdateReq struct {
	Message *string `json:"message"` // 动态文案，可选
	Type    *string `json:"type"`    // 动态类型，可选
}

// UpdateActivity 管理端修订动态内容，普通流程不会修改动态
func UpdateActivity(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Fail(c, response.ErrInvalidRequest.WithTips("动态ID不能为空"))
		return
	}

	var req ActivityUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定修订动态请求失败", "error", err, "id", id)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	var activity model.Activity
	if err := database.DB.First(&activity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, response.ErrNotFound.WithTips("动态不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	if req.Message != nil {
		activity.Message = *req.Message
	}
	if req.Type != nil {
		activity.Type = *req.Type
	}

	if err := database.DB.Save(&activity).Error; err != nil {
		log.Error("修订动态失败", "error", err, "id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("动态修订成功", "id", activity.ID)
	response.Success(c, activity)
}

// DeleteActivity 管理端删除动态
func DeleteActivity(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Fail(c, response.ErrInvalidRequest.WithTips("动态ID不能为空"))
		return
	}

	var activity model.Activity
	if err := database.DB.First(&activity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, response.ErrNotFound.WithTips("动态不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	if err := database.DB.Delete(&activity).Error; err != nil {
		log.Error("删除动态失败", "error", err, "id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("动态删除成功", "id", activity.ID)
	response.Success(c)
}
