package search

import (
	"strings"

	"project-checkin-system/internal/global/database"
	"project-checkin-system/internal/global/response"
	"project-checkin-system/internal/model"

	"github.com/gin-gonic/gin"
)

// 每次搜索返回的最大条数
const searchLimit = 50

// SearchReq 定义搜索查询参数的结构体
type SearchReq struct {
	Q    string `form:"q" binding:"required"` // 关键词
	Type string `form:"type"`                 // user 或 project，默认 project
}

// UserResult 用户搜索结果
type UserResult struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProjectResult 项目搜索结果
type ProjectResult struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Hashtags    []string `json:"hashtags"`
}

// Search 关键词搜索用户或项目。
// LIKE 全表扫描，语料规模可控时够用；数据量上来后需要换索引方案
func Search(c *gin.Context) {
	var req SearchReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	pattern := "%" + req.Q + "%"

	if req.Type == "user" {
		var users []UserResult
		err := database.DB.Model(&model.User{}).
			Select("id", "username", "email").
			Where("username LIKE ? OR email LIKE ?", pattern, pattern).
			Limit(searchLimit).
			Scan(&users).Error
		if err != nil {
			log.Error("用户搜索失败", "error", err, "q", req.Q)
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
		response.Success(c, users)
		return
	}

	// 项目：名称模糊匹配，或话题标签精确命中
	var projects []model.Project
	tag := strings.ToLower(strings.TrimSpace(req.Q))
	err := database.DB.Model(&model.Project{}).
		Where("name LIKE ? OR hashtags LIKE ?", pattern, "%\""+tag+"\"%").
		Limit(searchLimit).
		Find(&projects).Error
	if err != nil {
		log.Error("项目搜索失败", "error", err, "q", req.Q)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	results := make([]ProjectResult, 0, len(projects))
	for _, p := range projects {
		results = append(results, ProjectResult{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Type:        p.Type,
			Hashtags:    p.Hashtags,
		})
	}
	response.Success(c, results)
}
