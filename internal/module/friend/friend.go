package friend

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

// AddFriendReq 定义添加好友请求的结构体
type AddFriendReq struct {
	Email string `json:"email" binding:"required,email"` // 对方邮箱
}

// AddFriend 处理添加好友请求。
// 好友关系是对称的，双向两条边在同一事务内写入
func AddFriend(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	var req AddFriendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定添加好友请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
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

	if target.ID == payload.UserID {
		response.Fail(c, response.ErrInvalidOperation.WithTips("不能添加自己为好友"))
		return
	}

	already, aerr := gate.IsFriend(payload.UserID, target.ID)
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}
	if already {
		response.Fail(c, response.ErrAlreadyExists.WithTips("已经是好友"))
		return
	}

	// 双向边同事务写入
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := upsertEdge(tx, payload.UserID, target.ID); err != nil {
			return err
		}
		return upsertEdge(tx, target.ID, payload.UserID)
	})
	if err != nil {
		log.Error("添加好友失败", "error", err, "user_id", payload.UserID, "friend_id", target.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("添加好友成功",
		"user_id", payload.UserID,
		"friend_id", target.ID,
	)

	response.Success(c, map[string]interface{}{
		"id":       target.ID,
		"username": target.Username,
		"email":    target.Email,
	})
}

// upsertEdge 写入一条好友边。
// 软删除的旧边仍占用唯一索引，重新添加时复活旧行而不是新建
func upsertEdge(tx *gorm.DB, userID, friendID uint) error {
	var prior model.Friend
	err := tx.Unscoped().
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		First(&prior).Error
	if err == nil {
		return tx.Unscoped().Model(&prior).Update("deleted_at", nil).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&model.Friend{UserID: userID, FriendID: friendID}).Error
	}
	return err
}

// ListFriends 获取好友列表
func ListFriends(c *gin.Context) {
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

	friends := []model.User{}
	if len(friendIDs) > 0 {
		if err := database.DB.
			Select("id", "username", "email", "avatar", "created_at").
			Find(&friends, "id IN ?", friendIDs).Error; err != nil {
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
	}

	response.Success(c, friends)
}

// RemoveFriend 处理删除好友请求，双向边一并删除
func RemoveFriend(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	friendID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("好友ID格式错误"))
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND friend_id = ?", payload.UserID, friendID).
			Delete(&model.Friend{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND friend_id = ?", friendID, payload.UserID).
			Delete(&model.Friend{}).Error
	})
	if err != nil {
		log.Error("删除好友失败", "error", err, "user_id", payload.UserID, "friend_id", friendID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("删除好友成功",
		"user_id", payload.UserID,
		"friend_id", friendID,
	)

	response.Success(c)
}

// FriendProjects 查看某个好友参与的项目
func FriendProjects(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	friendID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("好友ID格式错误"))
		return
	}

	// 只能查看好友的项目
	isFriend, aerr := gate.IsFriend(payload.UserID, uint(friendID))
	if aerr != nil {
		response.Fail(c, aerr)
		return
	}
	if !isFriend {
		response.Fail(c, response.ErrForbidden.WithTips("对方不是你的好友"))
		return
	}

	var projects []model.Project
	err = database.DB.
		Joins("JOIN member ON member.project_id = project.id AND member.deleted_at IS NULL").
		Where("member.user_id = ?", friendID).
		Preload("Owner").
		Find(&projects).Error
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, projects)
}
