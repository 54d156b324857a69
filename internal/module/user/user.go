package user

import (
	"project-checkin-system/internal/global/database"
	"project-checkin-system/internal/global/jwt"
	"project-checkin-system/internal/global/response"
	"project-checkin-system/internal/model"
	"project-checkin-system/tools"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// RegisterReq 定义注册请求的结构体
type RegisterReq struct {
	Username string `json:"username" binding:"required,min=3,max=30"` // 用户名
	Email    string `json:"email" binding:"required,email"`           // 邮箱
	Password string `json:"password" binding:"required,min=8"`        // 密码
}

// LoginReq 定义登录请求的结构体
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"` // 邮箱
	Password string `json:"password" binding:"required"`    // 密码
}

// Register 处理用户注册请求
func Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定注册请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	// 查询用户名或邮箱是否已被占用
	var existing model.User
	err := database.DB.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error
	if err == nil {
		log.Warn("用户名或邮箱已存在", "username", req.Username, "email", req.Email)
		response.Fail(c, response.ErrAlreadyExists.WithTips("用户名或邮箱已被占用"))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("数据库查询失败", "error", err, "username", req.Username)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	hash, err := tools.PasswordHash(req.Password)
	if err != nil {
		log.Error("密码哈希失败", "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}

	user := model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		log.Error("创建用户失败", "error", err, "username", req.Username)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("用户注册成功",
		"user_id", user.ID,
		"username", user.Username,
	)

	response.Success(c, map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// Login 处理用户登录请求
func Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定登录请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	// 查询用户是否存在
	var user model.User
	err := database.DB.Where("email = ?", req.Email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Warn("用户不存在", "email", req.Email)
		response.Fail(c, response.ErrNotFound.WithTips("用户不存在"))
		return
	case err != nil:
		log.Error("数据库查询失败", "error", err, "email", req.Email)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	// 验证密码
	if !tools.PasswordCompare(req.Password, user.Password) {
		log.Warn("密码错误", "email", req.Email)
		response.Fail(c, response.ErrInvalidPassword)
		return
	}

	log.Info("用户登录成功",
		"user_id", user.ID,
		"username", user.Username,
	)

	// 生成 JWT 令牌并返回用户信息
	response.Success(c, map[string]interface{}{
		"token": jwt.CreateToken(jwt.Payload{
			UserID:   user.ID,
			Username: user.Username,
			RoleID:   user.RoleID,
		}),
		"id":       user.ID,
		"username": user.Username,
		"role_id":  user.RoleID,
	})
}

// Me 返回当前登录用户信息
func Me(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	var user model.User
	if err := database.DB.First(&user, "id = ?", payload.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, response.ErrNotFound.WithTips("用户不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role_id":  user.RoleID,
		"avatar":   user.Avatar,
	})
}
