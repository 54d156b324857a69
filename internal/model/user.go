package model

type User struct {
	Model
	Username string `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"` // 用户名，唯一
	Email    string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`   // 邮箱，唯一
	Password string `gorm:"type:varchar(255);not null" json:"-"`                   // bcrypt 哈希
	RoleID   int    `gorm:"default:0;not null" json:"role_id"`                     // 0 普通用户，1 管理员
	Avatar   string `gorm:"type:varchar(255);" json:"avatar"`                      // 头像URL
}
