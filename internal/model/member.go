package model

// 成员角色枚举
const (
	RoleOwner        = "owner"
	RoleCollaborator = "collaborator"
	RoleViewer       = "viewer"
)

// Member 项目成员，加入时间取 CreatedAt
type Member struct {
	Model
	ProjectID uint   `gorm:"not null;uniqueIndex:idx_member_project_user" json:"project_id"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_member_project_user" json:"user_id"`
	Role      string `gorm:"type:varchar(20);default:'collaborator'" json:"role"` // owner / collaborator / viewer
	User      User   `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}
