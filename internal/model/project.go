package model

// 项目类型枚举
const (
	ProjectTypeWebApp  = "web application"
	ProjectTypeGame    = "game"
	ProjectTypeMobile  = "mobile app"
	ProjectTypeDesktop = "desktop app"
	ProjectTypeLibrary = "library"
	ProjectTypeOther   = "other"
)

// ProjectTypes 允许的项目类型集合
var ProjectTypes = []string{
	ProjectTypeWebApp,
	ProjectTypeGame,
	ProjectTypeMobile,
	ProjectTypeDesktop,
	ProjectTypeLibrary,
	ProjectTypeOther,
}

func ValidProjectType(t string) bool {
	for _, pt := range ProjectTypes {
		if pt == t {
			return true
		}
	}
	return false
}

type Project struct {
	Model
	Name        string   `gorm:"type:varchar(100);not null" json:"name"`                   // 项目名称
	Description string   `gorm:"type:varchar(255);" json:"description"`                    // 项目描述
	Hashtags    []string `gorm:"type:varchar(512);serializer:json" json:"hashtags"`        // 话题标签，统一小写
	Type        string   `gorm:"type:varchar(20);default:'other'" json:"type"`             // 项目类型枚举
	Version     string   `gorm:"type:varchar(32);default:'v1.0.0'" json:"version"`         // 自由格式版本串
	OwnerID     uint     `gorm:"not null;index" json:"owner_id"`                           // 所有者用户ID
	Owner       User     `gorm:"foreignKey:OwnerID;references:ID" json:"owner,omitempty"`  // 关联到所有者
}
