package model

// 动态类型枚举
const (
	ActivityCheckout       = "checkout"
	ActivityCheckin        = "checkin"
	ActivityCheckinFile    = "checkin_file"
	ActivityProjectCreated = "project_created"
	ActivityFileUploaded   = "file_uploaded"
	ActivityFileDeleted    = "file_deleted"
	ActivityMemberAdded    = "member_added"
	ActivityMemberRemoved  = "member_removed"
	ActivityOther          = "other"
)

// ActivityFile 动态中引用的文件快照
type ActivityFile struct {
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"`
}

// Activity 不可变审计记录，每个状态变更操作写入一条
type Activity struct {
	Model
	Type      string         `gorm:"type:varchar(20);not null;index" json:"type"`
	ProjectID uint           `gorm:"not null;index" json:"project_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Message   string         `gorm:"type:varchar(512);" json:"message"`               // 自由文本
	Version   string         `gorm:"type:varchar(32);" json:"version"`                // 操作时的版本快照
	Files     []ActivityFile `gorm:"type:varchar(2048);serializer:json" json:"files"` // 涉及的文件
}
