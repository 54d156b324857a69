package model

// 文件锁状态枚举
const (
	FileCheckedIn  = "checkedIn"
	FileCheckedOut = "checkedOut"
)

// File 项目内文件，检出锁以文件为粒度
// 不变式：Status == checkedOut 当且仅当 CheckedOutBy 非空
type File struct {
	Model
	ProjectID    uint   `gorm:"not null;index" json:"project_id"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`              // 文件名
	Path         string `gorm:"type:varchar(255);not null" json:"path"`              // 存储key
	UploadedBy   uint   `gorm:"not null" json:"uploaded_by"`                         // 上传者用户ID
	Size         int64  `gorm:"default:0" json:"size"`                               // 字节数
	MimeType     string `gorm:"type:varchar(100);" json:"mime_type"`                 // MIME 类型
	Status       string `gorm:"type:varchar(20);default:'checkedIn'" json:"status"`  // checkedIn / checkedOut
	CheckedOutBy *uint  `gorm:"default:null" json:"checked_out_by"`                  // 当前持锁人，空表示未检出
}
