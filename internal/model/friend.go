package model

// Friend 好友关系边。关系是对称的，成对写入两条镜像记录
type Friend struct {
	Model
	UserID   uint `gorm:"not null;uniqueIndex:idx_friend_pair" json:"user_id"`
	FriendID uint `gorm:"not null;uniqueIndex:idx_friend_pair" json:"friend_id"`
}
