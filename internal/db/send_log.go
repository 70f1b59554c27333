package db

import "gorm.io/gorm"

// SendLog 是每次投递尝试的审计记录，只增不改。
type SendLog struct {
	gorm.Model
	PostID   uint
	Post     Post
	UserID   uint
	User     User
	Status   string
	Response string
}
