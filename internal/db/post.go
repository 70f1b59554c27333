package db

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Post 状态只会出现以下三种取值，sent 与 failed 为终态。
const (
	PostStatusScheduled = "scheduled"
	PostStatusSent      = "sent"
	PostStatusFailed    = "failed"
)

// Post 定义了待发布/已发布的帖子模型。
// SentAt 与 FailedAt 至多只有一个被设置，且必须与 Status 一致。
type Post struct {
	gorm.Model
	UserID              uint
	User                User
	Title               string
	Content             string
	ImagePath           string
	Status              string `gorm:"index"`
	SocialMediaResponse string
	ScheduledFor        *time.Time
	ScheduledAt         *time.Time
	SentAt              *time.Time
	FailedAt            *time.Time

	SendLogs []SendLog
}

// RemotePostID 从存储的平台响应中提取远端帖子ID。
// 调度路径存储完整成功响应（含 id 字段）；早期客户端写入的是 post_id 字段，
// 这里保留双键探测作为兼容垫片。
func (p *Post) RemotePostID() string {
	raw := p.SocialMediaResponse
	if raw == "" {
		return ""
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return ""
	}

	if id, ok := payload["post_id"].(string); ok && id != "" {
		return id
	}
	if id, ok := payload["id"].(string); ok && id != "" {
		return id
	}
	return ""
}
