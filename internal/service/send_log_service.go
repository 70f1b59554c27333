package service

import (
	"errors"
	"strings"

	"github.com/sendpost/internal/db"
	"gorm.io/gorm"
)

// SendLogService wraps read access to the send audit log.
type SendLogService struct {
	db *gorm.DB
}

// SendLogListResult aggregates paginated send log data.
type SendLogListResult struct {
	Logs       []db.SendLog
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// NewSendLogService creates a SendLogService instance.
func NewSendLogService(gdb *gorm.DB) *SendLogService {
	return &SendLogService{db: gdb}
}

// ListForUser returns send logs for posts owned by the user, newest first.
func (s *SendLogService) ListForUser(userID uint, status string, page int) (*SendLogListResult, error) {
	result := &SendLogListResult{Page: page, PerPage: 20}
	if result.Page <= 0 {
		result.Page = 1
	}

	query := s.db.Model(&db.SendLog{}).
		Joins("JOIN posts ON posts.id = send_logs.post_id").
		Where("posts.user_id = ?", userID)

	if trimmed := strings.TrimSpace(status); trimmed != "" {
		query = query.Where("send_logs.status = ?", trimmed)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage

	var logs []db.SendLog
	if err := query.Preload("Post").
		Order("send_logs.id desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&logs).Error; err != nil {
		return nil, err
	}

	if result.Total == 0 {
		result.TotalPages = 1
	} else {
		result.TotalPages = int((result.Total + int64(result.PerPage) - 1) / int64(result.PerPage))
	}

	result.Logs = logs
	return result, nil
}

// ListForPost returns every send log for one post owned by the user,
// newest first.
func (s *SendLogService) ListForPost(userID, postID uint) ([]db.SendLog, error) {
	var post db.Post
	if err := s.db.Where("user_id = ?", userID).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	var logs []db.SendLog
	if err := s.db.Where("post_id = ?", post.ID).Order("id desc").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
