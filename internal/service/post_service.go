package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sendpost/internal/db"
	"github.com/sendpost/internal/facebook"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrTitleRequired    = errors.New("title is required")
	ErrTitleTooLong     = errors.New("title must be at most 100 characters")
	ErrContentRequired  = errors.New("content is required")
	ErrContentTooLong   = errors.New("content must be at most 280 characters")
	ErrScheduleNotAhead = errors.New("scheduled time must be in the future")
	ErrPostNotFailed    = errors.New("post is not in failed status")
)

const (
	maxTitleLength   = 100
	maxContentLength = 280
)

// publisher 与 deleter 是服务依赖的发布/删除动作能力。
type publisher interface {
	Execute(ctx context.Context, title, content, imagePath string) facebook.Result
}

type deleter interface {
	Execute(ctx context.Context, remotePostID string) facebook.Result
}

// PostService wraps post related database operations and the publishing
// actions reached from the interactive API.
type PostService struct {
	db         *gorm.DB
	publish    publisher
	remove     deleter
	retrier    facebook.Retrier
	uploadDir  string
	logRetries bool
}

// PostFilter describes filters for listing posts.
type PostFilter struct {
	Status   string
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
}

// PostListResult aggregates paginated list data.
type PostListResult struct {
	Posts      []db.Post
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// PostInput represents fields accepted when creating a post.
type PostInput struct {
	UserID       uint
	Title        string
	Content      string
	ScheduledFor *time.Time
	ImagePath    string
}

// NewPostService creates a PostService instance. logRetries controls whether
// the manual retry path writes the same audit row the dispatcher writes.
func NewPostService(gdb *gorm.DB, publish publisher, remove deleter, retrier facebook.Retrier, uploadDir string, logRetries bool) *PostService {
	return &PostService{
		db:         gdb,
		publish:    publish,
		remove:     remove,
		retrier:    retrier,
		uploadDir:  uploadDir,
		logRetries: logRetries,
	}
}

// List provides paginated posts for one user based on filters.
func (s *PostService) List(userID uint, filter PostFilter) (*PostListResult, error) {
	result := &PostListResult{Page: filter.Page, PerPage: 10}
	if result.Page <= 0 {
		result.Page = 1
	}

	countQuery := s.applyFilters(s.db.Model(&db.Post{}).Where("user_id = ?", userID), filter)
	if err := countQuery.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage

	var posts []db.Post
	dataQuery := s.applyFilters(s.db.Model(&db.Post{}).Where("user_id = ?", userID), filter)
	if err := dataQuery.Order("id desc").Limit(result.PerPage).Offset(offset).Find(&posts).Error; err != nil {
		return nil, err
	}

	if result.Total == 0 {
		result.TotalPages = 1
	} else {
		result.TotalPages = int((result.Total + int64(result.PerPage) - 1) / int64(result.PerPage))
	}

	result.Posts = posts
	return result, nil
}

func (s *PostService) applyFilters(query *gorm.DB, filter PostFilter) *gorm.DB {
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", pattern, pattern)
	}
	if filter.DateFrom != nil {
		query = query.Where("scheduled_at >= ?", filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("scheduled_at <= ?", filter.DateTo)
	}
	return query
}

// Get fetches one post owned by the user.
func (s *PostService) Get(userID, id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Where("user_id = ?", userID).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Create validates the input and persists the post. Without a scheduled time
// the post is published synchronously and stored already in its terminal
// state, with one send log row recording the attempt.
func (s *PostService) Create(ctx context.Context, input PostInput) (*db.Post, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)

	if title == "" {
		return nil, ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, ErrTitleTooLong
	}
	if content == "" {
		return nil, ErrContentRequired
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return nil, ErrContentTooLong
	}

	now := time.Now()

	if input.ScheduledFor != nil {
		if !input.ScheduledFor.After(now) {
			return nil, ErrScheduleNotAhead
		}

		post := db.Post{
			UserID:       input.UserID,
			Title:        title,
			Content:      content,
			ImagePath:    input.ImagePath,
			Status:       db.PostStatusScheduled,
			ScheduledFor: input.ScheduledFor,
			ScheduledAt:  &now,
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		return &post, nil
	}

	// 未设置排期：同步发布，帖子以终态入库
	result := s.publish.Execute(ctx, title, content, input.ImagePath)

	post := db.Post{
		UserID:              input.UserID,
		Title:               title,
		Content:             content,
		ImagePath:           input.ImagePath,
		SocialMediaResponse: result.StoredResponse(),
	}

	doneAt := time.Now()
	if result.Success {
		post.Status = db.PostStatusSent
		post.SentAt = &doneAt
	} else {
		post.Status = db.PostStatusFailed
		post.FailedAt = &doneAt
	}

	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}

	entry := db.SendLog{
		PostID:   post.ID,
		UserID:   input.UserID,
		Status:   post.Status,
		Response: post.SocialMediaResponse,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, err
	}

	return &post, nil
}

// Retry re-publishes a failed post through the retry policy. The post is
// optimistically flipped to sent before the attempt, then reconciled with
// the outcome; only posts in failed status are eligible.
func (s *PostService) Retry(ctx context.Context, userID, id uint) (facebook.Result, *db.Post, error) {
	post, err := s.Get(userID, id)
	if err != nil {
		return facebook.Result{}, nil, err
	}

	if post.Status != db.PostStatusFailed {
		return facebook.Result{}, nil, ErrPostNotFailed
	}

	if err := s.db.Model(post).Update("status", db.PostStatusSent).Error; err != nil {
		return facebook.Result{}, nil, err
	}

	result := s.retrier.Execute(ctx, facebook.AttemptFunc(func(ctx context.Context) facebook.Result {
		return s.publish.Execute(ctx, post.Title, post.Content, post.ImagePath)
	}))

	now := time.Now()
	response := result.StoredResponse()
	status := db.PostStatusSent

	updates := map[string]any{
		"status":                status,
		"social_media_response": response,
		"sent_at":               &now,
		"failed_at":             nil,
	}
	if !result.Success {
		status = db.PostStatusFailed
		updates["status"] = status
		updates["sent_at"] = nil
		updates["failed_at"] = &now
	}

	if err := s.db.Model(post).Updates(updates).Error; err != nil {
		return result, nil, err
	}

	if s.logRetries {
		entry := db.SendLog{
			PostID:   post.ID,
			UserID:   userID,
			Status:   status,
			Response: response,
		}
		if err := s.db.Create(&entry).Error; err != nil {
			return result, nil, err
		}
	}

	reloaded, err := s.Get(userID, id)
	if err != nil {
		return result, nil, err
	}
	return result, reloaded, nil
}

// Destroy removes a post. When the stored response carries a remote post id
// the remote copy is deleted first; the stored image file is removed as well.
func (s *PostService) Destroy(ctx context.Context, userID, id uint) error {
	post, err := s.Get(userID, id)
	if err != nil {
		return err
	}

	if remoteID := post.RemotePostID(); remoteID != "" {
		s.remove.Execute(ctx, remoteID)
	}

	if post.ImagePath != "" {
		_ = os.Remove(filepath.Join(s.uploadDir, post.ImagePath))
	}

	return s.db.Delete(&db.Post{}, post.ID).Error
}
