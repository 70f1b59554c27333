package dispatcher

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sendpost/internal/db"
	"github.com/sendpost/internal/facebook"
	"gorm.io/gorm"
)

// publisher 是调度器依赖的发布动作能力。
type publisher interface {
	Execute(ctx context.Context, title, content, imagePath string) facebook.Result
}

// Dispatcher 按固定周期扫描到期的 scheduled 帖子并逐个发布。
// 同一周期内上一轮仍在执行时，新一轮会被跳过而不是排队。
type Dispatcher struct {
	db       *gorm.DB
	action   publisher
	interval time.Duration
	logger   *log.Logger

	running sync.Mutex
}

// New 创建调度器。interval 不合法时回退到一分钟，logger 为 nil 时使用默认 logger。
func New(gdb *gorm.DB, action publisher, interval time.Duration, logger *log.Logger) *Dispatcher {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Dispatcher{
		db:       gdb,
		action:   action,
		interval: interval,
		logger:   logger,
	}
}

// Run 启动调度主循环，启动时立即执行一轮，之后按周期触发，ctx 取消时退出。
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.dispatch(ctx)

	for {
		select {
		case <-ctx.Done():
			d.logger.Printf("dispatcher shutting down")
			return ctx.Err()
		case <-ticker.C:
			d.dispatch(ctx)
		}
	}
}

// dispatch 带重叠抑制地执行一轮处理。
func (d *Dispatcher) dispatch(ctx context.Context) {
	if !d.running.TryLock() {
		d.logger.Printf("previous dispatch still running, skipping this tick")
		return
	}
	defer d.running.Unlock()

	if err := d.ProcessDue(ctx); err != nil {
		d.logger.Printf("dispatch failed: %v", err)
	}
}

// ProcessDue 选出所有到期的 scheduled 帖子并顺序处理。
// 单个帖子的失败不会中断整批处理。
func (d *Dispatcher) ProcessDue(ctx context.Context) error {
	var posts []db.Post
	if err := d.db.
		Where("status = ? AND scheduled_for <= ?", db.PostStatusScheduled, time.Now()).
		Find(&posts).Error; err != nil {
		return err
	}

	for i := range posts {
		d.processPost(ctx, &posts[i])
	}
	return nil
}

// processPost 先乐观地把帖子标记为 sent 以认领该行，再执行发布，
// 最后根据结果落盘终态并追加一条审计日志。
func (d *Dispatcher) processPost(ctx context.Context, post *db.Post) {
	if err := d.db.Model(post).Update("status", db.PostStatusSent).Error; err != nil {
		d.logger.Printf("post %d claim failed: %v", post.ID, err)
		return
	}

	result := d.action.Execute(ctx, post.Title, post.Content, post.ImagePath)

	now := time.Now()
	status := db.PostStatusSent
	response := result.StoredResponse()

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

	if err := d.db.Model(post).Updates(updates).Error; err != nil {
		d.logger.Printf("post %d state update failed: %v", post.ID, err)
		return
	}

	entry := db.SendLog{
		PostID:   post.ID,
		UserID:   post.UserID,
		Status:   status,
		Response: response,
	}
	if err := d.db.Create(&entry).Error; err != nil {
		d.logger.Printf("post %d send log write failed: %v", post.ID, err)
	}

	if result.Success {
		d.logger.Printf("post %d published", post.ID)
	} else {
		d.logger.Printf("post %d failed: %s", post.ID, result.Error)
	}
}
