package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sendpost/internal/config"
	"github.com/sendpost/internal/db"
	"github.com/sendpost/internal/dispatcher"
	"github.com/sendpost/internal/facebook"
	"github.com/sendpost/internal/handler"
	"github.com/sendpost/internal/router"
	"github.com/sendpost/internal/service"
)

func main() {
	cfg := config.Load()

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	if err := db.EnsureUser(cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		log.Fatalf("failed to ensure root user: %v", err)
	}

	// 平台客户端与动作
	client := facebook.NewClient(facebook.Config{
		GraphVersion: cfg.GraphVersion,
		PageID:       cfg.PageID,
		AccessToken:  cfg.PageAccessToken,
	})
	publishAction := facebook.NewPublishAction(client, cfg.PageAccessToken, cfg.UploadDir)
	deleteAction := facebook.NewDeleteAction(client, cfg.PageAccessToken)
	retrier := facebook.Retrier{MaxAttempts: cfg.RetryMaxAttempts, Delay: cfg.RetryDelay}

	posts := service.NewPostService(db.DB, publishAction, deleteAction, retrier, cfg.UploadDir, cfg.RetryAuditLog)
	logs := service.NewSendLogService(db.DB)

	// 调度器随服务启动，收到终止信号时退出
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := dispatcher.New(db.DB, publishAction, cfg.DispatchInterval, nil)
	go func() {
		if err := d.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("dispatcher stopped: %v", err)
		}
	}()

	// 设置并运行 Gin 服务器
	gin.SetMode(cfg.GinMode)
	api := handler.NewAPI(db.DB, posts, logs, cfg.UploadDir, cfg.UploadURLPath)
	r := router.SetupRouter(api, cfg.SessionSecret, cfg.UploadURLPath, cfg.UploadDir)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
