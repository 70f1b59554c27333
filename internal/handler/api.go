package handler

import (
	"github.com/sendpost/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	posts     *service.PostService
	logs      *service.SendLogService
	uploadDir string
	uploadURL string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, posts *service.PostService, logs *service.SendLogService, uploadDir, uploadURL string) *API {
	return &API{
		db:        gdb,
		posts:     posts,
		logs:      logs,
		uploadDir: uploadDir,
		uploadURL: uploadURL,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
