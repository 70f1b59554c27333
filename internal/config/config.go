package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabasePath      string
	SessionSecret     string
	GinMode           string
	UploadDir         string
	UploadURLPath     string
	SuperRootUserName string
	SuperRootPassword string

	// Facebook 页面发布配置
	GraphVersion    string
	PageID          string
	PageAccessToken string

	// 调度与重试配置
	DispatchInterval time.Duration
	RetryMaxAttempts int
	RetryDelay       time.Duration
	RetryAuditLog    bool
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 存在 .env 文件时会先行加载。
func Load() AppConfig {
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		DatabasePath:      getEnv("DATABASE_PATH", "sendpost.db"),
		SessionSecret:     getEnv("SESSION_SECRET", "sendpost-dev-secret"),
		GinMode:           getEnv("GIN_MODE", "release"),
		UploadDir:         getEnv("UPLOAD_DIR", "storage/uploads"),
		UploadURLPath:     getEnv("UPLOAD_URL_PATH", "/storage/uploads"),
		SuperRootUserName: strings.TrimSpace(os.Getenv("SUPER_ROOT_USER_NAME")),
		SuperRootPassword: strings.TrimSpace(os.Getenv("SUPER_ROOT_PASSWORD")),
		GraphVersion:      getEnv("FACEBOOK_GRAPH_VERSION", "v23.0"),
		PageID:            strings.TrimSpace(os.Getenv("FACEBOOK_PAGE_ID")),
		PageAccessToken:   strings.TrimSpace(os.Getenv("FACEBOOK_PAGE_ACCESS_TOKEN")),
		DispatchInterval:  getEnvDuration("DISPATCH_INTERVAL", time.Minute),
		RetryMaxAttempts:  getEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryDelay:        getEnvDuration("RETRY_DELAY", 2*time.Second),
		RetryAuditLog:     getEnvBool("RETRY_AUDIT_LOG", false),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
