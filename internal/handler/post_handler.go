package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sendpost/internal/db"
	"github.com/sendpost/internal/service"
)

// 接受的排期时间格式，与旧版客户端保持一致
var scheduledForLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// GetPosts 获取当前用户的帖子列表
func (a *API) GetPosts(c *gin.Context) {
	userID, _ := currentUserID(c)

	filter := service.PostFilter{
		Status: strings.TrimSpace(c.Query("status")),
		Search: strings.TrimSpace(c.Query("search")),
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if from := strings.TrimSpace(c.Query("date_from")); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的起始日期")
			return
		}
		filter.DateFrom = &parsed
	}
	if to := strings.TrimSpace(c.Query("date_to")); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的结束日期")
			return
		}
		end := parsed.Add(24*time.Hour - time.Second)
		filter.DateTo = &end
	}

	result, err := a.posts.List(userID, filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取帖子列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        result.Posts,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// GetPost 获取单个帖子
func (a *API) GetPost(c *gin.Context) {
	userID, _ := currentUserID(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的帖子ID")
		return
	}

	post, err := a.posts.Get(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "帖子不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取帖子失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": post})
}

// CreatePost 创建新帖子。未设置 scheduled_for 时立即同步发布。
func (a *API) CreatePost(c *gin.Context) {
	userID, _ := currentUserID(c)

	input := service.PostInput{
		UserID:  userID,
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
	}

	if raw := strings.TrimSpace(c.PostForm("scheduled_for")); raw != "" {
		scheduledFor, err := parseScheduledFor(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的排期时间")
			return
		}
		input.ScheduledFor = &scheduledFor
	}

	if file, err := c.FormFile("image"); err == nil {
		imagePath, saveErr := a.saveUpload(c, file)
		if saveErr != nil {
			respondError(c, http.StatusBadRequest, saveErr.Error())
			return
		}
		input.ImagePath = imagePath
	}

	post, err := a.posts.Create(c.Request.Context(), input)
	if err != nil {
		if isValidationError(err) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "创建帖子失败")
		return
	}

	message := "帖子已排期"
	switch post.Status {
	case db.PostStatusSent:
		message = "帖子创建并发布成功"
	case db.PostStatusFailed:
		message = "帖子已创建，但发布失败"
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": post, "message": message})
}

// DeletePost 删除帖子，已发布的帖子会先请求远端删除
func (a *API) DeletePost(c *gin.Context) {
	userID, _ := currentUserID(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的帖子ID")
		return
	}

	if err := a.posts.Destroy(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "帖子不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除帖子失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "帖子已删除"})
}

// RetryPost 对 failed 状态的帖子重新发布
func (a *API) RetryPost(c *gin.Context) {
	userID, _ := currentUserID(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的帖子ID")
		return
	}

	result, post, err := a.posts.Retry(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			respondError(c, http.StatusNotFound, "帖子不存在")
		case errors.Is(err, service.ErrPostNotFailed):
			respondError(c, http.StatusBadRequest, "帖子不是 failed 状态")
		default:
			respondError(c, http.StatusInternalServerError, "重试发布失败")
		}
		return
	}

	payload := gin.H{
		"success":  result.Success,
		"attempts": result.Attempts,
		"post":     post,
	}
	if result.Success {
		payload["post_id"] = result.PostID
		payload["data"] = result.Data
	} else {
		payload["error"] = result.Error
	}

	c.JSON(http.StatusOK, payload)
}

func parseScheduledFor(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range scheduledForLayouts {
		parsed, err := time.ParseInLocation(layout, raw, time.Local)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func isValidationError(err error) bool {
	return errors.Is(err, service.ErrTitleRequired) ||
		errors.Is(err, service.ErrTitleTooLong) ||
		errors.Is(err, service.ErrContentRequired) ||
		errors.Is(err, service.ErrContentTooLong) ||
		errors.Is(err, service.ErrScheduleNotAhead)
}
