package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sendpost/internal/service"
)

// GetSendLogs 获取当前用户的投递日志列表
func (a *API) GetSendLogs(c *gin.Context) {
	userID, _ := currentUserID(c)

	page := 1
	if parsed, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = parsed
	}

	result, err := a.logs.ListForUser(userID, strings.TrimSpace(c.Query("status")), page)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取投递日志失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        result.Logs,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// GetPostSendLogs 获取单个帖子的全部投递日志
func (a *API) GetPostSendLogs(c *gin.Context) {
	userID, _ := currentUserID(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的帖子ID")
		return
	}

	logs, err := a.logs.ListForPost(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "帖子不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取投递日志失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": logs})
}
