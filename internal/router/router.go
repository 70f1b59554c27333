package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sendpost/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret, uploadURLPath, uploadDir string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("sendpost_session", store))

	// 上传的图片通过静态路径对外提供
	r.Static(uploadURLPath, uploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/register", api.Register)
		apiGroup.POST("/login", api.Login)

		// 需要认证的路由
		auth := apiGroup.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.POST("/logout", api.Logout)
			auth.GET("/user", api.CurrentUser)

			auth.GET("/posts", api.GetPosts)
			auth.POST("/posts", api.CreatePost)
			auth.GET("/posts/:id", api.GetPost)
			auth.DELETE("/posts/:id", api.DeletePost)
			auth.POST("/posts/:id/retry", api.RetryPost)
			auth.GET("/posts/:id/preview", api.PreviewPost)

			auth.GET("/send-logs", api.GetSendLogs)
			auth.GET("/send-logs/:id", api.GetPostSendLogs)
		}
	}

	return r
}
