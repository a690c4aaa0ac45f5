package router

import (
	"github.com/gin-gonic/gin"

	"github.com/flowmart/flowmart/internal/handler"
	"github.com/flowmart/flowmart/internal/middleware"
	"github.com/flowmart/flowmart/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, svc *service.Services) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.AuthMiddleware(svc))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// Auth 认证
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.GET("/me", middleware.RequireAuth(svc), h.Auth.Me)
		}

		// Workflow 工作流
		workflows := v1.Group("/workflows")
		{
			workflows.GET("", h.Workflow.List)
			workflows.POST("", middleware.RequireAuth(svc), h.Workflow.Create)
			workflows.GET("/:id", h.Workflow.Get)
			workflows.PUT("/:id", middleware.RequireAuth(svc), h.Workflow.Update)
			workflows.DELETE("/:id", middleware.RequireAuth(svc), h.Workflow.Delete)

			// 附件：上传/删除要求登录，取回与整包下载对已发布工作流开放匿名访问
			workflows.POST("/:id/files", middleware.RequireAuth(svc), h.File.Upload)
			workflows.GET("/:id/files", h.File.List)
			workflows.GET("/:id/files/:fileId", h.File.Get)
			workflows.DELETE("/:id/files/:fileId", middleware.RequireAuth(svc), h.File.Delete)
			workflows.GET("/:id/download", h.File.Download)
		}

		// Admin 管理端
		admin := v1.Group("/admin", middleware.RequireAuth(svc))
		{
			admin.POST("/avatar", h.Admin.UploadAvatar)
		}
	}

	return r
}
