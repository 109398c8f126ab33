package router

import (
	"net/http"

	"chatgate/api"
	"chatgate/config"
	_ "chatgate/docs"
	"chatgate/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, chatHandler *api.ChatHandler, historyHandler *api.HistoryHandler) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiGroup := r.Group("/api")
	{
		// 聊天
		apiGroup.GET("/chat", chatHandler.SimpleChat)
		apiGroup.POST("/chat", chatHandler.Chat)
		apiGroup.GET("/chat/stream", chatHandler.ChatStream)

		// 历史记录
		history := apiGroup.Group("/history")
		{
			history.GET("", historyHandler.List)
			history.GET("/recent", historyHandler.Recent)
			history.GET("/export", historyHandler.Export)
			history.DELETE("", historyHandler.Clear)
		}

		// 健康检查
		apiGroup.GET("/health", healthCheck)
	}

	return r
}

// healthCheck 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce plain
// @Success 200 {string} string "API 运行正常"
// @Router /api/health [get]
func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "✅ API 运行正常")
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
