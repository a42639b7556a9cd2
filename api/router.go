package api

import (
	"github.com/fyerfyer/hindi-summarizer/api/handler"
	"github.com/fyerfyer/hindi-summarizer/api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(summaryHandler *handler.SummaryHandler) *gin.Engine {
	router := gin.New()

	// 追踪ID需要最先设置，日志和错误处理都会读取它
	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(Cors())

	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestLogger())
	}

	api := router.Group("/api")
	{
		// 文本提取 - 只返回预览
		extractGroup := api.Group("/extract")
		{
			// POST /api/extract/pdf
			extractGroup.POST("/pdf", summaryHandler.ExtractPDF)
			// POST /api/extract/url
			extractGroup.POST("/url", summaryHandler.ExtractURL)
		}

		// 摘要生成
		summaryGroup := api.Group("/summaries")
		{
			// POST /api/summaries
			summaryGroup.POST("", summaryHandler.SummarizeText)
			// POST /api/summaries/pdf
			summaryGroup.POST("/pdf", summaryHandler.SummarizePDF)
			// POST /api/summaries/url
			summaryGroup.POST("/url", summaryHandler.SummarizeURL)
		}

		// GET /api/health
		api.GET("/health", summaryHandler.Health)
	}

	router.NoRoute(func(c *gin.Context) {
		middleware.HandleError(c, middleware.NewNotFoundError("route not found"))
	})

	return router
}

// Cors 跨域资源共享中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Trace-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
