package router

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	"cv-assistant-go/internal/api/handler"
	"cv-assistant-go/internal/logger"
)

// RegisterRoutes 注册 API 路由和通用中间件
func RegisterRoutes(h *server.Hertz, chatHandler *handler.ChatHandler, cvHandler *handler.CVHandler) {
	h.Use(requestID(), accessLog())

	api := h.Group("/api/v1")

	chat := api.Group("/chat")
	chat.POST("/init", chatHandler.HandleInit)
	chat.POST("/send", chatHandler.HandleSend)
	chat.GET("/status/:userId", chatHandler.HandleStatus)

	cv := api.Group("/cv")
	cv.GET("/data", cvHandler.HandleData)
	cv.GET("/:userId/pdf", cvHandler.HandleRenderPDF)

	// 健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok", "message": "CV Assistant API is running"})
	})
}

// requestID 为每个请求生成唯一ID，回写到响应头并注入日志字段
func requestID() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := string(c.GetHeader("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next(ctx)
	}
}

// accessLog 记录每个请求的方法、路径、状态码和耗时
func accessLog() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)

		requestID := c.GetString("request_id")
		logger.Info().
			Str("method", string(c.Method())).
			Str("path", string(c.Path())).
			Int("status", c.Response.StatusCode()).
			Dur("latency", time.Since(start)).
			Str("request_id", requestID).
			Msg("http request")
	}
}
