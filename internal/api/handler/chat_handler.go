package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/eino/schema"

	"cv-assistant-go/internal/agent"
	"cv-assistant-go/internal/config"
	"cv-assistant-go/internal/logger"
	"cv-assistant-go/internal/reconciler"
	"cv-assistant-go/internal/session"
	"cv-assistant-go/internal/types"
)

// apologyMessage 上游模型调用失败时返回给用户的道歉话术（西语，与对话语言一致）
const apologyMessage = "Disculpa, estoy teniendo problemas técnicos. ¿Podrías intentarlo de nuevo?"

// ChatHandler 处理对话类请求：初始化会话、发送消息、查询完成度
type ChatHandler struct {
	cfg     *config.Config
	store   *session.Store
	gateway *agent.Gateway
}

// NewChatHandler 创建对话处理器
func NewChatHandler(cfg *config.Config, store *session.Store, gateway *agent.Gateway) *ChatHandler {
	return &ChatHandler{cfg: cfg, store: store, gateway: gateway}
}

// InitRequest 初始化会话的请求体
type InitRequest struct {
	UserID string `json:"userId"`
}

// SendRequest 发送消息的请求体
type SendRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// HandleInit 初始化CV会话。
// POST /api/v1/chat/init
// 会话不存在时创建并用网关的开场白播种对话记录；已存在时幂等返回。
func (h *ChatHandler) HandleInit(ctx context.Context, c *app.RequestContext) {
	var req InitRequest
	if err := c.BindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "userId 不能为空"})
		return
	}

	sess, ok := h.store.Get(req.UserID)
	if !ok {
		greeting, err := h.gateway.InitGreeting(ctx)
		if err != nil {
			logger.Error().Err(err).Str("user_id", req.UserID).Msg("获取开场白失败")
			h.upstreamError(c, err)
			return
		}

		sess = types.NewSession(req.UserID)
		sess.ChatHistory = append(sess.ChatHistory, schema.AssistantMessage(greeting, nil))
		h.store.Put(req.UserID, sess)
	}

	c.JSON(consts.StatusOK, utils.H{
		"message":    lastAssistantMessage(sess),
		"sessionId":  req.UserID,
		"cvProgress": reconciler.Progress(sess.CVData),
	})
}

// HandleSend 处理一轮对话：追加用户消息，调用网关取得助手回复和
// 结构化片段，合并片段后追加助手消息并整体写回。
// POST /api/v1/chat/send
func (h *ChatHandler) HandleSend(ctx context.Context, c *app.RequestContext) {
	var req SendRequest
	if err := c.BindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "userId 不能为空"})
		return
	}

	sess, ok := h.store.Get(req.UserID)
	if !ok {
		c.JSON(consts.StatusNotFound, utils.H{"error": "Session not found"})
		return
	}

	// 在历史的副本上构造本轮消息，上游失败时失败的轮次不落库
	history := make([]*schema.Message, 0, len(sess.ChatHistory)+2)
	history = append(history, sess.ChatHistory...)
	history = append(history, schema.UserMessage(req.Message))

	reply, frag, err := h.gateway.Converse(ctx, history)
	if err != nil {
		logger.Error().Err(err).Str("user_id", req.UserID).Msg("处理消息失败")
		h.upstreamError(c, err)
		return
	}

	// 片段为 nil 表示这一轮没有结构化数据，属于正常情况
	if frag != nil {
		reconciler.Merge(sess.CVData, frag)
	}

	sess.ChatHistory = append(history, schema.AssistantMessage(reply, nil))
	h.store.Put(req.UserID, sess)

	c.JSON(consts.StatusOK, utils.H{
		"message":    reply,
		"cvData":     sess.CVData,
		"cvProgress": reconciler.Progress(sess.CVData),
	})
}

// HandleStatus 查询CV完成度。
// GET /api/v1/chat/status/:userId
func (h *ChatHandler) HandleStatus(ctx context.Context, c *app.RequestContext) {
	userID := c.Param("userId")

	sess, ok := h.store.Get(userID)
	if !ok {
		c.JSON(consts.StatusNotFound, utils.H{
			"hasCompleteData": false,
			"message":         "Session not found",
		})
		return
	}

	c.JSON(consts.StatusOK, reconciler.Progress(sess.CVData))
}

// upstreamError 把上游失败转换为500响应。内部细节只在开发模式下返回。
func (h *ChatHandler) upstreamError(c *app.RequestContext, err error) {
	body := utils.H{"error": apologyMessage}
	if h.cfg.IsDevelopment() {
		body["details"] = err.Error()
	}
	c.JSON(consts.StatusInternalServerError, body)
}

// lastAssistantMessage 返回会话中最后一条消息的内容
func lastAssistantMessage(sess *types.Session) string {
	if len(sess.ChatHistory) == 0 {
		return ""
	}
	return sess.ChatHistory[len(sess.ChatHistory)-1].Content
}
