package handler

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"cv-assistant-go/internal/config"
	"cv-assistant-go/internal/logger"
	"cv-assistant-go/internal/pdf"
	"cv-assistant-go/internal/reconciler"
	"cv-assistant-go/internal/session"
	"cv-assistant-go/internal/tracing"
)

var tracer = otel.Tracer("handler")

var errSessionNotFound = errors.New("会话不存在")

// CVHandler 处理简历数据读取和PDF导出
type CVHandler struct {
	cfg      *config.Config
	store    *session.Store
	renderer *pdf.Renderer
}

// NewCVHandler 创建简历处理器
func NewCVHandler(cfg *config.Config, store *session.Store, renderer *pdf.Renderer) *CVHandler {
	return &CVHandler{cfg: cfg, store: store, renderer: renderer}
}

// HandleData 返回当前累积的原始简历数据。
// GET /api/v1/cv/data?sessionId=
func (h *CVHandler) HandleData(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Query("sessionId")

	sess, ok := h.store.Get(sessionID)
	if !ok {
		c.JSON(consts.StatusNotFound, utils.H{"error": "Session not found"})
		return
	}

	c.JSON(consts.StatusOK, sess.CVData)
}

// HandleRenderPDF 把会话中的简历渲染成PDF并直接流式返回。
// GET /api/v1/cv/:userId/pdf
// 必要部分缺失时返回400并列出缺了什么；渲染失败返回500通用错误。
func (h *CVHandler) HandleRenderPDF(ctx context.Context, c *app.RequestContext) {
	ctx, span := tracer.Start(ctx, "RenderCVPDF")
	defer span.End()

	userID := c.Param("userId")

	sess, ok := h.store.Get(userID)
	if !ok {
		tracing.RecordHTTPError(span, errSessionNotFound, consts.StatusNotFound)
		c.JSON(consts.StatusNotFound, utils.H{"error": "Session not found"})
		return
	}

	if missing := reconciler.MissingSections(sess.CVData); len(missing) > 0 {
		err := fmt.Errorf("CV记录缺少必要部分: %v", missing)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		c.JSON(consts.StatusBadRequest, utils.H{
			"error":           "El CV está incompleto para generar el PDF",
			"missingSections": missing,
		})
		return
	}

	pdfBytes, err := h.renderer.Render(sess.CVData)
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("渲染PDF失败")
		tracing.RecordError(span, err, tracing.ErrorTypeRender)
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "Failed to generate PDF"})
		return
	}

	span.SetAttributes(
		attribute.Int("pdf.size_bytes", len(pdfBytes)),
		attribute.String("cv.name", tracing.SafeAttributeValue("name", sess.CVData.Personal.Name, tracing.DefaultMaxLength)),
	)

	filename := pdfFilename(sess.CVData.Personal.Name)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(consts.StatusOK, "application/pdf", pdfBytes)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// pdfFilename 从姓名派生下载文件名，空白替换为下划线
func pdfFilename(name string) string {
	if name == "" {
		return "CV.pdf"
	}
	return fmt.Sprintf("CV_%s.pdf", whitespaceRe.ReplaceAllString(name, "_"))
}
