package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"cv-assistant-go/internal/logger"
	"cv-assistant-go/internal/tracing"
	"cv-assistant-go/internal/types"
)

var tracer = otel.Tracer("agent")

// systemInstruction 固定的系统指令：引导模型按顺序逐项收集简历信息，
// 不向用户展示JSON，并在回复中附带结构化摘要
const systemInstruction = `Eres un asistente profesional para crear CVs en español. Sigue estas reglas:
1. Comienza preguntando: "¡Hola! ¿Te gustaría que te ayude a crear o mejorar tu CV?"
2. Haz UNA pregunta a la vez en este orden:
   a) Información personal (nombre completo, email, teléfono, ubicación)
   b) Educación (título, universidad, fechas inicio/fin)
   c) Experiencia laboral (puesto, empresa, responsabilidades)
   d) Habilidades (técnicas y blandas)
3. Verifica cada respuesta antes de continuar
4. Nunca muestres el JSON completo al usuario
5. Mantén un tono amable y profesional
6. Al final, resume toda la información en formato JSON`

// primerReply 系统指令之后的预置助手回复，锚定模型的行为
const primerReply = "Entendido. Comenzaré ofreciendo ayuda con el CV y haré una pregunta a la vez, " +
	"pero sobre todo nunca mostraré el JSON completo al usuario."

// initPrompt 初始化会话时发给模型的第一条用户消息
const initPrompt = "Iniciar nueva conversación de CV"

// Gateway 对话网关：封装对外部文本生成服务的单次调用。
// 输入是完整的会话记录，输出是助手的下一条回复，以及尽力而为地
// 从回复文本中提取出的结构化片段。
type Gateway struct {
	chatModel model.BaseChatModel
}

// NewGateway 创建对话网关
func NewGateway(chatModel model.BaseChatModel) *Gateway {
	return &Gateway{chatModel: chatModel}
}

// Converse 把完整会话记录（含最新的用户消息）发给模型，返回助手
// 回复和从中提取的结构化片段。
//
// 片段提取是尽力而为的：提取或解析失败只意味着"这一轮没有结构化
// 数据"，返回 nil 片段而不是错误，对话照常继续。调用方不能假设
// 片段按任何固定频率出现。
func (g *Gateway) Converse(ctx context.Context, history []*schema.Message) (string, *types.RawFragment, error) {
	ctx, span := tracer.Start(ctx, "Converse")
	defer span.End()
	span.SetAttributes(attribute.Int("chat.history_len", len(history)))

	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages,
		schema.SystemMessage(systemInstruction),
		schema.AssistantMessage(primerReply, nil),
	)
	messages = append(messages, history...)

	resp, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		tracing.RecordErrorWithInfo(span, err, tracing.ErrorTypeLLM,
			attribute.Int("chat.messages_sent", len(messages)))
		return "", nil, fmt.Errorf("调用对话模型失败: %w", err)
	}

	frag := extractFragment(resp.Content)
	span.SetAttributes(
		attribute.Bool("chat.fragment_extracted", frag != nil),
		attribute.String("chat.reply", tracing.SafeMessageContent(resp.Content)),
	)
	span.SetStatus(codes.Ok, "")

	return resp.Content, frag, nil
}

// InitGreeting 发起一轮一次性对话获取开场白，用于会话初始化
func (g *Gateway) InitGreeting(ctx context.Context) (string, error) {
	reply, _, err := g.Converse(ctx, []*schema.Message{schema.UserMessage(initPrompt)})
	return reply, err
}

// jsonFenceRe 匹配 ```json ... ``` 代码块
var jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// extractFragment 尽力从助手回复中提取结构化片段。
// 提取不到或解析失败时返回 nil，永远不报错。
func extractFragment(reply string) *types.RawFragment {
	jsonStr := extractJSON(reply)
	if jsonStr == "" {
		return nil
	}

	var frag types.RawFragment
	if err := json.Unmarshal([]byte(jsonStr), &frag); err != nil {
		logger.Debug().Err(err).
			Str("json", tracing.TruncateString(jsonStr, tracing.MaxFragmentLength)).
			Msg("无法从回复中解析结构化数据，本轮跳过")
		return nil
	}
	if frag.IsEmpty() {
		return nil
	}
	return &frag
}

// extractJSON 从文本中提取JSON对象。
// 优先匹配 ```json 代码块；没有代码块时退回到花括号配对扫描。
func extractJSON(text string) string {
	matches := jsonFenceRe.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	// 查找匹配的}
	level := 0
	for i := start; i < len(text); i++ {
		if text[i] == '{' {
			level++
		} else if text[i] == '}' {
			level--
			if level == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}
	return ""
}
