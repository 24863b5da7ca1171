package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"cv-assistant-go/internal/logger"
)

const (
	// Gemini 的 OpenAI 兼容 chat completions 端点
	openAICompatibleGeminiAPIURL = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	defaultGeminiModelName       = "gemini-1.5-flash"

	defaultTemperature = 0.5
	defaultMaxTokens   = 2000
)

// GeminiChatModel 实现 model.BaseChatModel 接口，通过 OpenAI 兼容
// 端点与 Google Gemini 交互。本服务的对话不使用工具调用，所以只
// 实现 Generate；Stream 不支持（流式响应不在范围内）。
type GeminiChatModel struct {
	apiKey      string
	modelName   string
	apiURL      string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// GeminiOption 配置 GeminiChatModel 的可选项
type GeminiOption func(*GeminiChatModel)

// WithTemperature 设置采样温度
func WithTemperature(t float64) GeminiOption {
	return func(m *GeminiChatModel) {
		m.temperature = t
	}
}

// WithMaxTokens 设置单次回复的最大token数
func WithMaxTokens(n int) GeminiOption {
	return func(m *GeminiChatModel) {
		m.maxTokens = n
	}
}

// WithRequestTimeout 设置单次HTTP调用超时
func WithRequestTimeout(d time.Duration) GeminiOption {
	return func(m *GeminiChatModel) {
		m.httpClient.Timeout = d
	}
}

// NewGeminiChatModel 创建一个新的 GeminiChatModel 实例
func NewGeminiChatModel(apiKey, modelName, apiURL string, opts ...GeminiOption) (*GeminiChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}

	mn := modelName
	if strings.TrimSpace(mn) == "" {
		mn = defaultGeminiModelName
	}

	url := apiURL
	if strings.TrimSpace(url) == "" {
		url = openAICompatibleGeminiAPIURL
	}

	m := &GeminiChatModel{
		apiKey:      apiKey,
		modelName:   mn,
		apiURL:      url,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		httpClient:  &http.Client{},
	}
	for _, opt := range opts {
		opt(m)
	}

	logger.Info().Str("api_url", m.apiURL).Str("model", m.modelName).Msg("Gemini LLM 客户端已初始化")
	return m, nil
}

// --- OpenAI 兼容请求/响应结构 ---

type openAIChatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []*schema.Message `json:"messages"` // schema.Message 的 role/content 与 OpenAI 格式兼容
	Temperature float64           `json:"temperature,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type openAIChatChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAICompletionResponse struct {
	Id      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []openAIChatChoice `json:"choices"`
}

// Generate 实现 model.BaseChatModel 接口
func (g *GeminiChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	reqPayload := openAIChatCompletionRequest{
		Model:       g.modelName,
		Messages:    messages,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	logger.Debug().Str("api_url", g.apiURL).Str("model", g.modelName).
		Int("messages", len(messages)).Msg("发送 Gemini 请求")

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API 请求失败，状态 %s: %s", httpResp.Status, string(bodyBytes))
	}

	var openAIResp openAICompletionResponse
	if err := json.Unmarshal(bodyBytes, &openAIResp); err != nil {
		return nil, fmt.Errorf("反序列化 API 响应失败: %w", err)
	}

	if len(openAIResp.Choices) == 0 {
		return nil, fmt.Errorf("从 API 收到空选项")
	}

	apiMessage := openAIResp.Choices[0].Message
	responseContent := ""
	if apiMessage.Content != nil {
		responseContent = *apiMessage.Content
	}

	resultMessage := &schema.Message{
		Role:    schema.RoleType(apiMessage.Role),
		Content: responseContent,
	}
	if resultMessage.Role == "" {
		resultMessage.Role = schema.RoleType("assistant")
	}

	return resultMessage, nil
}

// Stream 实现 model.BaseChatModel 接口。流式响应不在本服务范围内。
func (g *GeminiChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("GeminiChatModel 的 Stream 方法未实现")
}
