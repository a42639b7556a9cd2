package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	openAISeed = 42

	openAISystemPrompt = `आप एक सारांश सहायक हैं। दिए गए हिंदी पाठ का एक संक्षिप्त सारांश हिंदी में लिखें।
केवल सारांश लिखें, कोई भूमिका या सूची नहीं।`
)

// OpenAIGenerator 调用兼容OpenAI接口的聊天补全服务
// 该接口不支持束搜索，使用温度0和固定种子保证输出稳定
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator 创建OpenAI兼容后端
func NewOpenAIGenerator(opts ...Option) (Generator, error) {
	cfg := NewBackendConfig(opts...)
	if cfg.APIKey == "" {
		return nil, NewSummarizationError(ErrCodeInvalidConfig, "openai api key is required")
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIGenerator{
		client: openai.NewClient(clientOpts...),
		model:  cfg.Model,
	}, nil
}

// Name 返回模型名称
func (g *OpenAIGenerator) Name() string {
	return g.model
}

// Generate 生成一条摘要
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (*Output, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, NewSummarizationError(ErrCodeEmptyInput, ErrMsgEmptyInput)
	}
	model := req.Model
	if model == "" {
		model = g.model
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(openAISystemPrompt),
			openai.UserMessage(text),
		},
		MaxCompletionTokens: openai.Int(int64(req.Decoding.MaxLength)),
		Temperature:         openai.Float(0),
		Seed:                openai.Int(openAISeed),
		N:                   openai.Int(1),
	})
	if err != nil {
		return nil, WrapError(fmt.Errorf("do request: %w", err), ErrCodeBackend, ErrMsgBackend)
	}
	if len(resp.Choices) == 0 {
		return nil, WrapError(errors.New("response has no choices"), ErrCodeBackend, ErrMsgBackend)
	}

	return &Output{
		Summary:      strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:        resp.Model,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}, nil
}

// Ping 查询模型信息以确认服务可达
func (g *OpenAIGenerator) Ping(ctx context.Context) error {
	if _, err := g.client.Models.Get(ctx, g.model); err != nil {
		return WrapError(err, ErrCodeBackendMissing, ErrMsgBackendMissing)
	}
	return nil
}

func init() {
	RegisterGenerator("openai", NewOpenAIGenerator)
}
