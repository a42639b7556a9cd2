package pyprovider

import (
	"context"
	"fmt"
)

// SummarizeRequest 表示摘要生成请求
// 字段与推理服务中 tokenizer/generate 的参数一一对应
type SummarizeRequest struct {
	Text              string  `json:"text"`
	Model             string  `json:"model,omitempty"`
	SrcLang           string  `json:"src_lang"`
	TgtLang           string  `json:"tgt_lang,omitempty"`
	MaxInputTokens    int     `json:"max_input_tokens"`
	Truncation        bool    `json:"truncation"`
	MinLength         int     `json:"min_length"`
	MaxLength         int     `json:"max_length"`
	NumBeams          int     `json:"num_beams"`
	LengthPenalty     float64 `json:"length_penalty"`
	EarlyStopping     bool    `json:"early_stopping"`
	DoSample          bool    `json:"do_sample"`
	SkipSpecialTokens bool    `json:"skip_special_tokens"`
}

// SummarizeResponse 表示摘要生成的响应
type SummarizeResponse struct {
	Summary        string  `json:"summary"`
	Model          string  `json:"model"`
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	Truncated      bool    `json:"truncated"`
	ProcessingTime float64 `json:"processing_time"`
}

// HealthResponse 表示健康检查响应
type HealthResponse struct {
	Status      string `json:"status"`
	Model       string `json:"model"`
	ModelLoaded bool   `json:"model_loaded"`
}

// SummarizeClient 是摘要推理服务的客户端
type SummarizeClient struct {
	client Client
}

// NewSummarizeClient 创建一个新的摘要客户端
func NewSummarizeClient(client Client) *SummarizeClient {
	return &SummarizeClient{
		client: client,
	}
}

// Summarize 请求推理服务生成摘要
func (c *SummarizeClient) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	var response SummarizeResponse
	if err := c.client.Post(ctx, "/python/summarize", req, &response); err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	return &response, nil
}

// Health 检查推理服务以及模型是否加载完成
func (c *SummarizeClient) Health(ctx context.Context) (*HealthResponse, error) {
	var response HealthResponse
	if err := c.client.Get(ctx, "/python/health", &response); err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	if response.Status != "ok" {
		return &response, fmt.Errorf("python service not ready: status %q", response.Status)
	}
	return &response, nil
}
