package summarizer

import (
	"context"
	"strings"

	"github.com/fyerfyer/hindi-summarizer/internal/pyprovider"
)

// PyProviderGenerator 通过Python推理服务调用mBART模型
// 分词、束搜索和解码都在推理服务中完成
type PyProviderGenerator struct {
	client *pyprovider.SummarizeClient
	model  string
}

// NewPyProviderGenerator 创建基于Python推理服务的生成后端
func NewPyProviderGenerator(opts ...Option) (Generator, error) {
	cfg := NewBackendConfig(opts...)

	pyCfg := pyprovider.DefaultConfig().
		WithBaseURL(cfg.BaseURL).
		WithTimeout(cfg.Timeout).
		WithRetry(cfg.MaxRetries, pyprovider.DefaultConfig().RetryDelay)

	httpClient, err := pyprovider.NewClient(pyCfg)
	if err != nil {
		return nil, WrapError(err, ErrCodeInvalidConfig, "invalid python service config")
	}
	if cfg.Logger != nil {
		httpClient.WithLogger(cfg.Logger)
	}

	return &PyProviderGenerator{
		client: pyprovider.NewSummarizeClient(httpClient),
		model:  cfg.Model,
	}, nil
}

// Name 返回模型名称
func (g *PyProviderGenerator) Name() string {
	return g.model
}

// TruncatesInput 推理服务按 max_input_tokens 截断输入
func (g *PyProviderGenerator) TruncatesInput() bool {
	return true
}

// Generate 调用推理服务生成摘要
func (g *PyProviderGenerator) Generate(ctx context.Context, req Request) (*Output, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}
	dec := req.Decoding

	resp, err := g.client.Summarize(ctx, pyprovider.SummarizeRequest{
		Text:              req.Text,
		Model:             model,
		SrcLang:           dec.SourceLang,
		TgtLang:           dec.TargetLang,
		MaxInputTokens:    dec.MaxInputTokens,
		Truncation:        true,
		MinLength:         dec.MinLength,
		MaxLength:         dec.MaxLength,
		NumBeams:          dec.NumBeams,
		LengthPenalty:     dec.LengthPenalty,
		EarlyStopping:     dec.EarlyStopping,
		DoSample:          false,
		SkipSpecialTokens: dec.SkipSpecialTokens,
	})
	if err != nil {
		return nil, WrapError(err, ErrCodeBackend, ErrMsgBackend)
	}

	out := &Output{
		Summary:      strings.TrimSpace(resp.Summary),
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		Truncated:    resp.Truncated,
	}
	if out.Model == "" {
		out.Model = model
	}
	return out, nil
}

// Ping 检查推理服务和模型是否就绪
func (g *PyProviderGenerator) Ping(ctx context.Context) error {
	if _, err := g.client.Health(ctx); err != nil {
		return WrapError(err, ErrCodeBackendMissing, ErrMsgBackendMissing)
	}
	return nil
}

func init() {
	RegisterGenerator("pyprovider", NewPyProviderGenerator)
}
