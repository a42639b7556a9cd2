package summarizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fyerfyer/hindi-summarizer/internal/cache"
	"github.com/sirupsen/logrus"
)

// Result 摘要结果
type Result struct {
	Summary      string        `json:"summary"`
	Model        string        `json:"model"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	Truncated    bool          `json:"truncated"`
	Cached       bool          `json:"cached"`
	Latency      time.Duration `json:"-"`
}

// GeneratorProvider 提供生成后端实例，*Lazy 实现了该接口
type GeneratorProvider interface {
	Get() (Generator, error)
}

// staticProvider 直接持有一个已构建的后端
type staticProvider struct{ gen Generator }

func (p staticProvider) Get() (Generator, error) { return p.gen, nil }

// Static 将已构建的后端包装为 GeneratorProvider
func Static(gen Generator) GeneratorProvider {
	return staticProvider{gen: gen}
}

// Service 摘要服务
// 负责截断输入、调用生成后端并缓存确定性的结果
type Service struct {
	provider  GeneratorProvider // 生成后端
	tokenizer Tokenizer         // 本地分词器（可选）
	decoding  DecodingConfig    // 生成参数
	cache     cache.Cache       // 结果缓存（可选）
	cacheTTL  time.Duration     // 缓存有效期
	logger    *logrus.Logger    // 日志记录器
}

// ServiceOption 摘要服务配置选项
type ServiceOption func(*Service)

// WithTokenizer 设置本地分词器
func WithTokenizer(tk Tokenizer) ServiceOption {
	return func(s *Service) {
		s.tokenizer = tk
	}
}

// WithDecoding 设置生成参数
func WithDecoding(cfg DecodingConfig) ServiceOption {
	return func(s *Service) {
		s.decoding = cfg
	}
}

// WithCache 设置结果缓存
func WithCache(c cache.Cache, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService 创建摘要服务
func NewService(provider GeneratorProvider, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		provider: provider,
		decoding: DefaultDecodingConfig(),
		cacheTTL: 24 * time.Hour,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.decoding.Validate(); err != nil {
		return nil, WrapError(err, ErrCodeInvalidConfig, "invalid decoding config")
	}
	return s, nil
}

// Decoding 返回当前生成参数
func (s *Service) Decoding() DecodingConfig {
	return s.decoding
}

// Ready 检查生成后端是否可用
func (s *Service) Ready(ctx context.Context) error {
	gen, err := s.provider.Get()
	if err != nil {
		return err
	}
	return gen.Ping(ctx)
}

// Summarize 为文本生成一条摘要
func (s *Service) Summarize(ctx context.Context, text string) (*Result, error) {
	start := time.Now()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewSummarizationError(ErrCodeEmptyInput, ErrMsgEmptyInput)
	}

	gen, err := s.provider.Get()
	if err != nil {
		return nil, err
	}

	// 1. 截断到输入窗口
	input, inputTokens, truncated := text, 0, false
	if s.tokenizer != nil {
		input, inputTokens, truncated = truncateTokens(s.tokenizer, text, s.decoding.MaxInputTokens)
		if strings.TrimSpace(input) == "" {
			return nil, NewSummarizationError(ErrCodeTokenizer, ErrMsgTokenizer)
		}
	} else if !truncatesInput(gen) {
		return nil, NewSummarizationError(ErrCodeInvalidConfig,
			fmt.Sprintf("backend %s cannot truncate input, a tokenizer is required", gen.Name()))
	}

	// 2. 查询缓存
	cacheKey := s.cacheKey(gen.Name(), input)
	if cached, ok := s.lookup(cacheKey); ok {
		cached.Cached = true
		cached.Latency = time.Since(start)
		return cached, nil
	}

	// 3. 调用生成后端
	out, err := gen.Generate(ctx, Request{
		Text:     input,
		Model:    gen.Name(),
		Decoding: s.decoding,
	})
	if err != nil {
		return nil, WrapError(err, ErrCodeBackend, ErrMsgBackend)
	}
	if strings.TrimSpace(out.Summary) == "" {
		return nil, NewSummarizationError(ErrCodeEmptyOutput, ErrMsgEmptyOutput)
	}

	result := &Result{
		Summary:      out.Summary,
		Model:        out.Model,
		InputTokens:  out.InputTokens,
		OutputTokens: out.OutputTokens,
		Truncated:    truncated || out.Truncated,
	}
	if result.InputTokens == 0 {
		result.InputTokens = inputTokens
	}
	if result.OutputTokens == 0 && s.tokenizer != nil {
		result.OutputTokens = len(s.tokenizer.Encode(result.Summary))
	}
	if result.OutputTokens > s.decoding.MaxLength {
		s.logger.WithFields(logrus.Fields{
			"output_tokens": result.OutputTokens,
			"max_length":    s.decoding.MaxLength,
		}).Warn("Summary exceeds configured max length")
	}

	s.store(cacheKey, result)
	result.Latency = time.Since(start)

	s.logger.WithFields(logrus.Fields{
		"model":         result.Model,
		"input_tokens":  result.InputTokens,
		"output_tokens": result.OutputTokens,
		"truncated":     result.Truncated,
		"latency":       result.Latency.String(),
	}).Info("Summary generated")

	return result, nil
}

// cacheKey 由模型、生成参数和输入文本计算缓存键
func (s *Service) cacheKey(model, input string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(s.decoding.Key()))
	h.Write([]byte{0})
	h.Write([]byte(input))
	return cache.GenerateCacheKey("summary", hex.EncodeToString(h.Sum(nil)))
}

// lookup 读取缓存，缓存错误不影响主流程
func (s *Service) lookup(key string) (*Result, bool) {
	if s.cache == nil {
		return nil, false
	}
	value, found, err := s.cache.Get(key)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read summary cache")
		return nil, false
	}
	if !found {
		return nil, false
	}

	var result Result
	if err := json.Unmarshal([]byte(value), &result); err != nil {
		s.logger.WithError(err).Warn("Failed to decode cached summary")
		return nil, false
	}
	return &result, true
}

// store 写入缓存，失败时只记录日志
func (s *Service) store(key string, result *Result) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(key, string(data), s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to write summary cache")
	}
}
