package summarizer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Request 一次生成请求
type Request struct {
	Text     string         // 已截断的输入文本
	Model    string         // 模型名称
	Decoding DecodingConfig // 生成参数
}

// Output 生成结果，只包含得分最高的一条候选
type Output struct {
	Summary      string // 解码后的摘要
	Model        string // 实际使用的模型
	InputTokens  int    // 输入token数（后端提供时）
	OutputTokens int    // 输出token数（后端提供时）
	Truncated    bool   // 后端是否截断了输入
}

// Generator 预训练生成模型的调用接口
type Generator interface {
	// Generate 对文本生成一条摘要
	Generate(ctx context.Context, req Request) (*Output, error)

	// Ping 检查后端是否就绪
	Ping(ctx context.Context) error

	// Name 返回模型名称
	Name() string
}

// InputTruncator 由能在服务端按 MaxInputTokens 截断输入的后端实现
// 未实现该接口的后端必须配合本地分词器使用
type InputTruncator interface {
	TruncatesInput() bool
}

// truncatesInput 判断后端是否自行截断输入
func truncatesInput(gen Generator) bool {
	t, ok := gen.(InputTruncator)
	return ok && t.TruncatesInput()
}

// BackendConfig 生成后端配置
type BackendConfig struct {
	BaseURL    string        // 服务地址
	APIKey     string        // API密钥（openai后端）
	Model      string        // 模型名称
	Timeout    time.Duration // 请求超时时间
	MaxRetries int           // 最大重试次数
	Logger     *logrus.Logger
}

// DefaultBackendConfig 返回默认后端配置
func DefaultBackendConfig() *BackendConfig {
	return &BackendConfig{
		BaseURL:    "http://localhost:8000/api",
		Model:      DefaultModel,
		Timeout:    120 * time.Second,
		MaxRetries: 0,
	}
}

// Option 后端配置选项函数类型
type Option func(*BackendConfig)

// WithBaseURL 设置服务地址
func WithBaseURL(url string) Option {
	return func(c *BackendConfig) {
		c.BaseURL = url
	}
}

// WithAPIKey 设置API密钥
func WithAPIKey(apiKey string) Option {
	return func(c *BackendConfig) {
		c.APIKey = apiKey
	}
}

// WithModel 设置模型名称
func WithModel(model string) Option {
	return func(c *BackendConfig) {
		c.Model = model
	}
}

// WithTimeout 设置请求超时时间
func WithTimeout(timeout time.Duration) Option {
	return func(c *BackendConfig) {
		c.Timeout = timeout
	}
}

// WithMaxRetries 设置最大重试次数
func WithMaxRetries(retries int) Option {
	return func(c *BackendConfig) {
		c.MaxRetries = retries
	}
}

// WithBackendLogger 设置后端使用的日志记录器
func WithBackendLogger(logger *logrus.Logger) Option {
	return func(c *BackendConfig) {
		c.Logger = logger
	}
}

// NewBackendConfig 创建配置并应用选项
func NewBackendConfig(opts ...Option) *BackendConfig {
	cfg := DefaultBackendConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Factory 生成后端工厂函数类型
type Factory func(opts ...Option) (Generator, error)

// 全局注册的生成后端
var generatorFactories = make(map[string]Factory)

// RegisterGenerator 注册生成后端工厂函数
func RegisterGenerator(name string, factory Factory) {
	generatorFactories[name] = factory
}

// NewGenerator 根据名称创建生成后端
func NewGenerator(name string, opts ...Option) (Generator, error) {
	factory, exists := generatorFactories[name]
	if !exists {
		return nil, NewSummarizationError(ErrCodeNotRegistered, "generator backend not registered: "+name)
	}
	return factory(opts...)
}
