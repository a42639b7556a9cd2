package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Document      DocumentConfig      `mapstructure:"document"`
	Article       ArticleConfig       `mapstructure:"article"`
	Summarizer    SummarizerConfig    `mapstructure:"summarizer"`
	PythonService PythonServiceConfig `mapstructure:"python_service"`
	OpenAI        OpenAIConfig        `mapstructure:"openai"`
	Cache         CacheConfig         `mapstructure:"cache"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`             // 服务器主机
	Port            int           `mapstructure:"port"`             // 服务器端口
	Mode            string        `mapstructure:"mode"`             // gin运行模式：debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`     // 读超时
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`    // 写超时，需覆盖一次完整的摘要生成
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // 优雅关闭等待时间
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // 日志级别
	File       string `mapstructure:"file"`        // 日志文件，为空时只输出到标准输出
	MaxSize    int    `mapstructure:"max_size"`    // 单个文件最大MB
	MaxBackups int    `mapstructure:"max_backups"` // 保留的旧文件数
	MaxAge     int    `mapstructure:"max_age"`     // 保留天数
	Compress   bool   `mapstructure:"compress"`    // 是否压缩旧文件
}

// DocumentConfig PDF处理配置
type DocumentConfig struct {
	MaxUploadSize int64 `mapstructure:"max_upload_size"` // 上传文件最大字节数
	PreviewChars  int   `mapstructure:"preview_chars"`   // 预览字符数
}

// ArticleConfig 网页文章抓取配置
type ArticleConfig struct {
	Language     string        `mapstructure:"language"`       // 目标语言
	Timeout      time.Duration `mapstructure:"timeout"`        // 抓取超时
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"` // 响应体最大字节数
	UserAgent    string        `mapstructure:"user_agent"`     // User-Agent
}

// SummarizerConfig 摘要生成配置
type SummarizerConfig struct {
	Backend        string        `mapstructure:"backend"`          // 生成后端：pyprovider 或 openai
	Model          string        `mapstructure:"model"`            // 模型名称
	TokenizerPath  string        `mapstructure:"tokenizer_path"`   // tokenizer.json路径，openai后端必填
	Timeout        time.Duration `mapstructure:"timeout"`          // 单次生成超时
	MaxRetries     int           `mapstructure:"max_retries"`      // 最大重试次数
	Warmup         bool          `mapstructure:"warmup"`           // 启动时检查后端
	MaxInputTokens int           `mapstructure:"max_input_tokens"` // 输入token窗口
	MinLength      int           `mapstructure:"min_length"`       // 摘要最少token数
	MaxLength      int           `mapstructure:"max_length"`       // 摘要最多token数
	NumBeams       int           `mapstructure:"num_beams"`        // 束宽
	LengthPenalty  float64       `mapstructure:"length_penalty"`   // 长度惩罚
	EarlyStopping  bool          `mapstructure:"early_stopping"`   // 提前停止
	SourceLang     string        `mapstructure:"src_lang"`         // 源语言代码
	TargetLang     string        `mapstructure:"tgt_lang"`         // 目标语言代码
}

// PythonServiceConfig Python推理服务配置
type PythonServiceConfig struct {
	BaseURL string `mapstructure:"base_url"` // Python服务基础URL
}

// OpenAIConfig OpenAI兼容后端配置
type OpenAIConfig struct {
	APIKey   string `mapstructure:"api_key"`  // API密钥，支持 ${VAR}
	Endpoint string `mapstructure:"endpoint"` // API端点
	Model    string `mapstructure:"model"`    // 模型名称
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`   // 是否启用缓存
	Type     string `mapstructure:"type"`     // 缓存类型：memory 或 redis
	Address  string `mapstructure:"address"`  // Redis地址
	Password string `mapstructure:"password"` // Redis密码
	DB       int    `mapstructure:"db"`       // Redis数据库
	TTL      int    `mapstructure:"ttl"`      // 缓存TTL（秒）
	Prefix   string `mapstructure:"prefix"`   // 键前缀
}

// Load 从文件和环境变量加载配置
// 配置文件不存在时使用默认值
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	// 支持环境变量覆盖，例如 SUMMARIZER_BACKEND
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	processEnvironmentVariables(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// processEnvironmentVariables 展开 ${VAR} 形式的配置值
func processEnvironmentVariables(cfg *Config) {
	cfg.OpenAI.APIKey = expandEnv(cfg.OpenAI.APIKey)
	cfg.Cache.Password = expandEnv(cfg.Cache.Password)
}

func expandEnv(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		return os.Getenv(value[2 : len(value)-1])
	}
	return value
}

// Validate 检查配置是否合法
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	switch c.Summarizer.Backend {
	case "pyprovider":
		if c.PythonService.BaseURL == "" {
			return errors.New("python_service.base_url is required for the pyprovider backend")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return errors.New("openai.api_key is required for the openai backend")
		}
		// chat completions 接口不会按输入窗口截断，需要本地分词器
		if c.Summarizer.TokenizerPath == "" {
			return errors.New("summarizer.tokenizer_path is required for the openai backend")
		}
	default:
		return fmt.Errorf("unsupported summarizer.backend: %q", c.Summarizer.Backend)
	}
	switch c.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache.type: %q", c.Cache.Type)
	}
	if c.Document.MaxUploadSize <= 0 {
		return fmt.Errorf("document.max_upload_size must be positive")
	}
	return nil
}

// Address 返回服务监听地址
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// 日志
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)

	// PDF
	v.SetDefault("document.max_upload_size", 20<<20)
	v.SetDefault("document.preview_chars", 1500)

	// 网页文章
	v.SetDefault("article.language", "hi")
	v.SetDefault("article.timeout", "30s")
	v.SetDefault("article.max_body_bytes", 10<<20)
	v.SetDefault("article.user_agent", "hindi-summarizer/1.0")

	// 摘要
	v.SetDefault("summarizer.backend", "pyprovider")
	v.SetDefault("summarizer.model", "facebook/mbart-large-50-many-to-many-mmt")
	v.SetDefault("summarizer.tokenizer_path", "")
	v.SetDefault("summarizer.timeout", "120s")
	v.SetDefault("summarizer.max_retries", 0)
	v.SetDefault("summarizer.warmup", true)
	v.SetDefault("summarizer.max_input_tokens", 512)
	v.SetDefault("summarizer.min_length", 30)
	v.SetDefault("summarizer.max_length", 128)
	v.SetDefault("summarizer.num_beams", 4)
	v.SetDefault("summarizer.length_penalty", 2.0)
	v.SetDefault("summarizer.early_stopping", true)
	v.SetDefault("summarizer.src_lang", "hi_IN")
	v.SetDefault("summarizer.tgt_lang", "hi_IN")

	// Python推理服务
	v.SetDefault("python_service.base_url", "http://localhost:8000/api")

	// OpenAI兼容后端
	v.SetDefault("openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("openai.endpoint", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")

	// 缓存
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 86400)
	v.SetDefault("cache.prefix", "hindi-summarizer")
}
