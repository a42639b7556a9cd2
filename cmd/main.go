package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fyerfyer/hindi-summarizer/api"
	"github.com/fyerfyer/hindi-summarizer/api/handler"
	"github.com/fyerfyer/hindi-summarizer/api/middleware"
	appconfig "github.com/fyerfyer/hindi-summarizer/config"
	"github.com/fyerfyer/hindi-summarizer/internal/cache"
	"github.com/fyerfyer/hindi-summarizer/internal/document"
	"github.com/fyerfyer/hindi-summarizer/internal/services"
	"github.com/fyerfyer/hindi-summarizer/internal/summarizer"
	"github.com/fyerfyer/hindi-summarizer/internal/summarizer/hftokenizer"
)

// 命令行参数，非零值覆盖配置文件
type flags struct {
	ConfigFile string // 配置文件路径
	Port       int    // 服务端口
	Mode       string // 运行模式 (debug/release)
	LogLevel   string // 日志级别
	LogFile    string // 日志文件
}

func main() {
	// .env 不存在时忽略
	_ = godotenv.Load()

	f := parseFlags()

	cfg, err := appconfig.Load(f.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg, f)

	gin.SetMode(cfg.Server.Mode)

	logger, closeLog := setupLogger(cfg.Log)
	defer closeLog()
	logger.Info("Starting Hindi summarizer...")

	if err := middleware.RegisterValidators(); err != nil {
		logger.Fatalf("Failed to register validators: %v", err)
	}

	// 摘要结果缓存
	var resultCache cache.Cache
	if cfg.Cache.Enable {
		resultCache, err = setupCache(cfg.Cache)
		if err != nil {
			logger.Fatalf("Failed to initialize cache: %v", err)
		}
		defer resultCache.Close()
	}

	// 分词器，openai后端必须配置
	var tokenizer summarizer.Tokenizer
	if cfg.Summarizer.TokenizerPath != "" {
		tk, err := hftokenizer.New(cfg.Summarizer.TokenizerPath)
		if err != nil {
			logger.Fatalf("Failed to load tokenizer: %v", err)
		}
		defer tk.Close()
		tokenizer = tk
		logger.WithField("path", cfg.Summarizer.TokenizerPath).Info("Tokenizer loaded")
	}

	// 生成后端，首次使用时构建
	backend := setupBackend(cfg, logger)
	if cfg.Summarizer.Warmup {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := backend.Warmup(ctx); err != nil {
			logger.WithError(err).Warn("Generation backend is not ready, requests will retry on demand")
		} else {
			logger.WithField("backend", cfg.Summarizer.Backend).Info("Generation backend is ready")
		}
		cancel()
	}

	summaryService, err := setupSummarizer(cfg, backend, tokenizer, resultCache, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize summarizer: %v", err)
	}

	resolver := document.NewResolver(
		document.NewPDFParser(cfg.Document.MaxUploadSize),
		document.NewArticleParser(document.ArticleConfig{
			Language:     cfg.Article.Language,
			Timeout:      cfg.Article.Timeout,
			MaxBodyBytes: cfg.Article.MaxBodyBytes,
			UserAgent:    cfg.Article.UserAgent,
		}, document.WithArticleLogger(logger)),
	)

	pipeline := services.NewPipelineService(resolver, summaryService,
		services.WithPreviewChars(cfg.Document.PreviewChars),
		services.WithLogger(logger),
	)

	summaryHandler := handler.NewSummaryHandler(pipeline,
		handler.WithBackendName(cfg.Summarizer.Backend),
		handler.WithMaxUploadSize(cfg.Document.MaxUploadSize),
	)

	r := api.SetupRouter(summaryHandler)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 优雅关闭
	go func() {
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() flags {
	f := flags{}
	flag.StringVar(&f.ConfigFile, "config", "config.yaml", "Path to config file")
	flag.IntVar(&f.Port, "port", 0, "Server port (overrides config)")
	flag.StringVar(&f.Mode, "mode", "", "Run mode: debug/release (overrides config)")
	flag.StringVar(&f.LogLevel, "log-level", "", "Log level: debug/info/warn/error (overrides config)")
	flag.StringVar(&f.LogFile, "log-file", "", "Log file path (overrides config)")
	flag.Parse()
	return f
}

// applyFlags 用显式设置的命令行参数覆盖配置
func applyFlags(cfg *appconfig.Config, f flags) {
	if f.Port > 0 {
		cfg.Server.Port = f.Port
	}
	if f.Mode != "" {
		cfg.Server.Mode = f.Mode
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
}

// setupLogger 设置日志级别和输出，配置了文件时同时写入滚动日志
func setupLogger(cfg appconfig.LogConfig) (*logrus.Logger, func()) {
	var output io.Writer = os.Stdout
	closeFn := func() {}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		output = io.MultiWriter(os.Stdout, rotator)
		closeFn = func() { _ = rotator.Close() }
	}

	logger := middleware.GetLogger()
	if err := middleware.ConfigureLogger(cfg.Level, output); err != nil {
		logger.WithError(err).Warnf("Unknown log level %q, keeping %s", cfg.Level, logger.GetLevel())
	}
	return logger, closeFn
}

// setupCache 设置缓存服务
func setupCache(cfg appconfig.CacheConfig) (cache.Cache, error) {
	return cache.NewCache(cache.Config{
		Type:            cfg.Type,
		RedisAddr:       cfg.Address,
		RedisPassword:   cfg.Password,
		RedisDB:         cfg.DB,
		KeyPrefix:       cfg.Prefix,
		DefaultTTL:      time.Duration(cfg.TTL) * time.Second,
		CleanupInterval: 10 * time.Minute,
	})
}

// setupBackend 按配置创建延迟初始化的生成后端
func setupBackend(cfg *appconfig.Config, logger *logrus.Logger) *summarizer.Lazy {
	opts := []summarizer.Option{
		summarizer.WithTimeout(cfg.Summarizer.Timeout),
		summarizer.WithMaxRetries(cfg.Summarizer.MaxRetries),
		summarizer.WithBackendLogger(logger),
	}

	switch cfg.Summarizer.Backend {
	case "openai":
		opts = append(opts,
			summarizer.WithAPIKey(cfg.OpenAI.APIKey),
			summarizer.WithBaseURL(cfg.OpenAI.Endpoint),
			summarizer.WithModel(cfg.OpenAI.Model),
		)
	default:
		opts = append(opts,
			summarizer.WithBaseURL(cfg.PythonService.BaseURL),
			summarizer.WithModel(cfg.Summarizer.Model),
		)
	}

	return summarizer.NewLazyBackend(cfg.Summarizer.Backend, opts...)
}

// setupSummarizer 创建摘要服务
func setupSummarizer(
	cfg *appconfig.Config,
	backend *summarizer.Lazy,
	tokenizer summarizer.Tokenizer,
	resultCache cache.Cache,
	logger *logrus.Logger,
) (*summarizer.Service, error) {
	decoding := summarizer.DecodingConfig{
		MaxInputTokens:    cfg.Summarizer.MaxInputTokens,
		MinLength:         cfg.Summarizer.MinLength,
		MaxLength:         cfg.Summarizer.MaxLength,
		NumBeams:          cfg.Summarizer.NumBeams,
		LengthPenalty:     cfg.Summarizer.LengthPenalty,
		EarlyStopping:     cfg.Summarizer.EarlyStopping,
		SourceLang:        cfg.Summarizer.SourceLang,
		TargetLang:        cfg.Summarizer.TargetLang,
		SkipSpecialTokens: true,
	}

	opts := []summarizer.ServiceOption{
		summarizer.WithDecoding(decoding),
		summarizer.WithLogger(logger),
	}
	if tokenizer != nil {
		opts = append(opts, summarizer.WithTokenizer(tokenizer))
	}
	if resultCache != nil {
		opts = append(opts, summarizer.WithCache(resultCache, time.Duration(cfg.Cache.TTL)*time.Second))
	}

	return summarizer.NewService(backend, opts...)
}
