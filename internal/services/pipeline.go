package services

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/fyerfyer/hindi-summarizer/internal/document"
	"github.com/fyerfyer/hindi-summarizer/internal/summarizer"
	"github.com/sirupsen/logrus"
)

// DefaultPreviewChars 预览显示的字符数
const DefaultPreviewChars = 1500

// SourceResolver 文本获取接口，*document.Resolver 实现了该接口
type SourceResolver interface {
	Resolve(ctx context.Context, src document.Source) (*document.Extraction, error)
}

// TextSummarizer 摘要接口，*summarizer.Service 实现了该接口
type TextSummarizer interface {
	Summarize(ctx context.Context, text string) (*summarizer.Result, error)
	Ready(ctx context.Context) error
}

// ExtractResult 文本提取结果
type ExtractResult struct {
	Text      string              // 完整文本
	Preview   string              // 截断后的预览
	Chars     int                 // 字符数（按rune计）
	Pages     int                 // PDF页数，URL来源为0
	Title     string              // 标题
	Language  string              // 语言
	Kind      document.SourceKind // 来源类型
	Source    string              // 文件名或URL
	Truncated bool                // 预览是否被截断
}

// RunResult 一次完整流程的结果
type RunResult struct {
	Extraction *ExtractResult
	Summary    *summarizer.Result
}

// PipelineService 串联文本获取和摘要生成
// 只在提取成功后才调用摘要，不在请求之间保存状态
type PipelineService struct {
	resolver     SourceResolver
	summarizer   TextSummarizer
	previewChars int
	logger       *logrus.Logger
}

// PipelineOption 流程服务配置选项
type PipelineOption func(*PipelineService)

// WithPreviewChars 设置预览字符数
func WithPreviewChars(n int) PipelineOption {
	return func(s *PipelineService) {
		if n > 0 {
			s.previewChars = n
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) PipelineOption {
	return func(s *PipelineService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewPipelineService 创建流程服务
func NewPipelineService(resolver SourceResolver, sum TextSummarizer, opts ...PipelineOption) *PipelineService {
	s := &PipelineService{
		resolver:     resolver,
		summarizer:   sum,
		previewChars: DefaultPreviewChars,
		logger:       logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract 获取来源文本并生成预览
func (s *PipelineService) Extract(ctx context.Context, src document.Source) (*ExtractResult, error) {
	start := time.Now()

	ext, err := s.resolver.Resolve(ctx, src)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"source": src.Name(),
			"kind":   src.Kind,
			"reason": document.KindOf(err),
		}).WithError(err).Warn("Text extraction failed")
		return nil, err
	}

	preview, truncated := Preview(ext.Text, s.previewChars)
	result := &ExtractResult{
		Text:      ext.Text,
		Preview:   preview,
		Chars:     utf8.RuneCountInString(ext.Text),
		Pages:     ext.Pages,
		Title:     ext.Title,
		Language:  ext.Language,
		Kind:      ext.Kind,
		Source:    ext.Source,
		Truncated: truncated,
	}

	s.logger.WithFields(logrus.Fields{
		"source":   result.Source,
		"kind":     result.Kind,
		"chars":    result.Chars,
		"pages":    result.Pages,
		"duration": time.Since(start).String(),
	}).Info("Text extracted")

	return result, nil
}

// Summarize 为文本生成摘要
func (s *PipelineService) Summarize(ctx context.Context, text string) (*summarizer.Result, error) {
	return s.summarizer.Summarize(ctx, text)
}

// Run 提取来源文本后生成摘要，提取失败时不调用摘要
func (s *PipelineService) Run(ctx context.Context, src document.Source) (*RunResult, error) {
	ext, err := s.Extract(ctx, src)
	if err != nil {
		return nil, err
	}

	sum, err := s.summarizer.Summarize(ctx, ext.Text)
	if err != nil {
		return nil, err
	}

	return &RunResult{Extraction: ext, Summary: sum}, nil
}

// Ready 检查生成后端是否就绪
func (s *PipelineService) Ready(ctx context.Context) error {
	return s.summarizer.Ready(ctx)
}

// Preview 返回文本的前n个字符，并报告是否截断
func Preview(text string, n int) (string, bool) {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:n]), true
}
