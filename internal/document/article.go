package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultArticleLanguage 文章解析使用的目标语言
	DefaultArticleLanguage = "hi"
	// DefaultMaxBodyBytes 默认的页面大小上限（10MiB）
	DefaultMaxBodyBytes int64 = 10 << 20
)

const defaultUserAgent = "Mozilla/5.0 (compatible; HindiSummarizer/1.0)"

// ArticleConfig 文章提取器配置
type ArticleConfig struct {
	Language     string        // 目标语言，ISO 639-1
	Timeout      time.Duration // 下载超时时间
	MaxBodyBytes int64         // 页面大小上限
	UserAgent    string        // 请求使用的User-Agent
}

// ArticleParser 网页文章提取器
// 单次GET下载页面，优先使用trafilatura解析，失败时回退到readability
type ArticleParser struct {
	client *http.Client
	cfg    ArticleConfig
	logger *logrus.Logger
}

// ArticleOption 文章提取器选项
type ArticleOption func(*ArticleParser)

// WithHTTPClient 设置下载使用的HTTP客户端
func WithHTTPClient(client *http.Client) ArticleOption {
	return func(p *ArticleParser) {
		p.client = client
	}
}

// WithArticleLogger 设置日志记录器
func WithArticleLogger(logger *logrus.Logger) ArticleOption {
	return func(p *ArticleParser) {
		p.logger = logger
	}
}

// NewArticleParser 创建文章提取器
func NewArticleParser(cfg ArticleConfig, opts ...ArticleOption) *ArticleParser {
	if cfg.Language == "" {
		cfg.Language = DefaultArticleLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	p := &ArticleParser{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract 下载并解析文章正文
func (p *ArticleParser) Extract(ctx context.Context, rawURL string) (*Extraction, error) {
	pageURL, err := validateArticleURL(rawURL)
	if err != nil {
		return nil, newExtractionError(KindInvalidURL, rawURL, err)
	}

	body, contentType, err := p.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	// 统一转换为UTF-8
	utf8Reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, newExtractionError(KindParseFailed, rawURL, fmt.Errorf("failed to decode charset: %w", err))
	}
	htmlBytes, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, newExtractionError(KindParseFailed, rawURL, fmt.Errorf("failed to decode body: %w", err))
	}

	result, err := p.parseWithTrafilatura(htmlBytes, pageURL)
	if err != nil || strings.TrimSpace(result.Text) == "" {
		p.logger.WithFields(logrus.Fields{
			"url":   rawURL,
			"error": err,
		}).Debug("trafilatura produced no text, falling back to readability")

		result, err = parseWithReadability(htmlBytes, pageURL)
		if err != nil {
			return nil, newExtractionError(KindParseFailed, rawURL, err)
		}
	}
	if strings.TrimSpace(result.Text) == "" {
		return nil, newExtractionError(KindParseFailed, rawURL, errors.New("no article body found"))
	}

	if result.Language == "" {
		result.Language = documentLanguage(htmlBytes)
	}
	result.Kind = SourceURL
	result.Source = rawURL
	return result, nil
}

// fetch 下载页面，不做重试
func (p *ArticleParser) fetch(ctx context.Context, pageURL *url.URL) ([]byte, string, error) {
	src := pageURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", newExtractionError(KindInvalidURL, src, err)
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", p.cfg.Language)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", newExtractionError(KindFetchFailed, src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		extErr := newExtractionError(KindBadStatus, src, nil)
		extErr.StatusCode = resp.StatusCode
		return nil, "", extErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, "", newExtractionError(KindFetchFailed, src, fmt.Errorf("failed to read body: %w", err))
	}
	if int64(len(body)) > p.cfg.MaxBodyBytes {
		return nil, "", newExtractionError(KindFetchFailed, src,
			fmt.Errorf("page exceeds limit of %d bytes", p.cfg.MaxBodyBytes))
	}

	return body, resp.Header.Get("Content-Type"), nil
}

func (p *ArticleParser) parseWithTrafilatura(htmlBytes []byte, pageURL *url.URL) (*Extraction, error) {
	opts := trafilatura.Options{
		OriginalURL:    pageURL,
		TargetLanguage: p.cfg.Language,
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(bytes.NewReader(htmlBytes), opts)
	if err != nil {
		return nil, err
	}

	return &Extraction{
		Text:     strings.TrimSpace(result.ContentText),
		Title:    result.Metadata.Title,
		Language: result.Metadata.Language,
		SiteName: result.Metadata.Sitename,
	}, nil
}

func parseWithReadability(htmlBytes []byte, pageURL *url.URL) (*Extraction, error) {
	article, err := readability.FromReader(bytes.NewReader(htmlBytes), pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability error: %w", err)
	}

	text := article.TextContent
	if article.Content != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(addBlockSpacing(article.Content)))
		if err == nil {
			text = doc.Text()
		}
	}

	return &Extraction{
		Text:     normalizeText(text),
		Title:    article.Title,
		SiteName: article.SiteName,
	}, nil
}

// validateArticleURL 只接受带主机名的 http/https 绝对地址
func validateArticleURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("url is empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("url has no host")
	}
	return u, nil
}

// documentLanguage 读取 <html lang> 属性
func documentLanguage(htmlBytes []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("html").AttrOr("lang", ""))
}

var (
	blockOpenTag  = regexp.MustCompile(`<(p|div|br|li|td|tr|h[1-6])(\s[^>]*)?/?>`)
	blockCloseTag = regexp.MustCompile(`</(p|div|li|td|tr|h[1-6])>`)
	spaceRun      = regexp.MustCompile(`[ \t\x{00a0}]+`)
	blankLines    = regexp.MustCompile(`\n\s*\n+`)
)

// addBlockSpacing 在块级元素边界插入换行，避免相邻段落的文字粘连
func addBlockSpacing(html string) string {
	html = blockOpenTag.ReplaceAllString(html, "\n$0")
	return blockCloseTag.ReplaceAllString(html, "$0\n")
}

// normalizeText 合并行内空白并压缩空行
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
