package document

import (
	"context"
	"errors"
	"strings"
)

// SourceKind 文档来源类型
type SourceKind string

const (
	// SourcePDF 上传的PDF字节流
	SourcePDF SourceKind = "pdf"
	// SourceURL 远端文章URL
	SourceURL SourceKind = "url"
)

// Source 文档来源
// Kind 为 SourcePDF 时使用 Data/Filename，为 SourceURL 时使用 URL
type Source struct {
	Kind     SourceKind
	Data     []byte
	Filename string
	URL      string
}

// NewPDFSource 创建PDF来源
func NewPDFSource(filename string, data []byte) Source {
	return Source{Kind: SourcePDF, Filename: filename, Data: data}
}

// NewURLSource 创建URL来源
func NewURLSource(rawURL string) Source {
	return Source{Kind: SourceURL, URL: strings.TrimSpace(rawURL)}
}

// Name 返回来源的可读名称，用于日志和错误信息
func (s Source) Name() string {
	if s.Kind == SourceURL {
		return s.URL
	}
	return s.Filename
}

// Extraction 提取结果
type Extraction struct {
	Text     string     // 提取出的UTF-8文本
	Title    string     // 标题（可选）
	Language string     // 页面声明的语言（可选）
	SiteName string     // 站点名称（仅URL）
	Pages    int        // 页数（仅PDF）
	Kind     SourceKind // 来源类型
	Source   string     // 文件名或URL
}

// PDFTextExtractor 从PDF字节流中提取文本
type PDFTextExtractor interface {
	Extract(data []byte, filename string) (*Extraction, error)
}

// ArticleTextExtractor 下载并解析网页文章
type ArticleTextExtractor interface {
	Extract(ctx context.Context, rawURL string) (*Extraction, error)
}

// Resolver 文档来源解析器
// 根据来源类型选择PDF或文章提取器
type Resolver struct {
	pdf     PDFTextExtractor
	article ArticleTextExtractor
}

// NewResolver 创建来源解析器
func NewResolver(pdf PDFTextExtractor, article ArticleTextExtractor) *Resolver {
	return &Resolver{pdf: pdf, article: article}
}

// Resolve 将来源解析为纯文本
func (r *Resolver) Resolve(ctx context.Context, src Source) (*Extraction, error) {
	switch src.Kind {
	case SourcePDF:
		if r.pdf == nil {
			return nil, newExtractionError(KindUnsupportedSource, src.Name(), errors.New("pdf extractor not configured"))
		}
		return r.pdf.Extract(src.Data, src.Filename)
	case SourceURL:
		if r.article == nil {
			return nil, newExtractionError(KindUnsupportedSource, src.Name(), errors.New("article extractor not configured"))
		}
		return r.article.Extract(ctx, src.URL)
	default:
		return nil, newExtractionError(KindUnsupportedSource, src.Name(), errors.New("unknown source kind: "+string(src.Kind)))
	}
}
