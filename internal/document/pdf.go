package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// DefaultMaxUploadBytes 默认的PDF大小上限（20MiB）
const DefaultMaxUploadBytes int64 = 20 << 20

var pdfSignature = []byte("%PDF-")

func init() {
	// pdfcpu默认会在用户目录下创建配置文件
	api.DisableConfigDir()
}

// PDFParser PDF文档解析器
// 先用pdfcpu校验文档结构，再按页码顺序提取每页文本
type PDFParser struct {
	maxBytes int64
}

// NewPDFParser 创建一个新的PDF解析器，maxBytes<=0 时使用默认上限
func NewPDFParser(maxBytes int64) *PDFParser {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &PDFParser{maxBytes: maxBytes}
}

// Extract 从PDF字节流中提取全部页面的文本
func (p *PDFParser) Extract(data []byte, filename string) (result *Extraction, err error) {
	if len(data) == 0 {
		return nil, newExtractionError(KindInvalidDocument, filename, errors.New("empty input"))
	}
	if int64(len(data)) > p.maxBytes {
		return nil, newExtractionError(KindDocumentTooLarge, filename,
			fmt.Errorf("%d bytes exceeds limit of %d", len(data), p.maxBytes))
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), pdfSignature) {
		return nil, newExtractionError(KindInvalidDocument, filename, errors.New("missing %PDF- header"))
	}

	// pdfcpu 和 ledongthuc/pdf 遇到损坏的字节流都可能panic
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = newExtractionError(KindInvalidDocument, filename, fmt.Errorf("malformed PDF: %v", r))
		}
	}()

	conf := model.NewDefaultConfiguration()
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return nil, newExtractionError(KindInvalidDocument, filename, err)
	}
	pageCount, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return nil, newExtractionError(KindInvalidDocument, filename, err)
	}

	text, err := extractPages(data)
	if err != nil {
		return nil, newExtractionError(KindInvalidDocument, filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, newExtractionError(KindEmptyDocument, filename, errors.New("no text content found in PDF"))
	}

	return &Extraction{
		Text:   text,
		Pages:  pageCount,
		Kind:   SourcePDF,
		Source: filename,
	}, nil
}

// extractPages 按页码顺序拼接每一页的文本
func extractPages(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text := pageText(page)
		sb.WriteString(text)
		if text != "" && !strings.HasSuffix(text, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
