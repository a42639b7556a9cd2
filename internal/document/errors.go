package document

import (
	"errors"
	"fmt"
)

// ErrorKind 提取失败的类别
type ErrorKind string

const (
	// KindInvalidDocument 字节流不是合法的PDF文档
	KindInvalidDocument ErrorKind = "invalid_document"
	// KindEmptyDocument 文档合法但没有可提取的文本
	KindEmptyDocument ErrorKind = "empty_document"
	// KindDocumentTooLarge 上传文档超过大小限制
	KindDocumentTooLarge ErrorKind = "document_too_large"
	// KindInvalidURL URL格式无效
	KindInvalidURL ErrorKind = "invalid_url"
	// KindFetchFailed 网络请求失败
	KindFetchFailed ErrorKind = "fetch_failed"
	// KindBadStatus 远端返回非200状态码
	KindBadStatus ErrorKind = "bad_status"
	// KindParseFailed 页面解析后没有正文
	KindParseFailed ErrorKind = "parse_failed"
	// KindUnsupportedSource 未知的来源类型
	KindUnsupportedSource ErrorKind = "unsupported_source"
)

// ExtractionError 文本提取错误
// 区分网络失败与解析失败，调用方通过 errors.As 获取具体类别
type ExtractionError struct {
	Kind       ErrorKind // 错误类别
	Source     string    // 文件名或URL
	StatusCode int       // 远端HTTP状态码（仅 KindBadStatus）
	Err        error     // 底层错误
}

// Error 实现error接口
func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extraction failed (%s)", e.Kind)
	if e.Source != "" {
		msg += " for " + e.Source
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap 返回底层错误
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// UserMessage 返回可以直接展示给用户的错误描述
func (e *ExtractionError) UserMessage() string {
	switch e.Kind {
	case KindInvalidDocument:
		return "The uploaded file is not a readable PDF document"
	case KindEmptyDocument:
		return "The PDF does not contain any extractable text"
	case KindDocumentTooLarge:
		return "The uploaded file is too large"
	case KindInvalidURL:
		return "The URL is not a valid http(s) address"
	case KindFetchFailed:
		return "Failed to download the article, check the URL"
	case KindBadStatus:
		return fmt.Sprintf("The article server responded with status %d", e.StatusCode)
	case KindParseFailed:
		return "No article text could be found at the URL"
	default:
		return "Failed to extract text"
	}
}

func newExtractionError(kind ErrorKind, source string, err error) *ExtractionError {
	return &ExtractionError{Kind: kind, Source: source, Err: err}
}

// IsExtractionError 判断错误链中是否包含 ExtractionError
func IsExtractionError(err error) bool {
	var extErr *ExtractionError
	return errors.As(err, &extErr)
}

// KindOf 返回错误链中 ExtractionError 的类别，不存在时返回空字符串
func KindOf(err error) ErrorKind {
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return extErr.Kind
	}
	return ""
}
