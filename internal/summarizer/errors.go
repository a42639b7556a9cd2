package summarizer

import (
	"errors"
	"fmt"
)

// SummarizationError 摘要生成错误类型
type SummarizationError struct {
	Code    int    // 错误码
	Message string // 错误消息
	Err     error  // 底层错误
}

// Error 实现error接口
func (e *SummarizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("summarization error (code=%d): %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("summarization error (code=%d): %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *SummarizationError) Unwrap() error {
	return e.Err
}

// 错误码常量
const (
	ErrCodeEmptyInput     = 2001 // 输入文本为空
	ErrCodeInvalidConfig  = 2002 // 解码配置无效
	ErrCodeBackend        = 2003 // 生成服务调用失败
	ErrCodeEmptyOutput    = 2004 // 生成结果为空
	ErrCodeTokenizer      = 2005 // 分词器错误
	ErrCodeNotRegistered  = 2006 // 未注册的生成后端
	ErrCodeBackendMissing = 2007 // 生成后端不可用
)

// 错误消息常量
const (
	ErrMsgEmptyInput     = "input text cannot be empty"
	ErrMsgBackend        = "generation backend failed"
	ErrMsgEmptyOutput    = "model returned an empty summary"
	ErrMsgTokenizer      = "tokenizer failed"
	ErrMsgBackendMissing = "generation backend is not available"
)

// NewSummarizationError 创建新的摘要错误
func NewSummarizationError(code int, message string) *SummarizationError {
	return &SummarizationError{Code: code, Message: message}
}

// WrapError 将普通错误包装为摘要错误，已经是摘要错误时原样返回
func WrapError(err error, code int, message string) *SummarizationError {
	var sumErr *SummarizationError
	if errors.As(err, &sumErr) {
		return sumErr
	}
	return &SummarizationError{Code: code, Message: message, Err: err}
}

// IsSummarizationError 判断错误链中是否包含 SummarizationError
func IsSummarizationError(err error) bool {
	var sumErr *SummarizationError
	return errors.As(err, &sumErr)
}

// CodeOf 返回错误链中 SummarizationError 的错误码，不存在时返回0
func CodeOf(err error) int {
	var sumErr *SummarizationError
	if errors.As(err, &sumErr) {
		return sumErr.Code
	}
	return 0
}
