package model

import (
	"github.com/fyerfyer/hindi-summarizer/internal/services"
	"github.com/fyerfyer/hindi-summarizer/internal/summarizer"
)

// Response 通用响应结构
type Response struct {
	Code      int         `json:"code"`                 // 响应状态码，0表示成功
	Message   string      `json:"message"`              // 响应消息
	ErrorType string      `json:"error_type,omitempty"` // 错误类型，仅在出错时返回
	Data      interface{} `json:"data,omitempty"`       // 响应数据
	TraceID   string      `json:"trace_id,omitempty"`   // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// ExtractionResponse 文本提取响应，只返回预览而不是全文
type ExtractionResponse struct {
	Source    string `json:"source"`             // 文件名或URL
	Kind      string `json:"kind"`               // 来源类型：pdf 或 url
	Title     string `json:"title,omitempty"`    // 标题
	Language  string `json:"language,omitempty"` // 语言
	Pages     int    `json:"pages,omitempty"`    // PDF页数
	Chars     int    `json:"chars"`              // 全文字符数
	Preview   string `json:"preview"`            // 文本预览
	Truncated bool   `json:"truncated"`          // 预览是否被截断
}

// SummaryResponse 摘要响应
type SummaryResponse struct {
	Summary      string `json:"summary"`       // 摘要
	Model        string `json:"model"`         // 使用的模型
	InputTokens  int    `json:"input_tokens"`  // 输入token数
	OutputTokens int    `json:"output_tokens"` // 输出token数
	Truncated    bool   `json:"truncated"`     // 输入是否被截断
	Cached       bool   `json:"cached"`        // 是否命中缓存
	LatencyMS    int64  `json:"latency_ms"`    // 耗时（毫秒）
}

// PipelineResponse 提取并摘要的响应
type PipelineResponse struct {
	Extraction ExtractionResponse `json:"extraction"`
	Summary    SummaryResponse    `json:"summary"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`          // ok 或 degraded
	Backend string `json:"backend"`         // 生成后端名称
	Ready   bool   `json:"ready"`           // 生成后端是否就绪
	Error   string `json:"error,omitempty"` // 后端不可用的原因
}

// ConvertExtraction 将提取结果转换为响应
func ConvertExtraction(r *services.ExtractResult) ExtractionResponse {
	return ExtractionResponse{
		Source:    r.Source,
		Kind:      string(r.Kind),
		Title:     r.Title,
		Language:  r.Language,
		Pages:     r.Pages,
		Chars:     r.Chars,
		Preview:   r.Preview,
		Truncated: r.Truncated,
	}
}

// ConvertSummary 将摘要结果转换为响应
func ConvertSummary(r *summarizer.Result) SummaryResponse {
	return SummaryResponse{
		Summary:      r.Summary,
		Model:        r.Model,
		InputTokens:  r.InputTokens,
		OutputTokens: r.OutputTokens,
		Truncated:    r.Truncated,
		Cached:       r.Cached,
		LatencyMS:    r.Latency.Milliseconds(),
	}
}
