package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyerfyer/hindi-summarizer/api/middleware"
	"github.com/fyerfyer/hindi-summarizer/api/model"
	"github.com/fyerfyer/hindi-summarizer/internal/document"
	"github.com/fyerfyer/hindi-summarizer/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SummaryHandler 处理文本提取和摘要相关的API请求
type SummaryHandler struct {
	pipeline      *services.PipelineService // 提取与摘要流程
	backend       string                    // 生成后端名称
	maxUploadSize int64                     // 上传文件最大字节数
	healthTimeout time.Duration             // 健康检查超时
	logger        *logrus.Logger            // 日志记录器
}

// HandlerOption 处理器配置选项
type HandlerOption func(*SummaryHandler)

// WithBackendName 设置健康检查中显示的后端名称
func WithBackendName(name string) HandlerOption {
	return func(h *SummaryHandler) {
		h.backend = name
	}
}

// WithMaxUploadSize 设置上传文件大小上限
func WithMaxUploadSize(size int64) HandlerOption {
	return func(h *SummaryHandler) {
		if size > 0 {
			h.maxUploadSize = size
		}
	}
}

// NewSummaryHandler 创建摘要处理器
func NewSummaryHandler(pipeline *services.PipelineService, opts ...HandlerOption) *SummaryHandler {
	h := &SummaryHandler{
		pipeline:      pipeline,
		backend:       "pyprovider",
		maxUploadSize: document.DefaultMaxUploadBytes,
		healthTimeout: 5 * time.Second,
		logger:        middleware.GetLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ExtractPDF 提取上传PDF的文本并返回预览
// POST /api/extract/pdf
func (h *SummaryHandler) ExtractPDF(c *gin.Context) {
	src, ok := h.bindPDF(c)
	if !ok {
		return
	}

	result, err := h.pipeline.Extract(c.Request.Context(), src)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ConvertExtraction(result)))
}

// ExtractURL 抓取网页文章并返回文本预览
// POST /api/extract/url
func (h *SummaryHandler) ExtractURL(c *gin.Context) {
	src, ok := h.bindURL(c)
	if !ok {
		return
	}

	result, err := h.pipeline.Extract(c.Request.Context(), src)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ConvertExtraction(result)))
}

// SummarizeText 为提交的文本生成摘要
// POST /api/summaries
func (h *SummaryHandler) SummarizeText(c *gin.Context) {
	var req model.SummarizeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("text is required", err.Error()))
		return
	}

	result, err := h.pipeline.Summarize(c.Request.Context(), req.Text)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ConvertSummary(result)))
}

// SummarizePDF 提取PDF文本并生成摘要
// POST /api/summaries/pdf
func (h *SummaryHandler) SummarizePDF(c *gin.Context) {
	src, ok := h.bindPDF(c)
	if !ok {
		return
	}
	h.run(c, src)
}

// SummarizeURL 抓取网页文章并生成摘要
// POST /api/summaries/url
func (h *SummaryHandler) SummarizeURL(c *gin.Context) {
	src, ok := h.bindURL(c)
	if !ok {
		return
	}
	h.run(c, src)
}

// Health 返回服务和生成后端的状态
// GET /api/health
func (h *SummaryHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.healthTimeout)
	defer cancel()

	resp := model.HealthResponse{
		Status:  "ok",
		Backend: h.backend,
		Ready:   true,
	}
	if err := h.pipeline.Ready(ctx); err != nil {
		resp.Status = "degraded"
		resp.Ready = false
		resp.Error = err.Error()
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

func (h *SummaryHandler) run(c *gin.Context, src document.Source) {
	result, err := h.pipeline.Run(c.Request.Context(), src)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.PipelineResponse{
		Extraction: model.ConvertExtraction(result.Extraction),
		Summary:    model.ConvertSummary(result.Summary),
	}))
}

// bindPDF 读取上传的PDF文件，失败时已写入错误
func (h *SummaryHandler) bindPDF(c *gin.Context) (document.Source, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+(1<<20))

	var req model.PDFUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.HandleError(c, middleware.NewValidationError("uploaded file is too large"))
			return document.Source{}, false
		}
		middleware.HandleError(c, middleware.NewValidationError("a PDF file is required in the 'file' field", err.Error()))
		return document.Source{}, false
	}

	filename := filepath.Base(req.File.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		middleware.HandleError(c, middleware.NewValidationError("unsupported file type, only .pdf is accepted"))
		return document.Source{}, false
	}
	if req.File.Size > h.maxUploadSize {
		middleware.HandleError(c, middleware.NewValidationError(
			"uploaded file is too large",
			fmt.Sprintf("limit is %d bytes", h.maxUploadSize),
		))
		return document.Source{}, false
	}

	file, err := req.File.Open()
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": filename,
		}).Error("Failed to open uploaded file")
		middleware.HandleError(c, middleware.NewInternalError("failed to open uploaded file"))
		return document.Source{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		middleware.HandleError(c, middleware.NewInternalError("failed to read uploaded file", err.Error()))
		return document.Source{}, false
	}

	h.logger.WithFields(logrus.Fields{
		"filename": filename,
		"size":     len(data),
		"trace_id": middleware.GetTraceID(c),
	}).Info("PDF uploaded")

	return document.NewPDFSource(filename, data), true
}

// bindURL 解析URL请求体，失败时已写入错误
func (h *SummaryHandler) bindURL(c *gin.Context) (document.Source, bool) {
	var req model.ExtractURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("a valid http(s) url is required", err.Error()))
		return document.Source{}, false
	}
	return document.NewURLSource(req.URL), true
}
