package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/fyerfyer/hindi-summarizer/api/model"
	"github.com/fyerfyer/hindi-summarizer/internal/document"
	"github.com/fyerfyer/hindi-summarizer/internal/summarizer"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// 定义应用中的错误类型常量
const (
	ErrorTypeValidation    = "VALIDATION_ERROR"    // 输入验证错误
	ErrorTypeNotFound      = "NOT_FOUND_ERROR"     // 资源不存在错误
	ErrorTypeExtraction    = "EXTRACTION_ERROR"    // 文本提取失败
	ErrorTypeSummarization = "SUMMARIZATION_ERROR" // 摘要生成失败
	ErrorTypeInternal      = "INTERNAL_ERROR"      // 内部服务器错误
)

// AppError 应用错误结构体
type AppError struct {
	Type    string // 错误类型
	Message string // 错误消息
	Details string // 详细错误信息
	Code    int    // HTTP状态码
	Err     error  // 原始错误
}

// Error 实现error接口的方法
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError 创建输入验证错误
func NewValidationError(message string, details ...string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusBadRequest,
	}
}

// NewNotFoundError 创建资源不存在错误
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
		Code:    http.StatusNotFound,
	}
}

// NewInternalError 创建内部服务器错误
func NewInternalError(message string, details ...string) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusInternalServerError,
	}
}

// FromError 将领域错误转换为应用错误
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var extErr *document.ExtractionError
	if errors.As(err, &extErr) {
		return &AppError{
			Type:    ErrorTypeExtraction,
			Message: extErr.UserMessage(),
			Details: string(extErr.Kind),
			Code:    http.StatusUnprocessableEntity,
			Err:     err,
		}
	}

	var sumErr *summarizer.SummarizationError
	if errors.As(err, &sumErr) {
		code := http.StatusBadGateway
		if sumErr.Code == summarizer.ErrCodeEmptyInput {
			code = http.StatusBadRequest
		}
		return &AppError{
			Type:    ErrorTypeSummarization,
			Message: sumErr.Message,
			Details: fmt.Sprintf("code=%d", sumErr.Code),
			Code:    code,
			Err:     err,
		}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
		}
		return &AppError{
			Type:    ErrorTypeValidation,
			Message: "invalid request parameters",
			Details: strings.Join(fields, "; "),
			Code:    http.StatusBadRequest,
			Err:     err,
		}
	}

	return &AppError{
		Type:    ErrorTypeInternal,
		Message: "internal server error",
		Details: err.Error(),
		Code:    http.StatusInternalServerError,
		Err:     err,
	}
}

// ErrorHandler 统一错误处理中间件
// 恢复panic，并把处理器记录的错误转换为统一响应
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithFields(logrus.Fields{
					FieldError:   rec,
					"stack":      string(debug.Stack()),
					FieldPath:    c.Request.URL.Path,
					FieldTraceID: GetTraceID(c),
				}).Error("Panic recovered in API request")

				resp := model.NewErrorResponse(http.StatusInternalServerError, "An unexpected error occurred")
				resp.ErrorType = ErrorTypeInternal
				if gin.Mode() == gin.DebugMode {
					resp.Message = fmt.Sprintf("Panic: %v", rec)
				}
				resp.TraceID = GetTraceID(c)
				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := FromError(c.Errors.Last().Err)
		traceID := GetTraceID(c)

		entry := log.WithFields(logrus.Fields{
			"error_type": appErr.Type,
			"details":    appErr.Details,
			FieldTraceID: traceID,
			FieldPath:    c.Request.URL.Path,
		})
		if appErr.Err != nil {
			entry = entry.WithError(appErr.Err)
		}
		if appErr.Code >= http.StatusInternalServerError {
			entry.Error(appErr.Message)
		} else {
			entry.Warn(appErr.Message)
		}

		resp := model.NewErrorResponse(appErr.Code, appErr.Message)
		resp.ErrorType = appErr.Type
		resp.TraceID = traceID
		if appErr.Type == ErrorTypeInternal && gin.Mode() != gin.DebugMode {
			resp.Message = "Internal server error"
		}

		c.AbortWithStatusJSON(appErr.Code, resp)
	}
}

// HandleError 在处理器中使用的错误处理辅助函数
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
}
