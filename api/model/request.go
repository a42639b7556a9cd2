package model

import (
	"mime/multipart"
)

// PDFUploadRequest PDF上传请求
type PDFUploadRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"` // PDF文件
}

// ExtractURLRequest 网页文章提取请求
type ExtractURLRequest struct {
	URL string `json:"url" binding:"required,httpurl"` // 文章地址，仅支持http/https
}

// SummarizeTextRequest 文本摘要请求
type SummarizeTextRequest struct {
	Text string `json:"text" binding:"required"` // 待摘要的印地语文本
}
