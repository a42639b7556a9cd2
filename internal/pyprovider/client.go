package pyprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Client 是Python推理服务的HTTP客户端接口
type Client interface {
	// Get 发送GET请求
	Get(ctx context.Context, path string, result interface{}) error
	// Post 发送POST请求
	Post(ctx context.Context, path string, data interface{}, result interface{}) error
	// GetConfig 获取客户端配置
	GetConfig() *PyServiceConfig
}

// HTTPClient 实现了Python服务的HTTP客户端
type HTTPClient struct {
	client  *http.Client
	config  *PyServiceConfig
	headers map[string]string
	logger  *logrus.Logger
}

// APIError 表示API调用返回的错误
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status code: %d): %s - %s", e.StatusCode, e.Message, e.Detail)
}

// NewClient 创建一个新的Python服务HTTP客户端
func NewClient(config *PyServiceConfig) (*HTTPClient, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("python service base url is required")
	}

	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &HTTPClient{
		client: client,
		config: config,
		headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
			"User-Agent":   "Hindi-Summarizer-Go-Client/1.0",
		},
		logger: logrus.StandardLogger(),
	}, nil
}

// Get 发送GET请求到Python服务
func (c *HTTPClient) Get(ctx context.Context, path string, result interface{}) error {
	return c.doRequestWithRetry(ctx, http.MethodGet, path, nil, result)
}

// Post 发送POST请求到Python服务
func (c *HTTPClient) Post(ctx context.Context, path string, data interface{}, result interface{}) error {
	var body []byte
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
		body = jsonData
	}
	return c.doRequestWithRetry(ctx, http.MethodPost, path, body, result)
}

// doRequestWithRetry 执行HTTP请求，仅在网络错误时按配置重试
func (c *HTTPClient) doRequestWithRetry(ctx context.Context, method, path string, body []byte, result interface{}) error {
	url := c.config.BaseURL + path

	var lastErr error
	var resp *http.Response

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("request context canceled: %w", ctx.Err())
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
				// 增加退避时间
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		for key, value := range c.headers {
			req.Header.Set(key, value)
		}

		resp, lastErr = c.client.Do(req)
		if lastErr == nil {
			break
		}

		c.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"url":     url,
			"error":   lastErr.Error(),
		}).Warn("Python service request failed")
	}

	if lastErr != nil {
		return fmt.Errorf("HTTP request failed: %w", lastErr)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    "API call failed",
		}

		// 尝试解析错误详情
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Detail != "" {
			apiErr.Detail = errResp.Detail
		} else {
			apiErr.Detail = string(respBody)
		}

		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response JSON: %w", err)
		}
	}

	return nil
}

// GetConfig 返回客户端配置
func (c *HTTPClient) GetConfig() *PyServiceConfig {
	return c.config
}

// WithLogger 设置日志记录器
func (c *HTTPClient) WithLogger(logger *logrus.Logger) *HTTPClient {
	c.logger = logger
	return c
}
