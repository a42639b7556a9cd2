package summarizer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGenerator 基于testify/mock的生成后端，供测试使用
type MockGenerator struct {
	mock.Mock
}

// NewMockGenerator 创建模拟后端，测试结束时校验期望调用
func NewMockGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGenerator {
	m := &MockGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Generate 模拟生成
func (m *MockGenerator) Generate(ctx context.Context, req Request) (*Output, error) {
	args := m.Called(ctx, req)
	var out *Output
	if fn, ok := args.Get(0).(func(context.Context, Request) *Output); ok {
		out = fn(ctx, req)
	} else if args.Get(0) != nil {
		out = args.Get(0).(*Output)
	}
	return out, args.Error(1)
}

// Ping 模拟健康检查
func (m *MockGenerator) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Name 模拟模型名称
func (m *MockGenerator) Name() string {
	return m.Called().String(0)
}

// TruncatesInput 模拟后端视为自行截断，测试无需配置分词器
func (m *MockGenerator) TruncatesInput() bool {
	return true
}
