package summarizer

import (
	"context"
	"sync"
)

// Lazy 进程级的生成后端单例
// 首次成功构建后缓存实例，构建失败时下次调用会重新尝试
type Lazy struct {
	mu      sync.Mutex
	factory func() (Generator, error)
	gen     Generator
}

// NewLazy 创建延迟初始化的生成后端
func NewLazy(factory func() (Generator, error)) *Lazy {
	return &Lazy{factory: factory}
}

// NewLazyBackend 按名称和选项延迟创建已注册的后端
func NewLazyBackend(name string, opts ...Option) *Lazy {
	return NewLazy(func() (Generator, error) {
		return NewGenerator(name, opts...)
	})
}

// Get 返回生成后端实例
func (l *Lazy) Get() (Generator, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen != nil {
		return l.gen, nil
	}
	gen, err := l.factory()
	if err != nil {
		return nil, WrapError(err, ErrCodeBackendMissing, ErrMsgBackendMissing)
	}
	l.gen = gen
	return gen, nil
}

// Warmup 构建后端并执行一次健康检查
func (l *Lazy) Warmup(ctx context.Context) error {
	gen, err := l.Get()
	if err != nil {
		return err
	}
	return gen.Ping(ctx)
}
