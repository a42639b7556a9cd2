package summarizer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyBuildsOnce(t *testing.T) {
	var builds int32
	gen := NewMockGenerator(t)
	lazy := NewLazy(func() (Generator, error) {
		atomic.AddInt32(&builds, 1)
		return gen, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := lazy.Get()
			assert.NoError(t, err)
			assert.Same(t, gen, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
}

func TestLazyRetriesAfterFailure(t *testing.T) {
	gen := NewMockGenerator(t)
	attempts := 0
	lazy := NewLazy(func() (Generator, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("weights not downloaded")
		}
		return gen, nil
	})

	_, err := lazy.Get()
	require.Error(t, err)
	assert.Equal(t, ErrCodeBackendMissing, CodeOf(err))

	got, err := lazy.Get()
	require.NoError(t, err)
	assert.Same(t, gen, got)
	assert.Equal(t, 2, attempts)
}

func TestLazyWarmup(t *testing.T) {
	gen := NewMockGenerator(t)
	gen.On("Ping", context.Background()).Return(nil).Once()

	lazy := NewLazy(func() (Generator, error) { return gen, nil })
	assert.NoError(t, lazy.Warmup(context.Background()))
}

func TestNewLazyBackendUnknown(t *testing.T) {
	lazy := NewLazyBackend("missing-backend")
	_, err := lazy.Get()
	require.Error(t, err)
	assert.Equal(t, ErrCodeNotRegistered, CodeOf(err))
}
