package summarizer

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/fyerfyer/hindi-summarizer/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// wordTokenizer 按空白切分的简易分词器，每个词对应一个token
type wordTokenizer struct {
	vocab []string
	index map[string]uint32
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{index: make(map[string]uint32)}
}

func (w *wordTokenizer) Encode(text string) []uint32 {
	fields := strings.Fields(text)
	ids := make([]uint32, 0, len(fields))
	for _, f := range fields {
		id, ok := w.index[f]
		if !ok {
			id = uint32(len(w.vocab))
			w.vocab = append(w.vocab, f)
			w.index[f] = id
		}
		ids = append(ids, id)
	}
	return ids
}

func (w *wordTokenizer) Decode(ids []uint32) string {
	words := make([]string, 0, len(ids))
	for _, id := range ids {
		words = append(words, w.vocab[id])
	}
	return strings.Join(words, " ")
}

func (w *wordTokenizer) Close() error { return nil }

// hindiWords 生成n个互不相同的印地语词
func hindiWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = "शब्द" + strconv.Itoa(i)
	}
	return strings.Join(words, " ")
}

func newMemoryCache(t *testing.T) cache.Cache {
	c, err := cache.NewMemoryCache(cache.Config{
		Type:            "memory",
		DefaultTTL:      time.Hour,
		CleanupInterval: time.Minute,
	})
	require.NoError(t, err)
	return c
}

func TestServiceSummarize(t *testing.T) {
	ctx := context.Background()

	t.Run("returns trimmed summary", func(t *testing.T) {
		gen := NewMockGenerator(t)
		gen.On("Name").Return("mbart")
		gen.On("Generate", mock.Anything, mock.MatchedBy(func(req Request) bool {
			return req.Text == "भारत एक विशाल देश है।" && req.Decoding == DefaultDecodingConfig()
		})).Return(&Output{Summary: "भारत विशाल है।", Model: "mbart", InputTokens: 8, OutputTokens: 4}, nil).Once()

		svc, err := NewService(Static(gen))
		require.NoError(t, err)

		result, err := svc.Summarize(ctx, "  भारत एक विशाल देश है।\n")
		require.NoError(t, err)
		assert.Equal(t, "भारत विशाल है।", result.Summary)
		assert.Equal(t, "mbart", result.Model)
		assert.Equal(t, 8, result.InputTokens)
		assert.False(t, result.Truncated)
		assert.False(t, result.Cached)
	})

	t.Run("empty input does not call backend", func(t *testing.T) {
		gen := NewMockGenerator(t)
		svc, err := NewService(Static(gen))
		require.NoError(t, err)

		for _, text := range []string{"", "   ", "\n\t"} {
			_, err := svc.Summarize(ctx, text)
			require.Error(t, err)
			assert.Equal(t, ErrCodeEmptyInput, CodeOf(err))
		}
		gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("truncates long input to window", func(t *testing.T) {
		tk := newWordTokenizer()
		text := hindiWords(600)

		gen := NewMockGenerator(t)
		gen.On("Name").Return("mbart")
		gen.On("Generate", mock.Anything, mock.MatchedBy(func(req Request) bool {
			return len(strings.Fields(req.Text)) == 512
		})).Return(&Output{Summary: "सारांश"}, nil).Once()

		svc, err := NewService(Static(gen), WithTokenizer(tk))
		require.NoError(t, err)

		result, err := svc.Summarize(ctx, text)
		require.NoError(t, err)
		assert.True(t, result.Truncated)
		assert.Equal(t, 512, result.InputTokens)
		assert.Equal(t, 1, result.OutputTokens)
	})

	t.Run("short input is not truncated", func(t *testing.T) {
		tk := newWordTokenizer()
		text := hindiWords(20)

		gen := NewMockGenerator(t)
		gen.On("Name").Return("mbart")
		gen.On("Generate", mock.Anything, mock.MatchedBy(func(req Request) bool {
			return req.Text == text
		})).Return(&Output{Summary: "सारांश"}, nil).Once()

		svc, err := NewService(Static(gen), WithTokenizer(tk))
		require.NoError(t, err)

		result, err := svc.Summarize(ctx, text)
		require.NoError(t, err)
		assert.False(t, result.Truncated)
		assert.Equal(t, 20, result.InputTokens)
	})

	t.Run("empty output is an error", func(t *testing.T) {
		gen := NewMockGenerator(t)
		gen.On("Name").Return("mbart")
		gen.On("Generate", mock.Anything, mock.Anything).Return(&Output{Summary: "  "}, nil).Once()

		svc, err := NewService(Static(gen))
		require.NoError(t, err)

		_, err = svc.Summarize(ctx, "कुछ पाठ")
		require.Error(t, err)
		assert.Equal(t, ErrCodeEmptyOutput, CodeOf(err))
	})

	t.Run("backend error is wrapped", func(t *testing.T) {
		cause := errors.New("connection refused")
		gen := NewMockGenerator(t)
		gen.On("Name").Return("mbart")
		gen.On("Generate", mock.Anything, mock.Anything).Return(nil, cause).Once()

		svc, err := NewService(Static(gen))
		require.NoError(t, err)

		_, err = svc.Summarize(ctx, "कुछ पाठ")
		require.Error(t, err)
		assert.Equal(t, ErrCodeBackend, CodeOf(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("unavailable backend", func(t *testing.T) {
		lazy := NewLazy(func() (Generator, error) {
			return nil, errors.New("model not found")
		})
		svc, err := NewService(lazy)
		require.NoError(t, err)

		_, err = svc.Summarize(ctx, "कुछ पाठ")
		require.Error(t, err)
		assert.Equal(t, ErrCodeBackendMissing, CodeOf(err))
	})

	t.Run("custom decoding config is passed through", func(t *testing.T) {
		dec := DefaultDecodingConfig()
		dec.NumBeams = 2
		dec.MaxLength = 64

		gen := NewMockGenerator(t)
		gen.On("Name").Return("mbart")
		gen.On("Generate", mock.Anything, mock.MatchedBy(func(req Request) bool {
			return req.Decoding.NumBeams == 2 && req.Decoding.MaxLength == 64
		})).Return(&Output{Summary: "सारांश"}, nil).Once()

		svc, err := NewService(Static(gen), WithDecoding(dec))
		require.NoError(t, err)

		_, err = svc.Summarize(ctx, "कुछ पाठ")
		require.NoError(t, err)
	})
}

func TestServiceCache(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t)

	gen := NewMockGenerator(t)
	gen.On("Name").Return("mbart")
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(&Output{Summary: "एक ही सारांश", Model: "mbart"}, nil).Once()

	svc, err := NewService(Static(gen), WithCache(c, time.Hour))
	require.NoError(t, err)

	first, err := svc.Summarize(ctx, "एक ही पाठ")
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Summarize(ctx, "एक ही पाठ")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Model, second.Model)

	gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestServiceCacheKeyDependsOnDecoding(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t)

	gen := NewMockGenerator(t)
	gen.On("Name").Return("mbart")
	gen.On("Generate", mock.Anything, mock.Anything).Return(&Output{Summary: "सारांश"}, nil).Twice()

	dec := DefaultDecodingConfig()
	dec.NumBeams = 1

	svcA, err := NewService(Static(gen), WithCache(c, time.Hour))
	require.NoError(t, err)
	svcB, err := NewService(Static(gen), WithCache(c, time.Hour), WithDecoding(dec))
	require.NoError(t, err)

	_, err = svcA.Summarize(ctx, "पाठ")
	require.NoError(t, err)
	result, err := svcB.Summarize(ctx, "पाठ")
	require.NoError(t, err)
	assert.False(t, result.Cached)
}

func TestNewServiceInvalidDecoding(t *testing.T) {
	dec := DefaultDecodingConfig()
	dec.MaxLength = dec.MinLength - 1

	_, err := NewService(Static(NewMockGenerator(t)), WithDecoding(dec))
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidConfig, CodeOf(err))
}

func TestDecodingConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*DecodingConfig)
		wantErr bool
	}{
		{"default", func(*DecodingConfig) {}, false},
		{"zero input window", func(c *DecodingConfig) { c.MaxInputTokens = 0 }, true},
		{"zero beams", func(c *DecodingConfig) { c.NumBeams = 0 }, true},
		{"zero min length", func(c *DecodingConfig) { c.MinLength = 0 }, true},
		{"max below min", func(c *DecodingConfig) { c.MaxLength = 10; c.MinLength = 20 }, true},
		{"missing language", func(c *DecodingConfig) { c.SourceLang = "" }, true},
		{"greedy", func(c *DecodingConfig) { c.NumBeams = 1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDecodingConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewGeneratorNotRegistered(t *testing.T) {
	_, err := NewGenerator("does-not-exist")
	require.Error(t, err)
	assert.Equal(t, ErrCodeNotRegistered, CodeOf(err))
}

func TestWrapErrorKeepsExisting(t *testing.T) {
	orig := NewSummarizationError(ErrCodeEmptyOutput, ErrMsgEmptyOutput)
	wrapped := WrapError(orig, ErrCodeBackend, ErrMsgBackend)
	assert.Same(t, orig, wrapped)
	assert.True(t, IsSummarizationError(wrapped))
	assert.Equal(t, 0, CodeOf(errors.New("plain")))
}
