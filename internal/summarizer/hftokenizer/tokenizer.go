// Package hftokenizer 基于 HuggingFace tokenizers 的本地分词器
// 依赖 daulet/tokenizers 的 cgo 绑定，链接时需要 libtokenizers.a
package hftokenizer

import (
	"fmt"

	"github.com/daulet/tokenizers"

	"github.com/fyerfyer/hindi-summarizer/internal/summarizer"
)

var _ summarizer.Tokenizer = (*Tokenizer)(nil)

// Tokenizer 加载模型仓库中的 tokenizer.json
type Tokenizer struct {
	tk *tokenizers.Tokenizer
}

// New 从本地文件加载分词器
func New(path string) (*Tokenizer, error) {
	tk, err := tokenizers.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer from %s: %w", path, err)
	}
	return &Tokenizer{tk: tk}, nil
}

// Encode 编码文本，不添加特殊token
func (t *Tokenizer) Encode(text string) []uint32 {
	ids, _ := t.tk.Encode(text, false)
	return ids
}

// Decode 解码token，跳过特殊token
func (t *Tokenizer) Decode(ids []uint32) string {
	return t.tk.Decode(ids, true)
}

// Close 释放底层资源
func (t *Tokenizer) Close() error {
	return t.tk.Close()
}
