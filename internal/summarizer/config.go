package summarizer

import (
	"fmt"
)

// 默认模型和语言
const (
	DefaultModel    = "facebook/mbart-large-50-many-to-many-mmt"
	DefaultLanguage = "hi_IN"
)

// DecodingConfig 生成参数
// 束搜索，不采样，同一输入得到同一输出
type DecodingConfig struct {
	MaxInputTokens    int     `json:"max_input_tokens"`    // 输入token窗口，超出部分被截断
	MinLength         int     `json:"min_length"`          // 摘要最少token数
	MaxLength         int     `json:"max_length"`          // 摘要最多token数
	NumBeams          int     `json:"num_beams"`           // 束宽
	LengthPenalty     float64 `json:"length_penalty"`      // 长度惩罚
	EarlyStopping     bool    `json:"early_stopping"`      // 所有束结束时停止
	SourceLang        string  `json:"src_lang"`            // 源语言代码
	TargetLang        string  `json:"tgt_lang"`            // 目标语言代码
	SkipSpecialTokens bool    `json:"skip_special_tokens"` // 解码时去掉特殊token
}

// DefaultDecodingConfig 返回默认生成参数
func DefaultDecodingConfig() DecodingConfig {
	return DecodingConfig{
		MaxInputTokens:    512,
		MinLength:         30,
		MaxLength:         128,
		NumBeams:          4,
		LengthPenalty:     2.0,
		EarlyStopping:     true,
		SourceLang:        DefaultLanguage,
		TargetLang:        DefaultLanguage,
		SkipSpecialTokens: true,
	}
}

// Validate 检查参数是否合法
func (c DecodingConfig) Validate() error {
	switch {
	case c.MaxInputTokens <= 0:
		return fmt.Errorf("max_input_tokens must be positive, got %d", c.MaxInputTokens)
	case c.NumBeams < 1:
		return fmt.Errorf("num_beams must be at least 1, got %d", c.NumBeams)
	case c.MinLength <= 0:
		return fmt.Errorf("min_length must be positive, got %d", c.MinLength)
	case c.MaxLength < c.MinLength:
		return fmt.Errorf("max_length (%d) must not be less than min_length (%d)", c.MaxLength, c.MinLength)
	case c.SourceLang == "":
		return fmt.Errorf("src_lang must be set")
	}
	return nil
}

// Key 返回参数的稳定字符串表示，用于缓存键
func (c DecodingConfig) Key() string {
	return fmt.Sprintf("in=%d,min=%d,max=%d,beams=%d,lp=%g,es=%t,src=%s,tgt=%s,skip=%t",
		c.MaxInputTokens, c.MinLength, c.MaxLength, c.NumBeams, c.LengthPenalty,
		c.EarlyStopping, c.SourceLang, c.TargetLang, c.SkipSpecialTokens)
}
