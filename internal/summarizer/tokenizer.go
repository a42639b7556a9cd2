package summarizer

// Tokenizer 分词器接口，用于在本地截断输入窗口
// 基于 tokenizer.json 的实现位于 hftokenizer 子包
type Tokenizer interface {
	// Encode 将文本编码为token id，不添加特殊token
	Encode(text string) []uint32
	// Decode 将token id还原为文本，去掉特殊token
	Decode(ids []uint32) string
	// Close 释放分词器资源
	Close() error
}

// truncateTokens 保留前 maxTokens 个token，返回截断后的文本、保留的token数以及是否发生截断
func truncateTokens(tk Tokenizer, text string, maxTokens int) (string, int, bool) {
	ids := tk.Encode(text)
	if len(ids) <= maxTokens {
		return text, len(ids), false
	}
	return tk.Decode(ids[:maxTokens]), maxTokens, true
}
