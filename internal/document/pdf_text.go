package document

import (
	"encoding/hex"
	"io"
	"regexp"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// pageText 按内容流顺序提取一页的文本
// 带 ToUnicode 映射的字体由 unicodeCMap 解码，其余字体使用 ledongthuc/pdf 自带的编码表
func pageText(page pdf.Page) string {
	decoders := make(map[string]pdf.TextEncoding)
	for _, name := range page.Fonts() {
		font := page.Font(name)
		if cm := parseUnicodeCMap(font.V.Key("ToUnicode")); cm != nil {
			decoders[name] = cm
		} else {
			decoders[name] = font.Encoder()
		}
	}

	var sb strings.Builder
	var enc pdf.TextEncoding
	show := func(raw string) {
		if enc == nil {
			sb.WriteString(raw)
			return
		}
		sb.WriteString(enc.Decode(raw))
	}
	newline := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}

	handle := func(stk *pdf.Stack, op string) {
		n := stk.Len()
		args := make([]pdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "Tf":
			if len(args) == 2 {
				enc = decoders[args[0].Name()]
			}
		case "T*":
			newline()
		case "Td", "TD":
			if len(args) == 2 && args[1].Float64() != 0 {
				newline()
			}
		case "'", "\"":
			newline()
			if len(args) > 0 {
				show(args[len(args)-1].RawString())
			}
		case "Tj":
			if len(args) == 1 {
				show(args[0].RawString())
			}
		case "TJ":
			if len(args) == 1 {
				for i := 0; i < args[0].Len(); i++ {
					if x := args[0].Index(i); x.Kind() == pdf.String {
						show(x.RawString())
					}
				}
			}
		}
	}

	contents := page.V.Key("Contents")
	if contents.Kind() == pdf.Array {
		for i := 0; i < contents.Len(); i++ {
			pdf.Interpret(contents.Index(i), handle)
		}
	} else {
		pdf.Interpret(contents, handle)
	}
	return sb.String()
}

type codeRange struct {
	lo, hi string
}

type unicodeRange struct {
	lo, hi uint32
	width  int
	dst    []byte   // 起始码点的UTF-16BE编码
	dsts   [][]byte // 数组形式的目标
}

// unicodeCMap ToUnicode 映射表
// 区间映射按完整的码值计算偏移，支持 <0000> <FFFF> <0000> 这类跨高字节的区间
type unicodeCMap struct {
	spaces []codeRange
	chars  map[string][]byte
	ranges []unicodeRange
}

var cmapToken = regexp.MustCompile(`<[0-9A-Fa-f\s]*>|\[|\]|[A-Za-z]+`)

// parseUnicodeCMap 解析 ToUnicode 流，不是流或没有任何映射时返回nil
func parseUnicodeCMap(v pdf.Value) *unicodeCMap {
	if v.Kind() != pdf.Stream {
		return nil
	}
	rd := v.Reader()
	defer rd.Close()
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil
	}
	return parseCMap(string(data))
}

// parseCMap 解析 CMap 文本中的 codespacerange、bfchar 与 bfrange 段
func parseCMap(data string) *unicodeCMap {
	cm := &unicodeCMap{chars: make(map[string][]byte)}
	tokens := cmapToken.FindAllString(data, -1)
	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "begincodespacerange":
			var body []string
			body, i = cmapSection(tokens, i+1, "endcodespacerange")
			for j := 0; j+1 < len(body); j += 2 {
				lo, hi := cmapHex(body[j]), cmapHex(body[j+1])
				if len(lo) > 0 && len(lo) == len(hi) {
					cm.spaces = append(cm.spaces, codeRange{lo: string(lo), hi: string(hi)})
				}
			}
		case "beginbfchar":
			var body []string
			body, i = cmapSection(tokens, i+1, "endbfchar")
			for j := 0; j+1 < len(body); j += 2 {
				cm.chars[string(cmapHex(body[j]))] = cmapHex(body[j+1])
			}
		case "beginbfrange":
			var body []string
			body, i = cmapSection(tokens, i+1, "endbfrange")
			cm.addRanges(body)
		}
	}

	if len(cm.chars) == 0 && len(cm.ranges) == 0 {
		return nil
	}
	return cm
}

func (m *unicodeCMap) addRanges(body []string) {
	for j := 0; j+2 < len(body); {
		lo, hi := cmapHex(body[j]), cmapHex(body[j+1])
		r := unicodeRange{lo: codeValue(lo), hi: codeValue(hi), width: len(lo)}
		if body[j+2] == "[" {
			j += 3
			for j < len(body) && body[j] != "]" {
				r.dsts = append(r.dsts, cmapHex(body[j]))
				j++
			}
			j++
		} else {
			r.dst = cmapHex(body[j+2])
			j += 3
		}
		if r.width > 0 && r.lo <= r.hi {
			m.ranges = append(m.ranges, r)
		}
	}
}

// Decode 实现 pdf.TextEncoding
func (m *unicodeCMap) Decode(raw string) string {
	var sb strings.Builder
	for len(raw) > 0 {
		n := m.codeLength(raw)
		code := raw[:n]
		raw = raw[n:]

		if dst, ok := m.lookup(code); ok {
			sb.WriteString(decodeUTF16BE(dst))
		} else {
			sb.WriteRune(utf8.RuneError)
		}
	}
	return sb.String()
}

func (m *unicodeCMap) codeLength(raw string) int {
	for _, space := range m.spaces {
		n := len(space.lo)
		if n <= len(raw) && space.lo <= raw[:n] && raw[:n] <= space.hi {
			return n
		}
	}
	if len(m.spaces) == 0 && len(raw) >= 2 {
		return 2
	}
	return 1
}

func (m *unicodeCMap) lookup(code string) ([]byte, bool) {
	if dst, ok := m.chars[code]; ok {
		return dst, true
	}
	value := codeValue([]byte(code))
	for _, r := range m.ranges {
		if r.width != len(code) || value < r.lo || value > r.hi {
			continue
		}
		offset := value - r.lo
		if r.dsts != nil {
			if int(offset) < len(r.dsts) {
				return r.dsts[offset], true
			}
			return nil, false
		}
		return offsetUTF16(r.dst, offset), true
	}
	return nil, false
}

// cmapSection 返回到结束标记为止的token以及结束标记的位置
func cmapSection(tokens []string, start int, end string) ([]string, int) {
	for i := start; i < len(tokens); i++ {
		if tokens[i] == end {
			return tokens[start:i], i
		}
	}
	return tokens[start:], len(tokens)
}

// cmapHex 解码 <...> 形式的十六进制字符串
func cmapHex(token string) []byte {
	token = strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">")
	token = strings.Join(strings.Fields(token), "")
	if len(token)%2 != 0 {
		token += "0"
	}
	b, err := hex.DecodeString(token)
	if err != nil {
		return nil
	}
	return b
}

func codeValue(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

// offsetUTF16 在目标编码的最后一个UTF-16码元上加上偏移
func offsetUTF16(dst []byte, offset uint32) []byte {
	out := append([]byte(nil), dst...)
	switch n := len(out); {
	case n >= 2:
		unit := uint32(out[n-2])<<8 | uint32(out[n-1])
		unit += offset
		out[n-2], out[n-1] = byte(unit>>8), byte(unit)
	case n == 1:
		out[0] += byte(offset)
	}
	return out
}

func decodeUTF16BE(b []byte) string {
	if len(b)%2 != 0 {
		b = append(b[:len(b):len(b)], 0)
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return string(utf16.Decode(units))
}
