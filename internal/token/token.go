package token

import "fmt"

// ============================================================================
// Token 类型定义
// ============================================================================
//
// 源语言每个字符就是一个 Token。只有四个字符有意义，
// 其余字符一律视为 Ignored（不产生代码，也不报错）。
//
// ============================================================================

// Kind 表示 Token 的类型
type Kind int

const (
	Ignored   Kind = iota // 无效果的字符
	Increment             // +  累加器加 1
	Decrement             // -  累加器减 1
	Double                // *  累加器左移 1 位
	Halve                 // /  累加器除以 2（向零截断）
)

var kindNames = [...]string{
	Ignored:   "Ignored",
	Increment: "Increment",
	Decrement: "Decrement",
	Double:    "Double",
	Halve:     "Halve",
}

// String 返回 Token 类型名称
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token 源代码中的一个字符
type Token struct {
	Kind   Kind
	Char   rune // 原始字符
	Offset int  // 在源代码中的字节偏移
}

// String 返回 Token 的字符串表示
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Char, t.Offset)
}

// Lookup 返回字符对应的 Token 类型
func Lookup(ch rune) Kind {
	switch ch {
	case '+':
		return Increment
	case '-':
		return Decrement
	case '*':
		return Double
	case '/':
		return Halve
	}
	return Ignored
}

// Scan 将源代码切分为 Token 序列，从左到右，每个字符一个 Token
func Scan(source string) []Token {
	tokens := make([]Token, 0, len(source))
	for offset, ch := range source {
		tokens = append(tokens, Token{Kind: Lookup(ch), Char: ch, Offset: offset})
	}
	return tokens
}
