package jit

import (
	"github.com/tangzhangming/accjit/internal/token"
)

// ============================================================================
// 编码器：Token 序列 -> 机器码
// ============================================================================
//
// 累加器固定为 RAX，即 System V 调用约定中 64 位整数的返回寄存器。
// 生成的代码只使用调用者保存寄存器（RAX、RCX、RDX），不使用栈，
// 因此不需要建立栈帧。
//
// 每个 Token 独立追加一个固定的指令片段，片段与位置和前面的 Token 无关。

// accumulator 累加器寄存器
const accumulator = RAX

// Buffer 编码后的指令缓冲区
// 总是以清零累加器的序言开头、以一条 ret 结尾，永远不为空
type Buffer struct {
	// 机器码
	Code []byte

	// 源码映射（只记录产生了代码的 Token）
	SourceMap []SourceMapping
}

// SourceMapping 源码映射
type SourceMapping struct {
	CodeOffset int         // 机器码偏移
	Token      token.Token // 产生该片段的 Token
}

// Bytes 返回机器码
func (b *Buffer) Bytes() []byte {
	return b.Code
}

// Len 返回机器码长度
func (b *Buffer) Len() int {
	return len(b.Code)
}

// Compile 编译源代码，永远不会失败
func Compile(source string) *Buffer {
	return Encode(token.Scan(source))
}

// Encode 将 Token 序列编码为机器码
func Encode(tokens []token.Token) *Buffer {
	asm := NewX64Assembler()
	buf := &Buffer{}

	// 序言: xor rax, rax
	asm.XorRegReg(accumulator, accumulator)

	for _, tok := range tokens {
		offset := asm.Len()
		emitToken(asm, tok.Kind)
		if asm.Len() > offset {
			buf.SourceMap = append(buf.SourceMap, SourceMapping{CodeOffset: offset, Token: tok})
		}
	}

	asm.Ret()

	buf.Code = asm.Code()
	return buf
}

// emitToken 追加一个 Token 对应的指令片段
func emitToken(asm *X64Assembler, kind token.Kind) {
	switch kind {
	case token.Increment:
		asm.AddRegImm32(accumulator, 1)

	case token.Decrement:
		asm.SubRegImm32(accumulator, 1)

	case token.Double:
		// 不检查溢出
		asm.ShlRegImm(accumulator, 1)

	case token.Halve:
		// idiv 的商向零截断：-1 / 2 == 0，与 sar 的 -1 不同
		asm.CQO()
		asm.MovRegImm32(RCX, 2)
		asm.IDivReg(RCX)

	case token.Ignored:
	}
}
