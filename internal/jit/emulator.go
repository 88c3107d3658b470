// emulator.go - 机器码模拟执行
//
// 在 Go 中逐条解释编码器生成的指令子集，不分配可执行内存。
// 用于不能执行本机代码的平台，以及与本机执行结果互相校验。

package jit

import (
	"errors"
	"fmt"
)

var errNoReturn = errors.New("jit: code runs past end without ret")

// Emulate 解释执行机器码并返回 RAX 的值
// 只接受 Disassemble 能识别的指令；遇到 ret 立即返回
func Emulate(code []byte) (int64, error) {
	var rax, rcx, rdx int64

	for _, inst := range Disassemble(code) {
		switch inst.Op {
		case OpZero:
			rax = 0
		case OpInc:
			rax++
		case OpDec:
			rax--
		case OpShl1:
			rax <<= 1
		case OpCqo:
			rdx = rax >> 63
		case OpMovRcx2:
			rcx = 2
		case OpIdivRcx:
			if rcx == 0 {
				return 0, fmt.Errorf("jit: divide by zero at %04x", inst.Offset)
			}
			// 只支持 RDX 为 RAX 符号扩展的情况（cqo 之后）
			if rdx != rax>>63 {
				return 0, fmt.Errorf("jit: unsupported 128-bit dividend at %04x", inst.Offset)
			}
			rax, rdx = rax/rcx, rax%rcx
		case OpRet:
			return rax, nil
		default:
			return 0, fmt.Errorf("jit: cannot emulate byte %02X at %04x", inst.Bytes[0], inst.Offset)
		}
	}
	return 0, errNoReturn
}
