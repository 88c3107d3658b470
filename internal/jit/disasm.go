// disasm.go - 机器码反汇编
//
// 只识别编码器能生成的指令。模式表由汇编器本身生成，
// 保证与编码结果逐字节一致。无法识别的字节按单字节 (bad) 输出。

package jit

import (
	"bytes"
	"fmt"
	"strings"
)

// Op 可识别的指令
type Op int

const (
	OpBad     Op = iota // 无法识别的字节
	OpZero              // xor rax, rax
	OpInc               // add rax, 1
	OpDec               // sub rax, 1
	OpShl1              // shl rax, 1
	OpCqo               // cqo
	OpMovRcx2           // mov rcx, 2
	OpIdivRcx           // idiv rcx
	OpRet               // ret
)

// Instruction 反汇编得到的一条指令
type Instruction struct {
	Offset int
	Bytes  []byte
	Op     Op
	Text   string
}

// String 返回 "偏移  字节  助记符" 格式
func (in Instruction) String() string {
	return fmt.Sprintf("%04x  %-21s %s", in.Offset, fmt.Sprintf("% X", in.Bytes), in.Text)
}

type x64Pattern struct {
	op   Op
	code []byte
	text string
}

var x64Patterns = []x64Pattern{
	pattern(OpZero, "xor rax, rax", func(a *X64Assembler) { a.XorRegReg(RAX, RAX) }),
	pattern(OpInc, "add rax, 1", func(a *X64Assembler) { a.AddRegImm32(RAX, 1) }),
	pattern(OpDec, "sub rax, 1", func(a *X64Assembler) { a.SubRegImm32(RAX, 1) }),
	pattern(OpShl1, "shl rax, 1", func(a *X64Assembler) { a.ShlRegImm(RAX, 1) }),
	pattern(OpCqo, "cqo", func(a *X64Assembler) { a.CQO() }),
	pattern(OpMovRcx2, "mov rcx, 2", func(a *X64Assembler) { a.MovRegImm32(RCX, 2) }),
	pattern(OpIdivRcx, "idiv rcx", func(a *X64Assembler) { a.IDivReg(RCX) }),
	pattern(OpRet, "ret", func(a *X64Assembler) { a.Ret() }),
}

func pattern(op Op, text string, gen func(a *X64Assembler)) x64Pattern {
	a := NewX64Assembler()
	gen(a)
	return x64Pattern{op: op, code: a.Code(), text: text}
}

// Disassemble 反汇编机器码
func Disassemble(code []byte) []Instruction {
	var insts []Instruction
	for pc := 0; pc < len(code); {
		inst := Instruction{Offset: pc, Bytes: code[pc : pc+1], Op: OpBad, Text: "(bad)"}
		for _, p := range x64Patterns {
			if bytes.HasPrefix(code[pc:], p.code) {
				inst.Bytes = code[pc : pc+len(p.code)]
				inst.Op = p.op
				inst.Text = p.text
				break
			}
		}
		insts = append(insts, inst)
		pc += len(inst.Bytes)
	}
	return insts
}

// Listing 返回缓冲区的反汇编文本，每条指令一行
// 每个产生代码的 Token 前标注其源字符
func (b *Buffer) Listing() string {
	marks := make(map[int]SourceMapping, len(b.SourceMap))
	for _, m := range b.SourceMap {
		marks[m.CodeOffset] = m
	}

	var sb strings.Builder
	for _, inst := range Disassemble(b.Code) {
		if m, ok := marks[inst.Offset]; ok {
			fmt.Fprintf(&sb, "; %q @%d %s\n", m.Token.Char, m.Token.Offset, m.Token.Kind)
		}
		sb.WriteString(inst.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
