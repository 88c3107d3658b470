// x64_asm.go - x86-64 汇编器
//
// 本文件实现了累加器程序所需的 x86-64 指令编码。
// 只覆盖编码器实际使用的少量指令，全部是寄存器直接寻址（ModR/M.mod = 3）。
//
// x86-64 指令编码格式：
// [REX] [操作码] [ModR/M] [立即数]
//
// REX 前缀：
// - REX.W: 64 位操作数
// - REX.R: 扩展 ModR/M.reg 字段
// - REX.B: 扩展 ModR/M.r/m 字段

package jit

import (
	"encoding/binary"
)

// ============================================================================
// x86-64 寄存器定义
// ============================================================================

// X64Reg x86-64 寄存器
type X64Reg int

const (
	RAX X64Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// String 返回寄存器名称
func (r X64Reg) String() string {
	names := []string{
		"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
		"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
	}
	if r >= 0 && int(r) < len(names) {
		return names[r]
	}
	return "???"
}

// IsExtended 检查是否是扩展寄存器（需要 REX.R / REX.B）
func (r X64Reg) IsExtended() bool {
	return r >= R8 && r <= R15
}

// LowBits 获取寄存器编码的低 3 位
func (r X64Reg) LowBits() byte {
	return byte(r) & 0x7
}

// ============================================================================
// x86-64 汇编器
// ============================================================================

// X64Assembler x86-64 汇编器
type X64Assembler struct {
	code []byte // 生成的机器码
}

// NewX64Assembler 创建 x86-64 汇编器
func NewX64Assembler() *X64Assembler {
	return &X64Assembler{
		code: make([]byte, 0, 64),
	}
}

// Reset 重置汇编器状态
func (a *X64Assembler) Reset() {
	a.code = a.code[:0]
}

// Code 获取生成的机器码
func (a *X64Assembler) Code() []byte {
	return a.code
}

// Len 返回当前代码长度
func (a *X64Assembler) Len() int {
	return len(a.code)
}

// emit 写入字节
func (a *X64Assembler) emit(bytes ...byte) {
	a.code = append(a.code, bytes...)
}

// emitU32 写入 32 位值（小端序）
func (a *X64Assembler) emitU32(v uint32) {
	a.code = binary.LittleEndian.AppendUint32(a.code, v)
}

// rex 构造 REX 前缀
func rex(w, r, b bool) byte {
	var v byte = 0x40
	if w {
		v |= 0x08
	}
	if r {
		v |= 0x04
	}
	if b {
		v |= 0x01
	}
	return v
}

// modrm 构造 ModR/M 字节
// mod: 寻址模式 (0-3)
// reg: 寄存器操作数或操作码扩展
// rm: 寄存器/内存操作数
func modrm(mod, reg, rm byte) byte {
	return (mod << 6) | ((reg & 0x7) << 3) | (rm & 0x7)
}

// ============================================================================
// 数据移动
// ============================================================================

// MovRegImm32 加载 32 位立即数（符号扩展）: mov reg, imm32
func (a *X64Assembler) MovRegImm32(reg X64Reg, imm int32) {
	a.emit(rex(true, false, reg.IsExtended()))
	a.emit(0xC7)
	a.emit(modrm(3, 0, reg.LowBits()))
	a.emitU32(uint32(imm))
}

// ============================================================================
// 算术指令
// ============================================================================

// AddRegImm32 立即数加法: add reg, imm
// 立即数在 int8 范围内时使用短编码 0x83
func (a *X64Assembler) AddRegImm32(reg X64Reg, imm int32) {
	a.aluRegImm(0, reg, imm)
}

// SubRegImm32 立即数减法: sub reg, imm
func (a *X64Assembler) SubRegImm32(reg X64Reg, imm int32) {
	a.aluRegImm(5, reg, imm)
}

// aluRegImm 0x83/0x81 组指令，ext 为 ModR/M.reg 中的操作码扩展
func (a *X64Assembler) aluRegImm(ext byte, reg X64Reg, imm int32) {
	a.emit(rex(true, false, reg.IsExtended()))
	if imm >= -128 && imm <= 127 {
		a.emit(0x83)
		a.emit(modrm(3, ext, reg.LowBits()))
		a.emit(byte(imm))
	} else {
		a.emit(0x81)
		a.emit(modrm(3, ext, reg.LowBits()))
		a.emitU32(uint32(imm))
	}
}

// CQO 符号扩展 RAX -> RDX:RAX
func (a *X64Assembler) CQO() {
	a.emit(0x48, 0x99)
}

// IDivReg 有符号除法: idiv reg (RDX:RAX / reg -> RAX, 余数 -> RDX)
// 商向零截断
func (a *X64Assembler) IDivReg(reg X64Reg) {
	a.emit(rex(true, false, reg.IsExtended()))
	a.emit(0xF7)
	a.emit(modrm(3, 7, reg.LowBits()))
}

// ============================================================================
// 位运算指令
// ============================================================================

// XorRegReg 位异或: xor dst, src
func (a *X64Assembler) XorRegReg(dst, src X64Reg) {
	a.emit(rex(true, src.IsExtended(), dst.IsExtended()))
	a.emit(0x31)
	a.emit(modrm(3, src.LowBits(), dst.LowBits()))
}

// ShlRegImm 左移立即数: shl reg, imm
func (a *X64Assembler) ShlRegImm(reg X64Reg, imm byte) {
	a.emit(rex(true, false, reg.IsExtended()))
	if imm == 1 {
		a.emit(0xD1)
		a.emit(modrm(3, 4, reg.LowBits()))
	} else {
		a.emit(0xC1)
		a.emit(modrm(3, 4, reg.LowBits()))
		a.emit(imm)
	}
}

// ============================================================================
// 控制流
// ============================================================================

// Ret 返回
func (a *X64Assembler) Ret() {
	a.emit(0xC3)
}
