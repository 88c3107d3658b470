// memory.go - 可执行内存管理
//
// JIT 生成的机器码需要存储在可执行内存中才能被 CPU 执行。
// 每次执行都独占一块新映射的区域，执行完毕立即释放，区域之间没有共享状态。
//
// 安全注意事项：
// - 默认映射同时具有读、写、执行权限（RWX）
// - 平台策略禁止 RWX 时可启用 W^X：先以 RW 写入，Seal 时改为 RX

package jit

import (
	"unsafe"
)

// Region 一块可执行内存
type Region struct {
	mem []byte
}

// Bytes 返回区域内容，仅在 Seal 之前可写
func (r *Region) Bytes() []byte {
	return r.mem
}

// Len 返回区域长度
func (r *Region) Len() int {
	return len(r.mem)
}

// Entry 返回区域第一个字节的地址，作为函数入口点
func (r *Region) Entry() uintptr {
	if len(r.mem) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&r.mem[0]))
}

// Allocator 可执行内存分配器
//
// 调用顺序固定为 Acquire -> 写入 -> Seal -> 执行 -> Release。
// Acquire 成功后无论后续是否出错都必须调用 Release。
type Allocator interface {
	// Acquire 分配 size 字节的可写区域
	Acquire(size int) (*Region, error)

	// Seal 使区域可执行
	Seal(r *Region) error

	// Release 释放区域
	Release(r *Region) error
}
