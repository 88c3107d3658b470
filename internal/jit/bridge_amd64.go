//go:build (linux || darwin) && amd64

// bridge_amd64.go - AMD64 平台的 JIT 桥接
//
// 通过 purego 以 C 调用约定调用机器码，不依赖 cgo。
// purego 在系统栈上完成调用，生成的代码不需要遵守 Go 的内部 ABI。

package jit

import (
	"github.com/ebitengine/purego"
)

// nativeInvoker 通过 purego 调用本机代码
type nativeInvoker struct{}

// NewInvoker 返回当前平台的本机调用器
func NewInvoker() (Invoker, error) {
	return nativeInvoker{}, nil
}

// Invoke 调用无参数的 JIT 函数
func (nativeInvoker) Invoke(entry uintptr) int64 {
	r1, _, _ := purego.SyscallN(entry)
	return int64(r1)
}
