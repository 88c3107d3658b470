package jit

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform 当前平台无法执行 x86-64 机器码
	ErrUnsupportedPlatform = errors.New("jit: native execution is not supported on this platform")

	// ErrInvalidBuffer 缓冲区为空或不以 ret 结尾
	ErrInvalidBuffer = errors.New("jit: invalid instruction buffer")
)

// AllocationFailure 可执行内存无法获得
// 可能原因：内存不足、平台策略禁止 W+X 映射等
type AllocationFailure struct {
	Op   string // mmap / mprotect
	Size int    // 请求的字节数
	Err  error  // 底层错误
}

// Error 实现 error 接口
func (e *AllocationFailure) Error() string {
	return fmt.Sprintf("jit: %s of %d bytes failed: %v", e.Op, e.Size, e.Err)
}

// Unwrap 返回底层错误
func (e *AllocationFailure) Unwrap() error {
	return e.Err
}
