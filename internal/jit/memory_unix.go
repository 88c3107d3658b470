//go:build linux || darwin || freebsd

// memory_unix.go - Unix/Linux/macOS 平台可执行内存分配
//
// 使用 mmap/mprotect/munmap 管理匿名私有映射

package jit

import (
	"golang.org/x/sys/unix"
)

const (
	protRWX = unix.PROT_READ | unix.PROT_WRITE | unix.PROT_EXEC
	protRW  = unix.PROT_READ | unix.PROT_WRITE
	protRX  = unix.PROT_READ | unix.PROT_EXEC
)

// mmapAllocator 基于 mmap 的分配器
type mmapAllocator struct {
	writeXorExecute bool
}

// NewAllocator 创建平台默认的分配器
// writeXorExecute 为 true 时区域先映射为 RW，Seal 时改为 RX
func NewAllocator(writeXorExecute bool) Allocator {
	return &mmapAllocator{writeXorExecute: writeXorExecute}
}

// Acquire 分配可执行内存（长度由内核向上取整到页）
func (m *mmapAllocator) Acquire(size int) (*Region, error) {
	prot := protRWX
	if m.writeXorExecute {
		prot = protRW
	}

	mem, err := unix.Mmap(-1, 0, size, prot, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, &AllocationFailure{Op: "mmap", Size: size, Err: err}
	}
	return &Region{mem: mem}, nil
}

// Seal RWX 模式下无需操作；W^X 模式下撤销写权限
func (m *mmapAllocator) Seal(r *Region) error {
	if !m.writeXorExecute {
		return nil
	}
	if err := unix.Mprotect(r.mem, protRX); err != nil {
		return &AllocationFailure{Op: "mprotect", Size: len(r.mem), Err: err}
	}
	return nil
}

// Release 释放可执行内存
func (m *mmapAllocator) Release(r *Region) error {
	if len(r.mem) == 0 {
		return nil
	}
	err := unix.Munmap(r.mem)
	r.mem = nil
	return err
}
