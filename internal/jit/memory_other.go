//go:build !(linux || darwin || freebsd)

package jit

// unsupportedAllocator 不支持 mmap 的平台
type unsupportedAllocator struct{}

// NewAllocator 在不支持的平台上返回的分配器总是失败
func NewAllocator(writeXorExecute bool) Allocator {
	return unsupportedAllocator{}
}

func (unsupportedAllocator) Acquire(size int) (*Region, error) {
	return nil, &AllocationFailure{Op: "mmap", Size: size, Err: ErrUnsupportedPlatform}
}

func (unsupportedAllocator) Seal(r *Region) error { return nil }

func (unsupportedAllocator) Release(r *Region) error { return nil }
