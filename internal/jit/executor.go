package jit

import (
	"errors"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ============================================================================
// 执行器
// ============================================================================

// opRet ret 指令的操作码
const opRet = 0xC3

var errShortRegion = errors.New("region smaller than instruction buffer")

// Executor 把指令缓冲区放入可执行内存并调用
//
// Executor 不保存跨调用的状态（统计计数除外），可以被多个 goroutine 同时使用：
// 每次调用都独占自己的可执行区域。
type Executor struct {
	allocator Allocator
	invoker   Invoker
	logger    *zap.Logger

	// 统计
	acquired atomic.Int64
	released atomic.Int64
	invoked  atomic.Int64
	failures atomic.Int64
}

// Stats 执行器统计信息
type Stats struct {
	Acquired int64 // Acquire 成功次数
	Released int64 // Release 调用次数
	Invoked  int64 // 机器码调用次数
	Failures int64 // 分配失败次数
}

// NewExecutor 创建执行器
// invoker 为 nil 表示当前平台不能执行本机代码；logger 为 nil 时不输出日志
func NewExecutor(allocator Allocator, invoker Invoker, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		allocator: allocator,
		invoker:   invoker,
		logger:    logger,
	}
}

// Execute 执行机器码并返回累加器的值
//
// 只检查缓冲区非空且以 ret 结尾；缓冲区内容本身不做验证，
// 外部传入的畸形机器码属于未定义行为，可能直接导致进程崩溃。
// 可执行区域在所有返回路径上都会被释放，包括 Invoker panic。
func (e *Executor) Execute(code []byte) (int64, error) {
	if len(code) == 0 || code[len(code)-1] != opRet {
		return 0, ErrInvalidBuffer
	}
	if e.invoker == nil {
		return 0, ErrUnsupportedPlatform
	}

	region, err := e.allocator.Acquire(len(code))
	if err != nil {
		e.failures.Inc()
		return 0, err
	}
	e.acquired.Inc()
	defer e.release(region)

	if region.Len() < len(code) {
		e.failures.Inc()
		return 0, &AllocationFailure{Op: "mmap", Size: len(code), Err: errShortRegion}
	}
	copy(region.Bytes(), code)

	if err := e.allocator.Seal(region); err != nil {
		e.failures.Inc()
		return 0, err
	}

	result := e.invoker.Invoke(region.Entry())
	e.invoked.Inc()

	e.logger.Debug("executed",
		zap.Int("size", len(code)),
		zap.Int64("result", result),
	)
	return result, nil
}

// release 释放区域；失败只记录日志，不覆盖主结果
func (e *Executor) release(r *Region) {
	size := r.Len()
	e.released.Inc()
	if err := e.allocator.Release(r); err != nil {
		e.logger.Warn("failed to release executable region",
			zap.Int("size", size),
			zap.Error(err),
		)
	}
}

// Stats 返回统计信息
func (e *Executor) Stats() Stats {
	return Stats{
		Acquired: e.acquired.Load(),
		Released: e.released.Load(),
		Invoked:  e.invoked.Load(),
		Failures: e.failures.Load(),
	}
}
