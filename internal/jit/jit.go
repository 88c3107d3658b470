// Package jit 把累加器语言编译为 x86-64 机器码并执行
//
// 两个阶段：
//   - 编码：Compile/Encode 把 Token 序列翻译为指令缓冲区，永远不会失败
//   - 执行：Executor 把缓冲区复制到可执行内存，按 C 调用约定调用，然后释放内存
package jit

import (
	"go.uber.org/zap"
)

// Mode 执行方式
type Mode string

const (
	ModeNative  Mode = "native"  // 在可执行内存中运行机器码
	ModeEmulate Mode = "emulate" // 在 Go 中解释机器码
)

// Config JIT 配置
type Config struct {
	Mode            Mode        // 执行方式
	WriteXorExecute bool        // 使用 W^X 映射代替 RWX
	Logger          *zap.Logger // 日志，nil 表示不输出
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Mode: ModeNative,
	}
}

// JIT 编译器和执行器的组合
type JIT struct {
	config   *Config
	executor *Executor
}

// New 创建 JIT
// 当前平台不支持本机执行时，ModeNative 下的 Run 返回 ErrUnsupportedPlatform
func New(config *Config) *JIT {
	if config == nil {
		config = DefaultConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	invoker, err := NewInvoker()
	if err != nil {
		logger.Debug("native execution unavailable", zap.Error(err))
	}

	return &JIT{
		config:   config,
		executor: NewExecutor(NewAllocator(config.WriteXorExecute), invoker, logger),
	}
}

// NewWithExecutor 使用指定的执行器创建 JIT
func NewWithExecutor(config *Config, executor *Executor) *JIT {
	if config == nil {
		config = DefaultConfig()
	}
	return &JIT{config: config, executor: executor}
}

// Compile 编译源代码
func (j *JIT) Compile(source string) *Buffer {
	return Compile(source)
}

// Run 执行编译结果
func (j *JIT) Run(buf *Buffer) (int64, error) {
	if j.config.Mode == ModeEmulate {
		return Emulate(buf.Code)
	}
	return j.executor.Execute(buf.Code)
}

// CompileAndRun 编译并执行一个程序
func (j *JIT) CompileAndRun(source string) (int64, error) {
	return j.Run(j.Compile(source))
}

// Stats 返回执行器统计信息
func (j *JIT) Stats() Stats {
	return j.executor.Stats()
}
