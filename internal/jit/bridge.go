// bridge.go - 本机代码调用边界
//
// 本文件定义了 Go 代码和 JIT 生成的机器码之间唯一的调用接口。
// 所有 unsafe 的跳转都集中在 Invoker 的实现中，其余代码不接触函数指针。
//
// 调用约定：
// - 入口地址按标准 C 调用约定（System V AMD64）解释为 int64 (*)(void)
// - 返回值取自 RAX
// - 调用是同步的、不可中断的；机器码故障（如非法指令）会直接终止进程

package jit

// Invoker 以本机调用约定调用一个入口地址
type Invoker interface {
	// Invoke 调用 entry 处的零参数函数并返回其 64 位有符号结果
	// entry 必须指向以 ret 结尾的合法机器码，否则行为未定义
	Invoke(entry uintptr) int64
}
