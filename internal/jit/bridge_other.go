//go:build !((linux || darwin) && amd64)

// bridge_other.go - 不支持的平台

package jit

// NewInvoker 在不支持的平台上总是返回错误
func NewInvoker() (Invoker, error) {
	return nil, ErrUnsupportedPlatform
}
