// Package config 加载 accjit 命令行工具的配置
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// 常量定义
const (
	ConfigFileName = "accjit.toml" // 默认配置文件名

	OutputText = "text"
	OutputJSON = "json"
)

// Config 工具配置
type Config struct {
	// Prompt 交互模式的提示符
	Prompt string `toml:"prompt"`

	// LogLevel 日志级别（debug, info, warn, error）
	LogLevel string `toml:"log_level"`

	// Output 结果输出格式（text 或 json）
	Output string `toml:"output"`

	// WriteXorExecute 可执行区域先写后执行，不同时具有写和执行权限
	WriteXorExecute bool `toml:"write_xor_execute"`

	// Emulate 在 Go 中解释机器码，不分配可执行内存
	Emulate bool `toml:"emulate"`

	// ShowCode 执行前打印反汇编
	ShowCode bool `toml:"show_code"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Prompt:   "jit> ",
		LogLevel: "warn",
		Output:   OutputText,
	}
}

// Load 从文件加载配置，未设置的字段保留默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadOptional 加载配置文件，文件不存在时返回默认配置
func LoadOptional(path string) (*Config, error) {
	config, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return config, err
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("invalid output format %q (want %q or %q)", c.Output, OutputText, OutputJSON)
	}
	return nil
}
