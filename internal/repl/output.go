package repl

import (
	"fmt"
	"io"

	"github.com/segmentio/encoding/json"

	"github.com/tangzhangming/accjit/internal/config"
)

// Result 一个程序的执行结果
type Result struct {
	Source string `json:"source"`
	Value  *int64 `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Printer 输出执行结果
type Printer interface {
	Print(w io.Writer, res Result) error
}

// NewPrinter 按格式名创建 Printer
func NewPrinter(format string) Printer {
	if format == config.OutputJSON {
		return jsonPrinter{}
	}
	return textPrinter{}
}

// textPrinter 每行一个结果，错误以 "error: " 开头
type textPrinter struct{}

func (textPrinter) Print(w io.Writer, res Result) error {
	if res.Error != "" {
		_, err := fmt.Fprintf(w, "error: %s\n", res.Error)
		return err
	}
	_, err := fmt.Fprintf(w, "%d\n", *res.Value)
	return err
}

// jsonPrinter 每行一个 JSON 对象
type jsonPrinter struct{}

func (jsonPrinter) Print(w io.Writer, res Result) error {
	return json.NewEncoder(w).Encode(res)
}
