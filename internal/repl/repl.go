// repl.go - 交互式循环 (Read-Eval-Print Loop)
//
// 每行输入是一个独立的程序：编译、执行、打印结果。
// 支持：
// - 特殊命令（:help, :quit, :dump, :stats）
// - 编译/执行失败逐行报告，不终止循环
// - 输入结束（EOF）时退出

package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"

	"github.com/tangzhangming/accjit/internal/jit"
)

// maxReadFailures 连续读取失败达到该次数后放弃
const maxReadFailures = 3

// InputReadFailure 读取下一行输入失败
type InputReadFailure struct {
	Line int   // 失败时的行号（1-based）
	Err  error // 底层错误
}

// Error 实现 error 接口
func (e *InputReadFailure) Error() string {
	return fmt.Sprintf("reading line %d: %v", e.Line, e.Err)
}

// Unwrap 返回底层错误
func (e *InputReadFailure) Unwrap() error {
	return e.Err
}

// ProgramFailure 某一行程序执行失败
type ProgramFailure struct {
	Line   int
	Source string
	Err    error
}

// Error 实现 error 接口
func (e *ProgramFailure) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap 返回底层错误
func (e *ProgramFailure) Unwrap() error {
	return e.Err
}

// REPL 交互式解释器
type REPL struct {
	jit         *jit.JIT
	reader      *bufio.Reader
	writer      io.Writer
	printer     Printer
	prompt      string
	interactive bool
	showCode    bool
	line        int
}

// Config REPL 配置
type Config struct {
	Prompt      string
	Interactive bool   // 打印欢迎信息、提示符，并接受特殊命令
	ShowCode    bool   // 执行前打印反汇编
	Output      string // text 或 json
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Prompt:      "jit> ",
		Interactive: true,
		Output:      "text",
	}
}

// New 创建 REPL
func New(j *jit.JIT, in io.Reader, out io.Writer, config Config) *REPL {
	return &REPL{
		jit:         j,
		reader:      bufio.NewReader(in),
		writer:      out,
		printer:     NewPrinter(config.Output),
		prompt:      config.Prompt,
		interactive: config.Interactive,
		showCode:    config.ShowCode,
	}
}

// Run 运行循环直到输入结束或 :quit
// 返回所有失败行的错误（multierr 合并），循环本身不会因为这些错误中止
func (r *REPL) Run() error {
	var errs error
	readFailures := 0

	if r.interactive {
		r.printWelcome()
	}

	for {
		if r.interactive {
			fmt.Fprint(r.writer, r.prompt)
		}

		line, err := r.reader.ReadString('\n')
		r.line++
		if err != nil && !errors.Is(err, io.EOF) {
			failure := &InputReadFailure{Line: r.line, Err: err}
			fmt.Fprintf(r.writer, "Error reading input: %v\n", err)
			errs = multierr.Append(errs, failure)

			readFailures++
			if readFailures >= maxReadFailures {
				return errs
			}
			continue
		}
		readFailures = 0
		eof := err != nil

		line = strings.TrimRight(line, "\r\n")

		if r.interactive && strings.HasPrefix(line, ":") {
			if quit := r.handleCommand(line); quit {
				return errs
			}
		} else if strings.TrimSpace(line) != "" {
			errs = multierr.Append(errs, r.Eval(line))
		}

		if eof {
			if r.interactive {
				fmt.Fprintln(r.writer, "\nBye!")
			}
			return errs
		}
	}
}

// Eval 编译并执行一行程序，打印结果
func (r *REPL) Eval(source string) error {
	buf := r.jit.Compile(source)
	if r.showCode {
		fmt.Fprint(r.writer, buf.Listing())
	}

	res := Result{Source: source}
	value, err := r.jit.Run(buf)
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Value = &value
	}

	if perr := r.printer.Print(r.writer, res); perr != nil {
		return perr
	}
	if err != nil {
		return &ProgramFailure{Line: r.line, Source: source, Err: err}
	}
	return nil
}

// printWelcome 打印欢迎信息
func (r *REPL) printWelcome() {
	fmt.Fprintln(r.writer, "accjit v0.1.0")
	fmt.Fprintln(r.writer, "Type :help for help, :quit to exit")
	fmt.Fprintln(r.writer)
}

// handleCommand 处理特殊命令，返回是否退出
func (r *REPL) handleCommand(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	switch cmd := strings.ToLower(parts[0]); cmd {
	case ":help", ":h", ":?":
		r.printHelp()

	case ":quit", ":q", ":exit":
		fmt.Fprintln(r.writer, "Bye!")
		return true

	case ":dump", ":d":
		r.showCode = !r.showCode
		state := "off"
		if r.showCode {
			state = "on"
		}
		fmt.Fprintf(r.writer, "Code listing %s.\n", state)

	case ":stats":
		s := r.jit.Stats()
		fmt.Fprintf(r.writer, "acquired=%d released=%d invoked=%d failures=%d\n",
			s.Acquired, s.Released, s.Invoked, s.Failures)

	default:
		fmt.Fprintf(r.writer, "Unknown command: %s\n", cmd)
		fmt.Fprintln(r.writer, "Type :help for available commands.")
	}
	return false
}

// printHelp 打印帮助信息
func (r *REPL) printHelp() {
	fmt.Fprintln(r.writer, "Available commands:")
	fmt.Fprintln(r.writer, "  :help, :h, :?     Show this help message")
	fmt.Fprintln(r.writer, "  :quit, :q, :exit  Exit the REPL")
	fmt.Fprintln(r.writer, "  :dump, :d         Toggle machine code listing")
	fmt.Fprintln(r.writer, "  :stats            Show executable region counters")
	fmt.Fprintln(r.writer)
	fmt.Fprintln(r.writer, "Each line is one program:")
	fmt.Fprintln(r.writer, "  +  add 1        -  subtract 1")
	fmt.Fprintln(r.writer, "  *  double       /  halve (toward zero)")
	fmt.Fprintln(r.writer, "Other characters are ignored.")
}
