package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tangzhangming/accjit/internal/config"
	"github.com/tangzhangming/accjit/internal/jit"
	"github.com/tangzhangming/accjit/internal/logging"
	"github.com/tangzhangming/accjit/internal/repl"
)

var (
	configPath = flag.String("config", "", "Path to config file (default ./accjit.toml if present)")
	evalSource = flag.String("e", "", "Run a single program and exit")
	jsonOutput = flag.Bool("json", false, "Print results as JSON")
	showCode   = flag.Bool("dump", false, "Print the machine code listing before running")
	emulate    = flag.Bool("emulate", false, "Interpret machine code instead of running it natively")
	wxorx      = flag.Bool("wxorx", false, "Map code writable, then executable (never both)")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	os.Exit(run())
}

// run 返回进程退出码
func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	mode := jit.ModeNative
	if cfg.Emulate {
		mode = jit.ModeEmulate
	}
	j := jit.New(&jit.Config{
		Mode:            mode,
		WriteXorExecute: cfg.WriteXorExecute,
		Logger:          logger,
	})

	replConfig := repl.Config{
		Prompt:   cfg.Prompt,
		ShowCode: cfg.ShowCode,
		Output:   cfg.Output,
	}

	switch {
	case *evalSource != "":
		r := repl.New(j, os.Stdin, os.Stdout, replConfig)
		if err := r.Eval(*evalSource); err != nil {
			return 1
		}

	case flag.NArg() > 0:
		if err := runFiles(j, flag.Args(), replConfig, logger); err != nil {
			return 1
		}

	default:
		replConfig.Interactive = true
		repl.New(j, os.Stdin, os.Stdout, replConfig).Run()
	}
	return 0
}

// runFiles 逐个文件运行，每行一个程序
func runFiles(j *jit.JIT, paths []string, replConfig repl.Config, logger *zap.Logger) error {
	var errs error
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			errs = multierr.Append(errs, err)
			continue
		}

		err = repl.New(j, f, os.Stdout, replConfig).Run()
		f.Close()
		if err != nil {
			logger.Info("file finished with failures",
				zap.String("file", path),
				zap.Int("failures", len(multierr.Errors(err))),
			)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return errs
}

// loadConfig 读取配置文件并应用命令行覆盖
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadOptional(config.ConfigFileName)
	}
	if err != nil {
		return nil, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "json":
			if *jsonOutput {
				cfg.Output = config.OutputJSON
			} else {
				cfg.Output = config.OutputText
			}
		case "dump":
			cfg.ShowCode = *showCode
		case "emulate":
			cfg.Emulate = *emulate
		case "wxorx":
			cfg.WriteXorExecute = *wxorx
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	return cfg, cfg.Validate()
}

func usage() {
	fmt.Fprintln(os.Stderr, "accjit - accumulator language JIT v0.1.0")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  accjit [options]              start the interactive loop")
	fmt.Fprintln(os.Stderr, "  accjit [options] -e <program> run one program")
	fmt.Fprintln(os.Stderr, "  accjit [options] <file>...    run each line of each file")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Options:")
	flag.PrintDefaults()
}
