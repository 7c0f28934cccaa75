package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/hydra-warm/hydra-warm/internal/config"
	"github.com/hydra-warm/hydra-warm/internal/logging"
	"github.com/hydra-warm/hydra-warm/internal/manager"
	"github.com/hydra-warm/hydra-warm/internal/server"
	"github.com/hydra-warm/hydra-warm/internal/server/routes"
	"github.com/hydra-warm/hydra-warm/internal/version"
	"github.com/hydra-warm/hydra-warm/internal/warmer"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	cacheDir    string
	checkOnly   bool
	serve       bool
	showVersion bool
}

const hydratorWarmerName = "hydrators"

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["document_managers"] = cfg.Global.DocumentManagers
		fields["defined_managers"] = cfg.ManagerNames()
		fields["auto_generate"] = cfg.Global.AutoGenerateHydratorClasses
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序：配置 → manager 注册表 → warmer → warm-up → 可选诊断服务。
	registry, err := manager.FromConfig(cfg, manager.BuildOptions{Logger: logger})
	if err != nil {
		fmt.Fprintf(stdErr, "构建 document manager 注册表失败: %v\n", err)
		return 1
	}

	hydrators, err := warmer.NewHydratorCacheWarmer(warmer.HydratorOptions{
		HydratorDir:      cfg.Global.HydratorDir,
		DirMode:          cfg.Global.HydratorDirMode.Perm(),
		AutoGenerate:     cfg.Global.AutoGenerateHydratorClasses,
		DocumentManagers: cfg.Global.DocumentManagers,
		Registry:         registry,
		Logger:           logger,
	})
	if err != nil {
		fmt.Fprintf(stdErr, "初始化 hydrator warmer 失败: %v\n", err)
		return 1
	}

	aggregate := warmer.NewAggregate(cfg.Global.EnableOptionalWarmers, logger).
		Add(hydratorWarmerName, hydrators)

	cacheDir := cfg.Global.CacheDir
	if opts.cacheDir != "" {
		cacheDir = opts.cacheDir
	}

	// SIGINT/SIGTERM 在 warm-up 期间取消生成，在 serve 期间触发优雅关闭。
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	fields := logging.BaseFields("warmup", opts.configPath)
	fields["cache_dir"] = cacheDir
	fields["hydrator_dir"] = cfg.Global.HydratorDir
	fields["document_managers"] = cfg.Global.DocumentManagers
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("开始 warm-up")

	ctx, cancel := newWarmupContext(sigCtx, cfg.Global.WarmupTimeout.DurationValue())
	_, err = aggregate.WarmUp(ctx, cacheDir)
	cancel()
	if err != nil {
		fmt.Fprintf(stdErr, "warm-up 失败: %v\n", err)
		return 1
	}
	logger.WithFields(logrus.Fields{"action": "warmup", "result": "ok"}).Info("warm-up 完成")

	if !opts.serve {
		return 0
	}

	diag := routes.Diagnostics{
		Managers:     registry,
		Warmers:      aggregate,
		Hydrators:    hydrators,
		Listed:       cfg.Global.DocumentManagers,
		AutoGenerate: cfg.Global.AutoGenerateHydratorClasses,
	}
	if err := serveDiagnostics(sigCtx, cfg, diag, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// 测试通过替换这两个变量观察 warm-up 上下文与服务启动的先后关系。
var (
	newWarmupContext = warmupContext
	serveDiagnostics = startHTTPServer
)

// warmupContext 派生 warm-up 使用的上下文；timeout 为 0 表示不限时。
func warmupContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("hydra-warm", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		cacheDir   string
		checkOnly  bool
		serve      bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 HYDRA_WARM_CONFIG 覆盖）")
	fs.StringVar(&cacheDir, "cache-dir", "", "覆盖配置中的 CacheDir")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&serve, "serve", false, "warm-up 完成后启动诊断 HTTP 服务")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("HYDRA_WARM_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		cacheDir:    cacheDir,
		checkOnly:   checkOnly,
		serve:       serve,
		showVersion: showVer,
	}, nil
}

// startHTTPServer 阻塞直到 shutdown 被取消或监听失败。
func startHTTPServer(shutdown context.Context, cfg *config.Config, diag routes.Diagnostics, logger *logrus.Logger) error {
	port := cfg.Global.ListenPort
	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		ListenPort: port,
	})
	if err != nil {
		return err
	}
	routes.RegisterDiagnosticsRoutes(app, diag)
	server.RegisterFallback(app)

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 诊断服务启动")

	return app.Listen(fmt.Sprintf(":%d", port), fiber.ListenConfig{
		GracefulContext:       shutdown,
		DisableStartupMessage: true,
	})
}
