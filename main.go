package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/mapproxy-admin/internal/backend"
	"github.com/any-hub/mapproxy-admin/internal/cache"
	"github.com/any-hub/mapproxy-admin/internal/config"
	"github.com/any-hub/mapproxy-admin/internal/logging"
	"github.com/any-hub/mapproxy-admin/internal/projects"
	"github.com/any-hub/mapproxy-admin/internal/server"
	"github.com/any-hub/mapproxy-admin/internal/server/routes"
	"github.com/any-hub/mapproxy-admin/internal/trash"
	"github.com/any-hub/mapproxy-admin/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

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
		fields["projects_dir"] = cfg.Paths.ProjectsDir
		fields["sandbox_root"] = cfg.Paths.SandboxRoot
		fields["backends"] = backend.Keys()
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序：配置 → 配置仓库 → 路径解析/清理 → 回收站 → Fiber server，
	// 所有请求共享同一组实例。
	deps, err := buildProjectDeps(cfg, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化管理组件失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["projects_dir"] = cfg.Paths.ProjectsDir
	fields["cache_dir"] = cfg.Paths.CacheDir
	fields["sandbox_root"] = cfg.Paths.SandboxRoot
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(cfg, deps, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

func buildProjectDeps(cfg *config.Config, logger *logrus.Logger) (routes.ProjectDeps, error) {
	store, err := projects.NewStore(cfg.Paths.ProjectsDir)
	if err != nil {
		return routes.ProjectDeps{}, err
	}
	resolver := cache.NewResolver(cfg.Paths, logger)
	clearer, err := cache.NewClearer(cache.ClearerOptions{
		Store:       store,
		Resolver:    resolver,
		Logger:      logger,
		MaxParallel: cfg.Global.MaxParallelClears,
	})
	if err != nil {
		return routes.ProjectDeps{}, err
	}
	rotator, err := trash.NewRotator(store, clearer, cfg.Paths.TrashDir(), logger)
	if err != nil {
		return routes.ProjectDeps{}, err
	}
	return routes.ProjectDeps{
		Store:     store,
		Clearer:   clearer,
		Inspector: cache.NewInspector(store, resolver),
		Rotator:   rotator,
		Logger:    logger,
	}, nil
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("mapproxy-admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 MAPPROXY_ADMIN_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("MAPPROXY_ADMIN_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

func startHTTPServer(cfg *config.Config, deps routes.ProjectDeps, logger *logrus.Logger) error {
	port := cfg.Global.ListenPort
	app, err := server.NewApp(server.AppOptions{
		Logger:       logger,
		BodyLimit:    cfg.Global.BodyLimit,
		AllowOrigins: cfg.Global.AllowOrigins,
	})
	if err != nil {
		return err
	}
	routes.RegisterProjectRoutes(app, deps)
	routes.RegisterBackendRoutes(app)

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port))
}
