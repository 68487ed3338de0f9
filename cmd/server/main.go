package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/secureport/internal/app"
	"github.com/secureport/internal/config"
	"github.com/secureport/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
)

func main() {
	printStartupBanner()

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.App.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	redacted := cfg.Redacted()
	logger.Infow("config_effective",
		"captcha_provider", redacted.Captcha.Provider,
		"captcha_secret", redacted.Captcha.SecretKey,
		"notify_sinks", redacted.Notify.Sinks,
		"redis_enabled", redacted.Redis.Enabled,
		"rate_limit_backend", redacted.Security.ContactRateLimit.Backend,
	)
	if cfg.IsRelease() && cfg.Captcha.SecretKey == "" {
		stdLog.Printf("警告: 未配置 captcha.secret_key，联系表单提交将全部失败")
	}

	// 设置 Gin 模式
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiCyan + "███████╗███████╗ ██████╗██╗   ██╗██████╗ ███████╗██████╗  ██████╗ ██████╗ ████████╗" + ansiReset)
	fmt.Println(ansiCyan + "██╔════╝██╔════╝██╔════╝██║   ██║██╔══██╗██╔════╝██╔══██╗██╔═══██╗██╔══██╗╚══██╔══╝" + ansiReset)
	fmt.Println(ansiCyan + "███████╗█████╗  ██║     ██║   ██║██████╔╝█████╗  ██████╔╝██║   ██║██████╔╝   ██║   " + ansiReset)
	fmt.Println(ansiCyan + "╚════██║██╔══╝  ██║     ██║   ██║██╔══██╗██╔══╝  ██╔═══╝ ██║   ██║██╔══██╗   ██║   " + ansiReset)
	fmt.Println(ansiCyan + "███████║███████╗╚██████╗╚██████╔╝██║  ██║███████╗██║     ╚██████╔╝██║  ██║   ██║   " + ansiReset)
	fmt.Println(ansiCyan + "╚══════╝╚══════╝ ╚═════╝ ╚═════╝ ╚═╝  ╚═╝╚══════╝╚═╝      ╚═════╝ ╚═╝  ╚═╝   ╚═╝   " + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "Cybersecurity Solutions" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}
