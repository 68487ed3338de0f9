package app

import (
	"errors"
	"fmt"

	"github.com/secureport/internal/cache"
	"github.com/secureport/internal/config"
	"github.com/secureport/internal/provider"
	"github.com/secureport/internal/router"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container, err := provider.NewContainer(cfg)
	if err != nil {
		return nil, fmt.Errorf("init container: %w", err)
	}

	engine := router.SetupRouter(cfg, container)
	httpService := NewHTTPService(cfg.Server, engine)
	return NewRunner(httpService), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config)
	if err != nil {
		return err
	}
	defer func() {
		if err := cache.Close(); err != nil {
			opts.Logger.Warnw("app_close_redis_failed", "error", err)
		}
	}()

	opts.Logger.Infow("app_start", "addr", opts.Config.Server.Addr(), "mode", opts.Config.App.Mode)
	return RunWithOptions(runner, opts)
}
