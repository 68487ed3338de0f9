package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errServiceExited = errors.New("service exited unexpectedly")

// Service 服务接口
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 服务运行器
type Runner struct {
	services []Service
}

// NewRunner 创建服务运行器
func NewRunner(services ...Service) *Runner {
	return &Runner{services: services}
}

// RunWithOptions 运行服务并处理系统信号
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

// Run 启动全部服务，ctx 结束或任一服务退出后在 stopTimeout 内依次停止
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	for _, svc := range r.services {
		if svc == nil {
			return errors.New("service is nil")
		}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if stopTimeout <= 0 {
		stopTimeout = 10 * time.Second
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range r.services {
		svc := svc
		g.Go(func() error {
			log.Infow("service_start", "service", svc.Name())
			if err := svc.Start(gctx); err != nil {
				return fmt.Errorf("%s: %w", svc.Name(), err)
			}
			log.Infow("service_exit", "service", svc.Name())
			if gctx.Err() == nil {
				return fmt.Errorf("%s: %w", svc.Name(), errServiceExited)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		for _, svc := range r.services {
			if err := svc.Stop(stopCtx); err != nil {
				log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
			}
		}
		return nil
	})
	return g.Wait()
}
