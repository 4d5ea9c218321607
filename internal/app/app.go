package app

import (
	"context"
	"fmt"
	"io"

	"vectora/internal/analysis"
	vcfg "vectora/internal/config"
	cfgloader "vectora/internal/config/loader"
	"vectora/internal/logger"
	apihttp "vectora/internal/transport/http/api"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→初始化依赖→启动 HTTP 服务。
type App struct {
	cfg      *vcfg.Config
	settings *cfgloader.SettingsLoader
	service  *analysis.Service
	http     *apihttp.Server
	closers  []io.Closer
	Summary  *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）
func NewApp(cfg *vcfg.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	return buildAppWithWire(context.Background(), cfg)
}

// Run 启动 HTTP 服务并订阅设置变更，ctx 取消后关闭存储。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.http == nil {
		return fmt.Errorf("http server not initialized")
	}
	defer closeAll(a.closers)

	if a.Summary != nil {
		a.Summary.Print()
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	if a.settings != nil {
		changes := make(chan cfgloader.SettingsSnapshot, 1)
		a.settings.Subscribe(func(s cfgloader.SettingsSnapshot) {
			select {
			case changes <- s:
			default:
			}
		})
		group.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case snap := <-changes:
					p, _, model := snap.Settings.Active()
					logger.Infof("settings v%d active: provider=%s model=%s", snap.Version, p, model)
				}
			}
		})
	}

	return group.Wait()
}

// Service exposes the analysis service (for tests and embedding).
func (a *App) Service() *analysis.Service {
	if a == nil {
		return nil
	}
	return a.service
}
