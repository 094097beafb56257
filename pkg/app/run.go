package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/flemzord/blogclaw/internal/agent"
	"github.com/flemzord/blogclaw/internal/gateway"
	"github.com/flemzord/blogclaw/internal/provider"
	"github.com/flemzord/blogclaw/internal/reload"
)

// shutdownTimeout bounds gateway and tracing shutdown.
const shutdownTimeout = 10 * time.Second

// Run builds the application and blocks until ctx is cancelled or a
// termination signal arrives. SIGHUP and edits to the settings file
// reload credentials without restarting.
func Run(ctx context.Context, p Params) error {
	a, err := Build(ctx, p)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gwCfg, err := gateway.ParseConfig(&a.Config.Gateway)
	if err != nil {
		return err
	}
	var gw *gateway.Gateway
	if gwCfg.Enabled {
		gw = gateway.New(gwCfg, gateway.Deps{
			Agent:    a.Agent,
			Settings: a.Settings,
			Redactor: a.Redactor,
			Metrics:  a.Metrics,
			Logger:   a.Logger,
		})
		if err := gw.Start(ctx); err != nil {
			return err
		}
	}

	if a.Config.Schedule.Autostart {
		if err := a.Agent.Start(ctx, agent.StartOptions{}); err != nil {
			a.Logger.Warn("autostart skipped", "error", err)
		}
	}

	paths := []string{a.Settings.Path()}
	var configAbs string
	if a.ConfigPath != "" {
		paths = append(paths, a.ConfigPath)
		configAbs, _ = filepath.Abs(a.ConfigPath)
	}
	watcher := reload.NewWatcher(reload.WatcherConfig{Paths: paths, Logger: a.Logger})
	if err := watcher.Start(ctx); err != nil {
		a.Logger.Warn("file watcher disabled", "error", err)
	}
	defer watcher.Stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	a.Logger.Info("blogclaw running",
		"version", a.Version,
		"config", a.ConfigPath,
		"settings", a.Settings.Path(),
		"gateway", gwCfg.Enabled,
	)

	for {
		select {
		case <-ctx.Done():
			a.Logger.Info("shutting down")
			return a.shutdown(gw)
		case <-hup:
			a.reload("signal")
		case ev := <-watcher.Events():
			if ev.Path == configAbs {
				a.Logger.Warn("config file changed, restart to apply", "path", ev.Path)
				continue
			}
			a.reload("file " + string(ev.Type))
		}
	}
}

func (a *App) shutdown(gw *gateway.Gateway) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if gw != nil {
		errs = append(errs, gw.Stop(ctx))
	}
	a.Close(ctx)
	return errors.Join(errs...)
}

func (a *App) reload(reason string) {
	if err := a.ReloadSettings(); err != nil {
		a.Logger.Warn("settings reloaded, agent not ready", "reason", reason, "error", err)
		return
	}
	a.Logger.Info("settings reloaded", "reason", reason)
}

// CheckResult reports what Check verified.
type CheckResult struct {
	ConfigPath   string
	SettingsPath string
	Missing      []string
	Provider     error
	WordPress    error
}

// OK reports whether every check passed.
func (r CheckResult) OK() bool {
	return len(r.Missing) == 0 && r.Provider == nil && r.WordPress == nil
}

// Check validates the configuration and settings. With remote set it also
// calls the provider health check and the WordPress users/me endpoint.
func Check(ctx context.Context, p Params, remote bool) (CheckResult, error) {
	a, err := Build(ctx, p)
	if err != nil {
		return CheckResult{}, err
	}
	defer a.Close(ctx)

	res := CheckResult{
		ConfigPath:   a.ConfigPath,
		SettingsPath: a.Settings.Path(),
		Missing:      a.Settings.Missing(),
	}
	if !remote || len(res.Missing) > 0 {
		return res, nil
	}

	creds := a.Settings.Credentials()
	llm, err := buildProvider(a.Config, creds, a.Logger)
	if err != nil {
		res.Provider = err
	} else if hc, ok := llm.(provider.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			res.Provider = fmt.Errorf("%s: %w", llm.ModelName(), err)
		}
	}

	pub, err := buildPublisher(a.Config, creds, a.Logger)
	if err != nil {
		res.WordPress = err
	} else if err := pub.Verify(ctx); err != nil {
		res.WordPress = err
	}
	return res, nil
}
