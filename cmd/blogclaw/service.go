package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/flemzord/blogclaw/pkg/app"
)

const serviceName = "blogclaw"

// program adapts app.Run to the service manager's Start/Stop callbacks.
type program struct {
	params app.Params
	cancel context.CancelFunc
	done   chan error
}

var _ service.Interface = (*program)(nil)

// Start must not block.
func (p *program) Start(_ service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)
	go func() {
		p.done <- app.Run(ctx, p.params)
	}()
	return nil
}

func (p *program) Stop(_ service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	return <-p.done
}

// serviceConfig describes the OS service. The installed unit runs
// `blogclaw start` with an absolute config path.
func serviceConfig(cfgPath string) (*service.Config, error) {
	args := []string{"start"}
	if cfgPath != "" {
		abs, err := filepath.Abs(cfgPath)
		if err != nil {
			return nil, err
		}
		args = append(args, "--config", abs)
	}
	return &service.Config{
		Name:        serviceName,
		DisplayName: "blogclaw",
		Description: "Generates blog posts with an LLM and files them as WordPress drafts.",
		Arguments:   args,
		Option: service.KeyValue{
			"Restart":     "on-failure",
			"UserService": true,
		},
	}, nil
}

func newService(cmd *cobra.Command) (service.Service, *program, error) {
	p := params(cmd)
	if p.ConfigPath == "" {
		resolved, err := app.ResolveConfigPath()
		if err != nil && !errors.Is(err, app.ErrNoConfig) {
			return nil, nil, err
		}
		p.ConfigPath = resolved
	}
	cfg, err := serviceConfig(p.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	prg := &program{params: p}
	svc, err := service.New(prg, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("service: %w", err)
	}
	return svc, prg, nil
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage blogclaw as an OS service",
	}

	for _, action := range service.ControlAction {
		cmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: fmt.Sprintf("%s the OS service", action),
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, _, err := newService(cmd)
				if err != nil {
					return err
				}
				if err := service.Control(svc, action); err != nil {
					return fmt.Errorf("service %s: %w", action, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Service %s: done\n", action)
				return nil
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether the OS service is running",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := newService(cmd)
			if err != nil {
				return err
			}
			st, err := svc.Status()
			if errors.Is(err, service.ErrNotInstalled) {
				fmt.Fprintln(cmd.OutOrStdout(), "not installed")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), statusName(st))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:    "run",
		Short:  "Run under the service manager",
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := newService(cmd)
			if err != nil {
				return err
			}
			return svc.Run()
		},
	})
	return cmd
}

func statusName(st service.Status) string {
	switch st {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
