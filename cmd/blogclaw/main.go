// Package main is the entry point for the blogclaw CLI.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/blogclaw/internal/agent"
	"github.com/flemzord/blogclaw/internal/config"
	"github.com/flemzord/blogclaw/internal/gateway"
	"github.com/flemzord/blogclaw/internal/mcpserver"
	"github.com/flemzord/blogclaw/internal/onboard"
	"github.com/flemzord/blogclaw/internal/provider"
	"github.com/flemzord/blogclaw/internal/security"
	"github.com/flemzord/blogclaw/pkg/app"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "blogclaw",
		Short:         "Scheduled LLM blog writer that files WordPress drafts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.PersistentFlags().String("log-level", "", "Override the configured log level")
	root.AddCommand(
		versionCmd(),
		startCmd(),
		runOnceCmd(),
		statusCmd(),
		ctlCmd(),
		configCmd(),
		configureCmd(),
		mcpCmd(),
		serviceCmd(),
	)
	return root
}

func params(cmd *cobra.Command) app.Params {
	cfgPath, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")
	return app.Params{
		ConfigPath: cfgPath,
		Version:    version,
		LogLevel:   level,
		Stderr:     cmd.ErrOrStderr(),
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled providers",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "blogclaw %s (commit: %s, built: %s)\n", version, commit, date)
			fmt.Fprintln(out, "\nCompiled providers:")
			for _, info := range provider.Registered() {
				fmt.Fprintf(out, "  %-10s %s\n", info.Kind, info.DisplayName)
			}
		},
	}
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the agent in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), params(cmd))
		},
	}
}

func runOnceCmd() *cobra.Command {
	var (
		topic string
		words int
	)
	cmd := &cobra.Command{
		Use:   "run-once",
		Short: "Generate and publish a single draft, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, params(cmd))
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(ctx))

			if err := a.Agent.CheckCredentials(); err != nil {
				return fmt.Errorf("%w (run `blogclaw configure`)", err)
			}
			out, err := a.Agent.RunOnce(ctx, agent.RunOptions{Topic: topic, WordCount: words})
			if err != nil {
				return err
			}
			for _, line := range a.Activity.Lines(0) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return out.Err
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "Topic for this run")
	cmd.Flags().IntVar(&words, "words", 0, "Target word count for this run")
	return cmd
}

// gatewayClient builds a client for the gateway of the configured agent.
func gatewayClient(cmd *cobra.Command) (*gateway.Client, error) {
	p := params(cmd)
	cfgPath := p.ConfigPath
	if cfgPath == "" {
		resolved, err := app.ResolveConfigPath()
		if err != nil && !errors.Is(err, app.ErrNoConfig) {
			return nil, err
		}
		cfgPath = resolved
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	gwCfg, err := gateway.ParseConfig(&cfg.Gateway)
	if err != nil {
		return nil, err
	}
	if url, _ := cmd.Flags().GetString("url"); url != "" {
		return gateway.NewClientURL(url, gwCfg.Auth, nil), nil
	}
	return gateway.NewClient(gwCfg, nil), nil
}

func statusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of a running agent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := gatewayClient(cmd)
			if err != nil {
				return err
			}
			st, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), st, asJSON)
		},
	}
	cmd.Flags().String("url", "", "Gateway base URL (defaults to the configured bind address)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	return cmd
}

func printStatus(w io.Writer, st gateway.StatusResponse, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	state := "Stopped"
	if st.Running {
		state = "Running"
	}
	if st.Busy {
		state += " (busy)"
	}
	fmt.Fprintf(w, "Status:      %s\n", state)
	if st.Running {
		fmt.Fprintf(w, "Interval:    every %d hours\n", st.IntervalHours)
	}
	fmt.Fprintf(w, "Next run:    %s\n", st.NextRun)
	fmt.Fprintf(w, "Last run:    %s\n", st.LastRun)
	fmt.Fprintf(w, "Last status: %s\n", st.LastStatus)
	if st.Model != "" {
		fmt.Fprintf(w, "Model:       %s\n", st.Model)
	}
	if len(st.Missing) > 0 {
		fmt.Fprintf(w, "Missing:     %v\n", st.Missing)
	}
	return nil
}

func ctlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ctl",
		Short: "Control a running agent through its gateway",
	}
	cmd.PersistentFlags().String("url", "", "Gateway base URL (defaults to the configured bind address)")

	var (
		interval int
		topic    string
		words    int
	)
	start := &cobra.Command{
		Use:   "start",
		Short: "Start the schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := gatewayClient(cmd)
			if err != nil {
				return err
			}
			st, err := c.Start(cmd.Context(), agent.StartOptions{IntervalHours: interval, Topic: topic, WordCount: words})
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), gateway.StatusResponse{Status: st}, false)
		},
	}
	start.Flags().IntVar(&interval, "interval", 0, "Hours between runs")
	start.Flags().StringVar(&topic, "topic", "", "Topic to write about")
	start.Flags().IntVar(&words, "words", 0, "Target word count")

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop the schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := gatewayClient(cmd)
			if err != nil {
				return err
			}
			st, err := c.Stop(cmd.Context())
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), gateway.StatusResponse{Status: st}, false)
		},
	}

	var runTopic string
	run := &cobra.Command{
		Use:   "run",
		Short: "Trigger one run now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := gatewayClient(cmd)
			if err != nil {
				return err
			}
			if err := c.Run(cmd.Context(), agent.RunOptions{Topic: runTopic}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Run accepted. Follow progress with `blogclaw ctl logs -f`.")
			return nil
		},
	}
	run.Flags().StringVar(&runTopic, "topic", "", "Topic for this run")

	var (
		limit  int
		follow bool
	)
	logs := &cobra.Command{
		Use:   "logs",
		Short: "Print the activity log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := gatewayClient(cmd)
			if err != nil {
				return err
			}
			entries, err := c.Activity(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i := len(entries) - 1; i >= 0; i-- {
				fmt.Fprintln(out, entries[i].Line)
			}
			if !follow {
				return nil
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.Follow(ctx, func(e gateway.ActivityEntry) {
				fmt.Fprintln(out, e.Line)
			})
		},
	}
	logs.Flags().IntVarP(&limit, "limit", "n", 20, "Number of lines to print")
	logs.Flags().BoolVarP(&follow, "follow", "f", false, "Stream new lines")

	cmd.AddCommand(start, stop, run, logs)
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	var remote bool
	check := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			res, err := app.Check(ctx, params(cmd), remote)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			cfgPath := res.ConfigPath
			if cfgPath == "" {
				cfgPath = "(defaults)"
			}
			fmt.Fprintf(out, "Config:   %s\n", cfgPath)
			fmt.Fprintf(out, "Settings: %s\n", res.SettingsPath)
			if len(res.Missing) > 0 {
				fmt.Fprintf(out, "Missing settings: %v (run `blogclaw configure`)\n", res.Missing)
			}
			if remote {
				fmt.Fprintf(out, "LLM provider: %s\n", checkLine(res.Provider, len(res.Missing) > 0))
				fmt.Fprintf(out, "WordPress:    %s\n", checkLine(res.WordPress, len(res.Missing) > 0))
			}
			if !res.OK() {
				return errors.New("configuration incomplete")
			}
			fmt.Fprintln(out, "Configuration OK")
			return nil
		},
	}
	check.Flags().BoolVar(&remote, "remote", false, "Also verify the LLM key and WordPress credentials")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration and redacted settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := params(cmd)
			p.LogLevel = "error"
			a, err := app.Build(cmd.Context(), p)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			gwCfg, err := gateway.ParseConfig(&a.Config.Gateway)
			if err != nil {
				return err
			}
			redactor := security.NewRedactor()
			redactor.SetLiterals(append(a.Settings.Credentials().Secrets(), gwCfg.Auth.BearerToken, gwCfg.Auth.BasicPass)...)

			effective := *a.Config
			if err := effective.Gateway.Encode(gwCfg); err != nil {
				return err
			}

			var buf bytes.Buffer
			enc := yaml.NewEncoder(&buf)
			enc.SetIndent(2)
			if err := enc.Encode(&effective); err != nil {
				return err
			}
			_ = enc.Close()

			out := cmd.OutOrStdout()
			fmt.Fprint(out, redactor.Redact(buf.String()))

			fmt.Fprintf(out, "---\n# %s\n", a.Settings.Path())
			js := json.NewEncoder(out)
			js.SetIndent("", "  ")
			return js.Encode(redactor.RedactStrings(a.Settings.Snapshot()))
		},
	}

	cmd.AddCommand(check, show)
	return cmd
}

func checkLine(err error, skipped bool) string {
	switch {
	case skipped:
		return "skipped"
	case err != nil:
		return "FAILED: " + err.Error()
	default:
		return "ok"
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactively set credentials and topic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := params(cmd)
			p.LogLevel = "error"
			a, err := app.Build(cmd.Context(), p)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			if err := onboard.Run(cmd.Context(), a.Settings); err != nil {
				if errors.Is(err, onboard.ErrAborted) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted, nothing saved.")
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Settings saved to %s\n", a.Settings.Path())
			if missing := a.Settings.Missing(); len(missing) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Still missing: %v\n", missing)
			}
			return nil
		},
	}
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve agent controls as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, params(cmd))
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(ctx))

			return mcpserver.New(ctx, a.Agent, version, a.Logger).ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
