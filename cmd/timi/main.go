// timi 命令行计时器：引擎跑在本地，区间记录走服务端 API
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NCUHOME-Y/TimiFocus/internal/client"
	"github.com/NCUHOME-Y/TimiFocus/internal/config"
	"github.com/NCUHOME-Y/TimiFocus/internal/engine"
	"github.com/NCUHOME-Y/TimiFocus/internal/ledger"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/logger"
	"github.com/NCUHOME-Y/TimiFocus/internal/timer"
)

var Version = "dev"

// app 每条命令共用的依赖
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	client *client.Client
}

func main() {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "timi",
		Short:         "TimiFocus - focus timer with sets, streaks and achievements",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			api, _ := cmd.Flags().GetString("api")
			return a.init(cmd.Context(), api)
		},
	}
	rootCmd.PersistentFlags().String("api", "", "API base URL (default $TIMI_API)")

	rootCmd.AddCommand(startCmd(a))
	rootCmd.AddCommand(watchCmd(a))
	rootCmd.AddCommand(cancelCmd(a))
	rootCmd.AddCommand(statusCmd(a))
	rootCmd.AddCommand(taskCmd(a))
	rootCmd.AddCommand(statsCmd(a))
	rootCmd.AddCommand(achievementsCmd(a))
	rootCmd.AddCommand(settingsCmd(a))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(describe(err)))
		os.Exit(1)
	}
}

func (a *app) init(ctx context.Context, api string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if api != "" {
		cfg.APIBase = api
	}
	a.cfg = cfg
	// 命令行输出交给 lipgloss，日志只写 stderr
	a.log = logger.New(os.Stderr, cfg.Env)
	a.client = client.New(cfg.APIBase, cfg.Token)
	if cfg.Token == "" {
		if _, err := a.client.Login(ctx); err != nil {
			return fmt.Errorf("guest login: %w", err)
		}
	}
	return nil
}

func (a *app) engine(opts ...engine.Option) *engine.Engine {
	opts = append([]engine.Option{engine.WithLogger(a.log), engine.WithTick(a.cfg.Tick)}, opts...)
	return engine.New(a.client, a.client, a.client, opts...)
}

func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return "not authorized: set TIMI_TOKEN or unset it to log in as guest"
	case errors.Is(err, timer.ErrBusy), errors.Is(err, ledger.ErrConflict):
		return "an interval is already open: `timi watch` to follow it or `timi cancel` to drop it"
	case errors.Is(err, ledger.ErrTransientIO):
		return "server unreachable (" + err.Error() + "), try again"
	}
	return "error: " + err.Error()
}
