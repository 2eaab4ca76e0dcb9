package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-request-client/internal/app"
	"github.com/samvad-hq/samvad-request-client/internal/config"
	"github.com/samvad-hq/samvad-request-client/internal/logger"
	"github.com/spf13/cobra"
)

// errNotOK signals a completed request whose Result was not ok.
var errNotOK = errors.New("request not ok")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errNotOK) {
			fmt.Fprintf(os.Stderr, "reqclient: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "reqclient",
		Short:         "Send authenticated requests to the configured API",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.SetOut(out)

	for _, method := range []string{"GET", "POST", "PUT", "PATCH", "DELETE"} {
		rootCmd.AddCommand(newRequestCmd(method))
	}
	rootCmd.AddCommand(newTokenCmd())
	return rootCmd
}

// withRuntime loads config, starts logging and hands a ready runtime to fn.
func withRuntime(ctx context.Context, fn func(context.Context, *app.Runtime) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("reqclient starting", "config", cfg)

	rt, err := app.NewRuntime(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runtime", "error", err.Error())
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logger.ErrorObj("runtime close failed", "error", cerr.Error())
		}
	}()

	return fn(ctx, rt)
}
