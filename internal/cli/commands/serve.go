package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/weft-ui/weft/internal/cli/config"
	"github.com/weft-ui/weft/internal/compiler"
	"github.com/weft-ui/weft/internal/devserver"
	"github.com/weft-ui/weft/internal/watch"
)

// NewServeCommand runs the dev server.
func NewServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			logger, err := newLogger(cfg.DevMode)
			if err != nil {
				return err
			}
			defer logger.Sync()

			store, err := compiler.NewArtifactStore(cfg.CacheDir)
			if err != nil {
				return err
			}

			var reload *watch.ReloadServer
			if cfg.DevMode {
				reload = watch.NewReloadServer()
			}

			server := devserver.New(
				devserver.Config{Host: cfg.Server.Host, Port: cfg.Server.Port},
				compiler.New(compiler.WithLogger(logger)),
				store,
				reload,
				logger,
			)

			errCh := make(chan error, 1)
			go func() { errCh <- server.ListenAndServe() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				logger.Info("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return server.Shutdown(ctx)
			}
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "dev server port (defaults to config)")
	return cmd
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
