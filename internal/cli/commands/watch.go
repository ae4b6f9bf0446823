package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/weft-ui/weft/internal/cli/config"
	"github.com/weft-ui/weft/internal/watch"
)

// NewWatchCommand watches widget sources and reports change events. The dev
// server consumes the same manager to drive recompile and remount; this
// command is the standalone view of the change stream.
func NewWatchCommand() *cobra.Command {
	var roots []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch widget sources and report change events",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if len(roots) == 0 {
				roots = cfg.Watch.Roots
			}

			manager := watch.NewManager(watch.ManagerConfig{
				DevMode:  true,
				Roots:    roots,
				Patterns: cfg.Watch.Patterns,
				Ignore:   cfg.Watch.Ignore,
			})
			manager.Subscribe(func(ev watch.Event) {
				color.Yellow("↻ %s changed (%s)", ev.WidgetID, ev.Reason)
			})

			if err := manager.Start(); err != nil {
				return fmt.Errorf("failed to start watching: %w", err)
			}
			defer manager.Stop()

			color.Cyan("Watching %v for widget changes. Ctrl-C to stop.", roots)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			<-sigCh
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&roots, "dir", nil, "directories to watch (defaults to config)")
	return cmd
}
