package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/saferoutes/pkg/generator"
	"github.com/gnana997/saferoutes/pkg/watcher"
)

func (a *app) watchCmd() *cobra.Command {
	var debounceMs int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Generate, then regenerate whenever a page changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runWatch(ctx, debounceMs)
		},
	}

	cmd.Flags().IntVar(&debounceMs, "debounce", watcher.DefaultWatchOptions().DebounceMs, "Milliseconds to wait for a burst of changes to settle")

	return cmd
}

func (a *app) runWatch(ctx context.Context, debounceMs int) error {
	g, err := a.newGenerator()
	if err != nil {
		return err
	}
	defer g.Close()

	res, err := g.Generate("")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Generated %d routes in %s\n", res.VisibleRoutes, res.OutPath)

	opts := watcher.WatchOptions{
		DebounceMs:     debounceMs,
		IgnorePatterns: a.cfg.Exclude,
		OnRegenerate: func(res *generator.Result, err error) {
			if err == nil {
				fmt.Fprintf(a.stdout, "Regenerated %d routes\n", res.VisibleRoutes)
			}
		},
	}
	w, err := watcher.NewFileWatcher(g, opts, a.logger)
	if err != nil {
		return err
	}
	if err := w.Start(g.Paths().PagesDir); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(a.stdout, "Watching %s\n", g.Paths().PagesDir)
	<-ctx.Done()
	return nil
}
