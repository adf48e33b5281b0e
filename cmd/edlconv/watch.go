package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/southbay/edlconv/internal/export"
	"github.com/southbay/edlconv/internal/watcher"
)

var watchFlags struct {
	outDir   string
	interval time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Convert EDLs as they land in a directory",
	Long: `Watch a directory and convert every .edl file that appears or changes.
An EDL whose CSV is already newer than it is skipped, so restarting the
watcher does not redo finished work.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchFlags.outDir, "out-dir", "", "directory for output CSVs (default next to each EDL)")
	watchCmd.Flags().DurationVar(&watchFlags.interval, "interval", watcher.DefaultInterval, "poll interval")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchFlags.outDir != "" {
		if err := export.ValidateOutputDir(watchFlags.outDir); err != nil {
			return err
		}
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := a.service()
	set := a.settings()
	w := watcher.NewPollingWatcher(watchFlags.interval, ".edl", a.logger)
	w.OnChange(func(path string, event watcher.EventType) {
		if event == watcher.EventDelete {
			return
		}
		out := export.OutputPath(path, watchFlags.outDir)
		if upToDate(path, out) {
			a.logger.Debug("csv is current, skipping", "input", path)
			return
		}
		// Failures are logged by the service and recorded in history.
		svc.ConvertFile(ctx, path, out, set)
	})

	return w.Watch(ctx, args[0])
}

func upToDate(input, output string) bool {
	in, err := os.Stat(input)
	if err != nil {
		return false
	}
	out, err := os.Stat(output)
	if err != nil {
		return false
	}
	return !out.ModTime().Before(in.ModTime())
}
