package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mordilloSan/go_logger/logger"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgman/internal/catalog"
	"github.com/blackwell-systems/pkgman/internal/config"
	"github.com/blackwell-systems/pkgman/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Report packages as they are installed or forgotten",
		Long: `Follow the receipts directory and print package ids as receipts appear
or disappear. The catalog is re-read after each burst of receipt changes,
so an install that writes several files is reported once.

Press Ctrl+C to stop.`,
		Example: `  pkgman watch

  # Watch a different receipts directory
  PKGMAN_RECEIPTS_DIR=/Volumes/Other/private/var/db/receipts pkgman watch`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat := catalog.New(newRunner(cfg))
	w, err := watcher.New(cfg.ReceiptsDir, cat)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Stop(); err != nil {
			logger.Errorf("failed to stop watcher: %v", err)
		}
	}()

	if err := w.Start(ctx); err != nil {
		return describeTimeout(err)
	}
	if cfg.Format == config.FormatTable {
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s. Press Ctrl+C to stop.\n", cfg.ReceiptsDir)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if cfg.Format == config.FormatYAML {
				fmt.Fprintln(cmd.OutOrStdout(), "---")
			}
			if err := render(cmd, change, func() string { return renderChange(change) }); err != nil {
				return err
			}
		}
	}
}

func renderChange(change watcher.Change) string {
	var out string
	for _, id := range change.Added {
		out += fmt.Sprintf("+ %s\n", id)
	}
	for _, id := range change.Removed {
		out += fmt.Sprintf("- %s\n", id)
	}
	return out
}
