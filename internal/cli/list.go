package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cryptogamefiverse/nftdash/internal/events"
	"github.com/cryptogamefiverse/nftdash/internal/fetch"
	"github.com/cryptogamefiverse/nftdash/internal/models"
	"github.com/cryptogamefiverse/nftdash/internal/progress"
	"github.com/cryptogamefiverse/nftdash/internal/table"
	"github.com/cryptogamefiverse/nftdash/internal/tui"
)

// listOptions override the [view] section for one run.
type listOptions struct {
	page     int // 1-based; 0 means first page
	pageSize int // 0 means config value
	sortKey  string
	desc     bool
	window   string
	dense    bool
}

func newListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the stats table",
		Long: `Fetch every tracked collection, sort, and print one page of the table.

Examples:
  nftdash list
  nftdash list --sort floorPrice --desc
  nftdash list --window 7d --page 2 --page-size 25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Rows per page: 10, 25 or 50 (default from config)")
	cmd.Flags().StringVar(&opts.sortKey, "sort", "", "Sort column: name, totalSupply, floorPrice, marketCap, numOwners, averagePrice, change, sales, volume")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "Sort descending")
	cmd.Flags().StringVar(&opts.window, "window", "", "Time window: 24h, 7d or 30d (default from config)")
	cmd.Flags().BoolVar(&opts.dense, "dense", false, "Compact rows")

	return cmd
}

// applyListOptions applies flag overrides to the configured view.
func applyListOptions(v table.View, opts listOptions) (table.View, error) {
	var err error

	if opts.sortKey != "" {
		key, err := table.ParseSortKey(opts.sortKey)
		if err != nil {
			return v, err
		}
		dir := table.Ascending
		if opts.desc {
			dir = table.Descending
		}
		v.Sort = table.SortSpec{Key: key, Direction: dir}
	} else if opts.desc {
		v.Sort.Direction = table.Descending
	}

	if opts.window != "" {
		w, err := models.ParseWindow(opts.window)
		if err != nil {
			return v, err
		}
		v = v.ChangeTimeWindow(w)
	}

	if opts.pageSize != 0 {
		if v, err = v.ChangePageSize(opts.pageSize); err != nil {
			return v, err
		}
	}

	if opts.dense {
		v = v.ChangeDensity(true)
	}
	return v, nil
}

// collect runs one batch and returns the last published rows.
func collect(ctx context.Context, s *session, showProgress bool) ([]models.Row, fetch.Summary) {
	if showProgress {
		stop := progress.Watch(s.bus, progress.NewCLIProgress(os.Stderr))
		defer stop()
	}

	var latest []models.Row
	summary := s.aggregator.Run(ctx, s.cfg.Collections, func(rows []models.Row) {
		latest = rows
	})
	return latest, summary
}

func runList(ctx context.Context, out io.Writer, opts listOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	bus := events.NewEventBus(0)
	s, err := newSession(cfg, bus)
	if err != nil {
		return err
	}
	defer s.Close()

	view, err := s.initialView()
	if err != nil {
		return err
	}
	if view, err = applyListOptions(view, opts); err != nil {
		return err
	}

	showProgress := term.IsTerminal(int(os.Stderr.Fd()))
	rows, summary := collect(ctx, s, showProgress)
	if err := ctx.Err(); err != nil {
		return err
	}
	if summary.Requested > 0 && summary.Succeeded == 0 {
		return errors.New("no collections could be loaded")
	}

	view = view.SetRows(rows)
	if opts.page > 1 {
		view = view.ChangePage(opts.page - 1)
	}

	snap := view.Snapshot()
	fmt.Fprintln(out, tui.RenderStatic(snap))
	fmt.Fprintln(out, tui.StaticFooter(snap))
	// the progress bar already reported failures
	if summary.Failed > 0 && !showProgress {
		fmt.Fprintf(out, "%d collection(s) failed to load (run with -v for details)\n", summary.Failed)
	}
	return nil
}
