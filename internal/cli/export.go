package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cryptogamefiverse/nftdash/internal/events"
	"github.com/cryptogamefiverse/nftdash/internal/export"
	"github.com/cryptogamefiverse/nftdash/internal/logging"
)

func newExportCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "export [destination]",
		Short: "Write the stats table as CSV",
		Long: `Fetch every tracked collection and write all rows, sorted, as CSV.

Destinations:
  -                         standard output (default)
  stats.csv, file://path    local file
  s3://bucket/key           S3 object; region from [export] aws_region,
                            credentials from the default AWS chain or
                            NFTDASH_AWS_ACCESS_KEY_ID / NFTDASH_AWS_SECRET_ACCESS_KEY
  azblob://container/blob   Azure blob; account from [export] azure_account_url,
                            authenticated by a SAS token in that URL or
                            NFTDASH_AZURE_ACCOUNT_KEY

Examples:
  nftdash export stats.csv --sort marketCap --desc
  nftdash export s3://reports/nft/daily.csv --window 7d`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := "-"
			if len(args) == 1 {
				dest = args[0]
			}
			return runExport(cmd.Context(), dest, opts)
		},
	}

	cmd.Flags().StringVar(&opts.sortKey, "sort", "", "Sort column (default from config)")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "Sort descending")
	cmd.Flags().StringVar(&opts.window, "window", "", "Time window for the windowed columns: 24h, 7d or 30d")

	return cmd
}

func runExport(ctx context.Context, dest string, opts listOptions) error {
	// stdout may carry the CSV
	stderrLogger, err := logging.NewLogger(logging.Options{Mode: logging.ModeServer})
	if err != nil {
		return err
	}
	logger = stderrLogger
	logger.Install()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sink, err := export.Open(ctx, dest, cfg)
	if err != nil {
		return err
	}

	s, err := newSession(cfg, events.NewEventBus(0))
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

	rows, summary := collect(ctx, s, term.IsTerminal(int(os.Stderr.Fd())))
	if err := ctx.Err(); err != nil {
		return err
	}
	if summary.Requested > 0 && summary.Succeeded == 0 {
		return errors.New("no collections could be loaded")
	}

	view = view.SetRows(rows)
	data, err := export.EncodeCSV(view.Sorted(), view.Window)
	if err != nil {
		return err
	}
	if err := sink.Write(ctx, data); err != nil {
		return fmt.Errorf("export to %s failed: %w", sink, err)
	}

	logger.Info().
		Str("dest", sink.String()).
		Int("rows", len(rows)).
		Int("failed", summary.Failed).
		Msg("Export complete")
	return nil
}
