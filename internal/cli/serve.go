package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptogamefiverse/nftdash/internal/constants"
	"github.com/cryptogamefiverse/nftdash/internal/events"
	"github.com/cryptogamefiverse/nftdash/internal/logging"
	"github.com/cryptogamefiverse/nftdash/internal/server"
	"github.com/cryptogamefiverse/nftdash/internal/state"
)

func newServeCmd() *cobra.Command {
	var addr string
	var noFetch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stats table over HTTP",
		Long: `Run the dashboard API. The table is loaded on start and can be reloaded
with POST /api/refresh.

Endpoints:
  GET  /health
  GET  /api/table
  GET  /api/table.csv all rows, sorted
  POST /api/table/{sort,select-all,select,page,page-size,density,window}
  POST /api/refresh
  GET  /ws            snapshot stream (websocket)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr, !noFetch)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, "+constants.DefaultServerAddr+")")
	cmd.Flags().BoolVar(&noFetch, "no-fetch", false, "Start with an empty table instead of loading on start")

	return cmd
}

func runServe(ctx context.Context, addr string, fetchOnStart bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.ServerAddr = addr
	}

	bus := events.NewEventBus(constants.EventBusMaxBuffer)
	serverLogger, err := logging.NewLogger(logging.Options{Mode: logging.ModeServer, EventBus: bus})
	if err != nil {
		return err
	}
	logger = serverLogger
	logger.Install()

	s, err := newSession(cfg, bus)
	if err != nil {
		return err
	}
	defer s.Close()

	view, err := s.initialView()
	if err != nil {
		return err
	}

	st := state.NewTableState(view, s.bus)
	srv := server.New(st, s.bus, logger, server.Options{
		Addr:        cfg.ServerAddr,
		Collections: cfg.Collections,
		Aggregator:  s.aggregator,
		Stats:       s.client.Stats,
	})
	if err := srv.Start(); err != nil {
		return err
	}

	if fetchOnStart {
		if err := srv.Refresh(); err != nil {
			logger.Warn().Err(err).Msg("Initial load not started")
		}
	}

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
