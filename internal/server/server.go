// Package server exposes the table controller over HTTP: JSON reads, one
// POST endpoint per intent, a refresh trigger and a websocket stream that
// pushes a fresh snapshot after every state change.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	nethttp "net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cryptogamefiverse/nftdash/internal/constants"
	"github.com/cryptogamefiverse/nftdash/internal/events"
	"github.com/cryptogamefiverse/nftdash/internal/export"
	"github.com/cryptogamefiverse/nftdash/internal/fetch"
	"github.com/cryptogamefiverse/nftdash/internal/logging"
	"github.com/cryptogamefiverse/nftdash/internal/models"
	"github.com/cryptogamefiverse/nftdash/internal/opensea"
	"github.com/cryptogamefiverse/nftdash/internal/state"
	"github.com/cryptogamefiverse/nftdash/internal/table"
	"github.com/cryptogamefiverse/nftdash/internal/version"
)

var (
	// ErrRefreshInProgress is returned when a refresh is requested while a batch runs.
	ErrRefreshInProgress = errors.New("refresh already in progress")

	// ErrRefreshUnavailable is returned when the server has no data source.
	ErrRefreshUnavailable = errors.New("refresh not configured")

	// ErrServerClosed is returned by Refresh once Shutdown has begun.
	ErrServerClosed = errors.New("server is shutting down")

	errNoEventBus = errors.New("snapshot stream not available")
)

// maxBodyBytes bounds intent request bodies.
const maxBodyBytes = 64 << 10

// intentKinds are the intents reachable under POST /api/table/{intent}.
var intentKinds = []table.IntentKind{
	table.IntentSort,
	table.IntentSelectAll,
	table.IntentSelectOne,
	table.IntentPage,
	table.IntentPageSize,
	table.IntentDensity,
	table.IntentTimeWindow,
}

// Options configures a Server.
type Options struct {
	// Addr is the listen address.
	Addr string

	// Collections are the slugs fetched on refresh.
	Collections []string

	// Aggregator runs refresh batches. Nil disables POST /api/refresh.
	Aggregator *fetch.Aggregator

	// Stats reports marketplace client counters for /health.
	Stats func() opensea.Stats
}

// Server serves the dashboard API.
type Server struct {
	state  *state.TableState
	bus    *events.EventBus
	logger *logging.Logger
	opts   Options

	httpServer *nethttp.Server
	listener   net.Listener
	upgrader   websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	refreshing bool
}

// New creates a Server over st. bus must be the bus st publishes on.
func New(st *state.TableState, bus *events.EventBus, logger *logging.Logger, opts Options) *Server {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		state:  st,
		bus:    bus,
		logger: logger,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 << 10,
		},
	}
	s.httpServer = &nethttp.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed API.
func (s *Server) Handler() nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/table", s.handleTable)
	mux.HandleFunc("GET /api/table.csv", s.handleCSV)
	mux.HandleFunc("POST /api/table/{intent}", s.handleIntent)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /ws", s.handleStream)
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	s.listener = ln

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Dashboard API listening")
	return nil
}

// track adds one goroutine to the Shutdown wait, unless Shutdown has
// already cancelled the server context.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	s.wg.Add(1)
	return true
}

// Addr returns the bound address once Start succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.opts.Addr
	}
	return s.listener.Addr().String()
}

// Shutdown cancels any running refresh, closes websocket streams and waits
// for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	err := s.httpServer.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

// Refresh starts a fetch batch in the background. Every arrival replaces the
// table's rows; the batch is cancelled by Shutdown.
func (s *Server) Refresh() error {
	if s.opts.Aggregator == nil {
		return ErrRefreshUnavailable
	}

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return ErrServerClosed
	}
	if s.refreshing {
		s.mu.Unlock()
		return ErrRefreshInProgress
	}
	s.refreshing = true
	s.wg.Add(1)
	s.mu.Unlock()

	s.state.SetLoading(true)

	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.refreshing = false
			s.mu.Unlock()
		}()

		summary := s.opts.Aggregator.Run(s.ctx, slices.Clone(s.opts.Collections), func(rows []models.Row) {
			s.state.SetRows(rows)
		})
		s.state.SetLoading(false)

		if summary.Requested > 0 && summary.Succeeded == 0 && !summary.Cancelled {
			s.state.SetError(fmt.Errorf("all %d collections failed to load", summary.Requested))
		}
	}()
	return nil
}

func (s *Server) tableData() TableData {
	data := TableData{
		Snapshot: s.state.Snapshot(),
		Loading:  s.state.IsLoading(),
	}
	if err := s.state.GetError(); err != nil {
		data.LastError = err.Error()
	}
	return data
}

func (s *Server) handleHealth(w nethttp.ResponseWriter, _ *nethttp.Request) {
	data := HealthData{
		Status:      "ok",
		Version:     version.Version,
		Collections: len(s.opts.Collections),
	}
	if s.opts.Stats != nil {
		stats := s.opts.Stats()
		data.Marketplace = &stats
	}
	if s.bus != nil {
		data.DroppedEvents = s.bus.GetDroppedEventCount()
	}
	writeData(w, data)
}

func (s *Server) handleTable(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeData(w, s.tableData())
}

// handleCSV writes every loaded row, sorted, not just the visible page.
func (s *Server) handleCSV(w nethttp.ResponseWriter, _ *nethttp.Request) {
	v := s.state.View()
	w.Header().Set("Content-Type", constants.ExportContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="nftdash-`+v.Window.Label()+`.csv"`)
	if err := export.WriteCSV(w, v.Sorted(), v.Window); err != nil {
		s.logger.Warn().Err(err).Msg("CSV download interrupted")
	}
}

func (s *Server) handleIntent(w nethttp.ResponseWriter, r *nethttp.Request) {
	kind := table.IntentKind(r.PathValue("intent"))
	if !slices.Contains(intentKinds, kind) {
		writeError(w, nethttp.StatusNotFound, fmt.Errorf("unknown intent %q", kind))
		return
	}

	var in table.Intent
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, nethttp.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	in.Kind = kind

	if _, err := s.state.Apply(in); err != nil {
		s.logger.Debug().Err(err).Str("intent", string(kind)).Msg("Rejected intent")
		writeError(w, nethttp.StatusBadRequest, err)
		return
	}
	writeData(w, s.tableData())
}

func (s *Server) handleRefresh(w nethttp.ResponseWriter, _ *nethttp.Request) {
	switch err := s.Refresh(); {
	case errors.Is(err, ErrRefreshInProgress):
		writeError(w, nethttp.StatusConflict, err)
	case errors.Is(err, ErrRefreshUnavailable), errors.Is(err, ErrServerClosed):
		writeError(w, nethttp.StatusServiceUnavailable, err)
	case err != nil:
		writeError(w, nethttp.StatusInternalServerError, err)
	default:
		writeJSON(w, nethttp.StatusAccepted, Response{Success: true, Data: s.tableData()})
	}
}
