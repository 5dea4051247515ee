package server

import (
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cryptogamefiverse/nftdash/internal/constants"
	"github.com/cryptogamefiverse/nftdash/internal/state"
)

// handleStream upgrades to a websocket and pushes the current snapshot, then
// one message per table change or loading flip until either side goes away.
func (s *Server) handleStream(w nethttp.ResponseWriter, r *nethttp.Request) {
	if s.bus == nil {
		writeError(w, nethttp.StatusServiceUnavailable, errNoEventBus)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		s.logger.Debug().Err(err).Msg("Websocket upgrade failed")
		return
	}

	defer conn.Close()
	if !s.track() {
		return
	}
	defer s.wg.Done()

	changes := s.bus.Subscribe(state.EventTableChanged)
	defer s.bus.Unsubscribe(state.EventTableChanged, changes)
	loading := s.bus.Subscribe(state.EventTableLoading)
	defer s.bus.Unsubscribe(state.EventTableLoading, loading)

	// reader: answers pings and notices the client closing
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	snap := s.state.Snapshot()
	if err := s.push(conn, StreamMessage{Type: StreamSnapshot, Snapshot: &snap}); err != nil {
		return
	}

	ping := time.NewTicker(constants.WebsocketPingInterval)
	defer ping.Stop()

	s.logger.Debug().Str("remote", r.RemoteAddr).Msg("Websocket stream opened")
	defer s.logger.Debug().Str("remote", r.RemoteAddr).Msg("Websocket stream closed")

	for {
		select {
		case <-s.ctx.Done():
			deadline := time.Now().Add(constants.WebsocketWriteTimeout)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
			return

		case <-closed:
			return

		case ev, ok := <-changes:
			if !ok {
				return
			}
			changed, ok := ev.(*state.TableChangedEvent)
			if !ok {
				continue
			}
			snap := changed.Snapshot
			if err := s.push(conn, StreamMessage{Type: StreamSnapshot, Intent: changed.Intent, Snapshot: &snap}); err != nil {
				return
			}

		case ev, ok := <-loading:
			if !ok {
				return
			}
			flip, ok := ev.(*state.TableLoadingEvent)
			if !ok {
				continue
			}
			value := flip.Loading
			if err := s.push(conn, StreamMessage{Type: StreamLoading, Loading: &value}); err != nil {
				return
			}

		case <-ping.C:
			deadline := time.Now().Add(constants.WebsocketWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (s *Server) push(conn *websocket.Conn, msg StreamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(constants.WebsocketWriteTimeout)); err != nil {
		return err
	}
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Debug().Err(err).Msg("Websocket write failed")
		return err
	}
	return nil
}
