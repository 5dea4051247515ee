package server

import (
	"encoding/json"
	nethttp "net/http"

	"github.com/rs/zerolog/log"

	"github.com/cryptogamefiverse/nftdash/internal/opensea"
	"github.com/cryptogamefiverse/nftdash/internal/table"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// TableData is the payload of table reads and intent replies.
type TableData struct {
	Snapshot table.Snapshot `json:"snapshot"`
	Loading  bool           `json:"loading"`
	// LastError is the most recent refresh error, if any.
	LastError string `json:"lastError,omitempty"`
}

// HealthData is returned by GET /health.
type HealthData struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	Collections   int            `json:"collections"`
	Marketplace   *opensea.Stats `json:"marketplace,omitempty"`
	DroppedEvents int64          `json:"droppedEvents"`
}

// StreamMessage types pushed over /ws.
const (
	StreamSnapshot = "snapshot"
	StreamLoading  = "loading"
)

// StreamMessage is one websocket frame.
type StreamMessage struct {
	Type     string          `json:"type"`
	Intent   string          `json:"intent,omitempty"`
	Snapshot *table.Snapshot `json:"snapshot,omitempty"`
	Loading  *bool           `json:"loading,omitempty"`
}

func writeJSON(w nethttp.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}

func writeData(w nethttp.ResponseWriter, data interface{}) {
	writeJSON(w, nethttp.StatusOK, Response{Success: true, Data: data})
}

func writeError(w nethttp.ResponseWriter, status int, err error) {
	writeJSON(w, status, Response{Success: false, Error: err.Error()})
}
