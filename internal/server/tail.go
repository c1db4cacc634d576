package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/logscope/internal/query"
)

const defaultTailInterval = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// tailRequest is the configuration message a client sends after connecting.
type tailRequest struct {
	Query              string `json:"query"`
	Scope              string `json:"scope"`              // empty for the configured default
	IntervalSeconds    int    `json:"intervalSeconds"`    // poll cadence, default 10
	IncludeDescendants bool   `json:"includeDescendants"`
	MaxResults         int    `json:"maxResults"`
}

// tailFrame is the outgoing message format. Rows frames carry the new window;
// error frames carry only the message and the stream keeps going.
type tailFrame struct {
	Type        string         `json:"type"` // "rows" or "error"
	Columns     []query.Column `json:"columns,omitempty"`
	Rows        [][]any        `json:"rows,omitempty"`
	Count       int            `json:"count,omitempty"`
	WindowStart string         `json:"windowStart,omitempty"`
	WindowEnd   string         `json:"windowEnd,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// handleTail streams query results over a websocket. The client sends one
// tailRequest, then receives a frame per poll interval covering the time
// since the previous poll. Windows are contiguous, so a record landing
// exactly on a boundary can appear in two frames.
func (s *Server) handleTail(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	var req tailRequest
	if err := conn.ReadJSON(&req); err != nil {
		sendTailFrame(conn, tailFrame{Type: "error", Error: "invalid configuration message"})
		return
	}
	if req.Query == "" {
		sendTailFrame(conn, tailFrame{Type: "error", Error: "query is required"})
		return
	}

	interval := time.Duration(req.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultTailInterval
	}

	// The client sends nothing after the configuration message, so a read
	// error means it went away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("server: websocket read: %v", err)
				}
				return
			}
		}
	}()

	windowEnd := time.Now().UTC()
	if !s.pollTail(r.Context(), conn, req, windowEnd.Add(-interval), windowEnd) {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			now := time.Now().UTC()
			if !s.pollTail(r.Context(), conn, req, windowEnd, now) {
				return
			}
			windowEnd = now
		}
	}
}

// pollTail runs one window and writes the resulting frame. A failed query
// becomes an error frame and the window moves on; the return value reports
// whether the connection is still usable.
func (s *Server) pollTail(ctx context.Context, conn *websocket.Conn, req tailRequest, start, end time.Time) bool {
	resp, err := s.engine.Execute(ctx, query.Request{
		Query:              req.Query,
		Scope:              req.Scope,
		IncludeDescendants: req.IncludeDescendants,
		TimeStart:          start.Format(time.RFC3339Nano),
		TimeEnd:            end.Format(time.RFC3339Nano),
		MaxResults:         req.MaxResults,
		NoCache:            true,
	})
	if err != nil {
		return sendTailFrame(conn, tailFrame{Type: "error", Error: err.Error()})
	}

	return sendTailFrame(conn, tailFrame{
		Type:        "rows",
		Columns:     resp.Data.Columns,
		Rows:        resp.Data.Rows,
		Count:       resp.Data.TotalCount,
		WindowStart: start.Format(time.RFC3339Nano),
		WindowEnd:   end.Format(time.RFC3339Nano),
	})
}

func sendTailFrame(conn *websocket.Conn, frame tailFrame) bool {
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("server: websocket write: %v", err)
		return false
	}
	return true
}
