// Package debugsrv exposes the lookup index to visualization overlays:
// a websocket stream of index updates plus tile-membership introspection.
// It is a trusted local debug surface, not a production API.
package debugsrv

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmaloff/tilelookup/internal/entity"
	"github.com/dmaloff/tilelookup/internal/geom"
	"github.com/dmaloff/tilelookup/internal/lookup"
	"github.com/dmaloff/tilelookup/internal/sim"
	"github.com/dmaloff/tilelookup/internal/tiles"
)

const clientBuffer = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local overlay clients only; no origin policy.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Server streams index updates to overlay clients and answers tile
// membership requests, routing every engine read through the simulation
// loop to respect its single-writer model.
type Server struct {
	loop  *sim.Loop
	grids *tiles.Manager

	mu      sync.RWMutex
	clients map[*websocket.Conn]chan wsMessage
}

// New creates a debug server over the given loop and grid registry.
func New(loop *sim.Loop, grids *tiles.Manager) *Server {
	return &Server{
		loop:    loop,
		grids:   grids,
		clients: make(map[*websocket.Conn]chan wsMessage),
	}
}

// Publish fans an index update out to every connected client. Safe to call
// from the loop goroutine; slow clients drop updates instead of blocking
// the simulation.
func (s *Server) Publish(u lookup.Update) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.clients {
		select {
		case ch <- wsMessage{Update: &u}:
		default:
		}
	}
}

// ClientCount returns the number of connected overlay clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Run serves HTTP until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/grids", s.handleGrids)
	mux.HandleFunc("/debug/tile", s.handleTile)
	mux.HandleFunc("/debug/ws", s.handleWS)

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.Info("debug server listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type gridSummary struct {
	ID     tiles.GridID `json:"id"`
	Tiles  int          `json:"tiles"`
	Bounds geom.Box     `json:"bounds"`
}

// handleGrids answers GET /debug/grids with a summary of every live grid.
// The grid registry is owned by the loop goroutine, so the read goes
// through Inspect like every other engine read.
func (s *Server) handleGrids(w http.ResponseWriter, r *http.Request) {
	summaries := []gridSummary{}
	if err := s.loop.Inspect(r.Context(), func(*lookup.Engine) {
		for _, g := range s.grids.Grids() {
			summaries = append(summaries, gridSummary{
				ID:     g.ID(),
				Tiles:  g.TileCount(),
				Bounds: g.WorldBounds(),
			})
		}
	}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, summaries)
}

type tileResponse struct {
	Grid     tiles.GridID    `json:"grid"`
	Tile     tiles.TileCoord `json:"tile"`
	Entities []entity.ID     `json:"entities"`
}

// handleTile answers GET /debug/tile?grid=1&x=3&y=4 with the node's
// membership.
func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	grid, tile, err := parseTileQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var ids []entity.ID
	var queryErr error
	if err := s.loop.Inspect(r.Context(), func(eng *lookup.Engine) {
		ids, queryErr = eng.EntitiesAt(grid, tile)
	}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if queryErr != nil {
		status := http.StatusInternalServerError
		if errors.Is(queryErr, lookup.ErrInvalidGrid) {
			status = http.StatusNotFound
		}
		http.Error(w, queryErr.Error(), status)
		return
	}

	writeJSON(w, tileResponse{Grid: grid, Tile: tile, Entities: ids})
}

// wsRequest is an in-stream tile introspection request from a client.
type wsRequest struct {
	Grid tiles.GridID `json:"grid"`
	X    int32        `json:"x"`
	Y    int32        `json:"y"`
}

type wsMessage struct {
	// Exactly one of Update / Tile / Error is set.
	Update *lookup.Update `json:"update,omitempty"`
	Tile   *tileResponse  `json:"tile,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// handleWS upgrades to a websocket, streams index updates, and answers
// inline tile requests. All writes go through one outbound channel: the
// websocket allows a single concurrent writer.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "err", err)
		return
	}

	out := make(chan wsMessage, clientBuffer)
	s.mu.Lock()
	s.clients[conn] = out
	s.mu.Unlock()
	slog.Debug("overlay client connected", "remote", conn.RemoteAddr())

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
		slog.Debug("overlay client disconnected", "remote", conn.RemoteAddr())
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Single writer.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-out:
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	// Reader: inline tile requests, answered via the outbound channel.
	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		resp := s.queryTile(ctx, req.Grid, tiles.TileCoord{X: req.X, Y: req.Y})
		select {
		case out <- resp:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) queryTile(ctx context.Context, grid tiles.GridID, tile tiles.TileCoord) wsMessage {
	var ids []entity.ID
	var queryErr error
	if err := s.loop.Inspect(ctx, func(eng *lookup.Engine) {
		ids, queryErr = eng.EntitiesAt(grid, tile)
	}); err != nil {
		return wsMessage{Error: err.Error()}
	}
	if queryErr != nil {
		return wsMessage{Error: queryErr.Error()}
	}
	return wsMessage{Tile: &tileResponse{Grid: grid, Tile: tile, Entities: ids}}
}

func parseTileQuery(r *http.Request) (tiles.GridID, tiles.TileCoord, error) {
	q := r.URL.Query()
	grid, err := strconv.ParseUint(q.Get("grid"), 10, 32)
	if err != nil {
		return 0, tiles.TileCoord{}, errors.New("bad or missing grid parameter")
	}
	x, err := strconv.ParseInt(q.Get("x"), 10, 32)
	if err != nil {
		return 0, tiles.TileCoord{}, errors.New("bad or missing x parameter")
	}
	y, err := strconv.ParseInt(q.Get("y"), 10, 32)
	if err != nil {
		return 0, tiles.TileCoord{}, errors.New("bad or missing y parameter")
	}
	return tiles.GridID(grid), tiles.TileCoord{X: int32(x), Y: int32(y)}, nil
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("writing debug response", "err", err)
	}
}
