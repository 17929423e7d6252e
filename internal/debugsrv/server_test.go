package debugsrv

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmaloff/tilelookup/internal/entity"
	"github.com/dmaloff/tilelookup/internal/geom"
	"github.com/dmaloff/tilelookup/internal/lookup"
	"github.com/dmaloff/tilelookup/internal/sim"
	"github.com/dmaloff/tilelookup/internal/tiles"
)

type testWorld struct {
	grids    *tiles.Manager
	entities *entity.Registry
	loop     *sim.Loop
	server   *Server
}

// startWorld runs a loop with one 8x8 grid and one entity on tile (2,2).
func startWorld(t *testing.T) (*testWorld, tiles.GridID, entity.ID) {
	t.Helper()
	w := &testWorld{
		grids:    tiles.NewManager(),
		entities: entity.NewRegistry(),
	}
	engine := lookup.New(w.entities, w.entities, w.grids, 16)
	w.loop = sim.NewLoop(engine, 64)
	w.server = New(w.loop, w.grids)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = w.loop.Run(ctx) }()

	g := w.grids.CreateGrid(geom.Vec2{}, 1.0)
	for y := int32(0); y < 8; y++ {
		for x := int32(0); x < 8; x++ {
			g.SetTile(tiles.TileCoord{X: x, Y: y}, tiles.Tile{TypeID: 1})
		}
	}
	e := w.entities.Spawn(g.ID(), geom.Vec2{X: 2.5, Y: 2.5}, 0.5, 0.5)

	require.NoError(t, w.loop.Post(ctx, sim.GridCreated{Grid: g.ID()}))
	require.NoError(t, w.loop.Post(ctx, sim.EntityInitialized{Entity: e.ID()}))
	// Barrier: everything above is applied once Inspect returns.
	require.NoError(t, w.loop.Inspect(ctx, func(*lookup.Engine) {}))

	return w, g.ID(), e.ID()
}

func (w *testWorld) httpServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/grids", w.server.handleGrids)
	mux.HandleFunc("/debug/tile", w.server.handleTile)
	mux.HandleFunc("/debug/ws", w.server.handleWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestServer_GridsEndpoint(t *testing.T) {
	w, grid, _ := startWorld(t)
	srv := w.httpServer(t)

	resp, err := http.Get(srv.URL + "/debug/grids")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []gridSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, grid, body[0].ID)
	assert.Equal(t, 64, body[0].Tiles)
	assert.Equal(t, geom.Vec2{X: 0, Y: 0}, body[0].Bounds.Min)
	assert.Equal(t, geom.Vec2{X: 8, Y: 8}, body[0].Bounds.Max)
}

func TestServer_TileEndpoint(t *testing.T) {
	w, grid, id := startWorld(t)
	srv := w.httpServer(t)

	resp, err := http.Get(srv.URL + "/debug/tile?grid=1&x=2&y=2")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body tileResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, grid, body.Grid)
	assert.Equal(t, tiles.TileCoord{X: 2, Y: 2}, body.Tile)
	assert.Contains(t, body.Entities, id)
}

func TestServer_TileEndpoint_UnknownGrid(t *testing.T) {
	w, _, _ := startWorld(t)
	srv := w.httpServer(t)

	resp, err := http.Get(srv.URL + "/debug/tile?grid=99&x=0&y=0")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "grid not registered")
}

func TestServer_TileEndpoint_BadParams(t *testing.T) {
	w, _, _ := startWorld(t)
	srv := w.httpServer(t)

	for _, query := range []string{"", "grid=1", "grid=1&x=a&y=0"} {
		resp, err := http.Get(srv.URL + "/debug/tile?" + query)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "query %q", query)
	}
}

func TestServer_WebsocketTileRequest(t *testing.T) {
	w, grid, id := startWorld(t)
	srv := w.httpServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/debug/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(wsRequest{Grid: grid, X: 2, Y: 2}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))

	require.NotNil(t, msg.Tile)
	assert.Contains(t, msg.Tile.Entities, id)
	assert.Empty(t, msg.Error)
}

func TestServer_WebsocketUpdateStream(t *testing.T) {
	w, grid, id := startWorld(t)
	srv := w.httpServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/debug/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Wait for registration before publishing.
	require.Eventually(t, func() bool {
		return w.server.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	w.server.Publish(lookup.Update{
		Entity: id,
		Tiles: map[tiles.GridID][]tiles.TileCoord{
			grid: {{X: 3, Y: 2}},
		},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))

	require.NotNil(t, msg.Update)
	assert.Equal(t, id, msg.Update.Entity)
	assert.Equal(t, []tiles.TileCoord{{X: 3, Y: 2}}, msg.Update.Tiles[grid])
}
