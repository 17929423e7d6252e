package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dmaloff/tilelookup/internal/config"
	"github.com/dmaloff/tilelookup/internal/entity"
	"github.com/dmaloff/tilelookup/internal/geom"
	"github.com/dmaloff/tilelookup/internal/lookup"
	"github.com/dmaloff/tilelookup/internal/sim"
	"github.com/dmaloff/tilelookup/internal/tiles"
)

// runDemo drives the index with a toy world so overlay clients have
// something to watch: one grid, a handful of random-walking entities, and
// occasional terrain edits. All world mutation happens inside the loop
// goroutine via Inspect, keeping the single-writer discipline.
func runDemo(ctx context.Context, loop *sim.Loop, grids *tiles.Manager, entities *entity.Registry, cfg config.DemoConfig) error {
	size := int32(cfg.GridSize)
	if size < 4 {
		size = 4
	}

	var gridID tiles.GridID
	var ids []entity.ID
	if err := loop.Inspect(ctx, func(eng *lookup.Engine) {
		g := grids.CreateGrid(geom.Vec2{}, 1.0)
		for y := int32(0); y < size; y++ {
			for x := int32(0); x < size; x++ {
				g.SetTile(tiles.TileCoord{X: x, Y: y}, tiles.Tile{TypeID: 1})
			}
		}
		gridID = g.ID()
		eng.HandleGridCreated(gridID)

		for range cfg.Entities {
			pos := geom.Vec2{
				X: rand.Float64() * float64(size),
				Y: rand.Float64() * float64(size),
			}
			e := entities.Spawn(gridID, pos, 0.5, 0.5)
			eng.HandleEntityInitialized(e.ID())
			ids = append(ids, e.ID())
		}
	}); err != nil {
		return fmt.Errorf("demo setup: %w", err)
	}
	slog.Info("demo world ready", "grid", gridID, "entities", len(ids), "size", size)

	interval := time.Duration(cfg.TickMillis) * time.Millisecond
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := loop.Inspect(ctx, func(eng *lookup.Engine) {
				tick(eng, grids, entities, gridID, ids, size)
			}); err != nil {
				return err
			}
		}
	}
}

// tick random-walks every entity one step and occasionally edits a tile.
func tick(eng *lookup.Engine, grids *tiles.Manager, entities *entity.Registry, gridID tiles.GridID, ids []entity.ID, size int32) {
	for _, id := range ids {
		e, ok := entities.Get(id)
		if !ok {
			continue
		}
		pos := e.Position()
		pos.X = clamp(pos.X+rand.Float64()-0.5, 0.5, float64(size)-0.5)
		pos.Y = clamp(pos.Y+rand.Float64()-0.5, 0.5, float64(size)-0.5)
		if err := entities.SetPosition(id, pos); err != nil {
			continue
		}
		eng.HandleMoved(id, pos, nil)
	}

	if rand.IntN(10) == 0 {
		tile := tiles.TileCoord{X: rand.Int32N(size), Y: rand.Int32N(size)}
		if g, ok := grids.Grid(gridID); ok {
			g.SetTile(tile, tiles.Tile{TypeID: uint16(1 + rand.IntN(4))})
		}
		eng.HandleTileChanged(gridID, tile)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
