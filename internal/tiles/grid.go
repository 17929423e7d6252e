package tiles

import (
	"math"

	"github.com/dmaloff/tilelookup/internal/geom"
)

// Tile is the opaque per-cell content of a grid. The lookup index never
// interprets it; it only reacts to edits.
type Tile struct {
	TypeID uint16
}

// IsEmpty reports whether the tile holds no content.
func (t Tile) IsEmpty() bool {
	return t.TypeID == 0
}

// Grid is one tile-space coordinate system within a map: a world origin,
// a tile edge length, and sparse tile content. Accessed only from the
// simulation goroutine — no locks.
type Grid struct {
	id       GridID
	origin   geom.Vec2 // world position of tile (0,0)'s bottom-left corner
	tileSize float64

	content map[TileCoord]Tile

	// Touched tile extent, maintained incrementally. boundsValid is false
	// until the first tile is set.
	minTile     TileCoord
	maxTile     TileCoord
	boundsValid bool
}

// NewGrid creates an empty grid. tileSize must be positive.
func NewGrid(id GridID, origin geom.Vec2, tileSize float64) *Grid {
	return &Grid{
		id:       id,
		origin:   origin,
		tileSize: tileSize,
		content:  make(map[TileCoord]Tile),
	}
}

// ID returns the grid identifier.
func (g *Grid) ID() GridID {
	return g.id
}

// TileSize returns the tile edge length in world units.
func (g *Grid) TileSize() float64 {
	return g.tileSize
}

// SetTile writes tile content and grows the grid's touched extent.
func (g *Grid) SetTile(tile TileCoord, t Tile) {
	g.content[tile] = t
	if !g.boundsValid {
		g.minTile, g.maxTile = tile, tile
		g.boundsValid = true
		return
	}
	if tile.X < g.minTile.X {
		g.minTile.X = tile.X
	}
	if tile.Y < g.minTile.Y {
		g.minTile.Y = tile.Y
	}
	if tile.X > g.maxTile.X {
		g.maxTile.X = tile.X
	}
	if tile.Y > g.maxTile.Y {
		g.maxTile.Y = tile.Y
	}
}

// TileAt returns the content at tile, zero Tile if never set.
func (g *Grid) TileAt(tile TileCoord) Tile {
	return g.content[tile]
}

// TileCount returns the number of tiles ever set.
func (g *Grid) TileCount() int {
	return len(g.content)
}

// WorldBounds returns the world-space box covering every touched tile.
// An untouched grid has degenerate bounds at its origin.
func (g *Grid) WorldBounds() geom.Box {
	if !g.boundsValid {
		return geom.Box{Min: g.origin, Max: g.origin}
	}
	return geom.Box{
		Min: g.TileWorldBox(g.minTile).Min,
		Max: g.TileWorldBox(g.maxTile).Max,
	}
}

// TileWorldBox returns the world-space box of one tile.
func (g *Grid) TileWorldBox(tile TileCoord) geom.Box {
	min := geom.Vec2{
		X: g.origin.X + float64(tile.X)*g.tileSize,
		Y: g.origin.Y + float64(tile.Y)*g.tileSize,
	}
	return geom.Box{
		Min: min,
		Max: geom.Vec2{X: min.X + g.tileSize, Y: min.Y + g.tileSize},
	}
}

// WorldToTile converts a world position to the tile coordinate containing it.
func (g *Grid) WorldToTile(p geom.Vec2) TileCoord {
	return TileCoord{
		X: int32(math.Floor((p.X - g.origin.X) / g.tileSize)),
		Y: int32(math.Floor((p.Y - g.origin.Y) / g.tileSize)),
	}
}

// TilesIntersecting rasterizes a world-space box into the tile coordinates
// it genuinely overlaps. Both edges are exclusive for touch-only contact:
// a box whose max edge lands exactly on a tile boundary does not claim the
// tile beyond it. The result is clamped to the grid's touched tile extent,
// which also bounds the coordinate arithmetic for pathologically large
// boxes.
func (g *Grid) TilesIntersecting(box geom.Box) []TileCoord {
	if !g.boundsValid {
		return nil
	}

	loX := math.Floor((box.Min.X - g.origin.X) / g.tileSize)
	loY := math.Floor((box.Min.Y - g.origin.Y) / g.tileSize)
	hiX := math.Ceil((box.Max.X-g.origin.X)/g.tileSize) - 1
	hiY := math.Ceil((box.Max.Y-g.origin.Y)/g.tileSize) - 1

	if loX < float64(g.minTile.X) {
		loX = float64(g.minTile.X)
	}
	if loY < float64(g.minTile.Y) {
		loY = float64(g.minTile.Y)
	}
	if hiX > float64(g.maxTile.X) {
		hiX = float64(g.maxTile.X)
	}
	if hiY > float64(g.maxTile.Y) {
		hiY = float64(g.maxTile.Y)
	}
	if hiX < loX || hiY < loY {
		return nil
	}

	lo := TileCoord{X: int32(loX), Y: int32(loY)}
	hi := TileCoord{X: int32(hiX), Y: int32(hiY)}
	out := make([]TileCoord, 0, int(hi.X-lo.X+1)*int(hi.Y-lo.Y+1))
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			out = append(out, TileCoord{X: x, Y: y})
		}
	}
	return out
}
