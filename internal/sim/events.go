package sim

import (
	"github.com/dmaloff/tilelookup/internal/entity"
	"github.com/dmaloff/tilelookup/internal/geom"
	"github.com/dmaloff/tilelookup/internal/tiles"
)

// Event is one external notification for the lookup engine. The loop
// dispatches events strictly in arrival order; there is no internal bus.
type Event interface {
	isEvent()
}

// EntityInitialized signals a freshly created entity.
type EntityInitialized struct {
	Entity entity.ID
}

// EntityDeleted signals an entity removal.
type EntityDeleted struct {
	Entity entity.ID
}

// ContainerInserted signals an entity nested into a container.
type ContainerInserted struct {
	Entity entity.ID
}

// ContainerRemoved signals an entity freed from its container.
type ContainerRemoved struct {
	Entity entity.ID
}

// Moved signals a position change. Box optionally carries the world AABB
// at the new position so the engine can skip recomputing it.
type Moved struct {
	Entity   entity.ID
	Position geom.Vec2
	Box      *geom.Box
}

// TileChanged signals a terrain edit on one tile.
type TileChanged struct {
	Grid tiles.GridID
	Tile tiles.TileCoord
}

// GridCreated signals a new grid.
type GridCreated struct {
	Grid tiles.GridID
}

// GridRemoved signals a grid teardown.
type GridRemoved struct {
	Grid tiles.GridID
}

// inspect carries a read closure from another goroutine into the loop,
// preserving the single-writer discipline for debug queries.
type inspect struct {
	fn   func()
	done chan struct{}
}

func (EntityInitialized) isEvent() {}
func (EntityDeleted) isEvent()     {}
func (ContainerInserted) isEvent() {}
func (ContainerRemoved) isEvent()  {}
func (Moved) isEvent()             {}
func (TileChanged) isEvent()       {}
func (GridCreated) isEvent()       {}
func (GridRemoved) isEvent()       {}
func (inspect) isEvent()           {}
