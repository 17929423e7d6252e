package lookup

import (
	"github.com/dmaloff/tilelookup/internal/entity"
	"github.com/dmaloff/tilelookup/internal/tiles"
)

// Update describes one change to an entity's tracked tile set. It is meant
// for debugging and visualization overlays, not for correctness-critical
// downstream logic.
type Update struct {
	// Entity whose occupancy changed.
	Entity entity.ID `json:"entity"`

	// Tiles maps each grid to the tile coordinates the entity now touches.
	// A nil map means the entity was removed from tracking.
	Tiles map[tiles.GridID][]tiles.TileCoord `json:"tiles"`
}

// Removed reports whether the update marks the entity as untracked.
func (u Update) Removed() bool {
	return u.Tiles == nil
}

func summarize(set nodeSet) map[tiles.GridID][]tiles.TileCoord {
	out := make(map[tiles.GridID][]tiles.TileCoord, 1)
	for n := range set {
		out[n.Grid()] = append(out[n.Grid()], n.Tile())
	}
	return out
}
