package tiles

import (
	"cmp"
	"slices"

	"github.com/dmaloff/tilelookup/internal/geom"
)

// Manager owns every live grid of one map. It is the grid provider the
// lookup engine queries; grid lifecycle notifications are delivered to the
// engine by the simulation loop, not from here.
type Manager struct {
	grids  map[GridID]*Grid
	nextID GridID
}

// NewManager creates an empty grid registry.
func NewManager() *Manager {
	return &Manager{
		grids:  make(map[GridID]*Grid),
		nextID: 1,
	}
}

// CreateGrid registers a new grid and returns it.
func (m *Manager) CreateGrid(origin geom.Vec2, tileSize float64) *Grid {
	id := m.nextID
	m.nextID++
	g := NewGrid(id, origin, tileSize)
	m.grids[id] = g
	return g
}

// RemoveGrid unregisters a grid. Removing an unknown grid is a no-op.
func (m *Manager) RemoveGrid(id GridID) {
	delete(m.grids, id)
}

// Grid returns the grid with the given id.
func (m *Manager) Grid(id GridID) (*Grid, bool) {
	g, ok := m.grids[id]
	return g, ok
}

// Grids returns every live grid, ordered by id.
func (m *Manager) Grids() []*Grid {
	out := make([]*Grid, 0, len(m.grids))
	for _, g := range m.grids {
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b *Grid) int {
		return cmp.Compare(a.id, b.id)
	})
	return out
}

// GridCount returns the number of live grids.
func (m *Manager) GridCount() int {
	return len(m.grids)
}

// GridsIntersecting returns every grid whose world bounds overlap box.
func (m *Manager) GridsIntersecting(box geom.Box) []GridID {
	var out []GridID
	for id, g := range m.grids {
		if g.WorldBounds().Intersects(box) {
			out = append(out, id)
		}
	}
	return out
}

// TilesIntersecting rasterizes box into tile coordinates of one grid.
// Returns nil for an unknown grid.
func (m *Manager) TilesIntersecting(id GridID, box geom.Box) []TileCoord {
	g, ok := m.grids[id]
	if !ok {
		return nil
	}
	return g.TilesIntersecting(box)
}

// WorldBounds returns the world bounds of one grid.
func (m *Manager) WorldBounds(id GridID) (geom.Box, bool) {
	g, ok := m.grids[id]
	if !ok {
		return geom.Box{}, false
	}
	return g.WorldBounds(), true
}
