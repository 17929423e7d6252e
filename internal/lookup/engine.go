package lookup

import (
	"fmt"
	"log/slog"

	"github.com/dmaloff/tilelookup/internal/entity"
	"github.com/dmaloff/tilelookup/internal/geom"
	"github.com/dmaloff/tilelookup/internal/tiles"
)

const (
	// DefaultChunkSize is the chunk edge length in tiles.
	DefaultChunkSize = 16

	// boundaryShrink is the fraction trimmed off an entity's AABB before
	// tile rasterization. Without it a thin entity (a wall) whose box edge
	// exactly coincides with a tile boundary would be counted in the
	// neighboring tile too.
	boundaryShrink = 0.02
)

// GeometryProvider supplies world-space bounding boxes for live entities.
// ok is false for entities with no valid geometry (deleted or unknown).
type GeometryProvider interface {
	WorldBox(id entity.ID) (geom.Box, bool)
}

// EntityProvider answers lifecycle and container questions about entities.
type EntityProvider interface {
	Deleted(id entity.ID) bool
	InContainer(id entity.ID) bool
	GridOf(id entity.ID) (tiles.GridID, bool)
}

// GridProvider supplies grid geometry: which grids a box overlaps, which
// tiles of a grid a box overlaps, and a grid's world bounds.
type GridProvider interface {
	GridsIntersecting(box geom.Box) []tiles.GridID
	TilesIntersecting(id tiles.GridID, box geom.Box) []tiles.TileCoord
	WorldBounds(id tiles.GridID) (geom.Box, bool)
}

type nodeSet map[*Node]struct{}

func (s nodeSet) equal(o nodeSet) bool {
	if len(s) != len(o) {
		return false
	}
	for n := range s {
		if _, ok := o[n]; !ok {
			return false
		}
	}
	return true
}

// Engine is the lookup index: per-grid chunked tile nodes plus a reverse
// cache of each tracked entity's current node set. All mutation happens in
// the event handlers below, which the simulation loop must invoke serially
// in arrival order. Accessed only from the simulation goroutine — no locks.
type Engine struct {
	chunkSize int32

	geometry GeometryProvider
	entities EntityProvider
	grids    GridProvider

	indices map[tiles.GridID]*gridIndex
	tracked map[entity.ID]nodeSet

	onUpdate func(Update)

	// mutations counts individual node membership inserts/erases. Exposed
	// so tests can observe that a no-op move touches nothing.
	mutations uint64
}

// New creates an engine over the given collaborators. chunkSize <= 0 falls
// back to DefaultChunkSize.
func New(geometry GeometryProvider, entities EntityProvider, grids GridProvider, chunkSize int32) *Engine {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Engine{
		chunkSize: chunkSize,
		geometry:  geometry,
		entities:  entities,
		grids:     grids,
		indices:   make(map[tiles.GridID]*gridIndex),
		tracked:   make(map[entity.ID]nodeSet),
	}
}

// OnUpdate registers the sink receiving index update notifications.
// Must be set before events flow; the sink runs synchronously inside the
// handler and must not re-enter the engine.
func (e *Engine) OnUpdate(fn func(Update)) {
	e.onUpdate = fn
}

// ChunkSize returns the chunk edge length in tiles.
func (e *Engine) ChunkSize() int32 {
	return e.chunkSize
}

// Mutations returns the total number of node membership mutations so far.
func (e *Engine) Mutations() uint64 {
	return e.mutations
}

// TrackedCount returns the number of entities with a reverse-cache entry.
func (e *Engine) TrackedCount() int {
	return len(e.tracked)
}

// Reset discards every index and cache entry. Emits nothing.
func (e *Engine) Reset() {
	e.indices = make(map[tiles.GridID]*gridIndex)
	e.tracked = make(map[entity.ID]nodeSet)
	e.mutations = 0
}

// --- queries ---

// EntitiesIntersecting returns every entity occupying any tile the given
// entity occupies, deduplicated. Membership is read from the reverse cache
// and computed on demand for a live but untracked entity. Fails with
// ErrDeletedEntity for a deleted entity.
func (e *Engine) EntitiesIntersecting(id entity.ID) ([]entity.ID, error) {
	if e.entities.Deleted(id) {
		return nil, fmt.Errorf("entities intersecting entity %d: %w", id, ErrDeletedEntity)
	}

	set, ok := e.tracked[id]
	if !ok {
		var err error
		set, err = e.resolveEntityNodes(id)
		if err != nil {
			return nil, fmt.Errorf("entities intersecting entity %d: %w", id, err)
		}
	}

	seen := make(map[entity.ID]struct{})
	var out []entity.ID
	for n := range set {
		for other := range n.entities {
			if _, dup := seen[other]; dup {
				continue
			}
			seen[other] = struct{}{}
			out = append(out, other)
		}
	}
	return out, nil
}

// EntitiesAt returns the entities occupying one tile. Fails with
// ErrInvalidGrid for an unregistered grid; an untouched chunk or tile
// yields an empty result.
func (e *Engine) EntitiesAt(grid tiles.GridID, tile tiles.TileCoord) ([]entity.ID, error) {
	idx, ok := e.indices[grid]
	if !ok {
		return nil, fmt.Errorf("entities at grid %d tile (%d,%d): %w", grid, tile.X, tile.Y, ErrInvalidGrid)
	}

	chunk, ok := idx.chunks[tiles.ChunkOrigin(tile, e.chunkSize)]
	if !ok {
		return nil, nil
	}
	n, ok := chunk.nodes[tile]
	if !ok {
		return nil, nil
	}

	out := make([]entity.ID, 0, len(n.entities))
	for id := range n.entities {
		out = append(out, id)
	}
	return out, nil
}

// TileRef names one tile of one grid.
type TileRef struct {
	Grid tiles.GridID
	Tile tiles.TileCoord
}

// OccupiedTiles returns the cached tile list for an entity, empty if the
// entity is untracked (deleted, contained, or never added).
func (e *Engine) OccupiedTiles(id entity.ID) []TileRef {
	set, ok := e.tracked[id]
	if !ok {
		return nil
	}
	out := make([]TileRef, 0, len(set))
	for n := range set {
		out = append(out, TileRef{Grid: n.Grid(), Tile: n.Tile()})
	}
	return out
}

// --- event handlers ---

// HandleGridCreated registers an empty chunk map for the grid. Idempotent.
func (e *Engine) HandleGridCreated(grid tiles.GridID) {
	if _, ok := e.indices[grid]; !ok {
		e.indices[grid] = newGridIndex()
	}
}

// HandleGridRemoved discards the grid's entire chunk map and drops the
// cache entry of every entity that referenced the grid. Such an entity is
// first scrubbed from its nodes on surviving grids so bidirectional
// consistency holds throughout.
func (e *Engine) HandleGridRemoved(grid tiles.GridID) {
	for id, set := range e.tracked {
		refers := false
		for n := range set {
			if n.Grid() == grid {
				refers = true
				break
			}
		}
		if gid, ok := e.entities.GridOf(id); ok && gid == grid {
			refers = true
		}
		if !refers {
			continue
		}
		for n := range set {
			if n.Grid() != grid {
				n.removeEntity(id)
				e.mutations++
			}
		}
		delete(e.tracked, id)
		e.emit(Update{Entity: id})
	}
	delete(e.indices, grid)
	slog.Debug("grid index removed", "grid", grid)
}

// HandleTileChanged ensures the node for an edited tile exists. Terrain
// edits never alter entity membership.
func (e *Engine) HandleTileChanged(grid tiles.GridID, tile tiles.TileCoord) {
	e.getOrCreateNode(grid, tile)
}

// HandleEntityInitialized starts tracking a freshly created entity unless
// it lives inside a container.
func (e *Engine) HandleEntityInitialized(id entity.ID) {
	if e.entities.InContainer(id) {
		return
	}
	e.addTracked(id)
}

// HandleEntityDeleted removes the entity from every node recorded in its
// cache snapshot. The snapshot is authoritative here: the entity's
// transform may already be invalid by the time the deletion is processed.
func (e *Engine) HandleEntityDeleted(id entity.ID) {
	e.removeTracked(id)
}

// HandleContainerInserted untracks an entity that became contained.
func (e *Engine) HandleContainerInserted(id entity.ID) {
	e.removeTracked(id)
}

// HandleContainerRemoved resumes tracking an entity that left a container,
// from its current position.
func (e *Engine) HandleContainerRemoved(id entity.ID) {
	e.addTracked(id)
}

// HandleMoved diffs an entity's node set after a position change. box, when
// non-nil, is the caller-supplied world AABB at the new position; otherwise
// the geometry provider is consulted.
func (e *Engine) HandleMoved(id entity.ID, pos geom.Vec2, box *geom.Box) {
	if e.entities.Deleted(id) {
		e.removeTracked(id)
		return
	}
	grid, ok := e.entities.GridOf(id)
	if !ok {
		e.removeTracked(id)
		return
	}

	// Entities only become tracked via the initialize / container-remove
	// path; a move for an untracked entity has nothing to diff against.
	old, tracked := e.tracked[id]
	if !tracked {
		return
	}

	// A position report outside the destination grid's own bounds means
	// the index must stop tracking the entity until it resolves to a valid
	// location again; keeping it would leak stale nodes.
	bounds, ok := e.grids.WorldBounds(grid)
	if !ok || !bounds.Contains(pos) {
		e.removeTracked(id)
		return
	}

	var worldBox geom.Box
	if box != nil {
		worldBox = *box
	} else {
		worldBox, ok = e.geometry.WorldBox(id)
		if !ok {
			e.removeTracked(id)
			return
		}
	}

	next := e.resolveBoxNodes(worldBox)
	if old.equal(next) {
		return
	}

	for n := range old {
		if _, keep := next[n]; !keep {
			n.removeEntity(id)
			e.mutations++
		}
	}
	for n := range next {
		if _, had := old[n]; !had {
			n.addEntity(id)
			e.mutations++
		}
	}
	e.tracked[id] = next
	e.emit(Update{Entity: id, Tiles: summarize(next)})
}

// --- internals ---

func (e *Engine) emit(u Update) {
	if e.onUpdate != nil {
		e.onUpdate(u)
	}
}

// getOrCreateChunk resolves the chunk owning tile. An unregistered grid is
// silently registered: upstream ordering of initialization events is not
// strictly guaranteed and internal maintenance paths favor self-healing.
func (e *Engine) getOrCreateChunk(grid tiles.GridID, tile tiles.TileCoord) *Chunk {
	idx, ok := e.indices[grid]
	if !ok {
		idx = newGridIndex()
		e.indices[grid] = idx
	}
	origin := tiles.ChunkOrigin(tile, e.chunkSize)
	c, ok := idx.chunks[origin]
	if !ok {
		c = newChunk(grid, origin)
		idx.chunks[origin] = c
	}
	return c
}

func (e *Engine) getOrCreateNode(grid tiles.GridID, tile tiles.TileCoord) *Node {
	return e.getOrCreateChunk(grid, tile).node(tile)
}

// resolveBoxNodes resolves a world AABB to the set of nodes it occupies:
// shrink, find overlapping grids, rasterize per grid, get-or-create nodes.
func (e *Engine) resolveBoxNodes(box geom.Box) nodeSet {
	shrunk := box.Shrunk(boundaryShrink)
	set := make(nodeSet)
	for _, grid := range e.grids.GridsIntersecting(shrunk) {
		for _, tile := range e.grids.TilesIntersecting(grid, shrunk) {
			set[e.getOrCreateNode(grid, tile)] = struct{}{}
		}
	}
	return set
}

func (e *Engine) resolveEntityNodes(id entity.ID) (nodeSet, error) {
	box, ok := e.geometry.WorldBox(id)
	if !ok {
		return nil, fmt.Errorf("resolving nodes for entity %d: %w", id, ErrDeletedEntity)
	}
	return e.resolveBoxNodes(box), nil
}

// addTracked computes an entity's node set from live geometry, inserts it
// everywhere, and records the reverse-cache entry. Internal maintenance
// path: failures are logged, not surfaced.
func (e *Engine) addTracked(id entity.ID) {
	set, err := e.resolveEntityNodes(id)
	if err != nil {
		slog.Debug("skipping track of entity without geometry", "entity", id)
		return
	}
	if old, ok := e.tracked[id]; ok {
		// Re-initialization while tracked: drop the stale snapshot first.
		for n := range old {
			n.removeEntity(id)
			e.mutations++
		}
	}
	for n := range set {
		n.addEntity(id)
		e.mutations++
	}
	e.tracked[id] = set
	e.emit(Update{Entity: id, Tiles: summarize(set)})
}

// removeTracked erases an entity from every node in its cache snapshot and
// drops the entry. A no-op for untracked entities.
func (e *Engine) removeTracked(id entity.ID) {
	set, ok := e.tracked[id]
	if !ok {
		return
	}
	for n := range set {
		n.removeEntity(id)
		e.mutations++
	}
	delete(e.tracked, id)
	e.emit(Update{Entity: id})
}
