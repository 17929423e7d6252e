package entity

import (
	"fmt"

	"github.com/dmaloff/tilelookup/internal/geom"
	"github.com/dmaloff/tilelookup/internal/tiles"
)

// ID identifies one entity. IDs are issued by the Registry and never reused
// within a process lifetime.
type ID uint32

// Entity is the minimal in-memory record the lookup index needs: a grid
// association, a transform, half extents, and container/lifecycle state.
// Accessed only from the simulation goroutine — no locks.
type Entity struct {
	id       ID
	grid     tiles.GridID
	position geom.Vec2
	halfW    float64
	halfH    float64

	contained bool
	deleted   bool
}

// ID returns the entity identifier.
func (e *Entity) ID() ID {
	return e.id
}

// Position returns the current world position.
func (e *Entity) Position() geom.Vec2 {
	return e.position
}

// Grid returns the grid the entity is associated with.
func (e *Entity) Grid() tiles.GridID {
	return e.grid
}

// Registry tracks every live entity and serves as the geometry, lifecycle
// and container provider for the lookup engine.
type Registry struct {
	entities map[ID]*Entity
	nextID   ID
}

// NewRegistry creates an empty entity registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[ID]*Entity),
		nextID:   1,
	}
}

// Spawn creates an entity on a grid at a world position with the given
// half extents.
func (r *Registry) Spawn(grid tiles.GridID, pos geom.Vec2, halfW, halfH float64) *Entity {
	id := r.nextID
	r.nextID++
	e := &Entity{
		id:       id,
		grid:     grid,
		position: pos,
		halfW:    halfW,
		halfH:    halfH,
	}
	r.entities[id] = e
	return e
}

// Get returns the entity with the given id, including deleted ones.
func (r *Registry) Get(id ID) (*Entity, bool) {
	e, ok := r.entities[id]
	return e, ok
}

// SetPosition updates an entity's transform.
func (r *Registry) SetPosition(id ID, pos geom.Vec2) error {
	e, ok := r.entities[id]
	if !ok {
		return fmt.Errorf("setting position of unknown entity %d", id)
	}
	e.position = pos
	return nil
}

// SetGrid reassociates an entity with a grid.
func (r *Registry) SetGrid(id ID, grid tiles.GridID) error {
	e, ok := r.entities[id]
	if !ok {
		return fmt.Errorf("setting grid of unknown entity %d", id)
	}
	e.grid = grid
	return nil
}

// Delete marks an entity deleted. The record stays queryable so that
// late-arriving events can still observe the deleted flag.
func (r *Registry) Delete(id ID) {
	if e, ok := r.entities[id]; ok {
		e.deleted = true
	}
}

// SetContained flips an entity's container state.
func (r *Registry) SetContained(id ID, contained bool) {
	if e, ok := r.entities[id]; ok {
		e.contained = contained
	}
}

// WorldBox returns the entity's world-space AABB.
func (r *Registry) WorldBox(id ID) (geom.Box, bool) {
	e, ok := r.entities[id]
	if !ok || e.deleted {
		return geom.Box{}, false
	}
	return geom.BoxAround(e.position, e.halfW, e.halfH), true
}

// Deleted reports whether the entity is deleted or was never known.
func (r *Registry) Deleted(id ID) bool {
	e, ok := r.entities[id]
	return !ok || e.deleted
}

// InContainer reports whether the entity is nested inside a container.
func (r *Registry) InContainer(id ID) bool {
	e, ok := r.entities[id]
	return ok && e.contained
}

// GridOf returns the entity's grid association. ok is false for deleted
// or unknown entities, which have no valid grid-relative position.
func (r *Registry) GridOf(id ID) (tiles.GridID, bool) {
	e, ok := r.entities[id]
	if !ok || e.deleted {
		return 0, false
	}
	return e.grid, true
}
