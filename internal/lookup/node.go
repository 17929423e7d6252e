package lookup

import (
	"github.com/dmaloff/tilelookup/internal/entity"
	"github.com/dmaloff/tilelookup/internal/tiles"
)

// Node is the per-tile record of which entities currently occupy that tile.
// Nodes are created lazily on first touch and persist while empty; they are
// discarded only with their whole grid.
type Node struct {
	tile     tiles.TileCoord
	chunk    *Chunk
	entities map[entity.ID]struct{}
}

// Grid returns the identifier of the grid owning this node.
func (n *Node) Grid() tiles.GridID {
	return n.chunk.grid
}

// Tile returns the node's tile coordinate.
func (n *Node) Tile() tiles.TileCoord {
	return n.tile
}

// Len returns the number of entities occupying the tile.
func (n *Node) Len() int {
	return len(n.entities)
}

// addEntity and removeEntity are bare set operations; the engine owns all
// cache bookkeeping and update emission.
func (n *Node) addEntity(id entity.ID) {
	n.entities[id] = struct{}{}
}

func (n *Node) removeEntity(id entity.ID) {
	delete(n.entities, id)
}

// Chunk owns the nodes of one fixed-size square block of tile coordinates.
type Chunk struct {
	grid   tiles.GridID
	origin tiles.ChunkCoord
	nodes  map[tiles.TileCoord]*Node
}

func newChunk(grid tiles.GridID, origin tiles.ChunkCoord) *Chunk {
	return &Chunk{
		grid:   grid,
		origin: origin,
		nodes:  make(map[tiles.TileCoord]*Node),
	}
}

// Origin returns the chunk's origin tile coordinate.
func (c *Chunk) Origin() tiles.ChunkCoord {
	return c.origin
}

// node returns the node for tile, creating it on first touch.
func (c *Chunk) node(tile tiles.TileCoord) *Node {
	n, ok := c.nodes[tile]
	if !ok {
		n = &Node{
			tile:     tile,
			chunk:    c,
			entities: make(map[entity.ID]struct{}),
		}
		c.nodes[tile] = n
	}
	return n
}

// gridIndex is the per-grid chunk collection, keyed by chunk origin.
type gridIndex struct {
	chunks map[tiles.ChunkCoord]*Chunk
}

func newGridIndex() *gridIndex {
	return &gridIndex{chunks: make(map[tiles.ChunkCoord]*Chunk)}
}
