package tiles

// GridID identifies one tile grid within a map. IDs are issued by the
// Manager and never reused within a process lifetime.
type GridID uint32

// TileCoord addresses a single tile within a grid's tile space.
type TileCoord struct {
	X int32
	Y int32
}

// ChunkCoord is a TileCoord rounded down to a multiple of the chunk edge
// length. It identifies the chunk that owns the tile.
type ChunkCoord = TileCoord

// FloorDiv divides a by b rounding toward negative infinity.
// Plain integer division truncates toward zero, which would map tile -1
// and tile 0 into the same chunk.
func FloorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ChunkOrigin returns the origin coordinate of the chunk containing tile,
// for the given chunk edge length.
func ChunkOrigin(tile TileCoord, size int32) ChunkCoord {
	return ChunkCoord{
		X: FloorDiv(tile.X, size) * size,
		Y: FloorDiv(tile.Y, size) * size,
	}
}
