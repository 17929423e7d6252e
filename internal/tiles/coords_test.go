package tiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b int32
		want int32
	}{
		{0, 16, 0},
		{15, 16, 0},
		{16, 16, 1},
		{-1, 16, -1},
		{-16, 16, -1},
		{-17, 16, -2},
		{33, 16, 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FloorDiv(tt.a, tt.b), "FloorDiv(%d, %d)", tt.a, tt.b)
	}
}

func TestChunkOrigin(t *testing.T) {
	tests := []struct {
		name string
		tile TileCoord
		size int32
		want ChunkCoord
	}{
		{"origin tile", TileCoord{0, 0}, 16, ChunkCoord{0, 0}},
		{"last tile of first chunk", TileCoord{15, 15}, 16, ChunkCoord{0, 0}},
		{"first tile of second chunk", TileCoord{16, 0}, 16, ChunkCoord{16, 0}},
		{"negative tile", TileCoord{-1, -1}, 16, ChunkCoord{-16, -16}},
		{"deep negative", TileCoord{-17, 3}, 16, ChunkCoord{-32, 0}},
		{"small chunk size", TileCoord{-5, 7}, 4, ChunkCoord{-8, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChunkOrigin(tt.tile, tt.size))
		})
	}
}
