package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBox_NormalizesCorners(t *testing.T) {
	b := NewBox(Vec2{X: 3, Y: -1}, Vec2{X: -2, Y: 4})
	assert.Equal(t, Vec2{X: -2, Y: -1}, b.Min)
	assert.Equal(t, Vec2{X: 3, Y: 4}, b.Max)
}

func TestBox_Intersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Box
		want bool
	}{
		{
			name: "overlapping",
			a:    NewBox(Vec2{0, 0}, Vec2{2, 2}),
			b:    NewBox(Vec2{1, 1}, Vec2{3, 3}),
			want: true,
		},
		{
			name: "edge touching counts as intersecting",
			a:    NewBox(Vec2{0, 0}, Vec2{1, 1}),
			b:    NewBox(Vec2{1, 0}, Vec2{2, 1}),
			want: true,
		},
		{
			name: "disjoint",
			a:    NewBox(Vec2{0, 0}, Vec2{1, 1}),
			b:    NewBox(Vec2{2, 2}, Vec2{3, 3}),
			want: false,
		},
		{
			name: "negative coordinates",
			a:    NewBox(Vec2{-3, -3}, Vec2{-1, -1}),
			b:    NewBox(Vec2{-2, -2}, Vec2{0, 0}),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(tt.a))
		})
	}
}

func TestBox_Shrunk(t *testing.T) {
	b := BoxAround(Vec2{X: 0, Y: 0}, 1, 1) // 2x2 box
	s := b.Shrunk(0.02)

	assert.InDelta(t, 1.96, s.Width(), 1e-9)
	assert.InDelta(t, 1.96, s.Height(), 1e-9)
	assert.Equal(t, b.Center(), s.Center())

	// A shrunk box no longer touches the neighbor it used to share an edge with.
	neighbor := NewBox(Vec2{1, -1}, Vec2{3, 1})
	assert.True(t, b.Intersects(neighbor))
	assert.False(t, s.Intersects(neighbor))
}

func TestBox_Union(t *testing.T) {
	a := NewBox(Vec2{0, 0}, Vec2{1, 1})
	b := NewBox(Vec2{-2, 3}, Vec2{0, 5})
	u := a.Union(b)
	assert.Equal(t, NewBox(Vec2{-2, 0}, Vec2{1, 5}), u)
}
