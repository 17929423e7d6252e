package geom

// Vec2 is a point in world space.
type Vec2 struct {
	X float64
	Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Box is an axis-aligned bounding box in world space.
// Min is the bottom-left corner, Max the top-right.
type Box struct {
	Min Vec2
	Max Vec2
}

// NewBox builds a box from two corners, normalizing the order.
func NewBox(a, b Vec2) Box {
	box := Box{Min: a, Max: b}
	if box.Min.X > box.Max.X {
		box.Min.X, box.Max.X = box.Max.X, box.Min.X
	}
	if box.Min.Y > box.Max.Y {
		box.Min.Y, box.Max.Y = box.Max.Y, box.Min.Y
	}
	return box
}

// BoxAround builds a box centered on c with the given half extents.
func BoxAround(c Vec2, halfW, halfH float64) Box {
	return Box{
		Min: Vec2{X: c.X - halfW, Y: c.Y - halfH},
		Max: Vec2{X: c.X + halfW, Y: c.Y + halfH},
	}
}

// Width returns the horizontal extent.
func (b Box) Width() float64 {
	return b.Max.X - b.Min.X
}

// Height returns the vertical extent.
func (b Box) Height() float64 {
	return b.Max.Y - b.Min.Y
}

// Center returns the box midpoint.
func (b Box) Center() Vec2 {
	return Vec2{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
	}
}

// Intersects reports whether b and o overlap. Boxes that only share an
// edge are treated as intersecting; callers that must avoid boundary
// double-counting shrink one side first (see Shrunk).
func (b Box) Intersects(o Box) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}

// Contains reports whether p lies inside b (boundary inclusive).
func (b Box) Contains(p Vec2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Shrunk returns the box scaled about its center by 1-frac.
// Shrunk(0.02) trims 2% off each extent, keeping an entity whose edge
// exactly touches a neighboring tile from being counted in that neighbor.
func (b Box) Shrunk(frac float64) Box {
	dx := b.Width() * frac / 2
	dy := b.Height() * frac / 2
	return Box{
		Min: Vec2{X: b.Min.X + dx, Y: b.Min.Y + dy},
		Max: Vec2{X: b.Max.X - dx, Y: b.Max.Y - dy},
	}
}

// Union returns the smallest box covering both b and o.
func (b Box) Union(o Box) Box {
	out := b
	if o.Min.X < out.Min.X {
		out.Min.X = o.Min.X
	}
	if o.Min.Y < out.Min.Y {
		out.Min.Y = o.Min.Y
	}
	if o.Max.X > out.Max.X {
		out.Max.X = o.Max.X
	}
	if o.Max.Y > out.Max.Y {
		out.Max.Y = o.Max.Y
	}
	return out
}
