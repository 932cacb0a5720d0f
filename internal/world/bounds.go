package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Bounds is an axis-aligned box in world space.
type Bounds struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewBounds builds a box from its centre and full extents.
func NewBounds(center, size mgl64.Vec3) Bounds {
	half := size.Mul(0.5)
	return Bounds{Min: center.Sub(half), Max: center.Add(half)}
}

// BoundsFromCorners orders the two corners so Min <= Max on every axis.
func BoundsFromCorners(a, b mgl64.Vec3) Bounds {
	return Bounds{
		Min: mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])},
		Max: mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])},
	}
}

// Contains reports whether p lies inside the box. Faces count as inside.
func (b Bounds) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

func (b Bounds) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Bounds) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// Touches reports whether the boxes overlap or their gap is at most eps on
// every axis. Rooms sharing a doorway face touch.
func (b Bounds) Touches(o Bounds, eps float64) bool {
	for i := 0; i < 3; i++ {
		if b.Min[i] > o.Max[i]+eps || o.Min[i] > b.Max[i]+eps {
			return false
		}
	}
	return true
}

// Union returns the smallest box holding both.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		Min: mgl64.Vec3{math.Min(b.Min[0], o.Min[0]), math.Min(b.Min[1], o.Min[1]), math.Min(b.Min[2], o.Min[2])},
		Max: mgl64.Vec3{math.Max(b.Max[0], o.Max[0]), math.Max(b.Max[1], o.Max[1]), math.Max(b.Max[2], o.Max[2])},
	}
}

func (b Bounds) String() string {
	return fmt.Sprintf("[(%.1f %.1f %.1f) (%.1f %.1f %.1f)]",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}
