package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestBoundsContains(t *testing.T) {
	b := NewBounds(mgl64.Vec3{5, 0, 0}, mgl64.Vec3{10, 4, 4})
	tests := []struct {
		name string
		p    mgl64.Vec3
		want bool
	}{
		{"centre", mgl64.Vec3{5, 0, 0}, true},
		{"min face", mgl64.Vec3{0, 0, 0}, true},
		{"max corner", mgl64.Vec3{10, 2, 2}, true},
		{"past x", mgl64.Vec3{10.01, 0, 0}, false},
		{"below y", mgl64.Vec3{5, -2.5, 0}, false},
		{"past z", mgl64.Vec3{5, 0, 3}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := b.Contains(tc.p); got != tc.want {
				t.Fatalf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestBoundsFromCornersOrdersAxes(t *testing.T) {
	b := BoundsFromCorners(mgl64.Vec3{10, -1, 3}, mgl64.Vec3{0, 1, -3})
	if b.Min != (mgl64.Vec3{0, -1, -3}) || b.Max != (mgl64.Vec3{10, 1, 3}) {
		t.Fatalf("got %v", b)
	}
	if b.Center() != (mgl64.Vec3{5, 0, 0}) {
		t.Fatalf("centre = %v", b.Center())
	}
	if b.Size() != (mgl64.Vec3{10, 2, 6}) {
		t.Fatalf("size = %v", b.Size())
	}
}

func TestBoundsTouches(t *testing.T) {
	a := BoundsFromCorners(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10})
	shared := BoundsFromCorners(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{20, 10, 10})
	gap := BoundsFromCorners(mgl64.Vec3{10.5, 0, 0}, mgl64.Vec3{20, 10, 10})
	far := BoundsFromCorners(mgl64.Vec3{30, 0, 0}, mgl64.Vec3{40, 10, 10})

	if !a.Touches(shared, 0) {
		t.Fatal("shared face should touch")
	}
	if a.Touches(gap, 0.1) {
		t.Fatal("0.5 gap touched with eps 0.1")
	}
	if !a.Touches(gap, 1) {
		t.Fatal("0.5 gap should touch with eps 1")
	}
	if a.Touches(far, 1) {
		t.Fatal("far box touched")
	}
	u := a.Union(far)
	if u.Min != a.Min || u.Max != far.Max {
		t.Fatalf("union = %v", u)
	}
}
