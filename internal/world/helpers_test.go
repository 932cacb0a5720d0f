package world

import (
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// corridor builds n rooms of width 10 laid end to end along X, starting at 0.
func corridor(t *testing.T, n int) (*Registry, []*Room) {
	t.Helper()
	rooms := make([]*Room, n)
	for i := range rooms {
		x := float64(i * 10)
		rooms[i] = NewRoom(fmt.Sprintf("R%d", i), BoundsFromCorners(
			mgl64.Vec3{x, -5, -5},
			mgl64.Vec3{x + 10, 5, 5},
		))
	}
	reg := NewRegistry()
	if err := reg.Populate(rooms); err != nil {
		t.Fatalf("populate: %v", err)
	}
	return reg, rooms
}

func at(x float64) mgl64.Vec3 { return mgl64.Vec3{x, 0, 0} }
