package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/dungeon/internal/world"
)

// TrackedAgent is the single player the dungeon follows. Its position is
// written by whatever moves the player (input, autopilot, spawn placement);
// its current room is written only by RoomTransitionSystem.
type TrackedAgent struct {
	pos     mgl64.Vec3
	hasPos  bool
	current world.RoomRef
}

func NewTrackedAgent() *TrackedAgent {
	return &TrackedAgent{}
}

func (a *TrackedAgent) SetPosition(p mgl64.Vec3) {
	a.pos = p
	a.hasPos = true
}

// ClearPosition marks the position as unavailable; tracking pauses.
func (a *TrackedAgent) ClearPosition() {
	a.hasPos = false
}

func (a *TrackedAgent) Position() (mgl64.Vec3, bool) {
	return a.pos, a.hasPos
}

// Current is the room the agent was last located in. None means the agent
// has not been located yet.
func (a *TrackedAgent) Current() world.RoomRef {
	return a.current
}
