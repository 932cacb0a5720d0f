package event

import "github.com/l1jgo/dungeon/internal/world"

// DungeonGenerated fires once a generated dungeon is fully initialised.
type DungeonGenerated struct{}

// PlayerChangedRoom fires after the tracked player moved to another room.
// Old is None for the first placement.
type PlayerChangedRoom struct {
	Old world.RoomRef
	New world.RoomRef
}

// RoomVisibilityChanged fires whenever a room is culled or revealed.
type RoomVisibilityChanged struct {
	Room    *world.Room
	Visible bool
}
