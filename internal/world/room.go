package world

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/dungeon/internal/core/ecs"
)

// Behavior is the gameplay object attached to a generated room. The
// dungeon calls it synchronously from the game loop.
type Behavior interface {
	OnPlayerEnter(r *Room)
	OnPlayerExit(r *Room)
	OnCullChanged(r *Room, culled bool)
}

// Room is one generated dungeon cell. Bounds and registry index are fixed
// for the lifetime of the dungeon instance that produced it.
// Accessed only from the game loop goroutine.
type Room struct {
	ID        ecs.EntityID
	Name      string
	Archetype string
	Bounds    Bounds
	Branch    bool // false for main-path rooms
	Behavior  Behavior

	spawn    mgl64.Vec3
	hasSpawn bool
	index    int // -1 while not held by a registry
	culled   bool
}

func NewRoom(name string, bounds Bounds) *Room {
	return &Room{Name: name, Bounds: bounds, index: -1}
}

// SetPlayerSpawn marks where the player is placed when this room is the
// dungeon entry.
func (r *Room) SetPlayerSpawn(p mgl64.Vec3) {
	r.spawn = p
	r.hasSpawn = true
}

// PlayerSpawn returns the player spawn point, if the room has one.
func (r *Room) PlayerSpawn() (mgl64.Vec3, bool) {
	return r.spawn, r.hasSpawn
}

// Index is the room's position in the registry that last populated it,
// or -1. Prefer Registry.IndexOf, which also rejects rooms of a replaced
// dungeon.
func (r *Room) Index() int { return r.index }

func (r *Room) Culled() bool  { return r.culled }
func (r *Room) Visible() bool { return !r.culled }

// SetCull hides (true) or reveals (false) the room and reports whether the
// state changed. Repeating the current state is a no-op.
func (r *Room) SetCull(culled bool) bool {
	if r.culled == culled {
		return false
	}
	r.culled = culled
	if r.Behavior != nil {
		r.Behavior.OnCullChanged(r, culled)
	}
	return true
}

// PlayerEnter forwards the enter notification to the room's behavior.
func (r *Room) PlayerEnter() {
	if r.Behavior != nil {
		r.Behavior.OnPlayerEnter(r)
	}
}

// PlayerExit forwards the exit notification to the room's behavior.
func (r *Room) PlayerExit() {
	if r.Behavior != nil {
		r.Behavior.OnPlayerExit(r)
	}
}

func (r *Room) String() string {
	if r == nil {
		return "<none>"
	}
	return r.Name
}
