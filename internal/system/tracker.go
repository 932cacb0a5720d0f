package system

import (
	"time"

	"github.com/l1jgo/dungeon/internal/core/event"
	coresys "github.com/l1jgo/dungeon/internal/core/system"
	"github.com/l1jgo/dungeon/internal/world"
	"go.uber.org/zap"
)

// RoomTransitionSystem follows the tracked agent from room to room.
// Phase 3 (LateUpdate): runs after everything that moves the agent.
//
// The common frame costs a single containment test against the current
// room. Only when the agent has left it does the locator run, hinted with
// the current room.
type RoomTransitionSystem struct {
	agent   *TrackedAgent
	locator *world.Locator
	window  *VisibilityWindow
	bus     *event.Bus
	active  bool
	changes uint64
	log     *zap.Logger
}

func NewRoomTransitionSystem(agent *TrackedAgent, locator *world.Locator, window *VisibilityWindow, bus *event.Bus, log *zap.Logger) *RoomTransitionSystem {
	return &RoomTransitionSystem{
		agent:   agent,
		locator: locator,
		window:  window,
		bus:     bus,
		log:     log,
	}
}

func (s *RoomTransitionSystem) Phase() coresys.Phase { return coresys.PhaseLateUpdate }

func (s *RoomTransitionSystem) Update(_ time.Duration) {
	s.Step()
}

// Step runs one frame of tracking and reports whether the room changed.
func (s *RoomTransitionSystem) Step() bool {
	if !s.active {
		return false
	}
	pos, ok := s.agent.Position()
	if !ok {
		return false
	}

	cur, located := s.agent.current.Get()
	if !located {
		found := s.locator.Locate(pos, world.NoRoom)
		if found.IsNone() {
			return false
		}
		s.change(world.NoRoom, found)
		return true
	}

	if cur.Bounds.Contains(pos) {
		return false
	}
	found := s.locator.Locate(pos, s.agent.current)
	if found == s.agent.current {
		return false
	}
	s.change(s.agent.current, found)
	return true
}

// change applies a room change. The order is fixed: current room, culling
// window, exit, enter, broadcast. Everything runs before Step returns.
func (s *RoomTransitionSystem) change(old, next world.RoomRef) {
	s.agent.current = next
	s.window.Recompute(next)
	if r, ok := old.Get(); ok {
		r.PlayerExit()
	}
	if r, ok := next.Get(); ok {
		r.PlayerEnter()
	}
	s.changes++
	s.log.Debug("player changed room",
		zap.Stringer("from", old),
		zap.Stringer("to", next),
	)
	event.Emit(s.bus, event.PlayerChangedRoom{Old: old, New: next})
}

// Place sets the agent's room directly, without notifications. Used when
// a fresh dungeon puts the player at its spawn.
func (s *RoomTransitionSystem) Place(room world.RoomRef) {
	s.agent.current = room
}

// Reset forgets the current room and stops tracking until Activate.
func (s *RoomTransitionSystem) Reset() {
	s.agent.current = world.NoRoom
	s.active = false
}

// Activate starts per-frame tracking.
func (s *RoomTransitionSystem) Activate() { s.active = true }

func (s *RoomTransitionSystem) Active() bool { return s.active }

// Changes returns how many room changes have fired.
func (s *RoomTransitionSystem) Changes() uint64 { return s.changes }
