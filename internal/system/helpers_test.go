package system

import (
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/dungeon/internal/core/event"
	"github.com/l1jgo/dungeon/internal/world"
	"go.uber.org/zap"
)

// journal records room callbacks and bus events in the order they happen.
type journal struct {
	entries []string
}

func (j *journal) OnPlayerEnter(r *world.Room) { j.add("enter:%s", r.Name) }
func (j *journal) OnPlayerExit(r *world.Room)  { j.add("exit:%s", r.Name) }
func (j *journal) OnCullChanged(r *world.Room, culled bool) {
	j.add("cull:%s:%t", r.Name, culled)
}

func (j *journal) add(format string, args ...any) {
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

func (j *journal) reset() { j.entries = nil }

// corridor builds n rooms of width 10 laid end to end along X.
func corridor(t *testing.T, n int, b world.Behavior) (*world.Registry, []*world.Room) {
	t.Helper()
	rooms := make([]*world.Room, n)
	for i := range rooms {
		x := float64(i * 10)
		rooms[i] = world.NewRoom(fmt.Sprintf("R%d", i), world.BoundsFromCorners(
			mgl64.Vec3{x, -5, -5},
			mgl64.Vec3{x + 10, 5, 5},
		))
		rooms[i].Behavior = b
	}
	reg := world.NewRegistry()
	if err := reg.Populate(rooms); err != nil {
		t.Fatalf("populate: %v", err)
	}
	return reg, rooms
}

func at(x float64) mgl64.Vec3 { return mgl64.Vec3{x, 0, 0} }

type rig struct {
	reg     *world.Registry
	rooms   []*world.Room
	bus     *event.Bus
	agent   *TrackedAgent
	window  *VisibilityWindow
	tracker *RoomTransitionSystem
	j       *journal
}

// newRig places the agent in room 0 the way a fresh dungeon does, then
// clears the journal.
func newRig(t *testing.T, n int, culling bool) *rig {
	t.Helper()
	j := &journal{}
	reg, rooms := corridor(t, n, j)
	bus := event.NewBus()
	agent := NewTrackedAgent()
	window := NewVisibilityWindow(reg, bus, culling, zap.NewNop())
	tracker := NewRoomTransitionSystem(agent, world.NewLocator(reg), window, bus, zap.NewNop())
	event.Subscribe(bus, func(ev event.PlayerChangedRoom) {
		j.add("event:%s->%s", ev.Old, ev.New)
	})

	agent.SetPosition(at(5))
	tracker.Place(reg.At(0))
	tracker.Activate()
	window.Recompute(agent.Current())
	j.reset()
	return &rig{reg: reg, rooms: rooms, bus: bus, agent: agent, window: window, tracker: tracker, j: j}
}

func visibleNames(w *VisibilityWindow) []string {
	var out []string
	for _, r := range w.Visible() {
		out = append(out, r.Name)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
